// Package apperr defines the closed error taxonomy shared by every package
// in this module: configuration errors, state errors, not-found, conflict,
// and the fatal invariant error a worker latches on an unhandled panic.
package apperr

import (
	"errors"
	"fmt"
)

// Sentinel kinds, matched with errors.Is. Wrap these with fmt.Errorf("...: %w", ErrConfiguration)
// to attach call-site detail without losing the taxonomy.
var (
	// ErrConfiguration marks a programmer error in supplied parameters:
	// negative sizes, contradictory options, duplicate registrations.
	ErrConfiguration = errors.New("configuration error")

	// ErrState marks an operation forbidden by the current lifecycle state,
	// such as pausing a controller that has already shut down.
	ErrState = errors.New("state error")

	// ErrNotFound marks a lookup against an unregistered name or a missing path.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a second acquisition of an already-acquired resource.
	ErrConflict = errors.New("conflict")

	// ErrInvariant marks a fatal condition a worker thread latches into its
	// status before re-raising; the control thread reacts to the latch, not
	// to this value directly.
	ErrInvariant = errors.New("invariant violated")
)

// Configuration wraps ErrConfiguration with a formatted message.
func Configuration(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrConfiguration)...)
}

// State wraps ErrState with a formatted message.
func State(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrState)...)
}

// NotFound wraps ErrNotFound with a formatted message.
func NotFound(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Conflict wraps ErrConflict with a formatted message.
func Conflict(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

// Invariant wraps ErrInvariant with a formatted message.
func Invariant(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvariant)...)
}
