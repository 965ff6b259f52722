// Package threadcontrol implements the single-writer, many-reader broadcast
// of pause/resume/shutdown to every worker thread (spec §4.3), and the
// per-worker status latches a monitor polls to derive a system-wide label
// (spec §4.4). The latch primitive mirrors the teacher's habit of using
// channel-shaped synchronization (tabular/server/fastview/client.go's
// websock uses a buffered channel as a non-blocking mutex) rather than
// condition variables: here a latch is a channel that is closed exactly
// once, giving every waiter a select-able "resume()"-equivalent.
package threadcontrol

import (
	"sync"
	"time"

	"github.com/agentloop/agentloop/internal/apperr"
)

// latch is a boolean condition, closed exactly once to signal "set", that
// any number of goroutines can wait on via its channel or poll via IsSet.
type latch struct {
	mu   sync.Mutex
	ch   chan struct{}
	isSet bool
}

func newLatch(set bool) *latch {
	l := &latch{ch: make(chan struct{})}
	if set {
		close(l.ch)
		l.isSet = true
	}
	return l
}

func (l *latch) Set() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.isSet {
		l.isSet = true
		close(l.ch)
	}
}

func (l *latch) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.isSet {
		l.isSet = false
		l.ch = make(chan struct{})
	}
}

func (l *latch) IsSet() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.isSet
}

// wait reads the current wait channel under l.mu, so it is race-free
// against a concurrent Clear, then blocks outside the lock until the latch
// is set or timeout elapses (timeout <= 0 polls once without blocking).
// It returns whether the latch was set.
func (l *latch) wait(timeout time.Duration) bool {
	l.mu.Lock()
	ch := l.ch
	isSet := l.isSet
	l.mu.Unlock()
	if isSet {
		return true
	}
	if timeout <= 0 {
		select {
		case <-ch:
			return true
		default:
			return false
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ch:
		return true
	case <-timer.C:
		return false
	}
}

// Controller is the single-writer broadcast primitive: one control thread
// calls Pause/Resume/Shutdown; any number of worker goroutines call the
// read-only predicates and WaitForResume.
type Controller struct {
	resumeLatch   *latch
	shutdownLatch *latch
}

// NewController constructs a Controller that starts active and resumed, per
// spec §4.3 ("created active+resumed").
func NewController() *Controller {
	return &Controller{
		resumeLatch:   newLatch(true),
		shutdownLatch: newLatch(false),
	}
}

// Pause clears the resume latch. Forbidden once shutdown has been requested.
func (c *Controller) Pause() error {
	if c.shutdownLatch.IsSet() {
		return apperr.State("controller: cannot pause after shutdown")
	}
	c.resumeLatch.Clear()
	return nil
}

// Resume sets the resume latch. Forbidden once shutdown has been requested.
func (c *Controller) Resume() error {
	if c.shutdownLatch.IsSet() {
		return apperr.State("controller: cannot resume after shutdown")
	}
	c.resumeLatch.Set()
	return nil
}

// Shutdown sets the shutdown latch, idempotently. It sets the resume latch
// first, so any worker blocked in WaitForResume wakes promptly instead of
// waiting out its timeout before observing shutdown.
func (c *Controller) Shutdown() {
	c.resumeLatch.Set()
	c.shutdownLatch.Set()
}

// WaitForResume blocks until resumed or shut down, up to timeout (<=0 means
// "poll once, don't block"), returning whether it became true in time.
func (c *Controller) WaitForResume(timeout time.Duration) bool {
	return c.resumeLatch.wait(timeout)
}

// IsResume reports whether the controller currently reports "resumed".
func (c *Controller) IsResume() bool { return c.resumeLatch.IsSet() }

// IsPause reports whether the controller currently reports "paused".
func (c *Controller) IsPause() bool { return !c.resumeLatch.IsSet() }

// IsShutdown reports whether shutdown has been requested.
func (c *Controller) IsShutdown() bool { return c.shutdownLatch.IsSet() }

// IsActive reports whether the system should keep running: not shut down.
func (c *Controller) IsActive() bool { return !c.IsShutdown() }

// ReadOnly returns a view exposing only the predicates and WaitForResume, so
// workers cannot mutate controller state.
func (c *Controller) ReadOnly() *ReadOnlyController {
	return &ReadOnlyController{c: c}
}

// ReadOnlyController is the read-only view of a Controller handed to workers.
type ReadOnlyController struct {
	c *Controller
}

func (r *ReadOnlyController) IsResume() bool                        { return r.c.IsResume() }
func (r *ReadOnlyController) IsPause() bool                         { return r.c.IsPause() }
func (r *ReadOnlyController) IsShutdown() bool                      { return r.c.IsShutdown() }
func (r *ReadOnlyController) IsActive() bool                        { return r.c.IsActive() }
func (r *ReadOnlyController) WaitForResume(timeout time.Duration) bool { return r.c.WaitForResume(timeout) }
