// Package agentlog wires the module's structured logging onto logiface, using
// the stumpy JSON backend as the concrete writer. It replaces the teacher's
// bare fmt/log calls with one shared logger that every thread derives a
// named child from, mirroring how the original Python implementation attaches
// a logging.getLogger(module_path) per class.
package agentlog

import (
	"io"
	"os"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the event type produced for every log line in this module.
type Logger = logiface.Logger[*stumpy.Event]

// New builds the root logger, writing newline-delimited JSON to w (os.Stderr
// if w is nil).
func New(w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return stumpy.L.New(
		stumpy.L.WithStumpy(
			stumpy.WithWriter(w),
		),
	)
}

// Named returns a derived logger that stamps every record with a "component"
// field, the way a per-class Python logger carries its own name.
func Named(l *Logger, component string) *Logger {
	return l.Clone().Str("component", component).Logger()
}
