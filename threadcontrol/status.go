package threadcontrol

import "time"

// ThreadType is the closed set of worker kinds, matching spec §4.5.
type ThreadType int

const (
	ThreadControl ThreadType = iota
	ThreadInference
	ThreadTraining
)

func (t ThreadType) String() string {
	switch t {
	case ThreadControl:
		return "CONTROL"
	case ThreadInference:
		return "INFERENCE"
	case ThreadTraining:
		return "TRAINING"
	default:
		return "UNKNOWN"
	}
}

// Status holds one worker's paused/exception latches. Only the owning
// worker writes; anyone may read or wait.
type Status struct {
	paused    *latch
	exception *latch
}

// NewStatus constructs a Status, initially not paused and not excepting.
func NewStatus() *Status {
	return &Status{
		paused:    newLatch(false),
		exception: newLatch(false),
	}
}

// SetPaused latches the paused flag (called by the owning worker's
// on_paused hook).
func (s *Status) SetPaused() { s.paused.Set() }

// ClearPaused clears the paused flag (on_resumed).
func (s *Status) ClearPaused() { s.paused.Clear() }

// SetException latches the exception flag permanently; once set it is never
// cleared, matching the fatal, one-shot nature of spec §7's InvariantError.
func (s *Status) SetException() { s.exception.Set() }

// ReadOnly returns the read-only view handed to the monitor and to HTTP
// status reporting.
func (s *Status) ReadOnly() *ReadOnlyStatus { return &ReadOnlyStatus{s: s} }

// ReadOnlyStatus exposes only the predicates and WaitForPause.
type ReadOnlyStatus struct {
	s *Status
}

func (r *ReadOnlyStatus) IsPause() bool            { return r.s.paused.IsSet() }
func (r *ReadOnlyStatus) IsResume() bool           { return !r.s.paused.IsSet() }
func (r *ReadOnlyStatus) IsExceptionRaised() bool  { return r.s.exception.IsSet() }
func (r *ReadOnlyStatus) WaitForPause(timeout time.Duration) bool {
	return r.s.paused.wait(timeout)
}
