package threadcontrol

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// StatusesMonitor holds a map thread-type -> read-only status and answers
// "are they all paused" and "did any of them except", the way
// tabular/server/fastview/client.go's Sync uses errgroup.WithContext to wait
// on several concurrent operations and report the first failure.
type StatusesMonitor struct {
	statuses map[ThreadType]*ReadOnlyStatus
}

// NewStatusesMonitor constructs a monitor over the given statuses, attached
// once the control thread knows about every worker (spec §4.11:
// attach_thread_statuses is called after construction).
func NewStatusesMonitor(statuses map[ThreadType]*ReadOnlyStatus) *StatusesMonitor {
	return &StatusesMonitor{statuses: statuses}
}

// WaitForAllThreadsPause waits on every registered status in parallel with
// the same timeout, returning true only if all paused within it. An empty
// monitor returns true immediately.
func (m *StatusesMonitor) WaitForAllThreadsPause(timeout time.Duration) bool {
	if len(m.statuses) == 0 {
		return true
	}

	group, _ := errgroup.WithContext(context.Background())
	for _, status := range m.statuses {
		status := status
		group.Go(func() error {
			if !status.WaitForPause(timeout) {
				return errNotAllPaused
			}
			return nil
		})
	}
	return group.Wait() == nil
}

// AnyThreadPaused reports whether at least one registered status is paused,
// used by the system status derivation's RESUMING case.
func (m *StatusesMonitor) AnyThreadPaused() bool {
	for _, status := range m.statuses {
		if status.IsPause() {
			return true
		}
	}
	return false
}

// AllThreadsPaused reports whether every registered status is paused.
func (m *StatusesMonitor) AllThreadsPaused() bool {
	for _, status := range m.statuses {
		if !status.IsPause() {
			return false
		}
	}
	return true
}

// CheckExceptionRaised reports whether any status has its exception latch set.
func (m *StatusesMonitor) CheckExceptionRaised() bool {
	for _, status := range m.statuses {
		if status.IsExceptionRaised() {
			return true
		}
	}
	return false
}

var errNotAllPaused = errTimeout{}

type errTimeout struct{}

func (errTimeout) Error() string { return "thread did not pause within timeout" }
