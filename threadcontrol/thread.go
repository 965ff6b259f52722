package threadcontrol

import (
	"time"

	"github.com/agentloop/agentloop/internal/apperr"
)

// LoopDelay is the default per-tick sleep a worker takes between on_tick
// calls, small enough to avoid busy-looping while never meaningfully
// delaying work, per spec §4.5.
const LoopDelay = time.Microsecond

// Hooks is the lifecycle a worker's run loop drives: on_start once, on_tick
// repeatedly while active, on_end once the loop exits cleanly, and
// on_finally always, mirroring spec §4.5's
// "on_start(); while is_running(): on_tick(); sleep(LOOP_DELAY); on_end()".
type Hooks interface {
	OnStart() error
	OnTick() error
	OnEnd() error
	OnFinally()
}

// PauseAwareHooks is implemented by workers that need to react to the
// controller's pause/resume broadcast, e.g. to propagate it to an
// interaction's agent and environment.
type PauseAwareHooks interface {
	OnPaused()
	OnResumed()
}

// BackgroundThread is the non-control worker base of spec §4.5: it owns its
// own ThreadStatus, an attached CommandHandler over a read-only controller
// view, and enforces that THREAD_TYPE is never CONTROL.
type BackgroundThread struct {
	threadType ThreadType
	status     *Status
	handler    *CommandHandler
	controller *ReadOnlyController
	loopDelay  time.Duration
}

// NewBackgroundThread constructs a background worker of the given type,
// rejecting ThreadControl at construction per spec §4.5.
func NewBackgroundThread(threadType ThreadType, controller *ReadOnlyController) (*BackgroundThread, error) {
	if threadType == ThreadControl {
		return nil, apperr.Configuration("background thread: THREAD_TYPE must not be CONTROL")
	}
	return &BackgroundThread{
		threadType: threadType,
		status:     NewStatus(),
		handler:    NewCommandHandler(controller),
		controller: controller,
		loopDelay:  LoopDelay,
	}, nil
}

// ThreadType returns the worker's declared type.
func (bt *BackgroundThread) ThreadType() ThreadType { return bt.threadType }

// Status returns the owning worker's status, for registering with a
// StatusesMonitor.
func (bt *BackgroundThread) Status() *Status { return bt.status }

// Run drives hooks through the lifecycle of spec §4.5: on_start, then
// on_tick in a loop that blocks (and reports paused/resumed) while the
// controller is paused, until shutdown, then on_end; on_finally always
// runs, and a panic during on_start/on_tick/on_end is recovered, latched
// into the status's exception flag, and returned as an error, the way the
// original's "on_exception(); raise" propagates a caught exception after
// marking the status.
func (bt *BackgroundThread) Run(hooks Hooks) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperr.Invariant("background thread %s: panic: %v", bt.threadType, r)
		}
		if err != nil {
			bt.status.SetException()
		}
		hooks.OnFinally()
	}()

	if err = hooks.OnStart(); err != nil {
		return err
	}

	pauseAware, _ := hooks.(PauseAwareHooks)

	for bt.controller.IsActive() {
		if bt.controller.IsPause() {
			bt.status.SetPaused()
			if pauseAware != nil {
				pauseAware.OnPaused()
			}
			bt.handler.StopIfPause()
			bt.status.ClearPaused()
			if pauseAware != nil {
				pauseAware.OnResumed()
			}
			if !bt.controller.IsActive() {
				break
			}
		}

		if err = hooks.OnTick(); err != nil {
			return err
		}
		time.Sleep(bt.loopDelay)
	}

	err = hooks.OnEnd()
	return err
}
