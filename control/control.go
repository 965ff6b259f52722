// Package control implements the CONTROL thread of spec §4.11: it owns the
// thread controller, drives the save-state scheduler, drains remote HTTP
// commands, enforces maximum uptime, and orchestrates pause/resume/shutdown
// and checkpointing across every other worker.
package control

import (
	"time"

	"github.com/agentloop/agentloop/httpapi"
	"github.com/agentloop/agentloop/internal/agentlog"
	"github.com/agentloop/agentloop/internal/scheduler"
	"github.com/agentloop/agentloop/persistence"
	"github.com/agentloop/agentloop/threadcontrol"
)

// Clock is the minimal time source the control thread needs: virtual time
// for uptime accounting, plus pause/resume to freeze/unfreeze it in lockstep
// with the worker broadcast. Satisfied by *clock.Clock.
type Clock interface {
	Time() float64
	Pause()
	Resume()
}

// Options configures a Thread's timing and transport parameters.
type Options struct {
	// SaveStateInterval is how often to auto-checkpoint, in virtual seconds.
	// Zero disables the scheduler (spec.md's documented default is
	// infinite).
	SaveStateInterval time.Duration
	// MaxUptime shuts the system down gracefully once exceeded. Zero means
	// unbounded.
	MaxUptime time.Duration
	// PauseTimeout bounds each attempt of TryPause's wait for every worker
	// to report paused.
	PauseTimeout time.Duration
	// MaxPauseAttempts bounds how many times TryPause retries before giving
	// up and returning false.
	MaxPauseAttempts int
	// HTTPAddr is the control plane's bind address, e.g. "localhost:8391".
	HTTPAddr string
	// CommandQueueCapacity bounds the HTTP command queue (spec default 1).
	CommandQueueCapacity int
}

// Thread is the control thread: single writer of the Controller, owner of
// the statuses monitor, the state store, and the HTTP control plane.
type Thread struct {
	controller *threadcontrol.Controller
	monitor    *threadcontrol.StatusesMonitor
	clock      Clock
	store      *persistence.StateStore
	scheduler  *scheduler.Scheduler
	queue      *httpapi.CommandQueue
	server     *httpapi.Server
	log        *agentlog.Logger

	opts            Options
	systemStartTime float64
	running         bool
}

// New constructs a control Thread. The statuses monitor is attached
// separately via AttachStatusesMonitor once every worker's status is known,
// per spec §4.4's "attached once controller + statuses are both available".
func New(clock Clock, store *persistence.StateStore, log *agentlog.Logger, opts Options) *Thread {
	if opts.CommandQueueCapacity <= 0 {
		opts.CommandQueueCapacity = 1
	}
	if opts.MaxPauseAttempts <= 0 {
		opts.MaxPauseAttempts = 1
	}
	named := agentlog.Named(log, "control")
	t := &Thread{
		controller: threadcontrol.NewController(),
		clock:      clock,
		store:      store,
		scheduler:  scheduler.New(),
		queue:      httpapi.NewCommandQueue(opts.CommandQueueCapacity),
		log:        named,
		opts:       opts,
		running:    true,
	}
	return t
}

// Controller returns the writable controller, for the launcher to hand out
// read-only views to every other worker.
func (t *Thread) Controller() *threadcontrol.Controller { return t.controller }

// AttachStatusesMonitor wires the monitor once every worker's status is
// constructed, per spec §4.11.
func (t *Thread) AttachStatusesMonitor(monitor *threadcontrol.StatusesMonitor) {
	t.monitor = monitor
}

// Run drives the control thread's lifecycle to completion (blocking); call
// it on its own goroutine once every worker and the statuses monitor are
// attached.
func (t *Thread) Run() error {
	t.systemStartTime = t.clock.Time()

	status := httpapi.NewSystemStatusProvider(t.controller.ReadOnly(), t.monitor)
	handler := httpapi.NewHandler(status, t.queue, t.log)
	t.server = httpapi.NewServer(t.opts.HTTPAddr, handler, t.log)
	t.server.RunInBackground()
	t.log.Info().Str("addr", t.opts.HTTPAddr).Log("http control plane listening")

	if t.opts.SaveStateInterval > 0 {
		_ = t.scheduler.AddTimeInterval(t.clock, t.opts.SaveStateInterval.Seconds(), func() {
			if _, err := t.SaveState(); err != nil {
				t.log.Err().Err(err).Log("scheduled checkpoint failed")
			}
		})
	}

	for t.running && t.controller.IsActive() {
		t.tick()
		time.Sleep(threadcontrol.LoopDelay)
	}

	t.Shutdown()
	if err := t.server.Shutdown(5 * time.Second); err != nil {
		t.log.Err().Err(err).Log("http control plane did not shut down cleanly")
	}
	return nil
}

func (t *Thread) tick() {
	t.scheduler.Tick()

	for {
		cmd, ok := t.queue.TryGet()
		if !ok {
			break
		}
		switch cmd {
		case httpapi.CommandPause:
			if !t.TryPause() {
				t.log.Err().Log("pause command failed: not all workers reported paused in time")
			}
		case httpapi.CommandResume:
			t.Resume()
		case httpapi.CommandSaveCheckpoint:
			if _, err := t.SaveState(); err != nil {
				t.log.Err().Err(err).Log("checkpoint command failed")
			}
		case httpapi.CommandShutdown:
			t.Shutdown()
			return
		}
	}

	if t.monitor != nil && t.monitor.CheckExceptionRaised() {
		t.log.Err().Log("a worker thread raised an exception; shutting down")
		t.Shutdown()
		return
	}

	if t.opts.MaxUptime > 0 && t.clock.Time()-t.systemStartTime > t.opts.MaxUptime.Seconds() {
		t.log.Info().Log("max uptime exceeded; shutting down")
		t.Shutdown()
	}
}

// TryPause attempts to bring every worker to a paused state, retrying up to
// MaxPauseAttempts times, per spec §4.11. Returns true if already paused or
// if an attempt succeeded; false if every attempt timed out (non-fatal).
func (t *Thread) TryPause() bool {
	if t.controller.IsPause() {
		return true
	}
	for attempt := 0; attempt < t.opts.MaxPauseAttempts; attempt++ {
		if err := t.controller.Pause(); err != nil {
			return false
		}
		if t.monitor == nil || t.monitor.WaitForAllThreadsPause(t.opts.PauseTimeout) {
			t.clock.Pause()
			return true
		}
		t.log.Err().Log("not all workers paused within timeout, retrying")
		_ = t.controller.Resume()
	}
	return false
}

// Resume resumes the clock, then the controller, per spec §4.11.
func (t *Thread) Resume() {
	t.clock.Resume()
	_ = t.controller.Resume()
}

// Shutdown sets the controller's shutdown latch and stops the run loop.
// Idempotent.
func (t *Thread) Shutdown() {
	t.controller.Shutdown()
	t.running = false
}

// SaveState pauses the system if it isn't already paused, writes a
// checkpoint via the state store, then resumes if it wasn't already paused
// beforehand, per spec §4.11. Aborts (without crashing) if pausing fails.
func (t *Thread) SaveState() (string, error) {
	wasAlreadyPaused := t.controller.IsPause()
	if !t.TryPause() {
		return "", errSaveAborted
	}
	path, err := t.store.SaveState()
	if !wasAlreadyPaused {
		t.Resume()
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

var errSaveAborted = saveAbortedError{}

type saveAbortedError struct{}

func (saveAbortedError) Error() string {
	return "control: save-state aborted, could not pause all workers in time"
}
