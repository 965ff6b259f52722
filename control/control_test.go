package control_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/agentloop/agentloop/control"
	"github.com/agentloop/agentloop/internal/agentlog"
	"github.com/agentloop/agentloop/persistence"
	"github.com/agentloop/agentloop/threadcontrol"
)

type fakeClock struct {
	t      float64
	paused bool
}

func (c *fakeClock) Time() float64 { return c.t }
func (c *fakeClock) Pause()        { c.paused = true }
func (c *fakeClock) Resume()       { c.paused = false }

func newTestThread(t *testing.T, clk *fakeClock) *control.Thread {
	t.Helper()
	store, err := persistence.NewStateStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	log := agentlog.New(nil)
	return control.New(clk, store, log, control.Options{
		PauseTimeout:     time.Second,
		MaxPauseAttempts: 2,
		HTTPAddr:         "localhost:0",
	})
}

func TestTryPauseAndResumeWithNoWorkers(t *testing.T) {
	Convey("Given a control thread with no statuses monitor attached", t, func() {
		clk := &fakeClock{}
		th := newTestThread(t, clk)

		Convey("TryPause succeeds immediately (an empty monitor reports all-paused)", func() {
			So(th.TryPause(), ShouldBeTrue)
			So(th.Controller().IsPause(), ShouldBeTrue)
			So(clk.paused, ShouldBeTrue)
		})

		Convey("a second TryPause is a no-op success, since the controller already reports paused", func() {
			So(th.TryPause(), ShouldBeTrue)
			So(th.TryPause(), ShouldBeTrue)
		})

		Convey("Resume un-pauses both the controller and the clock", func() {
			th.TryPause()
			th.Resume()
			So(th.Controller().IsPause(), ShouldBeFalse)
			So(clk.paused, ShouldBeFalse)
		})
	})
}

func TestTryPauseFailsWhenAWorkerNeverPauses(t *testing.T) {
	Convey("Given a statuses monitor over one worker that never reports paused", t, func() {
		clk := &fakeClock{}
		th := newTestThread(t, clk)

		stuck := threadcontrol.NewStatus() // never SetPaused
		th.AttachStatusesMonitor(threadcontrol.NewStatusesMonitor(map[threadcontrol.ThreadType]*threadcontrol.ReadOnlyStatus{
			threadcontrol.ThreadInference: stuck.ReadOnly(),
		}))

		Convey("TryPause exhausts its retries and returns false, leaving the controller resumed", func() {
			So(th.TryPause(), ShouldBeFalse)
			So(th.Controller().IsPause(), ShouldBeFalse)
		})
	})
}

func TestTryPauseSucceedsOnceTheWorkerReportsPaused(t *testing.T) {
	Convey("Given a statuses monitor over one worker that is already paused", t, func() {
		clk := &fakeClock{}
		th := newTestThread(t, clk)

		status := threadcontrol.NewStatus()
		status.SetPaused()
		th.AttachStatusesMonitor(threadcontrol.NewStatusesMonitor(map[threadcontrol.ThreadType]*threadcontrol.ReadOnlyStatus{
			threadcontrol.ThreadInference: status.ReadOnly(),
		}))

		Convey("TryPause succeeds", func() {
			So(th.TryPause(), ShouldBeTrue)
		})
	})
}

func TestShutdownIsIdempotentAndStopsTheController(t *testing.T) {
	Convey("Given a control thread", t, func() {
		clk := &fakeClock{}
		th := newTestThread(t, clk)

		Convey("Shutdown sets the controller inactive, and calling it twice doesn't panic", func() {
			So(func() {
				th.Shutdown()
				th.Shutdown()
			}, ShouldNotPanic)
			So(th.Controller().IsActive(), ShouldBeFalse)
		})
	})
}

func TestSaveStateRoundTripsPauseState(t *testing.T) {
	Convey("Given a control thread that starts resumed", t, func() {
		clk := &fakeClock{}
		th := newTestThread(t, clk)

		Convey("SaveState pauses to take the checkpoint, then resumes since it wasn't paused before", func() {
			_, err := th.SaveState()
			So(err, ShouldBeNil)
			So(th.Controller().IsPause(), ShouldBeFalse)
		})
	})

	Convey("Given a control thread that is already paused", t, func() {
		clk := &fakeClock{}
		th := newTestThread(t, clk)
		th.TryPause()

		Convey("SaveState leaves it paused afterward", func() {
			_, err := th.SaveState()
			So(err, ShouldBeNil)
			So(th.Controller().IsPause(), ShouldBeTrue)
		})
	})
}
