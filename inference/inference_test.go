package inference_test

import (
	"bytes"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/agentloop/agentloop/inference"
	"github.com/agentloop/agentloop/internal/agentlog"
	"github.com/agentloop/agentloop/threadcontrol"
)

type countingStepper struct {
	setupCalls    int
	stepCalls     int
	teardownCalls int
	pausedCalls   int
	resumedCalls  int
}

func (s *countingStepper) Setup()    { s.setupCalls++ }
func (s *countingStepper) Step()     { s.stepCalls++ }
func (s *countingStepper) Teardown() { s.teardownCalls++ }
func (s *countingStepper) OnPaused() { s.pausedCalls++ }
func (s *countingStepper) OnResumed() { s.resumedCalls++ }

type fakeAdjustor struct{ calls int }

func (a *fakeAdjustor) Adjust() float64 { a.calls++; return 0 }

// fakeStatsClock advances its PerfCounter by a fixed step on every read, so a
// statsWindow fed from it sees a deterministic, non-empty spread of samples.
type fakeStatsClock struct{ t float64 }

func (c *fakeStatsClock) PerfCounter() float64 {
	c.t += 0.001
	return c.t
}

func TestInferenceThreadLifecycle(t *testing.T) {
	Convey("Given an inference thread over a counting stepper", t, func() {
		controller := threadcontrol.NewController()
		stepper := &countingStepper{}
		log := agentlog.New(nil)

		th, err := inference.New(controller.ReadOnly(), stepper, log)
		So(err, ShouldBeNil)

		done := make(chan error, 1)
		go func() { done <- th.Run() }()

		deadline := time.Now().Add(2 * time.Second)
		for stepper.stepCalls < 3 && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
		controller.Shutdown()

		select {
		case err := <-done:
			So(err, ShouldBeNil)
		case <-time.After(2 * time.Second):
			t.Fatal("inference thread did not stop")
		}

		Convey("Setup ran once, Step ran repeatedly, Teardown ran once", func() {
			So(stepper.setupCalls, ShouldEqual, 1)
			So(stepper.stepCalls, ShouldBeGreaterThanOrEqualTo, 3)
			So(stepper.teardownCalls, ShouldEqual, 1)
		})
	})
}

func TestInferenceThreadUsesIntervalAdjustor(t *testing.T) {
	Convey("Given an inference thread configured with an Adjustor", t, func() {
		controller := threadcontrol.NewController()
		stepper := &countingStepper{}
		adjustor := &fakeAdjustor{}
		log := agentlog.New(nil)

		th, err := inference.New(controller.ReadOnly(), stepper, log, inference.WithIntervalAdjustor(adjustor))
		So(err, ShouldBeNil)

		done := make(chan error, 1)
		go func() { done <- th.Run() }()

		deadline := time.Now().Add(2 * time.Second)
		for adjustor.calls < 3 && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
		controller.Shutdown()
		<-done

		Convey("Adjust is called once per Step", func() {
			So(adjustor.calls, ShouldEqual, stepper.stepCalls)
		})
	})
}

func TestInferenceThreadLogsTickStatistics(t *testing.T) {
	Convey("Given an inference thread configured with WithTickStatistics logging every 3 ticks", t, func() {
		controller := threadcontrol.NewController()
		stepper := &countingStepper{}
		clk := &fakeStatsClock{}
		var out bytes.Buffer
		log := agentlog.New(&out)

		th, err := inference.New(controller.ReadOnly(), stepper, log, inference.WithTickStatistics(clk, 16, 3))
		So(err, ShouldBeNil)

		done := make(chan error, 1)
		go func() { done <- th.Run() }()

		deadline := time.Now().Add(2 * time.Second)
		for stepper.stepCalls < 9 && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
		controller.Shutdown()
		<-done

		Convey("the rolling mean/stdev line was logged", func() {
			So(out.String(), ShouldContainSubstring, "inference tick statistics")
			So(out.String(), ShouldContainSubstring, "tick_mean_seconds")
		})
	})
}

func TestInferenceThreadPropagatesPause(t *testing.T) {
	Convey("Given a paused then resumed inference thread", t, func() {
		controller := threadcontrol.NewController()
		stepper := &countingStepper{}
		log := agentlog.New(nil)

		th, err := inference.New(controller.ReadOnly(), stepper, log)
		So(err, ShouldBeNil)

		done := make(chan error, 1)
		go func() { done <- th.Run() }()

		time.Sleep(10 * time.Millisecond)
		controller.Pause()
		time.Sleep(20 * time.Millisecond)
		controller.Resume()
		time.Sleep(10 * time.Millisecond)
		controller.Shutdown()
		<-done

		Convey("the stepper observed both the pause and the resume", func() {
			So(stepper.pausedCalls, ShouldBeGreaterThanOrEqualTo, 1)
			So(stepper.resumedCalls, ShouldBeGreaterThanOrEqualTo, 1)
		})
	})
}
