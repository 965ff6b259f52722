package sample_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/agentloop/agentloop/data"
	"github.com/agentloop/agentloop/grid_world"
	"github.com/agentloop/agentloop/internal/sample"
)

type fakeClock struct{ t float64 }

func (c *fakeClock) Time() float64 { return c.t }

func TestBuildWiresARunnableSystem(t *testing.T) {
	Convey("Given Build over the debug track", t, func() {
		clk := &fakeClock{}
		buf, err := data.NewSequentialBuffer[sample.Transition](64)
		So(err, ShouldBeNil)
		sys, err := sample.Build(clk, grid_world.DebugTrack, buf, 0.2, 0.1, 0.9, 1)
		So(err, ShouldBeNil)

		Convey("the system's pieces are non-nil and wired to the same model pair", func() {
			So(sys.Loop, ShouldNotBeNil)
			So(sys.Trainer, ShouldNotBeNil)
			So(sys.Model, ShouldNotBeNil)
			So(sys.DataUsersDict, ShouldNotBeNil)
		})

		Convey("the loop can run a full setup/step/teardown cycle without panicking", func() {
			sys.Trainer.OnTrainingModelsAttached()
			sys.Trainer.OnDataUsersAttached()

			So(func() {
				sys.Loop.Setup()
				for i := 0; i < 25; i++ {
					sys.Loop.Step()
				}
				sys.Loop.Teardown()
			}, ShouldNotPanic)
		})

		Convey("after enough steps to complete an episode, the trainer becomes trainable and Train doesn't panic", func() {
			sys.Trainer.OnTrainingModelsAttached()
			sys.Trainer.OnDataUsersAttached()
			sys.Loop.Setup()
			for i := 0; i < 200 && !sys.Trainer.IsTrainable(); i++ {
				sys.Loop.Step()
			}
			sys.DataUsersDict.UpdateAll()

			So(sys.Trainer.IsTrainable(), ShouldBeTrue)
			So(func() { sys.Trainer.Train() }, ShouldNotPanic)
			sys.Loop.Teardown()
		})
	})
}
