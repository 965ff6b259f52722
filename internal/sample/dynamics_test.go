package sample

import (
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/agentloop/agentloop/grid_world"
)

func TestCoordOfOffsetsVelocityToZeroBased(t *testing.T) {
	Convey("Given a state at minimum velocity", t, func() {
		s := &grid_world.State{X: 3, Y: 4, VX: grid_world.MIN_VELOCITY, VY: grid_world.MIN_VELOCITY}

		Convey("its Coord has VXI/VYI at zero", func() {
			So(coordOf(s), ShouldResemble, Coord{X: 3, Y: 4, VXI: 0, VYI: 0})
		})
	})
}

func TestRewardAndIsTerminal(t *testing.T) {
	Convey("reward and isTerminal follow the cell type's meaning", t, func() {
		wall := &grid_world.State{CellType: grid_world.WALL}
		finish := &grid_world.State{CellType: grid_world.FINISH}
		track := &grid_world.State{CellType: grid_world.TRACK}
		start := &grid_world.State{CellType: grid_world.START}

		So(reward(wall), ShouldEqual, grid_world.COLLISION_REWARD)
		So(reward(finish), ShouldEqual, grid_world.FINISH_REWARD)
		So(reward(track), ShouldEqual, grid_world.STEP_REWARD)
		So(reward(start), ShouldEqual, grid_world.STEP_REWARD)

		So(isTerminal(wall), ShouldBeTrue)
		So(isTerminal(finish), ShouldBeTrue)
		So(isTerminal(track), ShouldBeFalse)
		So(isTerminal(start), ShouldBeFalse)
	})
}

func TestRandomActionExcludesBothZeroVelocity(t *testing.T) {
	Convey("Given a state already at zero velocity", t, func() {
		rng := rand.New(rand.NewSource(1))
		cur := &grid_world.State{X: 1, Y: 1, VX: 0, VY: 0}

		Convey("randomAction never returns the (0,0)-resulting action", func() {
			for i := 0; i < 200; i++ {
				a := randomAction(cur, rng)
				So(cur.VX+a.Dvx == 0 && cur.VY+a.Dvy == 0, ShouldBeFalse)
			}
		})
	})
}

func TestRandomStartStateIsOnTrack(t *testing.T) {
	Convey("Given the debug track converted to a grid", t, func() {
		grid := grid_world.Convert(grid_world.DebugTrack)
		rng := rand.New(rand.NewSource(2))

		Convey("randomStartState always lands on a TRACK or START cell", func() {
			for i := 0; i < 50; i++ {
				s := randomStartState(grid, rng)
				So(s.CellType == grid_world.TRACK || s.CellType == grid_world.START, ShouldBeTrue)
			}
		})

		Convey("a START cell always starts at zero velocity", func() {
			for i := 0; i < 50; i++ {
				s := randomStartState(grid, rng)
				if s.CellType == grid_world.START {
					So(s.VX, ShouldEqual, 0)
					So(s.VY, ShouldEqual, 0)
				}
			}
		})
	})
}

func TestGreedySuccessorPrefersHigherValuedState(t *testing.T) {
	Convey("Given a grid and a value table favoring one reachable successor", t, func() {
		grid := grid_world.Convert(grid_world.DebugTrack)
		width, height := len(grid), len(grid[0])
		values := NewValueTable(width, height, 0)

		cur := &grid_world.State{X: 2, Y: 2, VX: 0, VY: 0}

		// Raise the value of the successor reached by Dvx=1,Dvy=0 far above
		// every other reachable successor's initial 0.
		target := successor(grid, cur, &grid_world.Action{Dvx: 1, Dvy: 0})
		values.Set(coordOf(target), 1000)

		Convey("greedySuccessor picks the action leading to that successor", func() {
			_, action := greedySuccessor(grid, values, cur)
			So(action.Dvx, ShouldEqual, 1)
			So(action.Dvy, ShouldEqual, 0)
		})
	})
}

func TestApplyEpisodeBackwardPass(t *testing.T) {
	Convey("Given a two-step episode ending in a terminal transition", t, func() {
		values := NewValueTable(4, 4, 0)
		s0 := Coord{X: 0, Y: 0, VXI: 4, VYI: 4}
		s1 := Coord{X: 1, Y: 0, VXI: 4, VYI: 4}
		terminal := Coord{X: 2, Y: 0, VXI: 4, VYI: 4}

		episode := []Transition{
			{State: s0, Successor: s1, Reward: -1, Terminal: false},
			{State: s1, Successor: terminal, Reward: -5, Terminal: true},
		}

		Convey("the terminal successor is set directly to its own reward", func() {
			applyEpisode(values, episode, 1.0, 1.0)
			So(values.Get(terminal), ShouldEqual, -5)
		})

		Convey("earlier states move toward the accumulated discounted return", func() {
			applyEpisode(values, episode, 1.0, 1.0)
			// s1: rewardAcc = -5 (its own step reward), moved fully there (eta=1)
			So(values.Get(s1), ShouldEqual, -5)
			// s0: rewardAcc = -1 + 1.0*(-5) = -6
			So(values.Get(s0), ShouldEqual, -6)
		})

		Convey("a partial learning rate moves the value only partway", func() {
			applyEpisode(values, episode, 0.5, 1.0)
			// s1 starts at 0, target -5, eta 0.5 -> -2.5
			So(values.Get(s1), ShouldEqual, -2.5)
		})

		Convey("an empty episode is a no-op", func() {
			before := values.Get(s0)
			applyEpisode(values, nil, 1.0, 1.0)
			So(values.Get(s0), ShouldEqual, before)
		})
	})
}
