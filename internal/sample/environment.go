package sample

import (
	"math/rand"

	"github.com/agentloop/agentloop/grid_world"
	"github.com/agentloop/agentloop/persistence"
)

// Environment is the racetrack simulator: it owns the live current state
// and the kinematics, adapted from the teacher's getSuccessor/
// getRandomStartState into a stateful step function instead of a whole
// episode generator.
type Environment struct {
	persistence.NopPersistable

	grid    [][][][]grid_world.State
	rng     *rand.Rand
	current *grid_world.State
}

// NewEnvironment builds a track layout (e.g. grid_world.DebugTrack or
// grid_world.FullTrack) into a state grid and seeds its own RNG.
func NewEnvironment(track []string, seed int64) *Environment {
	return &Environment{
		grid: grid_world.Convert(track),
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Setup places the car at a random start/track position.
func (e *Environment) Setup() {
	e.current = randomStartState(e.grid, e.rng)
}

// Observe returns a value copy of the current state (value estimates live
// in a ValueTable, not on the environment's grid).
func (e *Environment) Observe() grid_world.State {
	return *e.current
}

// Affect applies action's kinematics if the car is mid-track, or resets to
// a fresh start if it just reached a terminal (wall or finish) state —
// the episode boundary is invisible to the agent's Step/Observe cadence
// except as a single no-op action it already knows to ignore.
func (e *Environment) Affect(action *grid_world.Action) {
	if isTerminal(e.current) {
		e.current = randomStartState(e.grid, e.rng)
		return
	}
	e.current = successor(e.grid, e.current, action)
}

func (e *Environment) Teardown() {}

func (e *Environment) OnPaused()  {}
func (e *Environment) OnResumed() {}

// Width and Height expose the track's extent, for building ValueTables of
// matching shape.
func (e *Environment) Width() int  { return len(e.grid) }
func (e *Environment) Height() int { return len(e.grid[0]) }
