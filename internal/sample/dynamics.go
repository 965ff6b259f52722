package sample

import (
	"math"
	"math/rand"

	"github.com/agentloop/agentloop/grid_world"
)

// dynamics functions below are adapted from the teacher's racetrack
// kinematics (originally free functions closing over a single package-level
// states grid): each now takes the grid explicitly, so an environment
// instance and an agent's private copy can each hold their own. None of
// them store values: value estimates live only in a ValueTable, addressed
// by Coord.

// randomStartState picks a random START or TRACK position, per
// grid_world.START/TRACK cell types; a START cell forces zero velocity.
func randomStartState(grid [][][][]grid_world.State, rng *rand.Rand) *grid_world.State {
	maxX := len(grid)
	maxY := len(grid[0])

	start := &grid[rng.Intn(maxX)][rng.Intn(maxY)][0][0]
	for !(start.CellType == grid_world.TRACK || start.CellType == grid_world.START) {
		start = &grid[rng.Intn(maxX)][rng.Intn(maxY)][0][0]
	}

	if start.CellType == grid_world.START {
		zeroVelIndex := (grid_world.MAX_VELOCITY - grid_world.MIN_VELOCITY) / 2
		return &grid[start.X][start.Y][zeroVelIndex][zeroVelIndex]
	}

	rvx, rvy := 0, 0
	for rvx == 0 && rvy == 0 {
		rvx = rng.Intn(grid_world.NUM_VELOCITIES)
		rvy = rng.Intn(grid_world.NUM_VELOCITIES)
	}
	return &grid[start.X][start.Y][rvx][rvy]
}

// successor applies action's acceleration to cur, clamping velocity and
// position to the grid, then checks the straight-line path from cur to the
// resulting position for an intervening wall, returning the wall state
// instead if one is found.
func successor(grid [][][][]grid_world.State, cur *grid_world.State, action *grid_world.Action) *grid_world.State {
	newVX := int(math.Max(math.Min(float64(cur.VX+action.Dvx), grid_world.MAX_VELOCITY), grid_world.MIN_VELOCITY))
	newVY := int(math.Max(math.Min(float64(cur.VY+action.Dvy), grid_world.MAX_VELOCITY), grid_world.MIN_VELOCITY))

	maxX := float64(len(grid) - 1)
	maxY := float64(len(grid[0]) - 1)
	newX := int(math.Max(math.Min(float64(cur.X+newVX), maxX), 0))
	newY := int(math.Max(math.Min(float64(cur.Y+newVY), maxY), 0))

	next := &grid[newX][newY][newVX-grid_world.MIN_VELOCITY][newVY-grid_world.MIN_VELOCITY]
	if collision := terminalCollision(grid, cur, newVX, newVY); collision != nil {
		next = collision
	}
	return next
}

// terminalCollision walks the unit vector of <vx, vy> from start's position
// and returns the first wall state encountered, or nil if the path is
// clear. This is a line-of-sight approximation, not a rigorous sweep.
func terminalCollision(grid [][][][]grid_world.State, start *grid_world.State, vx, vy int) *grid_world.State {
	maxX := len(grid) - 1
	maxY := len(grid[0]) - 1

	norm := math.Sqrt(float64(vx*vx) + float64(vy*vy))
	if norm == 0 {
		return nil
	}
	nvx := float64(vx) / norm
	nvy := float64(vy) / norm
	numIter := int(math.Round(norm))
	xf := float64(start.X)
	yf := float64(start.Y)

	for i := 0; i < numIter; i++ {
		xf += nvx
		x := int(math.Round(xf))
		if x < 0 || x > maxX {
			return nil
		}
		yf += nvy
		y := int(math.Round(yf))
		if y < 0 || y > maxY {
			return nil
		}
		if traversed := &grid[x][y][0][0]; traversed.CellType == grid_world.WALL {
			return traversed
		}
	}
	return nil
}

func randomAccelComponent(rng *rand.Rand) int {
	return rng.Intn(grid_world.NUM_ACCELERATIONS) + grid_world.MIN_ACCELERATION
}

// randomAction returns a random acceleration, excluding the one combination
// disallowed by the problem definition: both resulting velocity components
// zero.
func randomAction(cur *grid_world.State, rng *rand.Rand) *grid_world.Action {
	action := &grid_world.Action{Dvx: randomAccelComponent(rng), Dvy: randomAccelComponent(rng)}
	for cur.VX+action.Dvx == 0 && cur.VY+action.Dvy == 0 {
		action.Dvx = randomAccelComponent(rng)
		action.Dvy = randomAccelComponent(rng)
	}
	return action
}

func reward(target *grid_world.State) float64 {
	switch target.CellType {
	case grid_world.WALL:
		return grid_world.COLLISION_REWARD
	case grid_world.START, grid_world.TRACK:
		return grid_world.STEP_REWARD
	case grid_world.FINISH:
		return grid_world.FINISH_REWARD
	default:
		return grid_world.STEP_REWARD
	}
}

func isTerminal(state *grid_world.State) bool {
	return state.CellType == grid_world.WALL || state.CellType == grid_world.FINISH
}

// greedySuccessor searches every valid acceleration from cur and returns
// the action leading to the highest-valued successor per values, the way
// the teacher's getMaxSuccessor does but reading values from a ValueTable
// by Coord instead of from the successor state's own embedded pointer.
func greedySuccessor(grid [][][][]grid_world.State, values *ValueTable, cur *grid_world.State) (*grid_world.State, *grid_world.Action) {
	var best *grid_world.State
	var bestAction *grid_world.Action
	bestVal := -math.MaxFloat64

	for dvx := grid_world.MIN_ACCELERATION; dvx <= grid_world.MAX_ACCELERATION; dvx++ {
		newVX := cur.VX + dvx
		if newVX > grid_world.MAX_VELOCITY || newVX < grid_world.MIN_VELOCITY {
			continue
		}
		for dvy := grid_world.MIN_ACCELERATION; dvy <= grid_world.MAX_ACCELERATION; dvy++ {
			newVY := cur.VY + dvy
			if newVY > grid_world.MAX_VELOCITY || newVY < grid_world.MIN_VELOCITY {
				continue
			}
			candidate := &grid_world.Action{Dvx: dvx, Dvy: dvy}
			next := successor(grid, cur, candidate)
			if next.VX == 0 && next.VY == 0 {
				continue
			}
			val := values.Get(coordOf(next))
			if val > bestVal {
				bestVal = val
				best = next
				bestAction = candidate
			}
		}
	}
	if bestAction == nil {
		// every candidate was excluded (degenerate corner); fall back to a
		// zero-change action so the caller always has something to apply.
		bestAction = &grid_world.Action{Dvx: 0, Dvy: 0}
		best = cur
	}
	return best, bestAction
}
