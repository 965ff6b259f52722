// Package sample is the concrete, runnable demonstration wired in
// cmd/agentloopd: a racetrack agent learning state values by alpha-MC,
// adapted from the teacher's single-process training loop into the
// framework's Agent/Environment/Trainer/model-pair abstractions.
package sample

import (
	"github.com/agentloop/agentloop/atomic_float"
	"github.com/agentloop/agentloop/grid_world"
)

// Coord identifies one cell of the tabular value function by grid position
// and velocity-index pair, decoupled from any one grid_world.State
// instance's identity so it survives a model-pair swap: a coordinate is
// valid against whichever ValueTable instance currently backs training or
// inference, rather than pinned to the pointer it was read from.
type Coord struct {
	X, Y, VXI, VYI int
}

// coordOf derives a Coord from a live grid_world.State pointer's position
// and velocity, offsetting velocity into a zero-based index the way
// grid_world.Convert lays out its own grid.
func coordOf(s *grid_world.State) Coord {
	return Coord{X: s.X, Y: s.Y, VXI: s.VX - grid_world.MIN_VELOCITY, VYI: s.VY - grid_world.MIN_VELOCITY}
}

// ValueTable is the tabular value function for one racetrack layout: one
// atomic cell per (x, y, vx, vy) state. Two independent instances of the
// same width/height back the training and inference sides of a
// model.TrainingModel[*ValueTable], reconciled by CopyParamsFrom during
// Sync.
type ValueTable struct {
	width, height int
	cells         [][][][]*atomic_float.AtomicFloat64
}

// NewValueTable allocates a width x height x NUM_VELOCITIES x NUM_VELOCITIES
// table, every cell initialized to initial.
func NewValueTable(width, height int, initial float64) *ValueTable {
	vt := &ValueTable{width: width, height: height}
	vt.cells = make([][][][]*atomic_float.AtomicFloat64, width)
	for x := 0; x < width; x++ {
		vt.cells[x] = make([][][]*atomic_float.AtomicFloat64, height)
		for y := 0; y < height; y++ {
			vt.cells[x][y] = make([][]*atomic_float.AtomicFloat64, grid_world.NUM_VELOCITIES)
			for vxi := 0; vxi < grid_world.NUM_VELOCITIES; vxi++ {
				vt.cells[x][y][vxi] = make([]*atomic_float.AtomicFloat64, grid_world.NUM_VELOCITIES)
				for vyi := 0; vyi < grid_world.NUM_VELOCITIES; vyi++ {
					vt.cells[x][y][vxi][vyi] = atomic_float.NewAtomicFloat64(initial)
				}
			}
		}
	}
	return vt
}

// Get reads the value at c.
func (vt *ValueTable) Get(c Coord) float64 { return vt.cells[c.X][c.Y][c.VXI][c.VYI].AtomicRead() }

// Set overwrites the value at c.
func (vt *ValueTable) Set(c Coord, v float64) { vt.cells[c.X][c.Y][c.VXI][c.VYI].AtomicSet(v) }

// Add adds delta to the value at c. ok is false, and the cell is left
// unchanged, if another write changed the cell between the read and the
// compare-and-swap; Add itself does not retry.
func (vt *ValueTable) Add(c Coord, delta float64) (newVal float64, ok bool) {
	return vt.cells[c.X][c.Y][c.VXI][c.VYI].AtomicAdd(delta)
}

// Eval and Train are no-ops: a tabular value function has no distinct
// inference/training mode, but model.Syncable requires both.
func (vt *ValueTable) Eval()  {}
func (vt *ValueTable) Train() {}

// DetachGrads and ReattachGrads are no-ops: there is nothing resembling a
// gradient tape in a tabular method, only the published estimates
// themselves, which CopyParamsFrom handles.
func (vt *ValueTable) DetachGrads() any  { return nil }
func (vt *ValueTable) ReattachGrads(any) {}

// CopyParamsFrom overwrites every cell with src's corresponding cell.
func (vt *ValueTable) CopyParamsFrom(src *ValueTable) {
	for x := range vt.cells {
		for y := range vt.cells[x] {
			for vxi := range vt.cells[x][y] {
				for vyi := range vt.cells[x][y][vxi] {
					vt.cells[x][y][vxi][vyi].AtomicSet(src.cells[x][y][vxi][vyi].AtomicRead())
				}
			}
		}
	}
}
