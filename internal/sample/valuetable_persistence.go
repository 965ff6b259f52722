package sample

import (
	"encoding/gob"
	"os"

	"github.com/agentloop/agentloop/grid_world"
	"github.com/agentloop/agentloop/internal/apperr"
)

// SaveState flattens every cell's current value to a single file at path,
// the same single-file gob layout the data package's buffers use.
func (vt *ValueTable) SaveState(path string) error {
	flat := make([]float64, 0, vt.width*vt.height*grid_world.NUM_VELOCITIES*grid_world.NUM_VELOCITIES)
	for x := range vt.cells {
		for y := range vt.cells[x] {
			for vxi := range vt.cells[x][y] {
				for vyi := range vt.cells[x][y][vxi] {
					flat = append(flat, vt.cells[x][y][vxi][vyi].AtomicRead())
				}
			}
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return apperr.State("value table: creating state file %q: %v", path, err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(flat); err != nil {
		return apperr.State("value table: encoding state to %q: %v", path, err)
	}
	return nil
}

// LoadState restores values previously written by SaveState, in the same
// row-major (x, y, vx, vy) order they were flattened.
func (vt *ValueTable) LoadState(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return apperr.NotFound("value table: state file %q does not exist", path)
		}
		return apperr.State("value table: opening state file %q: %v", path, err)
	}
	defer f.Close()

	var flat []float64
	if err := gob.NewDecoder(f).Decode(&flat); err != nil {
		return apperr.State("value table: decoding state from %q: %v", path, err)
	}

	i := 0
	for x := range vt.cells {
		for y := range vt.cells[x] {
			for vxi := range vt.cells[x][y] {
				for vyi := range vt.cells[x][y][vxi] {
					if i >= len(flat) {
						return apperr.State("value table: state file %q has fewer cells than this table", path)
					}
					vt.cells[x][y][vxi][vyi].AtomicSet(flat[i])
					i++
				}
			}
		}
	}
	return nil
}
