package clock

import (
	"encoding/gob"
	"os"

	"github.com/agentloop/agentloop/internal/apperr"
)

var errScaleNotPositive = apperr.Configuration("time scale must be > 0")

// SaveState writes the clock's state dict to path (a file, not a directory,
// matching the "time" leaf entry of the persisted-state layout in spec §6).
func (c *Clock) SaveState(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return apperr.State("clock: creating state file %q: %v", path, err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(c.StateDict()); err != nil {
		return apperr.State("clock: encoding state to %q: %v", path, err)
	}
	return nil
}

// LoadState reads a state dict previously written by SaveState and restores
// it into the clock.
func (c *Clock) LoadState(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return apperr.NotFound("clock: state file %q does not exist", path)
		}
		return apperr.State("clock: opening state file %q: %v", path, err)
	}
	defer f.Close()
	var s State
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return apperr.State("clock: decoding state from %q: %v", path, err)
	}
	return c.LoadStateDict(s)
}
