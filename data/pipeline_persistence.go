package data

import (
	"encoding/gob"
	"os"
	"path/filepath"

	"github.com/agentloop/agentloop/internal/apperr"
)

// persistableBuffer is implemented by SequentialBuffer and
// RandomReplacementBuffer; a buffer that doesn't implement it (a test
// double, say) is simply skipped on save/load.
type persistableBuffer interface {
	SaveState(path string) error
	LoadState(path string) error
}

// SaveState persists the user's buffer contents and aligned timestamps
// under path, a directory minted by the state store, matching spec §6's
// data_users/<name>/ checkpoint subtree: buffer.gob holds the buffer's own
// encoding, timestamps.gob holds the aligned timestamp slice.
func (u *DataUser[T]) SaveState(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return apperr.State("data user: creating state dir %q: %v", path, err)
	}
	if pb, ok := u.buffer.(persistableBuffer); ok {
		if err := pb.SaveState(filepath.Join(path, "buffer.gob")); err != nil {
			return err
		}
	}
	return saveTimestamps(filepath.Join(path, "timestamps.gob"), u.timestamps)
}

// LoadState restores the user's buffer contents and aligned timestamps from
// a directory previously written by SaveState.
func (u *DataUser[T]) LoadState(path string) error {
	if pb, ok := u.buffer.(persistableBuffer); ok {
		if err := pb.LoadState(filepath.Join(path, "buffer.gob")); err != nil {
			return err
		}
	}
	timestamps, err := loadTimestamps(filepath.Join(path, "timestamps.gob"))
	if err != nil {
		return err
	}
	u.timestamps = timestamps
	return nil
}

func saveTimestamps(path string, timestamps []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return apperr.State("data user: creating timestamps file %q: %v", path, err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(timestamps); err != nil {
		return apperr.State("data user: encoding timestamps to %q: %v", path, err)
	}
	return nil
}

func loadTimestamps(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.NotFound("data user: timestamps file %q does not exist", path)
		}
		return nil, apperr.State("data user: opening timestamps file %q: %v", path, err)
	}
	defer f.Close()
	var timestamps []float64
	if err := gob.NewDecoder(f).Decode(&timestamps); err != nil {
		return nil, apperr.State("data user: decoding timestamps from %q: %v", path, err)
	}
	return timestamps, nil
}
