package data

import (
	"encoding/gob"
	"os"

	"github.com/agentloop/agentloop/internal/apperr"
)

// SaveState writes the buffer's element sequence to a single file at path,
// resolving spec §9's open question in favor of the "<path>.pkl"-equivalent
// single-file layout (here, path is used as given by the caller; callers
// following the persisted-state layout of spec §6 should pass a path ending
// in an extension of their choosing, e.g. "buffer.gob").
func (b *SequentialBuffer[T]) SaveState(path string) error {
	return saveElements(path, b.data)
}

// LoadState reads a state file previously written by SaveState, truncating
// to the buffer's current capacity on load.
func (b *SequentialBuffer[T]) LoadState(path string) error {
	data, err := loadElements[T](path)
	if err != nil {
		return err
	}
	if len(data) > b.capacity {
		data = data[len(data)-b.capacity:]
	}
	b.data = data
	return nil
}

// SaveState writes the buffer's element sequence to a single file at path.
func (b *RandomReplacementBuffer[T]) SaveState(path string) error {
	return saveElements(path, b.data)
}

// LoadState reads a state file previously written by SaveState, truncating
// to the buffer's current capacity on load (spec §9: "load truncates to
// [:max_size]").
func (b *RandomReplacementBuffer[T]) LoadState(path string) error {
	data, err := loadElements[T](path)
	if err != nil {
		return err
	}
	if len(data) > b.capacity {
		data = data[:b.capacity]
	}
	b.data = data
	return nil
}

func saveElements[T any](path string, elements []T) error {
	f, err := os.Create(path)
	if err != nil {
		return apperr.State("buffer: creating state file %q: %v", path, err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(elements); err != nil {
		return apperr.State("buffer: encoding state to %q: %v", path, err)
	}
	return nil
}

func loadElements[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.NotFound("buffer: state file %q does not exist", path)
		}
		return nil, apperr.State("buffer: opening state file %q: %v", path, err)
	}
	defer f.Close()
	var data []T
	if err := gob.NewDecoder(f).Decode(&data); err != nil {
		return nil, apperr.State("buffer: decoding state from %q: %v", path, err)
	}
	return data, nil
}
