// Package persistence implements the state store of spec §4.12: a registry
// of named persistable objects, timestamped directory checkpoints, and a
// background retention sweep deleting all but the newest max_keep.
package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/agentloop/agentloop/internal/apperr"
)

// Persistable is the capability interface every registered object
// implements: save/load against a directory path. Default no-op
// implementations let deeply nested aggregates compose, per spec §4.12 /
// §9's mixin-to-capability-interface design note.
type Persistable interface {
	SaveState(path string) error
	LoadState(path string) error
}

// NopPersistable is embeddable by components with nothing to persist.
type NopPersistable struct{}

func (NopPersistable) SaveState(string) error { return nil }
func (NopPersistable) LoadState(string) error { return nil }

// defaultStateNameFormat mirrors the original's
// "%Y-%m-%d_%H-%M-%S,%f.state", using Go's reference-time layout plus a
// manually appended microsecond component (Go's layout has no strftime
// comma-microseconds verb).
const defaultStateNameFormat = "2006-01-02_15-04-05"

// StateStore mints timestamped checkpoint directories and fans out to every
// registered persistable object.
type StateStore struct {
	statesDir string
	registry  []registryEntry
	names     map[string]bool
}

type registryEntry struct {
	name string
	obj  Persistable
}

// NewStateStore creates statesDir if it doesn't already exist (mkdir,
// exist_ok semantics) and returns a store rooted there.
func NewStateStore(statesDir string) (*StateStore, error) {
	if err := os.MkdirAll(statesDir, 0o755); err != nil {
		return nil, apperr.State("state store: creating states dir %q: %v", statesDir, err)
	}
	return &StateStore{statesDir: statesDir, names: make(map[string]bool)}, nil
}

// Register adds a named persistable object. Duplicate names are a
// configuration error.
func (s *StateStore) Register(name string, obj Persistable) error {
	if s.names[name] {
		return apperr.Configuration("state store: %q is already registered", name)
	}
	s.names[name] = true
	s.registry = append(s.registry, registryEntry{name: name, obj: obj})
	return nil
}

// mintName formats "now" with microsecond uniqueness appended, since Go's
// reference-time layout has no strftime "%f" equivalent.
func mintName(now time.Time) string {
	return fmt.Sprintf("%s,%06d.state", now.Format(defaultStateNameFormat), now.Nanosecond()/1000)
}

// SaveState mints a new states_dir/<timestamp>.state/ directory and
// delegates to each registered object at <dir>/<name>. Returns the minted
// path. A name collision on the minted directory (extremely unlikely given
// the microsecond suffix) fails loudly rather than silently overwriting.
func (s *StateStore) SaveState() (string, error) {
	dir := filepath.Join(s.statesDir, mintName(time.Now()))
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", apperr.State("state store: minting checkpoint dir %q: %v", dir, err)
	}
	for _, entry := range s.registry {
		if err := entry.obj.SaveState(filepath.Join(dir, entry.name)); err != nil {
			return "", fmt.Errorf("state store: saving %q: %w", entry.name, err)
		}
	}
	return dir, nil
}

// LoadState requires path to exist, then delegates to each registered
// object at <path>/<name>.
func (s *StateStore) LoadState(path string) error {
	if _, err := os.Stat(path); err != nil {
		return apperr.NotFound("state store: checkpoint %q does not exist", path)
	}
	for _, entry := range s.registry {
		if err := entry.obj.LoadState(filepath.Join(path, entry.name)); err != nil {
			return fmt.Errorf("state store: loading %q: %w", entry.name, err)
		}
	}
	return nil
}

// ListCheckpoints returns every "*.state" directory under statesDir, newest
// first by modification time.
func (s *StateStore) ListCheckpoints() ([]string, error) {
	entries, err := os.ReadDir(s.statesDir)
	if err != nil {
		return nil, apperr.State("state store: listing %q: %v", s.statesDir, err)
	}
	type stamped struct {
		path    string
		modTime time.Time
	}
	var found []stamped
	for _, e := range entries {
		if !e.IsDir() || filepath.Ext(e.Name()) != ".state" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		found = append(found, stamped{path: filepath.Join(s.statesDir, e.Name()), modTime: info.ModTime()})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].modTime.After(found[j].modTime) })
	out := make([]string, len(found))
	for i, f := range found {
		out[i] = f.path
	}
	return out, nil
}
