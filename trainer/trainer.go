// Package trainer implements the Trainer lifecycle and the round-robin
// TrainersDict of spec §4.8, including the advance-then-return cursor
// semantics resolved in SPEC_FULL.md's Open Question decisions (grounded on
// original_source/trainer/container.py's
// `self._current_index = (self._current_index + 1) % len(self)` ordering).
package trainer

// Trainer is polymorphic over trainability, a three-phase run
// (setup/train/teardown), and attachment callbacks invoked when the
// training thread wires in the shared models/data-users dicts.
type Trainer interface {
	// IsTrainable gates a run, e.g. on minimum buffer size or new samples
	// since the last run. Defaults to true in Base.
	IsTrainable() bool
	Setup()
	Train()
	Teardown()
	OnTrainingModelsAttached()
	OnDataUsersAttached()
}

// Base provides the default IsTrainable=true and no-op lifecycle hooks so
// concrete trainers only override what they need, the way the original's
// Trainer(ABC) supplies defaults for setup/teardown/on_*_attached.
type Base struct{}

func (Base) IsTrainable() bool          { return true }
func (Base) Setup()                     {}
func (Base) Teardown()                  {}
func (Base) OnTrainingModelsAttached()   {}
func (Base) OnDataUsersAttached()        {}

// TrainersDict is an ordered map with a round-robin cursor.
type TrainersDict struct {
	names   []string
	byName  map[string]Trainer
	current int
}

// NewTrainersDict constructs an empty, ordered trainers dict.
func NewTrainersDict() *TrainersDict {
	return &TrainersDict{byName: make(map[string]Trainer)}
}

// Add registers a named trainer, preserving insertion order for the
// round-robin scan.
func (d *TrainersDict) Add(name string, t Trainer) {
	if _, exists := d.byName[name]; !exists {
		d.names = append(d.names, name)
	}
	d.byName[name] = t
}

// Len returns the number of registered trainers.
func (d *TrainersDict) Len() int { return len(d.names) }

// All returns every registered trainer in insertion order, for attach-time
// fan-out (on_start: attach models/data users, then setup, to each).
func (d *TrainersDict) All() []Trainer {
	out := make([]Trainer, len(d.names))
	for i, name := range d.names {
		out[i] = d.byName[name]
	}
	return out
}

// GetTrainableTrainer scans starting at the cursor, advancing by one before
// each trainability check, and returns the first trainer found trainable
// within one full rotation, or nil if none are. The cursor always advances,
// even when no trainer is returned, so the next call resumes past the
// position just examined — the advance-then-return variant.
func (d *TrainersDict) GetTrainableTrainer() (string, Trainer, bool) {
	n := len(d.names)
	if n == 0 {
		return "", nil, false
	}
	for i := 0; i < n; i++ {
		d.current = (d.current + 1) % n
		name := d.names[d.current]
		t := d.byName[name]
		if t.IsTrainable() {
			return name, t, true
		}
	}
	return "", nil, false
}
