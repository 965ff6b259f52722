// Package data implements the bounded buffers (spec §3/§4.10), the
// timestamped producer queue, and the DataCollector/DataUser pair that
// decouples the inference thread (producer) from the training thread
// (consumer).
package data

import (
	"math"

	"github.com/agentloop/agentloop/internal/apperr"
)

// Buffer is the capability every bounded container below satisfies:
// add one element, read back the full ordered contents, and report how many
// slots are filled.
type Buffer[T any] interface {
	Add(v T)
	GetData() []T
	Len() int
	Capacity() int
}

// SequentialBuffer is a FIFO of capacity N; the oldest element is evicted on
// overflow, preserving insertion order in GetData.
type SequentialBuffer[T any] struct {
	capacity int
	data     []T
}

// NewSequentialBuffer constructs a SequentialBuffer of the given capacity.
// capacity < 0 is a configuration error.
func NewSequentialBuffer[T any](capacity int) (*SequentialBuffer[T], error) {
	if capacity < 0 {
		return nil, apperr.Configuration("sequential buffer: capacity must be >= 0, got %d", capacity)
	}
	return &SequentialBuffer[T]{capacity: capacity, data: make([]T, 0, capacity)}, nil
}

func (b *SequentialBuffer[T]) Add(v T) {
	if b.capacity == 0 {
		return
	}
	if len(b.data) >= b.capacity {
		b.data = append(b.data[1:], v)
		return
	}
	b.data = append(b.data, v)
}

func (b *SequentialBuffer[T]) GetData() []T {
	out := make([]T, len(b.data))
	copy(out, b.data)
	return out
}

func (b *SequentialBuffer[T]) Len() int      { return len(b.data) }
func (b *SequentialBuffer[T]) Capacity() int { return b.capacity }

// euler is the Euler-Mascheroni constant used by the survival-length formula
// below, spec §3.
const euler = 0.5772156649015329

// ComputeReplaceProbabilityFromExpectedSurvivalLength derives p from a
// desired expected survival length L for a buffer of capacity N:
// p = clip(N/L * (ln(N) + gamma), 0, 1).
func ComputeReplaceProbabilityFromExpectedSurvivalLength(capacity int, survivalLength float64) float64 {
	if capacity <= 0 || survivalLength <= 0 {
		return 0
	}
	n := float64(capacity)
	p := n / survivalLength * (math.Log(n) + euler)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// RandomReplacer is the capability a RandomReplacementBuffer needs from its
// source of randomness, so tests can seed it deterministically (spec
// scenario S3 depends on a deterministic overwrite index).
type RandomReplacer interface {
	// Float64 returns a value in [0,1); used to decide whether to replace.
	Float64() float64
	// Intn returns a value in [0,n); used to pick the overwrite index.
	Intn(n int) int
}

// RandomReplacementBuffer appends until full; once full, with probability p
// it overwrites a uniformly chosen index, else drops the new element.
type RandomReplacementBuffer[T any] struct {
	capacity    int
	probability float64
	data        []T
	rng         RandomReplacer
}

// RandomReplacementOption configures a RandomReplacementBuffer at construction.
type RandomReplacementOption[T any] func(*RandomReplacementBuffer[T])

// WithRandomSource overrides the default RNG, e.g. with a seeded source for
// deterministic tests (spec scenario S3).
func WithRandomSource[T any](rng RandomReplacer) RandomReplacementOption[T] {
	return func(b *RandomReplacementBuffer[T]) { b.rng = rng }
}

// NewRandomReplacementBufferWithProbability constructs a buffer that
// replaces with the given fixed probability, which must be in [0,1].
func NewRandomReplacementBufferWithProbability[T any](capacity int, probability float64, opts ...RandomReplacementOption[T]) (*RandomReplacementBuffer[T], error) {
	if capacity < 0 {
		return nil, apperr.Configuration("random replacement buffer: capacity must be >= 0, got %d", capacity)
	}
	if probability < 0 || probability > 1 {
		return nil, apperr.Configuration("random replacement buffer: replace_probability must be in [0,1], got %v", probability)
	}
	b := &RandomReplacementBuffer[T]{capacity: capacity, probability: probability, data: make([]T, 0, capacity), rng: defaultRNG{}}
	for _, o := range opts {
		o(b)
	}
	return b, nil
}

// NewBufferFromPolicy constructs a Buffer[T] from a config.Buffer-shaped
// policy description: "sequential" (the default when policy is empty)
// yields a SequentialBuffer; "random_replacement" yields a
// RandomReplacementBuffer, taking its probability from whichever of
// replaceProbability/expectedSurvivalLength is supplied (at most one may
// be non-nil; spec §3's mutual-exclusivity rule). An unrecognized policy
// name is a configuration error.
func NewBufferFromPolicy[T any](capacity int, policy string, replaceProbability, expectedSurvivalLength *float64) (Buffer[T], error) {
	if replaceProbability != nil && expectedSurvivalLength != nil {
		return nil, apperr.Configuration("buffer policy %q: replace_probability and expected_survival_length are mutually exclusive", policy)
	}
	switch policy {
	case "", "sequential":
		return NewSequentialBuffer[T](capacity)
	case "random_replacement":
		switch {
		case expectedSurvivalLength != nil:
			return NewRandomReplacementBufferWithSurvivalLength[T](capacity, *expectedSurvivalLength)
		case replaceProbability != nil:
			return NewRandomReplacementBufferWithProbability[T](capacity, *replaceProbability)
		default:
			return NewRandomReplacementBufferWithProbability[T](capacity, 0)
		}
	default:
		return nil, apperr.Configuration("buffer policy %q: must be \"sequential\" or \"random_replacement\"", policy)
	}
}

// NewRandomReplacementBufferWithSurvivalLength constructs a buffer whose
// replace probability is derived from an expected survival length, per
// spec §3. Supplying both a probability and a survival length is a
// configuration error (enforced by requiring callers to choose the
// constructor, mirroring the Python original's mutual-exclusivity check).
func NewRandomReplacementBufferWithSurvivalLength[T any](capacity int, survivalLength float64, opts ...RandomReplacementOption[T]) (*RandomReplacementBuffer[T], error) {
	p := ComputeReplaceProbabilityFromExpectedSurvivalLength(capacity, survivalLength)
	return NewRandomReplacementBufferWithProbability[T](capacity, p, opts...)
}

func (b *RandomReplacementBuffer[T]) Add(v T) {
	if b.capacity == 0 {
		return
	}
	if len(b.data) < b.capacity {
		b.data = append(b.data, v)
		return
	}
	if b.rng.Float64() > b.probability {
		return
	}
	idx := b.rng.Intn(b.capacity)
	b.data[idx] = v
}

func (b *RandomReplacementBuffer[T]) GetData() []T {
	out := make([]T, len(b.data))
	copy(out, b.data)
	return out
}

func (b *RandomReplacementBuffer[T]) Len() int      { return len(b.data) }
func (b *RandomReplacementBuffer[T]) Capacity() int { return b.capacity }
