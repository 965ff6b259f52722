package data

import (
	"sync"

	"github.com/agentloop/agentloop/internal/apperr"
)

// Clock is the minimal time source the pipeline needs: a single reading
// used to stamp each collected sample, satisfied by *clock.Clock.
type Clock interface {
	Time() float64
}

// timestampedQueue is a pair of bounded slices (values, timestamps) of equal
// capacity, per spec §3. It is always accessed under DataCollector's mutex.
type timestampedQueue[T any] struct {
	capacity   int
	values     []T
	timestamps []float64
}

func newTimestampedQueue[T any](capacity int) *timestampedQueue[T] {
	return &timestampedQueue[T]{capacity: capacity}
}

func (q *timestampedQueue[T]) append(v T, ts float64) {
	if q.capacity == 0 {
		return
	}
	if len(q.values) >= q.capacity {
		q.values = append(q.values[1:], v)
		q.timestamps = append(q.timestamps[1:], ts)
		return
	}
	q.values = append(q.values, v)
	q.timestamps = append(q.timestamps, ts)
}

func (q *timestampedQueue[T]) len() int { return len(q.values) }

// DataCollector is the producer-only side of the pipeline: a timestamped
// queue plus a mutex, written from the inference thread.
type DataCollector[T any] struct {
	mu     sync.Mutex
	clock  Clock
	queue  *timestampedQueue[T]
	cap    int
}

func newDataCollector[T any](clock Clock, capacity int) *DataCollector[T] {
	return &DataCollector[T]{clock: clock, queue: newTimestampedQueue[T](capacity), cap: capacity}
}

// Collect acquires the mutex and appends (sample, clock.Time()) to the
// queue. Capacity equals the buffer capacity; overflow discards the oldest.
func (c *DataCollector[T]) Collect(sample T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue.append(sample, c.clock.Time())
}

// swap atomically replaces the queue with a fresh empty one of the same
// capacity under the same mutex, returning the captured queue to drain
// outside the lock. This is the resolution to spec §9's cyclic-reference
// note: the DataUser owns the collector exclusively and calls swap, and the
// collector builds the fresh queue itself from its stored capacity, so it
// holds no reference back to the user.
func (c *DataCollector[T]) swap() *timestampedQueue[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	captured := c.queue
	c.queue = newTimestampedQueue[T](c.cap)
	return captured
}

// DataUser owns one buffer, an aligned timestamp slice, and exactly one
// DataCollector, per spec §3.
type DataUser[T any] struct {
	buffer     Buffer[T]
	collector  *DataCollector[T]
	timestamps []float64
}

// NewDataUser constructs a DataUser over the given buffer, creating its
// paired DataCollector with the same capacity.
func NewDataUser[T any](clock Clock, buffer Buffer[T]) *DataUser[T] {
	return &DataUser[T]{
		buffer:    buffer,
		collector: newDataCollector[T](clock, buffer.Capacity()),
	}
}

// Collector returns the paired collector, for attaching to an agent's data
// collectors dict.
func (u *DataUser[T]) Collector() *DataCollector[T] { return u.collector }

// Update atomically swaps the collector's queue for an empty one, then —
// outside the lock — drains the captured queue into the buffer and the
// aligned timestamp slice in producer order. Called only from the training
// thread.
func (u *DataUser[T]) Update() {
	captured := u.collector.swap()
	for i, v := range captured.values {
		u.buffer.Add(v)
		u.timestamps = appendBounded(u.timestamps, captured.timestamps[i], u.buffer.Capacity())
	}
}

func appendBounded(ts []float64, v float64, capacity int) []float64 {
	if capacity == 0 {
		return ts
	}
	if len(ts) >= capacity {
		return append(ts[1:], v)
	}
	return append(ts, v)
}

// GetData returns the buffer's current contents.
func (u *DataUser[T]) GetData() []T { return u.buffer.GetData() }

// CountDataAddedSince scans the timestamp slice from newest to oldest,
// returning the count of timestamps strictly greater than t0 (spec §9's
// open question, resolved as strict ">").
func (u *DataUser[T]) CountDataAddedSince(t0 float64) int {
	count := 0
	for i := len(u.timestamps) - 1; i >= 0; i-- {
		if u.timestamps[i] > t0 {
			count++
		} else {
			break
		}
	}
	return count
}

// DataCollectorsDict tracks acquisition of named collectors: a second
// acquisition before release is a conflict, and an unknown name is a
// not-found, per spec §4.10 / §7.
type DataCollectorsDict struct {
	mu        sync.Mutex
	acquired  map[string]bool
	providers map[string]func() any
}

// NewDataCollectorsDict constructs an empty dict; register collectors with
// Register before acquisition.
func NewDataCollectorsDict() *DataCollectorsDict {
	return &DataCollectorsDict{
		acquired:  make(map[string]bool),
		providers: make(map[string]func() any),
	}
}

// Register adds a named collector getter. Registration itself never
// conflicts; only Acquire enforces exclusivity.
func Register[T any](d *DataCollectorsDict, name string, collector *DataCollector[T]) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.providers[name] = func() any { return collector }
}

// Acquire returns the named collector and marks it acquired. A second
// acquisition before Release raises Conflict; an unknown name raises NotFound.
func (d *DataCollectorsDict) Acquire(name string) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	provider, ok := d.providers[name]
	if !ok {
		return nil, apperr.NotFound("data collector %q is not registered", name)
	}
	if d.acquired[name] {
		return nil, apperr.Conflict("data collector %q is already acquired", name)
	}
	d.acquired[name] = true
	return provider(), nil
}

// Release marks a named collector as no longer acquired.
func (d *DataCollectorsDict) Release(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.acquired, name)
}

// DataUsersDict owns a set of named DataUsers and exposes a derived
// DataCollectorsDict, per spec §4.10.
type DataUsersDict struct {
	users      map[string]any
	collectors *DataCollectorsDict
}

// NewDataUsersDict constructs an empty dict.
func NewDataUsersDict() *DataUsersDict {
	return &DataUsersDict{users: make(map[string]any), collectors: NewDataCollectorsDict()}
}

// AddUser registers a named DataUser and derives its collector registration.
func AddUser[T any](d *DataUsersDict, name string, user *DataUser[T]) {
	d.users[name] = user
	Register[T](d.collectors, name, user.Collector())
}

// Collectors returns the derived DataCollectorsDict.
func (d *DataUsersDict) Collectors() *DataCollectorsDict { return d.collectors }

// User looks up a named user, type-asserting to the caller's element type.
func User[T any](d *DataUsersDict, name string) (*DataUser[T], bool) {
	v, ok := d.users[name]
	if !ok {
		return nil, false
	}
	u, ok := v.(*DataUser[T])
	return u, ok
}

// UpdateAll calls Update on every registered user, in the training thread's
// per-tick sweep.
func (d *DataUsersDict) UpdateAll() {
	for _, v := range d.users {
		if u, ok := v.(interface{ Update() }); ok {
			u.Update()
		}
	}
}
