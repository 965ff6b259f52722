// Package clock implements the virtual time source described in spec §4.1: a
// scalable, pausable clock whose three reported times (time, monotonic,
// perf_counter) advance only while the system is active, and which
// checkpoints its anchors the way the teacher's atomic_float package guards
// a single hot float64 with a mutex-free read/update discipline — except
// here correctness requires a real mutex, since an anchor update touches
// four fields together.
package clock

import (
	"sync"
	"time"
)

// rawTime, rawMonotonic and rawPerfCounter are the three OS-backed clocks the
// virtual clock re-bases. rawTime reads wall-clock seconds since the Unix
// epoch; rawMonotonic and rawPerfCounter both read the same monotonic
// seconds-since-process-start source, so they share one epoch. All three
// advance at the same real rate.
func rawTime() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

func rawMonotonic() float64 {
	return secondsSinceProcessStart()
}

func rawPerfCounter() float64 {
	return secondsSinceProcessStart()
}

var processStart = time.Now()

func secondsSinceProcessStart() float64 {
	return time.Since(processStart).Seconds()
}

// State is the serializable snapshot described in spec §3/§4.1: the scale
// plus the three scaled anchors.
type State struct {
	Scale                   float64 `yaml:"scale"`
	ScaledAnchorTime        float64 `yaml:"scaled_anchor_time"`
	ScaledAnchorMonotonic   float64 `yaml:"scaled_anchor_monotonic"`
	ScaledAnchorPerfCounter float64 `yaml:"scaled_anchor_perf_counter"`
}

// Clock is a process-wide scalable, pausable time source. The zero value is
// not usable; construct with New.
type Clock struct {
	mu sync.Mutex

	scale float64

	scaledAnchorTime        float64
	scaledAnchorMonotonic   float64
	scaledAnchorPerfCounter float64

	// rawAnchor{Time,Monotonic,PerfCounter} record the raw-clock readings at
	// the moment the scaled anchors above were last set, so that "elapsed
	// raw time since the anchor" can be computed and scaled.
	rawAnchorTime        float64
	rawAnchorMonotonic   float64
	rawAnchorPerfCounter float64

	paused bool
}

// New constructs a running Clock with scale 1.0, anchored at the current
// real time.
func New() *Clock {
	c := &Clock{scale: 1.0}
	c.anchorLocked(rawTime(), rawMonotonic(), rawPerfCounter())
	return c
}

// anchorLocked sets both the scaled and the raw anchors to the given raw
// readings, so a new clock starts out reporting the underlying OS clocks.
// Caller must hold mu.
func (c *Clock) anchorLocked(rawT, rawM, rawP float64) {
	c.scaledAnchorTime = rawT
	c.scaledAnchorMonotonic = rawM
	c.scaledAnchorPerfCounter = rawP
	c.rawAnchorTime = rawT
	c.rawAnchorMonotonic = rawM
	c.rawAnchorPerfCounter = rawP
}

// reportLocked computes the current reported value of one of the three
// clocks given its scaled anchor and raw anchor. Caller must hold mu.
func (c *Clock) reportLocked(scaledAnchor, rawAnchor, raw float64) float64 {
	if c.paused {
		return scaledAnchor
	}
	return scaledAnchor + c.scale*(raw-rawAnchor)
}

// Time returns the virtual wall-clock time, in seconds since the Unix epoch.
func (c *Clock) Time() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reportLocked(c.scaledAnchorTime, c.rawAnchorTime, rawTime())
}

// Monotonic returns the virtual monotonic clock, in seconds.
func (c *Clock) Monotonic() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reportLocked(c.scaledAnchorMonotonic, c.rawAnchorMonotonic, rawMonotonic())
}

// PerfCounter returns the virtual high-resolution counter, in seconds.
func (c *Clock) PerfCounter() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reportLocked(c.scaledAnchorPerfCounter, c.rawAnchorPerfCounter, rawPerfCounter())
}

// reanchorToNowLocked snapshots the current reported times into the scaled
// anchors and resets the raw anchors to the current raw readings, so that
// subsequent reporting is continuous. Caller must hold mu.
func (c *Clock) reanchorToNowLocked() {
	rawT, rawM, rawP := rawTime(), rawMonotonic(), rawPerfCounter()
	c.scaledAnchorTime = c.reportLocked(c.scaledAnchorTime, c.rawAnchorTime, rawT)
	c.scaledAnchorMonotonic = c.reportLocked(c.scaledAnchorMonotonic, c.rawAnchorMonotonic, rawM)
	c.scaledAnchorPerfCounter = c.reportLocked(c.scaledAnchorPerfCounter, c.rawAnchorPerfCounter, rawP)
	c.rawAnchorTime, c.rawAnchorMonotonic, c.rawAnchorPerfCounter = rawT, rawM, rawP
}

// SetTimeScale sets the scale factor, requiring s > 0, and re-anchors so the
// reported time is continuous across the change.
func (c *Clock) SetTimeScale(s float64) error {
	if s <= 0 {
		return errScaleNotPositive
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused {
		c.reanchorToNowLocked()
	}
	c.scale = s
	return nil
}

// TimeScale returns the current scale factor.
func (c *Clock) TimeScale() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scale
}

// Pause freezes all three reported clocks at their current values. Idempotent.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return
	}
	c.reanchorToNowLocked()
	c.paused = true
}

// Resume re-anchors so the scaled times continue from their paused values.
// Idempotent.
func (c *Clock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused {
		return
	}
	c.paused = false
	c.rawAnchorTime, c.rawAnchorMonotonic, c.rawAnchorPerfCounter = rawTime(), rawMonotonic(), rawPerfCounter()
}

// IsPaused reports whether the clock is currently frozen.
func (c *Clock) IsPaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Sleep blocks for dt/scale wall-clock seconds using the OS sleep. While
// paused it returns immediately, matching spec §4.1.
func (c *Clock) Sleep(dt float64) {
	c.mu.Lock()
	paused := c.paused
	scale := c.scale
	c.mu.Unlock()
	if paused || dt <= 0 {
		return
	}
	time.Sleep(time.Duration(dt / scale * float64(time.Second)))
}

// StateDict serializes the current scale and scaled anchors.
func (c *Clock) StateDict() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Scale:                   c.scale,
		ScaledAnchorTime:        c.reportLocked(c.scaledAnchorTime, c.rawAnchorTime, rawTime()),
		ScaledAnchorMonotonic:   c.reportLocked(c.scaledAnchorMonotonic, c.rawAnchorMonotonic, rawMonotonic()),
		ScaledAnchorPerfCounter: c.reportLocked(c.scaledAnchorPerfCounter, c.rawAnchorPerfCounter, rawPerfCounter()),
	}
}

// LoadStateDict restores the clock so its effective reported times equal
// those captured in the given State, without disturbing the paused flag.
func (c *Clock) LoadStateDict(s State) error {
	if s.Scale <= 0 {
		return errScaleNotPositive
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scale = s.Scale
	c.scaledAnchorTime = s.ScaledAnchorTime
	c.scaledAnchorMonotonic = s.ScaledAnchorMonotonic
	c.scaledAnchorPerfCounter = s.ScaledAnchorPerfCounter
	c.rawAnchorTime, c.rawAnchorMonotonic, c.rawAnchorPerfCounter = rawTime(), rawMonotonic(), rawPerfCounter()
	return nil
}
