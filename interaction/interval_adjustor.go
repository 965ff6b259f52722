package interaction

// IntervalAdjustor keeps a loop close to a target period by sleeping the
// residual each time Adjust is called, per spec §4.2. The interface/single
// concrete implementation split mirrors the original's
// IntervalAdjustor(ABC)/SleepIntervalAdjustor pair (SPEC_FULL.md
// supplemented feature #3).
type IntervalAdjustor interface {
	// Reset re-arms the adjustor against the current time, returning that
	// time.
	Reset() float64
	// Adjust sleeps the residual time since the last Reset/Adjust so total
	// elapsed time approaches interval-offset, then re-arms and returns the
	// elapsed duration.
	Adjust() float64
}

// clockSource is the minimal time source an adjustor needs: a monotonic
// reading and a sleep primitive, satisfied by *clock.Clock.
type clockSource interface {
	PerfCounter() float64
	Sleep(dt float64)
}

// SleepIntervalAdjustor is the concrete IntervalAdjustor that sleeps the
// virtual clock's residual time.
type SleepIntervalAdjustor struct {
	clock         clockSource
	interval      float64
	timeToWait    float64
	lastResetTime float64
}

// NewSleepIntervalAdjustor constructs an adjustor targeting the given period,
// optionally offset (e.g. to account for fixed per-tick overhead).
func NewSleepIntervalAdjustor(clock clockSource, intervalSeconds, offsetSeconds float64) *SleepIntervalAdjustor {
	a := &SleepIntervalAdjustor{
		clock:      clock,
		interval:   intervalSeconds,
		timeToWait: intervalSeconds - offsetSeconds,
	}
	a.lastResetTime = negInf
	return a
}

const negInf = -1e300

// Reset re-arms the adjustor against the current perf counter, returning it.
func (a *SleepIntervalAdjustor) Reset() float64 {
	a.lastResetTime = a.clock.PerfCounter()
	return a.lastResetTime
}

// Adjust sleeps the remaining time toward the target period if any remains,
// never sleeping a negative duration, then re-arms and returns the elapsed
// duration since the previous reset.
func (a *SleepIntervalAdjustor) Adjust() float64 {
	remaining := (a.lastResetTime + a.timeToWait) - a.clock.PerfCounter()
	if remaining > 0 {
		a.clock.Sleep(remaining)
	}
	deltaTime := a.clock.PerfCounter() - a.lastResetTime
	a.Reset()
	return deltaTime
}
