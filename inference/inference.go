// Package inference implements the INFERENCE background thread of spec
// §4.7: it drives one interaction's observe-decide-act cycle at a fixed
// cadence via a pluggable IntervalAdjustor, optionally recording per-tick
// duration and periodically logging mean ± stdev, the way the teacher's
// root main.go periodically logs training progress off a channerics ticker.
package inference

import (
	"math"

	"github.com/agentloop/agentloop/internal/agentlog"
	"github.com/agentloop/agentloop/threadcontrol"
)

// Stepper is the minimal surface an interaction loop needs to expose: one
// step, pause propagation, setup/teardown. Satisfied by
// *interaction.Interaction[Obs, Act] for any Obs/Act.
type Stepper interface {
	Setup()
	Step()
	Teardown()
	OnPaused()
	OnResumed()
}

// Adjustor is satisfied by *interaction.SleepIntervalAdjustor: sleeps the
// residual time toward a fixed cadence.
type Adjustor interface {
	Adjust() float64
}

// Clock is the minimal time source used for tick-duration statistics,
// satisfied by *clock.Clock.
type Clock interface {
	PerfCounter() float64
}

// statsWindow is a small rolling window of recent tick durations, used to
// log mean ± stdev periodically (SPEC_FULL.md's supplemented feature #5).
type statsWindow struct {
	samples []float64
	cap     int
}

func newStatsWindow(capacity int) *statsWindow {
	if capacity <= 0 {
		capacity = 256
	}
	return &statsWindow{cap: capacity}
}

func (w *statsWindow) add(v float64) {
	if len(w.samples) >= w.cap {
		w.samples = w.samples[1:]
	}
	w.samples = append(w.samples, v)
}

func (w *statsWindow) meanStdev() (mean, stdev float64) {
	n := len(w.samples)
	if n == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range w.samples {
		sum += v
	}
	mean = sum / float64(n)
	if n < 2 {
		return mean, 0
	}
	var variance float64
	for _, v := range w.samples {
		d := v - mean
		variance += d * d
	}
	variance /= float64(n - 1)
	return mean, math.Sqrt(variance)
}

// Thread is the INFERENCE background thread: a *threadcontrol.BackgroundThread
// driving one Stepper, optionally paced by an Adjustor and recording tick
// statistics.
type Thread struct {
	bg     *threadcontrol.BackgroundThread
	loop   Stepper
	adjust Adjustor
	clock  Clock
	log    *agentlog.Logger

	stats          *statsWindow
	statsLogEvery  int
	ticksSinceStat int
}

// Option configures a Thread at construction.
type Option func(*Thread)

// WithIntervalAdjustor installs a fixed-cadence adjustor; Adjust is called
// once per tick.
func WithIntervalAdjustor(a Adjustor) Option {
	return func(t *Thread) { t.adjust = a }
}

// WithTickStatistics enables rolling mean/stdev logging over windowSize
// samples, logged every logEvery ticks.
func WithTickStatistics(clock Clock, windowSize, logEvery int) Option {
	return func(t *Thread) {
		t.clock = clock
		t.stats = newStatsWindow(windowSize)
		t.statsLogEvery = logEvery
	}
}

// New constructs an inference Thread over a read-only controller view and a
// Stepper (typically an *interaction.Interaction[Obs, Act]).
func New(controller *threadcontrol.ReadOnlyController, loop Stepper, log *agentlog.Logger, opts ...Option) (*Thread, error) {
	bg, err := threadcontrol.NewBackgroundThread(threadcontrol.ThreadInference, controller)
	if err != nil {
		return nil, err
	}
	t := &Thread{bg: bg, loop: loop, log: agentlog.Named(log, "inference")}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

// Status exposes the underlying worker status for StatusesMonitor registration.
func (t *Thread) Status() *threadcontrol.Status { return t.bg.Status() }

// Run drives the thread to completion (blocking); call it on its own goroutine.
func (t *Thread) Run() error {
	return t.bg.Run(t)
}

func (t *Thread) OnStart() error {
	t.log.Info().Log("inference thread starting")
	t.loop.Setup()
	return nil
}

func (t *Thread) OnTick() error {
	var tickStart float64
	if t.stats != nil {
		tickStart = t.clock.PerfCounter()
	}

	t.loop.Step()

	if t.adjust != nil {
		t.adjust.Adjust()
	}

	if t.stats != nil {
		elapsed := t.clock.PerfCounter() - tickStart
		t.stats.add(elapsed)
		t.ticksSinceStat++
		if t.ticksSinceStat >= t.statsLogEvery {
			t.ticksSinceStat = 0
			mean, stdev := t.stats.meanStdev()
			t.log.Info().Float64("tick_mean_seconds", mean).Float64("tick_stdev_seconds", stdev).Log("inference tick statistics")
		}
	}

	return nil
}

func (t *Thread) OnEnd() error {
	t.log.Info().Log("inference thread ending")
	return nil
}

func (t *Thread) OnFinally() {
	t.loop.Teardown()
	t.log.Info().Log("inference thread stopped")
}

func (t *Thread) OnPaused()  { t.loop.OnPaused() }
func (t *Thread) OnResumed() { t.loop.OnResumed() }
