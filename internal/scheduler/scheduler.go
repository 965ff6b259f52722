// Package scheduler implements the time- or step-interval callback triggers
// of spec §4.4: a lightweight component, ticked synchronously from inside a
// worker's own loop (so it never runs while that worker is paused), that
// fires a registered callback once enough virtual time or enough ticks have
// elapsed since it last fired.
package scheduler

import "github.com/agentloop/agentloop/internal/apperr"

// Clock is the minimal time source a time-interval trigger needs,
// satisfied by *clock.Clock.
type Clock interface {
	Time() float64
}

// trigger is armed against either a time interval (via clock) or a step
// count, never both; exactly one of intervalSeconds/steps is set.
type trigger struct {
	fn              func()
	clock           Clock
	intervalSeconds float64
	lastFired       float64
	steps           int
	sinceFired      int
}

func (t *trigger) tick() {
	if t.clock != nil {
		now := t.clock.Time()
		if now-t.lastFired >= t.intervalSeconds {
			t.lastFired = now
			t.fn()
		}
		return
	}
	t.sinceFired++
	if t.sinceFired >= t.steps {
		t.sinceFired = 0
		t.fn()
	}
}

// Scheduler owns a set of triggers, each ticked once per call to Tick.
// Tick is meant to be called once per iteration of a worker's own loop
// (e.g. the control thread's on_tick), so scheduled work is naturally
// pause-aware: a paused worker stops calling Tick, so nothing fires.
type Scheduler struct {
	triggers []*trigger
}

// New constructs an empty Scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// AddTimeInterval registers fn to run at most once per intervalSeconds of
// virtual time, first eligible on the Tick at or after intervalSeconds has
// elapsed since registration. intervalSeconds must be > 0.
func (s *Scheduler) AddTimeInterval(clock Clock, intervalSeconds float64, fn func()) error {
	if intervalSeconds <= 0 {
		return apperr.Configuration("scheduler: interval must be > 0, got %v", intervalSeconds)
	}
	s.triggers = append(s.triggers, &trigger{
		fn:              fn,
		clock:           clock,
		intervalSeconds: intervalSeconds,
		lastFired:       clock.Time(),
	})
	return nil
}

// AddStepInterval registers fn to run once every `steps` calls to Tick.
// steps must be > 0.
func (s *Scheduler) AddStepInterval(steps int, fn func()) error {
	if steps <= 0 {
		return apperr.Configuration("scheduler: steps must be > 0, got %d", steps)
	}
	s.triggers = append(s.triggers, &trigger{fn: fn, steps: steps})
	return nil
}

// Tick evaluates every registered trigger once, firing those that are due.
func (s *Scheduler) Tick() {
	for _, t := range s.triggers {
		t.tick()
	}
}
