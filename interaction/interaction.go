// Package interaction implements the observe-decide-act loop of spec §4.6:
// one Agent plus one Environment, stepped together, with save/load
// delegating into agent/ and environment/ subdirectories and pause/resume
// propagated to both — generalizing the gym-style typed split
// (pamiq_core.gym's Agent[Obs,Act]/Environment[Obs,Act]) that spec.md
// compresses into one pair, per SPEC_FULL.md's supplemented feature #6.
package interaction

import (
	"os"
	"path/filepath"

	"github.com/agentloop/agentloop/internal/apperr"
)

// Persistable is the capability interfaces below embed: save/load against a
// directory path, defaulting to a no-op so aggregates compose freely
// (spec §9's PersistentStateMixin-as-capability-interface).
type Persistable interface {
	SaveState(path string) error
	LoadState(path string) error
}

// PauseAware lets a component react to the control thread's pause/resume
// broadcast.
type PauseAware interface {
	OnPaused()
	OnResumed()
}

// Agent maps an observation to an action, reading from inference models and
// writing samples into data collectors along the way.
type Agent[Obs, Act any] interface {
	Persistable
	PauseAware
	Setup()
	Step(observation Obs) Act
	Teardown()
}

// Environment is a stateful simulator: Observe produces the next
// observation, Affect applies an action to it.
type Environment[Obs, Act any] interface {
	Persistable
	PauseAware
	Setup()
	Observe() Obs
	Affect(action Act)
	Teardown()
}

// Interaction holds one agent and one environment and exposes Step.
type Interaction[Obs, Act any] struct {
	Agent       Agent[Obs, Act]
	Environment Environment[Obs, Act]
}

// New constructs an Interaction over the given agent and environment.
func New[Obs, Act any](agent Agent[Obs, Act], env Environment[Obs, Act]) *Interaction[Obs, Act] {
	return &Interaction[Obs, Act]{Agent: agent, Environment: env}
}

// Setup calls through to both the agent and the environment.
func (i *Interaction[Obs, Act]) Setup() {
	i.Environment.Setup()
	i.Agent.Setup()
}

// Step reads an observation, feeds it to the agent, and applies the
// returned action to the environment.
func (i *Interaction[Obs, Act]) Step() {
	obs := i.Environment.Observe()
	action := i.Agent.Step(obs)
	i.Environment.Affect(action)
}

// Teardown calls through to both the agent and the environment.
func (i *Interaction[Obs, Act]) Teardown() {
	i.Agent.Teardown()
	i.Environment.Teardown()
}

// OnPaused propagates to both agent and environment.
func (i *Interaction[Obs, Act]) OnPaused() {
	i.Agent.OnPaused()
	i.Environment.OnPaused()
}

// OnResumed propagates to both agent and environment.
func (i *Interaction[Obs, Act]) OnResumed() {
	i.Agent.OnResumed()
	i.Environment.OnResumed()
}

// SaveState creates path and delegates to agent/ and environment/
// subdirectories, per spec §4.6.
func (i *Interaction[Obs, Act]) SaveState(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return apperr.State("interaction: creating state dir %q: %v", path, err)
	}
	if err := i.Agent.SaveState(filepath.Join(path, "agent")); err != nil {
		return err
	}
	return i.Environment.SaveState(filepath.Join(path, "environment"))
}

// LoadState delegates to agent/ and environment/ subdirectories without
// creating path (it is expected to already exist).
func (i *Interaction[Obs, Act]) LoadState(path string) error {
	if _, err := os.Stat(path); err != nil {
		return apperr.NotFound("interaction: state dir %q does not exist", path)
	}
	if err := i.Agent.LoadState(filepath.Join(path, "agent")); err != nil {
		return err
	}
	return i.Environment.LoadState(filepath.Join(path, "environment"))
}
