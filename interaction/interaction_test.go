package interaction_test

import (
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/agentloop/agentloop/interaction"
)

type logEntry struct {
	kind string
	data string
}

type fakeAgent struct {
	log        *[]logEntry
	nextAction string
}

func (a *fakeAgent) Setup()    { *a.log = append(*a.log, logEntry{"agent.setup", ""}) }
func (a *fakeAgent) Teardown() { *a.log = append(*a.log, logEntry{"agent.teardown", ""}) }
func (a *fakeAgent) OnPaused()  { *a.log = append(*a.log, logEntry{"agent.paused", ""}) }
func (a *fakeAgent) OnResumed() { *a.log = append(*a.log, logEntry{"agent.resumed", ""}) }
func (a *fakeAgent) SaveState(path string) error { *a.log = append(*a.log, logEntry{"agent.save", path}); return nil }
func (a *fakeAgent) LoadState(path string) error { *a.log = append(*a.log, logEntry{"agent.load", path}); return nil }
func (a *fakeAgent) Step(obs string) string {
	*a.log = append(*a.log, logEntry{"agent.step", obs})
	return a.nextAction
}

type fakeEnvironment struct {
	log      *[]logEntry
	obs      string
	received string
}

func (e *fakeEnvironment) Setup()    { *e.log = append(*e.log, logEntry{"env.setup", ""}) }
func (e *fakeEnvironment) Teardown() { *e.log = append(*e.log, logEntry{"env.teardown", ""}) }
func (e *fakeEnvironment) OnPaused()  { *e.log = append(*e.log, logEntry{"env.paused", ""}) }
func (e *fakeEnvironment) OnResumed() { *e.log = append(*e.log, logEntry{"env.resumed", ""}) }
func (e *fakeEnvironment) SaveState(path string) error { *e.log = append(*e.log, logEntry{"env.save", path}); return nil }
func (e *fakeEnvironment) LoadState(path string) error { *e.log = append(*e.log, logEntry{"env.load", path}); return nil }
func (e *fakeEnvironment) Observe() string { *e.log = append(*e.log, logEntry{"env.observe", ""}); return e.obs }
func (e *fakeEnvironment) Affect(action string) {
	*e.log = append(*e.log, logEntry{"env.affect", action})
	e.received = action
}

func TestInteractionStep(t *testing.T) {
	Convey("Given an Interaction over a fake agent and environment", t, func() {
		var log []logEntry
		agent := &fakeAgent{log: &log, nextAction: "accelerate"}
		env := &fakeEnvironment{log: &log, obs: "state-1"}
		loop := interaction.New[string, string](agent, env)

		Convey("Step observes, decides, then affects, in that order", func() {
			loop.Step()
			So(log, ShouldResemble, []logEntry{
				{"env.observe", ""},
				{"agent.step", "state-1"},
				{"env.affect", "accelerate"},
			})
			So(env.received, ShouldEqual, "accelerate")
		})

		Convey("Setup and Teardown call through to both in the documented order", func() {
			loop.Setup()
			loop.Teardown()
			So(log, ShouldResemble, []logEntry{
				{"env.setup", ""},
				{"agent.setup", ""},
				{"agent.teardown", ""},
				{"env.teardown", ""},
			})
		})

		Convey("OnPaused/OnResumed propagate to both", func() {
			loop.OnPaused()
			loop.OnResumed()
			So(log, ShouldResemble, []logEntry{
				{"agent.paused", ""},
				{"env.paused", ""},
				{"agent.resumed", ""},
				{"env.resumed", ""},
			})
		})
	})
}

func TestInteractionSaveLoadState(t *testing.T) {
	Convey("Given an Interaction over a fake agent and environment", t, func() {
		var log []logEntry
		agent := &fakeAgent{log: &log}
		env := &fakeEnvironment{log: &log}
		loop := interaction.New[string, string](agent, env)

		Convey("SaveState delegates to agent/ and environment/ subdirectories", func() {
			dir := t.TempDir()
			err := loop.SaveState(dir)
			So(err, ShouldBeNil)
			So(log, ShouldResemble, []logEntry{
				{"agent.save", filepath.Join(dir, "agent")},
				{"env.save", filepath.Join(dir, "environment")},
			})
		})

		Convey("LoadState fails if the directory doesn't exist", func() {
			err := loop.LoadState(filepath.Join(t.TempDir(), "missing"))
			So(err, ShouldNotBeNil)
		})

		Convey("LoadState delegates once the directory exists", func() {
			dir := t.TempDir()
			err := loop.LoadState(dir)
			So(err, ShouldBeNil)
			So(log, ShouldResemble, []logEntry{
				{"agent.load", filepath.Join(dir, "agent")},
				{"env.load", filepath.Join(dir, "environment")},
			})
		})
	})
}
