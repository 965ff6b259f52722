package sample

import (
	"math/rand"

	"github.com/agentloop/agentloop/data"
	"github.com/agentloop/agentloop/grid_world"
	"github.com/agentloop/agentloop/model"
	"github.com/agentloop/agentloop/persistence"
)

// Transition is one recorded (state, action, reward, successor) sample,
// the data-pipeline element the teacher's grid_world.Step played in-memory
// within a single goroutine; here it crosses the DataCollector/DataUser
// boundary between the inference and training threads. Terminal marks
// Successor as an episode boundary, letting the trainer reassemble
// episodes from the flat buffered stream without needing its own copy of
// track dynamics.
type Transition struct {
	State     Coord
	Successor Coord
	Action    grid_world.Action
	Reward    float64
	Terminal  bool
}

// Agent is an epsilon-greedy policy over a published ValueTable: with
// probability epsilon it explores via a random acceleration, otherwise it
// searches every valid acceleration and picks the one leading to the
// highest-valued successor, per the teacher's getMaxSuccessor.
type Agent struct {
	persistence.NopPersistable

	dynGrid        [][][][]grid_world.State
	inferenceModel *model.InferenceModel[*ValueTable]
	collectors     *data.DataCollectorsDict
	collectorName  string
	collector      *data.DataCollector[Transition]
	epsilon        float64
	rng            *rand.Rand

	hasPending     bool
	pendingCoord   Coord
	pendingAction  grid_world.Action
}

// NewAgent constructs an agent over the same track layout as its
// environment (a private grid, used only for dynamics/collision search —
// never for value storage) and the inference side of a model pair.
func NewAgent(track []string, inferenceModel *model.InferenceModel[*ValueTable], collectors *data.DataCollectorsDict, collectorName string, epsilon float64, seed int64) *Agent {
	return &Agent{
		dynGrid:        grid_world.Convert(track),
		inferenceModel: inferenceModel,
		collectors:     collectors,
		collectorName:  collectorName,
		epsilon:        epsilon,
		rng:            rand.New(rand.NewSource(seed)),
	}
}

func (a *Agent) Setup() {
	acquired, err := a.collectors.Acquire(a.collectorName)
	if err != nil {
		panic(err)
	}
	a.collector = acquired.(*data.DataCollector[Transition])
}

// Step records the transition that ended at obs (if one is pending from
// the previous tick), then decides the next action.
func (a *Agent) Step(obs grid_world.State) *grid_world.Action {
	cur := &obs

	if a.hasPending {
		a.collector.Collect(Transition{
			State:     a.pendingCoord,
			Successor: coordOf(cur),
			Action:    a.pendingAction,
			Reward:    reward(cur),
			Terminal:  isTerminal(cur),
		})
	}

	var action *grid_world.Action
	if a.rng.Float64() <= a.epsilon {
		action = randomAction(cur, a.rng)
	} else {
		_, _ = a.inferenceModel.Infer(func(vt *ValueTable) (any, error) {
			_, act := greedySuccessor(a.dynGrid, vt, cur)
			action = act
			return nil, nil
		})
	}

	if isTerminal(cur) {
		a.hasPending = false
	} else {
		a.pendingCoord = coordOf(cur)
		a.pendingAction = *action
		a.hasPending = true
	}
	return action
}

func (a *Agent) Teardown() {
	a.collectors.Release(a.collectorName)
}

func (a *Agent) OnPaused()  {}
func (a *Agent) OnResumed() {}
