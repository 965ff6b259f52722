package sample

import (
	"github.com/agentloop/agentloop/data"
	"github.com/agentloop/agentloop/grid_world"
	"github.com/agentloop/agentloop/interaction"
	"github.com/agentloop/agentloop/model"
)

// Clock is the minimal time source the transition buffer needs to
// timestamp collected samples, satisfied by *clock.Clock.
type Clock interface {
	Time() float64
}

// DataUserName identifies the one DataUser/DataCollector pair shared by
// the agent and the trainer; also the conventional buffer name a config
// document's buffers section uses to configure it.
const DataUserName = "transitions"

// System bundles every component Build constructs: an Interaction ready
// for an inference thread, a Trainer ready for a training thread, and the
// shared model pair and DataUsersDict the launcher registers alongside
// them.
type System struct {
	Loop          *interaction.Interaction[grid_world.State, *grid_world.Action]
	Trainer       *Trainer
	Model         *model.TrainingModel[*ValueTable]
	DataUsersDict *data.DataUsersDict
}

// Build wires one racetrack environment, one epsilon-greedy agent, and one
// alpha-MC trainer around a shared model pair — the framework-consuming
// demonstration named in SPEC_FULL.md's supplemented features, redesigned
// from the teacher's monolithic per-goroutine episode generator into the
// framework's generic Agent/Environment/Trainer/TrainingModel
// abstractions.
func Build(clock Clock, track []string, buffer data.Buffer[Transition], epsilon, eta, gamma float64, seed int64) (*System, error) {
	env := NewEnvironment(track, seed)
	width, height := env.Width(), env.Height()

	trainingTable := NewValueTable(width, height, grid_world.COLLISION_REWARD)
	inferenceTable := NewValueTable(width, height, grid_world.COLLISION_REWARD)

	tm, err := model.New[*ValueTable](trainingTable, true, inferenceTable)
	if err != nil {
		return nil, err
	}
	inferenceModel, err := tm.InferenceModel()
	if err != nil {
		return nil, err
	}

	dataUsersDict := data.NewDataUsersDict()
	du := data.NewDataUser[Transition](clock, buffer)
	data.AddUser[Transition](dataUsersDict, DataUserName, du)

	agent := NewAgent(track, inferenceModel, dataUsersDict.Collectors(), DataUserName, epsilon, seed+1)
	loop := interaction.New[grid_world.State, *grid_world.Action](agent, env)

	tr := NewTrainer(dataUsersDict, DataUserName, tm, eta, gamma)

	return &System{
		Loop:          loop,
		Trainer:       tr,
		Model:         tm,
		DataUsersDict: dataUsersDict,
	}, nil
}
