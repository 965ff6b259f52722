package sample

import (
	"github.com/agentloop/agentloop/data"
	"github.com/agentloop/agentloop/model"
	"github.com/agentloop/agentloop/trainer"
	"github.com/agentloop/agentloop/training"
)

// Trainer is the alpha-MC value estimator: each run it reads the whole
// buffered transition stream (GetData leaves the buffer's contents in
// place, so episodes still buffered are applied again on later runs),
// reassembles episodes at Terminal boundaries, and
// applies the teacher's backward-pass update (accumulate reward from the
// terminal state back to the start, nudging each visited state's value
// toward the accumulated return by a fixed learning rate).
type Trainer struct {
	trainer.Base

	dataUsersDict *data.DataUsersDict
	dataUserName  string
	dataUser      *data.DataUser[Transition]

	model *model.TrainingModel[*ValueTable]
	eta   float64
	gamma float64
}

// NewTrainer constructs a trainer over the named DataUser (registered via
// data.AddUser under the same name elsewhere during wiring) and the given
// model pair. gamma discounts reward accumulated from later steps of an
// episode; eta controls how far each visited state's value moves toward
// the accumulated return.
func NewTrainer(dataUsersDict *data.DataUsersDict, dataUserName string, tm *model.TrainingModel[*ValueTable], eta, gamma float64) *Trainer {
	return &Trainer{dataUsersDict: dataUsersDict, dataUserName: dataUserName, model: tm, eta: eta, gamma: gamma}
}

// OnDataUsersAttached resolves this trainer's DataUser once the training
// thread's shared dict is available.
func (t *Trainer) OnDataUsersAttached() {
	t.dataUser, _ = data.User[Transition](t.dataUsersDict, t.dataUserName)
}

// IsTrainable reports whether there is anything buffered to learn from.
func (t *Trainer) IsTrainable() bool {
	return t.dataUser != nil && len(t.dataUser.GetData()) > 0
}

// Train runs one backward-pass update per buffered episode.
func (t *Trainer) Train() {
	samples := t.dataUser.GetData()
	_, _ = t.model.Forward(func(vt *ValueTable) (any, error) {
		var episode []Transition
		for _, s := range samples {
			episode = append(episode, s)
			if s.Terminal {
				applyEpisode(vt, episode, t.eta, t.gamma)
				episode = episode[:0]
			}
		}
		return nil, nil
	})
}

// TrainedModels reports the one model this trainer touched, so the
// training thread can sync it after Train returns.
func (t *Trainer) TrainedModels() []training.Syncable {
	return []training.Syncable{t.model}
}

// applyEpisode sets the terminal successor's value to its reward, then
// walks the episode backward accumulating discounted reward and nudging
// each visited state's value toward that accumulated return by eta.
func applyEpisode(vt *ValueTable, episode []Transition, eta, gamma float64) {
	if len(episode) == 0 {
		return
	}
	last := episode[len(episode)-1]
	vt.Set(last.Successor, last.Reward)

	rewardAcc := 0.0
	for i := len(episode) - 1; i >= 0; i-- {
		step := episode[i]
		rewardAcc = step.Reward + gamma*rewardAcc
		val := vt.Get(step.State)
		delta := eta * (rewardAcc - val)
		_, _ = vt.Add(step.State, delta)
	}
}
