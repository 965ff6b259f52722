// Package training implements the TRAINING background thread of spec §4.8:
// on each tick it asks the trainers dict for the next trainable trainer,
// runs it, then syncs every training model that trainer retrieved during
// the run, per the sync protocol of spec §4.9.
package training

import (
	"time"

	"github.com/agentloop/agentloop/internal/agentlog"
	"github.com/agentloop/agentloop/threadcontrol"
	"github.com/agentloop/agentloop/trainer"
)

// idleSleep is how long the training thread rests when no trainer in the
// current rotation is trainable, so it doesn't busy-spin.
const idleSleep = 10 * time.Millisecond

// Syncable is the capability a model pair exposes to the training thread:
// reconcile its published inference copy after a training run, satisfied by
// *model.TrainingModel[M] for any M.
type Syncable interface {
	Sync()
}

// ModelsAccessor lets a trainer report which models it touched during the
// Train() call just completed, so the training thread can sync exactly
// those and no others.
type ModelsAccessor interface {
	TrainedModels() []Syncable
}

// DataUsersDict is the minimal surface the training thread needs to drain
// producer samples into buffers before each trainer run, satisfied by
// *data.DataUsersDict.
type DataUsersDict interface {
	UpdateAll()
}

// Thread is the TRAINING background thread.
type Thread struct {
	bg        *threadcontrol.BackgroundThread
	trainers  *trainer.TrainersDict
	dataUsers DataUsersDict
	log       *agentlog.Logger
}

// New constructs a training Thread over the given trainers dict and data
// users dict.
func New(controller *threadcontrol.ReadOnlyController, trainers *trainer.TrainersDict, dataUsers DataUsersDict, log *agentlog.Logger) (*Thread, error) {
	bg, err := threadcontrol.NewBackgroundThread(threadcontrol.ThreadTraining, controller)
	if err != nil {
		return nil, err
	}
	return &Thread{bg: bg, trainers: trainers, dataUsers: dataUsers, log: agentlog.Named(log, "training")}, nil
}

// Status exposes the underlying worker status for StatusesMonitor registration.
func (t *Thread) Status() *threadcontrol.Status { return t.bg.Status() }

// Run drives the thread to completion (blocking); call it on its own goroutine.
func (t *Thread) Run() error {
	return t.bg.Run(t)
}

func (t *Thread) OnStart() error {
	t.log.Info().Log("training thread starting")
	for _, tr := range t.trainers.All() {
		tr.OnTrainingModelsAttached()
		tr.OnDataUsersAttached()
		tr.Setup()
	}
	return nil
}

func (t *Thread) OnTick() error {
	t.dataUsers.UpdateAll()

	name, tr, ok := t.trainers.GetTrainableTrainer()
	if !ok {
		time.Sleep(idleSleep)
		return nil
	}

	tr.Train()

	if accessor, ok := tr.(ModelsAccessor); ok {
		for _, m := range accessor.TrainedModels() {
			m.Sync()
		}
	}

	t.log.Debug().Str("trainer", name).Log("ran trainer")
	return nil
}

func (t *Thread) OnEnd() error {
	t.log.Info().Log("training thread ending")
	return nil
}

func (t *Thread) OnFinally() {
	for _, tr := range t.trainers.All() {
		tr.Teardown()
	}
	t.log.Info().Log("training thread stopped")
}
