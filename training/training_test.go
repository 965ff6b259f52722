package training_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/agentloop/agentloop/internal/agentlog"
	"github.com/agentloop/agentloop/threadcontrol"
	"github.com/agentloop/agentloop/trainer"
	"github.com/agentloop/agentloop/training"
)

type countingTrainer struct {
	trainer.Base
	trainable  bool
	trainCalls int
	synced     []*fakeSyncable
	model      *fakeSyncable
}

func (t *countingTrainer) IsTrainable() bool { return t.trainable }
func (t *countingTrainer) Train()            { t.trainCalls++ }
func (t *countingTrainer) TrainedModels() []training.Syncable {
	return []training.Syncable{t.model}
}

type fakeSyncable struct{ syncCalls int }

func (f *fakeSyncable) Sync() { f.syncCalls++ }

type countingDataUsers struct{ updates int }

func (d *countingDataUsers) UpdateAll() { d.updates++ }

func TestTrainingThreadRunsATrainableTrainerAndSyncsItsModels(t *testing.T) {
	Convey("Given one trainable trainer registered with the training thread", t, func() {
		controller := threadcontrol.NewController()
		trainers := trainer.NewTrainersDict()
		model := &fakeSyncable{}
		tr := &countingTrainer{trainable: true, model: model}
		trainers.Add("only", tr)
		dataUsers := &countingDataUsers{}

		log := agentlog.New(nil)
		th, err := training.New(controller.ReadOnly(), trainers, dataUsers, log)
		So(err, ShouldBeNil)

		done := make(chan error, 1)
		go func() { done <- th.Run() }()

		So(waitUntil(func() bool { return tr.trainCalls >= 1 }, 2*time.Second), ShouldBeTrue)
		controller.Shutdown()

		select {
		case err := <-done:
			So(err, ShouldBeNil)
		case <-time.After(2 * time.Second):
			t.Fatal("training thread did not stop")
		}

		Convey("the trainer ran and its reported model was synced each time", func() {
			So(tr.trainCalls, ShouldBeGreaterThanOrEqualTo, 1)
			So(model.syncCalls, ShouldEqual, tr.trainCalls)
		})

		Convey("data users were drained every tick", func() {
			So(dataUsers.updates, ShouldBeGreaterThanOrEqualTo, tr.trainCalls)
		})
	})
}

func TestTrainingThreadIdlesWhenNothingIsTrainable(t *testing.T) {
	Convey("Given a trainer that is never trainable", t, func() {
		controller := threadcontrol.NewController()
		trainers := trainer.NewTrainersDict()
		tr := &countingTrainer{trainable: false, model: &fakeSyncable{}}
		trainers.Add("idle", tr)
		dataUsers := &countingDataUsers{}

		log := agentlog.New(nil)
		th, err := training.New(controller.ReadOnly(), trainers, dataUsers, log)
		So(err, ShouldBeNil)

		done := make(chan error, 1)
		go func() { done <- th.Run() }()

		time.Sleep(50 * time.Millisecond)
		controller.Shutdown()

		select {
		case err := <-done:
			So(err, ShouldBeNil)
		case <-time.After(2 * time.Second):
			t.Fatal("training thread did not stop")
		}

		Convey("Train was never called", func() {
			So(tr.trainCalls, ShouldEqual, 0)
		})
	})
}

func waitUntil(cond func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}
