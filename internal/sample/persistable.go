package sample

import "github.com/agentloop/agentloop/model"

// ModelPersistable adapts a model pair's live training instance to
// persistence.Persistable by routing through Forward, so a checkpoint
// always captures whichever *ValueTable instance Sync has most recently
// made the training side, not a stale pointer captured at construction.
type ModelPersistable struct {
	model *model.TrainingModel[*ValueTable]
}

// NewModelPersistable wraps tm for registration with a persistence.StateStore.
func NewModelPersistable(tm *model.TrainingModel[*ValueTable]) *ModelPersistable {
	return &ModelPersistable{model: tm}
}

func (p *ModelPersistable) SaveState(path string) error {
	_, err := p.model.Forward(func(vt *ValueTable) (any, error) {
		return nil, vt.SaveState(path)
	})
	return err
}

func (p *ModelPersistable) LoadState(path string) error {
	_, err := p.model.Forward(func(vt *ValueTable) (any, error) {
		return nil, vt.LoadState(path)
	})
	return err
}
