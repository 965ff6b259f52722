// Package model implements the double-buffered model pair and atomic-swap
// sync protocol of spec §4.9: a TrainingModel mutates a live instance while
// an InferenceModel wrapper publishes a second, frozen copy that the
// inference thread reads through a mutex; training takes that mutex only
// for the pointer swap inside Sync.
package model

import (
	"sync"

	"github.com/agentloop/agentloop/internal/apperr"
)

// Syncable is the capability a model instance must implement to take part in
// the sync protocol: entering/leaving eval mode, detaching/reattaching
// gradients, and copying parameters from another instance of the same shape.
// The numeric model layer itself (gradient descent, tensor storage) is out of
// scope per spec §1; this interface is the seam the core depends on.
type Syncable[M any] interface {
	// Eval puts the instance into evaluation mode (no gradient tracking
	// needed for inference).
	Eval()
	// Train puts the instance back into training mode.
	Train()
	// DetachGrads removes and returns a token capturing the instance's
	// current gradients, for later reattachment.
	DetachGrads() any
	// ReattachGrads restores gradients captured by a prior DetachGrads.
	ReattachGrads(token any)
	// CopyParamsFrom overwrites the receiver's parameters with src's.
	CopyParamsFrom(src M)
}

// InferenceModel is the published, concurrency-safe read side of a model
// pair. Its mutex guards the entire inference call, so a reader never
// observes a partially-swapped instance.
type InferenceModel[M any] struct {
	mu  sync.Mutex
	cur M
}

// NewInferenceModel wraps the given instance for inference.
func NewInferenceModel[M any](instance M) *InferenceModel[M] {
	return &InferenceModel[M]{cur: instance}
}

// Infer holds the wrapper's mutex for the entire call, so inference sees
// either the pre-sync or post-sync weights for the whole call, never a
// partial update.
func (im *InferenceModel[M]) Infer(fn func(M) (any, error)) (any, error) {
	im.mu.Lock()
	defer im.mu.Unlock()
	return fn(im.cur)
}

// swap atomically replaces the published instance, returning the previous
// one. Only called from TrainingModel.Sync, which is itself only ever
// called from the training thread.
func (im *InferenceModel[M]) swap(next M) (prev M) {
	im.mu.Lock()
	defer im.mu.Unlock()
	prev = im.cur
	im.cur = next
	return prev
}

// TrainingModel holds the live training instance and optionally publishes an
// InferenceModel wrapper over a second instance of the same shape, per
// spec §3's Model Pair data model.
type TrainingModel[M Syncable[M]] struct {
	training       M
	hasInference   bool
	inferenceOnly  bool
	inferenceModel *InferenceModel[M]
}

// Option configures a TrainingModel at construction.
type Option[M Syncable[M]] func(*TrainingModel[M])

// WithInferenceOnly marks the model as sharing its single instance directly
// with inference (no sync() is ever performed).
func WithInferenceOnly[M Syncable[M]]() Option[M] {
	return func(tm *TrainingModel[M]) { tm.inferenceOnly = true }
}

// New constructs a TrainingModel. If hasInference is true, inferenceInstance
// is published as a distinct instance reconciled by Sync (unless
// WithInferenceOnly is set, in which case trainingInstance is shared
// directly and inferenceInstance is ignored).
//
// inference_only without has_inference is a configuration error per spec §7.
func New[M Syncable[M]](trainingInstance M, hasInference bool, inferenceInstance M, opts ...Option[M]) (*TrainingModel[M], error) {
	tm := &TrainingModel[M]{training: trainingInstance, hasInference: hasInference}
	for _, o := range opts {
		o(tm)
	}
	if tm.inferenceOnly && !tm.hasInference {
		return nil, apperr.Configuration("model: inference_only requires has_inference")
	}
	if tm.hasInference {
		if tm.inferenceOnly {
			tm.inferenceModel = NewInferenceModel[M](trainingInstance)
		} else {
			tm.inferenceModel = NewInferenceModel[M](inferenceInstance)
		}
	}
	return tm, nil
}

// Forward runs the training-side forward pass on the live instance.
func (tm *TrainingModel[M]) Forward(fn func(M) (any, error)) (any, error) {
	return fn(tm.training)
}

// InferenceModel returns the published inference wrapper, or nil if
// has_inference is false.
func (tm *TrainingModel[M]) InferenceModel() (*InferenceModel[M], error) {
	if !tm.hasInference {
		return nil, apperr.State("model: has_inference is false, no inference model published")
	}
	return tm.inferenceModel, nil
}

// needSync reports whether Sync should do anything: only when the model
// has a distinct published instance to reconcile.
func (tm *TrainingModel[M]) needSync() bool {
	return tm.hasInference && !tm.inferenceOnly
}

// Sync runs the eight-step protocol of spec §4.9. It is a no-op unless
// has_inference && !inference_only. Must only be called from the training
// thread.
func (tm *TrainingModel[M]) Sync() {
	if !tm.needSync() {
		return
	}

	tm.training.Eval()
	grads := tm.training.DetachGrads()

	published := tm.training
	retired := tm.inferenceModel.swap(published)

	tm.training = retired
	tm.training.CopyParamsFrom(published)
	tm.training.ReattachGrads(grads)
	tm.training.Train()
}
