package persistence

import (
	"context"
	"os"
	"time"

	channerics "github.com/niceyeti/channerics/channels"

	"github.com/agentloop/agentloop/internal/apperr"
)

// retentionPollInterval is the fixed sweep cadence from spec §4.12.
const retentionPollInterval = 100 * time.Millisecond

// RetentionKeeper periodically scans a StateStore's checkpoints and deletes
// all but the newest maxKeep, using channerics.NewTicker the way
// tabular/server/fastview/client.go drives its ping loop off a ticker
// channel built the same way.
type RetentionKeeper struct {
	store   *StateStore
	maxKeep int
}

// NewRetentionKeeper constructs a keeper. maxKeep must be >= 0.
func NewRetentionKeeper(store *StateStore, maxKeep int) (*RetentionKeeper, error) {
	if maxKeep < 0 {
		return nil, apperr.Configuration("retention keeper: max_keep must be >= 0, got %d", maxKeep)
	}
	return &RetentionKeeper{store: store, maxKeep: maxKeep}, nil
}

// Sweep deletes every checkpoint beyond the newest maxKeep, once.
func (k *RetentionKeeper) Sweep() error {
	checkpoints, err := k.store.ListCheckpoints()
	if err != nil {
		return err
	}
	if len(checkpoints) <= k.maxKeep {
		return nil
	}
	for _, stale := range checkpoints[k.maxKeep:] {
		if err := os.RemoveAll(stale); err != nil {
			return apperr.State("retention keeper: removing %q: %v", stale, err)
		}
	}
	return nil
}

// Run sweeps on every tick of retentionPollInterval until ctx is cancelled.
func (k *RetentionKeeper) Run(ctx context.Context) {
	ticker := channerics.NewTicker(ctx.Done(), retentionPollInterval)
	for range ticker {
		_ = k.Sweep()
	}
}
