package storage

import (
	"context"

	"ealife/internal/model"
)

// Store persists substrate checkpoints. Implementations keep every
// checkpoint of a run so a run can be resumed from any of them.
type Store interface {
	Init(ctx context.Context) error
	SaveCheckpoint(ctx context.Context, checkpoint model.Checkpoint) error
	GetCheckpoint(ctx context.Context, id string) (model.Checkpoint, bool, error)
	LatestCheckpoint(ctx context.Context, runID string) (model.Checkpoint, bool, error)
	ListCheckpoints(ctx context.Context, runID string) ([]model.CheckpointSummary, error)
	DeleteRun(ctx context.Context, runID string) error
}
