package storage

import (
	"context"
	"errors"
	"sync"

	"ealife/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	checkpoints map[string]model.Checkpoint
	runs        map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.checkpoints = make(map[string]model.Checkpoint)
	s.runs = make(map[string][]string)
	return nil
}

func (s *MemoryStore) SaveCheckpoint(_ context.Context, checkpoint model.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	if checkpoint.ID == "" {
		return errors.New("checkpoint id is required")
	}
	if err := checkVersion(checkpoint.VersionedRecord); err != nil {
		return err
	}
	if prev, exists := s.checkpoints[checkpoint.ID]; exists {
		s.removeFromRun(prev.RunID, prev.ID)
	}
	checkpoint.Occupancy = append([]model.OccupancyRecord(nil), checkpoint.Occupancy...)
	s.checkpoints[checkpoint.ID] = checkpoint
	s.runs[checkpoint.RunID] = append(s.runs[checkpoint.RunID], checkpoint.ID)
	return nil
}

func (s *MemoryStore) GetCheckpoint(_ context.Context, id string) (model.Checkpoint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return model.Checkpoint{}, false, ErrNotInitialized
	}
	checkpoint, ok := s.checkpoints[id]
	if !ok {
		return model.Checkpoint{}, false, nil
	}
	checkpoint.Occupancy = append([]model.OccupancyRecord(nil), checkpoint.Occupancy...)
	return checkpoint, true, nil
}

// LatestCheckpoint returns the run's checkpoint with the highest update;
// among equal updates the most recently saved wins.
func (s *MemoryStore) LatestCheckpoint(ctx context.Context, runID string) (model.Checkpoint, bool, error) {
	s.mu.RLock()
	if !s.initialized {
		s.mu.RUnlock()
		return model.Checkpoint{}, false, ErrNotInitialized
	}
	var (
		latestID string
		found    bool
		best     uint64
	)
	for _, id := range s.runs[runID] {
		c := s.checkpoints[id]
		if !found || c.Update >= best {
			latestID, best, found = id, c.Update, true
		}
	}
	s.mu.RUnlock()

	if !found {
		return model.Checkpoint{}, false, nil
	}
	return s.GetCheckpoint(ctx, latestID)
}

func (s *MemoryStore) ListCheckpoints(_ context.Context, runID string) ([]model.CheckpointSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}
	ids := s.runs[runID]
	out := make([]model.CheckpointSummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.checkpoints[id].Summary())
	}
	sortSummaries(out)
	return out, nil
}

func (s *MemoryStore) DeleteRun(_ context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	for _, id := range s.runs[runID] {
		delete(s.checkpoints, id)
	}
	delete(s.runs, runID)
	return nil
}

func (s *MemoryStore) removeFromRun(runID, id string) {
	ids := s.runs[runID]
	for i, candidate := range ids {
		if candidate == id {
			s.runs[runID] = append(ids[:i], ids[i+1:]...)
			return
		}
	}
}
