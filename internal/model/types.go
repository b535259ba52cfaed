package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Checkpoint is the persisted substrate state needed to resume a run
// exactly: the random engine token, the update counter and which organism
// occupied each location.
type Checkpoint struct {
	VersionedRecord
	ID        string            `json:"id"`
	RunID     string            `json:"run_id"`
	Update    uint64            `json:"update"`
	Seed      uint64            `json:"seed"`
	RNGState  string            `json:"rng_state"`
	Capacity  int               `json:"capacity"`
	Occupancy []OccupancyRecord `json:"occupancy"`
	CreatedAt time.Time         `json:"created_at"`
}

// OccupancyRecord binds an organism identifier to a location index.
type OccupancyRecord struct {
	Location   int    `json:"location"`
	OrganismID string `json:"organism_id"`
}

type CheckpointSummary struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Update    uint64    `json:"update"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary strips the payload from a checkpoint.
func (c Checkpoint) Summary() CheckpointSummary {
	return CheckpointSummary{ID: c.ID, RunID: c.RunID, Update: c.Update, CreatedAt: c.CreatedAt}
}
