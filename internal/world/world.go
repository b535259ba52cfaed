// Package world owns the substrate of one simulation run: the random engine,
// the population topology and the update counter, plus checkpointing of
// that state.
package world

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ealife/internal/model"
	"ealife/internal/rng"
	"ealife/internal/storage"
	"ealife/internal/topology"
)

var (
	ErrCheckpointNotFound = errors.New("checkpoint not found")
	ErrUnresolvedOrganism   = errors.New("organism in checkpoint could not be resolved")
	ErrUnidentifiedOrganism = errors.New("occupant cannot be recorded without an identifier")
)

// Identified is implemented by organisms that can be recorded in a
// checkpoint's occupancy list.
type Identified interface {
	ID() string
}

// Resolver maps an organism identifier from a checkpoint back to the
// population's organism.
type Resolver func(organismID string) (topology.Organism, bool)

// EpochFunc is one worker's share of a parallel phase. eng is private to the
// worker.
type EpochFunc func(ctx context.Context, worker int, eng *rng.Engine) error

type Option func(*World)

func WithLogger(logger *slog.Logger) Option {
	return func(w *World) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *World) {
		if now != nil {
			w.now = now
		}
	}
}

// World is not safe for concurrent use except through Epoch, whose workers
// never touch the shared engine.
type World struct {
	cfg    Config
	rng    *rng.Engine
	topo   *topology.WellMixed
	logger *slog.Logger
	now    func() time.Time
	update uint64
}

func New(cfg Config, opts ...Option) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w := &World{
		cfg:    cfg,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}

	w.rng = rng.New(cfg.Seed)
	w.topo = topology.New(w.rng)
	if err := w.topo.Initialize(cfg.Capacity); err != nil {
		return nil, fmt.Errorf("initialize topology: %w", err)
	}

	if cfg.Seed == 0 {
		w.logger.Warn("seeded from wall clock; reuse the seed to reproduce this run", "seed", w.rng.Seed())
	}
	w.logger.Info("world initialized", "seed", w.rng.Seed(), "capacity", cfg.Capacity, "workers", cfg.Workers)
	return w, nil
}

// RNG is the run's shared engine. Callers must not draw from it
// concurrently.
func (w *World) RNG() *rng.Engine {
	return w.rng
}

func (w *World) Topology() *topology.WellMixed {
	return w.topo
}

func (w *World) Seed() uint64 {
	return w.rng.Seed()
}

func (w *World) Update() uint64 {
	return w.update
}

// Advance moves the world to the next update.
func (w *World) Advance() uint64 {
	w.update++
	return w.update
}

// PlaceOffspring installs child at the first location of parent's
// neighborhood stream. Whatever occupied that location, the parent
// included, is marked not alive.
func (w *World) PlaceOffspring(parent, child topology.Organism) (*topology.Location, error) {
	if child == nil {
		return nil, errors.New("offspring is required")
	}
	nb, err := w.topo.Neighborhood(parent)
	if err != nil {
		return nil, err
	}
	if !nb.Next() {
		return nil, topology.ErrNotInitialized
	}
	loc := nb.Location()
	if err := w.topo.Replace(loc, child); err != nil {
		return nil, fmt.Errorf("place offspring at %d: %w", loc.Index(), err)
	}
	child.SetAlive(true)
	return loc, nil
}

// Kill empties loc, marking its occupant not alive.
func (w *World) Kill(loc *topology.Location) error {
	return w.topo.Replace(loc, nil)
}

// Epoch runs the configured number of workers in parallel. Worker i draws
// from an engine derived from the run seed, the current update and i, so the
// phase is reproducible regardless of goroutine scheduling. Replacements
// computed by the workers should be applied after Epoch returns.
func (w *World) Epoch(ctx context.Context, fn EpochFunc) error {
	if fn == nil {
		return errors.New("epoch function is required")
	}
	base := rng.DeriveSeed(w.rng.Seed(), w.update)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < w.cfg.Workers; i++ {
		worker := i
		eng := rng.New(rng.DeriveSeed(base, uint64(worker)))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, worker, eng)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("epoch at update %d: %w", w.update, err)
	}
	w.logger.Debug("epoch complete", "update", w.update, "workers", w.cfg.Workers)
	return nil
}

// Checkpoint saves the engine state, update counter and occupancy to store.
// Every occupant must implement Identified; otherwise nothing is saved.
func (w *World) Checkpoint(ctx context.Context, store storage.Store, runID string) (model.Checkpoint, error) {
	token, err := w.rng.Save()
	if err != nil {
		return model.Checkpoint{}, fmt.Errorf("save engine: %w", err)
	}

	var occupancy []model.OccupancyRecord
	for _, loc := range w.topo.Locations() {
		occ := loc.Occupant()
		if occ == nil {
			continue
		}
		ided, ok := occ.(Identified)
		if !ok {
			return model.Checkpoint{}, fmt.Errorf("%w: location %d", ErrUnidentifiedOrganism, loc.Index())
		}
		occupancy = append(occupancy, model.OccupancyRecord{Location: loc.Index(), OrganismID: ided.ID()})
	}

	checkpoint := model.Checkpoint{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		ID:        uuid.NewString(),
		RunID:     runID,
		Update:    w.update,
		Seed:      w.rng.Seed(),
		RNGState:  token,
		Capacity:  w.topo.Len(),
		Occupancy: occupancy,
		CreatedAt: w.now().UTC(),
	}
	if err := store.SaveCheckpoint(ctx, checkpoint); err != nil {
		return model.Checkpoint{}, fmt.Errorf("save checkpoint: %w", err)
	}
	w.logger.Info("checkpoint saved", "run", runID, "checkpoint", checkpoint.ID, "update", w.update, "occupied", len(occupancy))
	return checkpoint, nil
}

// Restore resumes from the checkpoint with the given id. resolve may be nil
// when the checkpoint records no occupancy.
func (w *World) Restore(ctx context.Context, store storage.Store, id string, resolve Resolver) error {
	checkpoint, ok, err := store.GetCheckpoint(ctx, id)
	if err != nil {
		return fmt.Errorf("load checkpoint %s: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrCheckpointNotFound, id)
	}
	return w.apply(checkpoint, resolve)
}

// RestoreLatest resumes from the run's most advanced checkpoint.
func (w *World) RestoreLatest(ctx context.Context, store storage.Store, runID string, resolve Resolver) error {
	checkpoint, ok, err := store.LatestCheckpoint(ctx, runID)
	if err != nil {
		return fmt.Errorf("load latest checkpoint of %s: %w", runID, err)
	}
	if !ok {
		return fmt.Errorf("%w: run %s", ErrCheckpointNotFound, runID)
	}
	return w.apply(checkpoint, resolve)
}

func (w *World) apply(checkpoint model.Checkpoint, resolve Resolver) error {
	if checkpoint.Capacity <= 0 {
		return fmt.Errorf("%w: %d", topology.ErrInvalidCapacity, checkpoint.Capacity)
	}
	organisms := make([]topology.Organism, len(checkpoint.Occupancy))
	used := make(map[int]bool, len(checkpoint.Occupancy))
	for i, rec := range checkpoint.Occupancy {
		if rec.Location < 0 || rec.Location >= checkpoint.Capacity {
			return fmt.Errorf("%w: location %d of %d", topology.ErrLocationRange, rec.Location, checkpoint.Capacity)
		}
		if used[rec.Location] {
			return fmt.Errorf("location %d recorded twice in checkpoint %s", rec.Location, checkpoint.ID)
		}
		used[rec.Location] = true
		if resolve == nil {
			return fmt.Errorf("%w: %s (no resolver)", ErrUnresolvedOrganism, rec.OrganismID)
		}
		org, ok := resolve(rec.OrganismID)
		if !ok || org == nil {
			return fmt.Errorf("%w: %s", ErrUnresolvedOrganism, rec.OrganismID)
		}
		organisms[i] = org
	}

	// Load leaves the engine untouched on failure, so nothing has changed yet
	// if it errors.
	if err := w.rng.Load(checkpoint.RNGState); err != nil {
		return fmt.Errorf("restore engine: %w", err)
	}
	for _, loc := range w.topo.Locations() {
		if occ := loc.Occupant(); occ != nil {
			occ.SetAlive(false)
		}
	}
	if err := w.topo.Initialize(checkpoint.Capacity); err != nil {
		return fmt.Errorf("restore topology: %w", err)
	}
	for i, rec := range checkpoint.Occupancy {
		loc, err := w.topo.Location(rec.Location)
		if err != nil {
			return err
		}
		if err := w.topo.Replace(loc, organisms[i]); err != nil {
			return err
		}
		organisms[i].SetAlive(true)
	}

	w.update = checkpoint.Update
	w.cfg.Capacity = checkpoint.Capacity
	w.logger.Info("checkpoint restored", "run", checkpoint.RunID, "checkpoint", checkpoint.ID, "update", checkpoint.Update, "seed", w.rng.Seed())
	return nil
}
