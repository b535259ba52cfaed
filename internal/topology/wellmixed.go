// Package topology places organisms into a fixed set of population slots.
//
// WellMixed has no adjacency: every location is equally likely to be any
// organism's neighbor, and neighborhoods are random streams over the whole
// location set.
package topology

import (
	"errors"
	"fmt"
	"iter"
	"sync"

	"ealife/internal/rng"
)

var (
	ErrNotInitialized  = errors.New("topology is not initialized")
	ErrInvalidCapacity = errors.New("topology capacity must be positive")
	ErrForeignLocation = errors.New("location does not belong to this topology")
	ErrLocationRange   = errors.New("location index out of range")
)

// Organism is the liveness boundary the topology needs from a population
// member. The topology never destroys an organism; it only clears its alive
// flag when displacing it.
type Organism interface {
	Alive() bool
	SetAlive(alive bool)
}

// Location is one population slot. Its index is fixed once the topology is
// initialized; at most one organism occupies it.
type Location struct {
	owner *WellMixed
	index int

	mu       sync.RWMutex
	occupant Organism
}

func (l *Location) Index() int {
	return l.index
}

// Occupant returns the organism bound to the location, or nil.
func (l *Location) Occupant() Organism {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.occupant
}

func (l *Location) Occupied() bool {
	return l.Occupant() != nil
}

// WellMixed is the well-mixed spatial model.
type WellMixed struct {
	rng *rng.Engine

	mu   sync.Mutex
	locs []*Location
}

// New returns an uninitialized topology that draws neighbors from engine.
func New(engine *rng.Engine) *WellMixed {
	return &WellMixed{rng: engine}
}

// Initialize allocates capacity empty locations, discarding any previous
// occupancy.
func (t *WellMixed) Initialize(capacity int) error {
	if capacity <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	if t.rng == nil {
		return errors.New("random engine is required")
	}
	locs := make([]*Location, capacity)
	for i := range locs {
		locs[i] = &Location{owner: t, index: i}
	}

	t.mu.Lock()
	t.locs = locs
	t.mu.Unlock()
	return nil
}

// Len returns the number of locations, zero before Initialize.
func (t *WellMixed) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.locs)
}

func (t *WellMixed) Location(i int) (*Location, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.locs == nil {
		return nil, ErrNotInitialized
	}
	if i < 0 || i >= len(t.locs) {
		return nil, fmt.Errorf("%w: %d of %d", ErrLocationRange, i, len(t.locs))
	}
	return t.locs[i], nil
}

// Locations returns the location set in index order.
func (t *WellMixed) Locations() []*Location {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Location, len(t.locs))
	copy(out, t.locs)
	return out
}

// Occupancy counts occupied locations.
func (t *WellMixed) Occupancy() int {
	n := 0
	for _, l := range t.Locations() {
		if l.Occupied() {
			n++
		}
	}
	return n
}

// Neighborhood returns the neighbor stream for org. In a well-mixed topology
// the stream ignores org: it yields Len() independent uniform draws, with
// replacement, from the whole location set.
func (t *WellMixed) Neighborhood(org Organism) (*Neighborhood, error) {
	n := t.Len()
	if n == 0 {
		return nil, ErrNotInitialized
	}
	return &Neighborhood{topo: t, quota: n, pos: -1}, nil
}

func (t *WellMixed) draw() *Location {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.locs[t.rng.UniformInt(0, len(t.locs))]
}

// Replace binds org to loc. A previous occupant is marked not alive and
// detached; reclaiming it is the population's job. A nil org empties the
// location.
func (t *WellMixed) Replace(loc *Location, org Organism) error {
	t.mu.Lock()
	size := len(t.locs)
	owned := loc != nil && loc.owner == t && loc.index < size && t.locs[loc.index] == loc
	t.mu.Unlock()
	if size == 0 {
		return ErrNotInitialized
	}
	if !owned {
		return ErrForeignLocation
	}

	loc.mu.Lock()
	defer loc.mu.Unlock()
	if loc.occupant != nil {
		loc.occupant.SetAlive(false)
	}
	loc.occupant = org
	return nil
}

// Neighborhood is a bounded, single-pass stream of neighbor draws. It is not
// an enumeration of the location set: a location may appear several times
// and others not at all. Each call to Location draws a fresh location, so
// dereferencing the same position twice yields two independent draws.
//
//	for nb.Next() {
//		loc := nb.Location()
//		...
//	}
type Neighborhood struct {
	topo  *WellMixed
	quota int
	pos   int
}

// Next advances the stream and reports whether a position remains.
func (n *Neighborhood) Next() bool {
	if n.pos+1 >= n.quota {
		n.pos = n.quota
		return false
	}
	n.pos++
	return true
}

// Location draws a location for the current position. It returns nil when
// the stream has not been advanced or is exhausted.
func (n *Neighborhood) Location() *Location {
	if n.pos < 0 || n.pos >= n.quota {
		return nil
	}
	return n.topo.draw()
}

// Remaining reports how many positions are left after the current one.
func (n *Neighborhood) Remaining() int {
	if n.pos >= n.quota {
		return 0
	}
	return n.quota - n.pos - 1
}

// Len is the stream's quota, the topology size at construction.
func (n *Neighborhood) Len() int {
	return n.quota
}

// All consumes the rest of the stream, drawing once per position.
func (n *Neighborhood) All() iter.Seq[*Location] {
	return func(yield func(*Location) bool) {
		for n.Next() {
			if !yield(n.Location()) {
				return
			}
		}
	}
}
