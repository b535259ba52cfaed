// Package rng provides the seeded, checkpointable random engine every
// stochastic component of a simulation draws from.
//
// An Engine is not safe for concurrent use. Parallel workers either serialize
// their draws or own engines obtained from Derive.
package rng

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// pcgStream is the fixed second PCG seed word; only the first word varies
// with the user seed.
const pcgStream = 0xda3e39cb94b95bdb

// maxNonzeroAttempts bounds UniformRealNonzero's rejection loop.
const maxNonzeroAttempts = 1 << 16

var (
	ErrProbabilityRange = errors.New("probability outside [0,1]")
	ErrEmptyRange       = errors.New("empty range")
	ErrRangeInfeasible  = errors.New("range cannot satisfy request")
	ErrSampleTooLarge   = errors.New("sample larger than population")
	ErrTrackerExhausted = errors.New("replacement tracker exhausted")
	ErrTrackerMismatch  = errors.New("replacement tracker bound to a different sequence length")
	ErrInvalidState     = errors.New("invalid engine state")
)

// Engine is a deterministic pseudorandom source. Two engines reset with the
// same non-zero seed and driven through the same calls produce the same
// outputs.
type Engine struct {
	seed uint64
	src  *rand.PCG
	r    *rand.Rand
	now  func() time.Time
}

// New returns an engine seeded with seed. A zero seed selects a seed from the
// wall clock; Seed reports the value actually used.
func New(seed uint64) *Engine {
	e := &Engine{now: time.Now}
	e.Reset(seed)
	return e
}

// Reset reseeds the engine. All prior state is discarded.
func (e *Engine) Reset(seed uint64) {
	if seed == 0 {
		seed = uint64(e.clock().UnixNano())
		if seed == 0 {
			seed = 1
		}
	}
	e.seed = seed
	if e.src == nil {
		e.src = rand.NewPCG(seed, pcgStream)
		e.r = rand.New(e.src)
		return
	}
	e.src.Seed(seed, pcgStream)
}

func (e *Engine) clock() time.Time {
	if e.now == nil {
		return time.Now()
	}
	return e.now()
}

// Seed returns the seed the engine was last reset with.
func (e *Engine) Seed() uint64 {
	return e.seed
}

// P reports true with probability p. It panics if p is outside [0,1].
func (e *Engine) P(p float64) bool {
	if !(p >= 0 && p <= 1) {
		panic(fmt.Errorf("%w: %v", ErrProbabilityRange, p))
	}
	return e.r.Float64() < p
}

// Bit returns a fair coin flip.
func (e *Engine) Bit() bool {
	return e.r.Uint64()&1 == 1
}

// UniformReal returns a value drawn uniformly from [min, max).
func (e *Engine) UniformReal(min, max float64) float64 {
	return min + (max-min)*e.r.Float64()
}

// UniformRealNonzero is UniformReal redrawn until the result is non-zero.
// Ranges that can only produce zero, and ranges that keep producing zero for
// maxNonzeroAttempts draws, return ErrRangeInfeasible.
func (e *Engine) UniformRealNonzero(min, max float64) (float64, error) {
	if min == 0 && max == 0 {
		return 0, fmt.Errorf("%w: [%v, %v) only yields zero", ErrRangeInfeasible, min, max)
	}
	for range maxNonzeroAttempts {
		if v := e.UniformReal(min, max); v != 0 {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: no non-zero draw in [%v, %v) after %d attempts", ErrRangeInfeasible, min, max, maxNonzeroAttempts)
}

// NormalReal returns a normally distributed value with the given mean and
// standard deviation.
func (e *Engine) NormalReal(mean, sigma float64) float64 {
	return mean + sigma*e.r.NormFloat64()
}

// NormalInt is NormalReal rounded to the nearest integer, halves rounding up.
func (e *Engine) NormalInt(mean, sigma int) int {
	return int(math.Floor(e.NormalReal(float64(mean), float64(sigma)) + 0.5))
}

// UniformInt returns an integer in [min, max). max is never returned. It
// panics if max <= min.
func (e *Engine) UniformInt(min, max int) int {
	if max <= min {
		panic(fmt.Errorf("%w: [%d, %d)", ErrEmptyRange, min, max))
	}
	return min + int(e.r.Uint64N(uint64(max-min)))
}

// UniformInt64 returns an integer drawn from the full int64 range.
func (e *Engine) UniformInt64() int64 {
	return int64(e.r.Uint64())
}

// IntN returns an integer in [0, n), for use wherever a func(int) int source
// is expected.
func (e *Engine) IntN(n int) int {
	return e.UniformInt(0, n)
}

// IntGenerator draws integers from a fixed range without re-validating it on
// every call.
type IntGenerator struct {
	e   *Engine
	min int
	n   uint64
}

// UniformIntGenerator returns a reusable generator over [min, max).
func (e *Engine) UniformIntGenerator(min, max int) (*IntGenerator, error) {
	if max <= min {
		return nil, fmt.Errorf("%w: [%d, %d)", ErrEmptyRange, min, max)
	}
	return &IntGenerator{e: e, min: min, n: uint64(max - min)}, nil
}

// Next draws the next integer, advancing the parent engine.
func (g *IntGenerator) Next() int {
	return g.min + int(g.e.r.Uint64N(g.n))
}

// RealGenerator draws reals from a fixed range.
type RealGenerator struct {
	e        *Engine
	min, max float64
}

// UniformRealGenerator returns a reusable generator over [min, max).
func (e *Engine) UniformRealGenerator(min, max float64) *RealGenerator {
	return &RealGenerator{e: e, min: min, max: max}
}

// Next draws the next real, advancing the parent engine.
func (g *RealGenerator) Next() float64 {
	return g.e.UniformReal(g.min, g.max)
}

// GenerateDistinct appends n distinct integers drawn uniformly from
// [min, max) to dst, in draw order. Collisions are redrawn.
func (e *Engine) GenerateDistinct(dst []int, n, min, max int) ([]int, error) {
	if n < 0 {
		return dst, fmt.Errorf("%w: negative count %d", ErrRangeInfeasible, n)
	}
	if n == 0 {
		return dst, nil
	}
	if max <= min || uint64(n) > uint64(max-min) {
		return dst, fmt.Errorf("%w: %d distinct values from [%d, %d)", ErrRangeInfeasible, n, min, max)
	}
	seen := make(map[int]struct{}, n)
	for len(seen) < n {
		v := e.UniformInt(min, max)
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		dst = append(dst, v)
	}
	return dst, nil
}

// ChooseTwo returns two different integers from [min, max) with a < b.
func (e *Engine) ChooseTwo(min, max int) (a, b int, err error) {
	if max <= min || uint64(max-min) < 2 {
		return 0, 0, fmt.Errorf("%w: two distinct values from [%d, %d)", ErrRangeInfeasible, min, max)
	}
	a = e.UniformInt(min, max)
	b = e.UniformInt(min, max)
	for a == b {
		b = e.UniformInt(min, max)
	}
	if a > b {
		a, b = b, a
	}
	return a, b, nil
}

// Derive returns an independent engine for the given stream, seeded from
// this engine's seed. The receiver's state is not consumed.
func (e *Engine) Derive(stream uint64) *Engine {
	d := &Engine{now: e.now}
	d.Reset(DeriveSeed(e.seed, stream))
	return d
}

// DeriveSeed mixes a master seed and a stream identifier with the SplitMix64
// finalizer. The result is never zero.
func DeriveSeed(master, stream uint64) uint64 {
	x := master ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	if x == 0 {
		x = 0x9e3779b97f4a7c15
	}
	return x
}
