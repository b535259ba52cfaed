package rng

import "fmt"

// ChooseTwoRange returns two different positions of seq, in position order.
func ChooseTwoRange[T any](e *Engine, seq []T) (i, j int, err error) {
	if len(seq) < 2 {
		return 0, 0, fmt.Errorf("%w: two positions from a sequence of %d", ErrRangeInfeasible, len(seq))
	}
	return e.ChooseTwo(0, len(seq))
}

// SampleWithReplacement appends n elements of seq, each drawn independently
// and uniformly, to dst.
func SampleWithReplacement[T any](e *Engine, dst, seq []T, n int) ([]T, error) {
	if n < 0 {
		return dst, fmt.Errorf("%w: negative sample size %d", ErrSampleTooLarge, n)
	}
	if n == 0 {
		return dst, nil
	}
	if len(seq) == 0 {
		return dst, fmt.Errorf("%w: %d from an empty sequence", ErrSampleTooLarge, n)
	}
	for range n {
		dst = append(dst, seq[e.UniformInt(0, len(seq))])
	}
	return dst, nil
}

// SampleWithoutReplacement appends n elements of seq to dst such that no
// position of seq is used twice.
func SampleWithoutReplacement[T any](e *Engine, dst, seq []T, n int) ([]T, error) {
	if n < 0 || n > len(seq) {
		return dst, fmt.Errorf("%w: %d from a sequence of %d", ErrSampleTooLarge, n, len(seq))
	}
	var tr Tracker
	for range n {
		i, err := ChoiceWithoutReplacement(e, seq, &tr)
		if err != nil {
			return dst, err
		}
		dst = append(dst, seq[i])
	}
	return dst, nil
}

// Choice returns a uniformly selected position of seq. Repeated calls may
// return the same position.
func Choice[T any](e *Engine, seq []T) (int, error) {
	if len(seq) == 0 {
		return 0, fmt.Errorf("%w: choice from an empty sequence", ErrEmptyRange)
	}
	return e.UniformInt(0, len(seq)), nil
}

// Tracker records which positions of a sequence ChoiceWithoutReplacement has
// not yet returned. The zero value is ready to use and is bound to a sequence
// length on first use.
type Tracker struct {
	initialized bool
	length      int
	remaining   []int
}

// Remaining reports how many positions are still eligible. An uninitialized
// tracker reports -1.
func (t *Tracker) Remaining() int {
	if !t.initialized {
		return -1
	}
	return len(t.remaining)
}

// Exhausted reports whether every position has been returned.
func (t *Tracker) Exhausted() bool {
	return t.initialized && len(t.remaining) == 0
}

// Reset returns the tracker to its uninitialized state.
func (t *Tracker) Reset() {
	t.initialized = false
	t.length = 0
	t.remaining = t.remaining[:0]
}

func (t *Tracker) init(n int) {
	t.remaining = t.remaining[:0]
	for i := range n {
		t.remaining = append(t.remaining, i)
	}
	t.length = n
	t.initialized = true
}

// ChoiceWithoutReplacement returns a position of seq that tr has not yet
// produced and retires it. Once all positions are retired the tracker is
// exhausted and further calls fail with ErrTrackerExhausted.
func ChoiceWithoutReplacement[T any](e *Engine, seq []T, tr *Tracker) (int, error) {
	if tr == nil {
		return 0, fmt.Errorf("%w: nil tracker", ErrTrackerMismatch)
	}
	if !tr.initialized {
		if len(seq) == 0 {
			return 0, fmt.Errorf("%w: choice from an empty sequence", ErrEmptyRange)
		}
		tr.init(len(seq))
	}
	if tr.length != len(seq) {
		return 0, fmt.Errorf("%w: tracker length %d, sequence length %d", ErrTrackerMismatch, tr.length, len(seq))
	}
	if len(tr.remaining) == 0 {
		return 0, ErrTrackerExhausted
	}
	k := e.UniformInt(0, len(tr.remaining))
	pos := tr.remaining[k]
	last := len(tr.remaining) - 1
	tr.remaining[k] = tr.remaining[last]
	tr.remaining = tr.remaining[:last]
	return pos, nil
}

// Shuffle permutes seq in place (Fisher-Yates).
func Shuffle[T any](e *Engine, seq []T) {
	for i := len(seq) - 1; i > 0; i-- {
		j := e.UniformInt(0, i+1)
		seq[i], seq[j] = seq[j], seq[i]
	}
}
