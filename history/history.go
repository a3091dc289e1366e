// Package history implements the append-only diff log with periodic
// checkpoints described in spec.md §4.5, grounded directly on
// universe_history.rs's UniverseHistory: checkpoints[0] is the initial
// grid, a checkpoint is appended every f_check pushes (after the diff
// append, preserving the alignment spec.md §9 calls out), and generation
// reconstruction replays from the nearest checkpoint.
package history

import (
	"errors"
	"fmt"

	"automaton/diff"
	"automaton/grid"
)

// ErrInvalidRange is returned by GetDiff when refGen > targetGen.
var ErrInvalidRange = errors.New("history: ref generation must not exceed target generation")

// History owns the initial grid's checkpoint, the full diff log, and every
// f_check-th checkpoint thereafter. It is not internally synchronized;
// package historyservice is the only intended single-writer owner.
type History[S comparable] struct {
	last        *grid.Grid[S]
	diffs       []diff.Diff[S]
	checkpoints []*grid.Grid[S]
	fCheck      int
}

// New starts a history at generation 0 with the given initial grid.
// fCheck == 0 means "never checkpoint beyond generation 0": every
// reconstruction replays from the start. fCheck == k bounds reconstruction
// to at most k diff applications.
func New[S comparable](initial *grid.Grid[S], fCheck int) *History[S] {
	return &History[S]{
		last:        initial,
		checkpoints: []*grid.Grid[S]{initial},
		fCheck:      fCheck,
	}
}

// Len returns the number of generations pushed (i.e. the generation index
// of the last grid).
func (h *History[S]) Len() int {
	return len(h.diffs)
}

// Push records the diff between the current last generation and next,
// appends it to the log, and — if fCheck > 0 and this push lands on a
// checkpoint boundary — appends next as a checkpoint. The checkpoint write
// happens after the diff append so checkpoints[i] always aligns with the
// grid after i*fCheck diffs.
func (h *History[S]) Push(next *grid.Grid[S]) error {
	d, err := diff.Compute(h.last, next)
	if err != nil {
		return err
	}
	h.diffs = append(h.diffs, d)
	if h.fCheck > 0 && len(h.diffs)%h.fCheck == 0 {
		h.checkpoints = append(h.checkpoints, next)
	}
	h.last = next
	return nil
}

// GetGen reconstructs the grid at generation gen, or (nil, false) if gen
// exceeds the number of generations pushed so far.
func (h *History[S]) GetGen(gen int) (*grid.Grid[S], bool) {
	n := len(h.diffs)
	if gen > n {
		return nil, false
	}
	if gen == n {
		return h.last, true
	}
	if h.fCheck > 0 {
		i := gen / h.fCheck
		k := gen % h.fCheck
		start := i * h.fCheck
		stacked := diff.Stack(h.diffs[start : start+k]...)
		result, err := diff.Apply(h.checkpoints[i], stacked)
		if err != nil {
			return nil, false
		}
		return result, true
	}
	stacked := diff.Stack(h.diffs[0:gen]...)
	result, err := diff.Apply(h.checkpoints[0], stacked)
	if err != nil {
		return nil, false
	}
	return result, true
}

// GetDiff returns the composed diff spanning [refGen, targetGen). ok is
// false if targetGen exceeds the number of generations pushed so far (not
// an error: the caller simply hasn't waited long enough). err is non-nil
// only for the caller bug of refGen > targetGen.
func (h *History[S]) GetDiff(refGen, targetGen int) (d diff.Diff[S], ok bool, err error) {
	if refGen > targetGen {
		return diff.Diff[S]{}, false, fmt.Errorf("%w: ref=%d target=%d", ErrInvalidRange, refGen, targetGen)
	}
	if targetGen > len(h.diffs) {
		return diff.Diff[S]{}, false, nil
	}
	return diff.Stack(h.diffs[refGen:targetGen]...), true, nil
}
