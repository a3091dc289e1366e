// Package diff implements the sparse before/after representation of the
// cells that changed between two grids, and its composition algebra
// (spec.md §4.4). It mirrors universe_history.rs's UniverseDiff::stack_mul,
// generalized here to a standalone, grid-type-parametric Diff.
package diff

import (
	"encoding/json"
	"errors"
	"fmt"

	"automaton/cell"
	"automaton/grid"
)

// entry records the before/after pair observed at a position.
type entry[S comparable] struct {
	before, after S
}

// Diff is a sparse position -> (before, after) map. Only positions where
// before != after are ever stored.
type Diff[S comparable] struct {
	entries map[cell.Position]entry[S]
}

// Empty returns the identity diff: applying it changes nothing.
func Empty[S comparable]() Diff[S] {
	return Diff[S]{entries: map[cell.Position]entry[S]{}}
}

// Len returns the number of positions this diff touches.
func (d Diff[S]) Len() int {
	return len(d.entries)
}

// Compute scans every position of before/after (which must share
// dimensions) and records an entry for each position where they differ.
func Compute[S comparable](before, after *grid.Grid[S]) (Diff[S], error) {
	if before.Dim() != after.Dim() {
		return Diff[S]{}, fmt.Errorf("diff: dimension mismatch %+v vs %+v", before.Dim(), after.Dim())
	}
	d := Empty[S]()
	before.Visit(func(p cell.Position, b S) {
		a := after.Get(p)
		if a != b {
			d.entries[p] = entry[S]{before: b, after: a}
		}
	})
	return d, nil
}

// ErrDiffMismatch indicates the grid passed to Apply does not match the
// diff's recorded "before" state: the history this diff came from has been
// corrupted or misapplied.
var ErrDiffMismatch = errors.New("diff: grid does not match recorded before-state")

// Apply returns a new grid with every diff entry's "after" value written at
// its position; all other positions are unchanged. Every entry's recorded
// "before" must equal the corresponding cell in g, else ErrDiffMismatch.
func Apply[S comparable](g *grid.Grid[S], d Diff[S]) (*grid.Grid[S], error) {
	out := g.Clone()
	for p, e := range d.entries {
		if g.Get(p) != e.before {
			return nil, fmt.Errorf("%w: at %+v", ErrDiffMismatch, p)
		}
		if err := out.Set(p, e.after); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Stack composes diffs left to right. For every position touched by any
// input, the composed entry keeps the earliest "before" and the latest
// "after"; positions where the net before == after are dropped. Stack is
// associative and Stack() == the identity diff.
func Stack[S comparable](diffs ...Diff[S]) Diff[S] {
	out := Empty[S]()
	for _, d := range diffs {
		for p, e := range d.entries {
			if existing, ok := out.entries[p]; ok {
				existing.after = e.after
				if existing.before == existing.after {
					delete(out.entries, p)
				} else {
					out.entries[p] = existing
				}
			} else {
				out.entries[p] = e
			}
		}
	}
	return out
}

// Equal reports whether two diffs record the same before/after pairs at
// the same positions.
func (d Diff[S]) Equal(other Diff[S]) bool {
	if len(d.entries) != len(other.entries) {
		return false
	}
	for p, e := range d.entries {
		oe, ok := other.entries[p]
		if !ok || oe != e {
			return false
		}
	}
	return true
}

// Positions returns the set of positions this diff touches, in no
// particular order.
func (d Diff[S]) Positions() []cell.Position {
	out := make([]cell.Position, 0, len(d.entries))
	for p := range d.entries {
		out = append(out, p)
	}
	return out
}

// jsonEntry is one position's before/after pair in the wire form below;
// cell.Position isn't valid as a JSON object key, so entries are encoded
// as an array instead of the internal map.
type jsonEntry[S comparable] struct {
	Position cell.Position `json:"position"`
	Before   S             `json:"before"`
	After    S             `json:"after"`
}

// MarshalJSON implements json.Marshaler for the /diff/{ref}/{target}
// endpoint.
func (d Diff[S]) MarshalJSON() ([]byte, error) {
	out := make([]jsonEntry[S], 0, len(d.entries))
	for p, e := range d.entries {
		out = append(out, jsonEntry[S]{Position: p, Before: e.before, After: e.after})
	}
	return json.Marshal(out)
}
