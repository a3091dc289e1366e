// Package life implements Conway's Game of Life as the conformance fixture
// for the Cell contract (spec.md §4.1, §8), grounded directly on
// game_of_life.rs: a Moore (8-cell) neighborhood, B3/S23 update rule, and a
// two-glyph render style for dead/alive cells.
package life

import (
	"automaton/cell"
	"automaton/grid"
)

// State is a single Game of Life cell: Dead or Alive. Dead is the zero
// value so an unset grid position and an explicitly-dead cell are
// indistinguishable, matching the original source's States::Dead default.
type State uint8

const (
	Dead State = iota
	Alive
)

// moore is the static 8-neighbor template read by Update, listed in the
// same clockwise-from-northwest order as game_of_life.rs's neighbor vector.
var moore = []cell.RelCoords{
	{DRow: -1, DCol: -1},
	{DRow: -1, DCol: 0},
	{DRow: -1, DCol: 1},
	{DRow: 0, DCol: 1},
	{DRow: 1, DCol: 1},
	{DRow: 1, DCol: 0},
	{DRow: 1, DCol: -1},
	{DRow: 0, DCol: -1},
}

// Neighborhood returns the Moore neighborhood. The receiver's value is
// irrelevant; it may be called on a zero State.
func (State) Neighborhood() []cell.RelCoords {
	return moore
}

// Encode packs the state into a single byte for homogeneous bulk storage.
func (s State) Encode() byte {
	return byte(s)
}

// Decode reconstructs a State from its encoded byte.
func (State) Decode(e byte) State {
	return State(e)
}

// Default is the empty cell: Dead.
func (State) Default() State {
	return Dead
}

// Update is the standard B3/S23 rule: a live cell with two or three live
// neighbors survives; a dead cell with exactly three live neighbors is
// born; every other cell is dead next generation.
func (s State) Update(view cell.View[State]) State {
	alive := 0
	for _, n := range view.GetMultiple(moore) {
		if n == Alive {
			alive++
		}
	}

	if view.State() == Alive {
		if alive == 2 || alive == 3 {
			return Alive
		}
		return Dead
	}
	if alive == 3 {
		return Alive
	}
	return Dead
}

// Render exposes the dashboard glyph: '#' for alive, '.' for dead.
func (s State) Render() cell.StyledGlyph {
	if s == Alive {
		return cell.StyledGlyph{Glyph: '#', Style: "alive"}
	}
	return cell.StyledGlyph{Glyph: '.', Style: "dead"}
}

// NewGrid builds a grid of the given dimensions and boundary policy with
// every position in alive set to Alive and everything else left at the
// policy's default (ordinarily Dead).
func NewGrid(dims cell.Dimensions, boundary grid.BoundaryPolicy[State], alive []cell.Position) *grid.Grid[State] {
	g := grid.New(dims, boundary)
	for _, p := range alive {
		_ = g.Set(p, Alive)
	}
	return g
}
