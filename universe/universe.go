// Package universe couples a grid with a rule and produces successive
// generations (spec.md §4.3). Step is the sequential reference
// implementation; StepParallel fans per-row computation out across worker
// goroutines the way reinforcement/learning.go's agent_worker pool does,
// fanning results back in with channerics.Merge, since the rule is pure and
// the source grid is read-only for the duration of a step.
package universe

import (
	channerics "github.com/niceyeti/channerics/channels"

	"automaton/cell"
	"automaton/grid"
)

// Universe carries a grid; its Cell type characterizes the instantiation.
// It is value-typed per spec.md §4.2's lifecycle: Step and StepParallel
// never mutate the receiver, they return a new Universe wrapping the next
// generation's grid.
type Universe[S cell.Cell[S, E], E any] struct {
	Grid *grid.Grid[S]
}

// New wraps an initial grid in a Universe.
func New[S cell.Cell[S, E], E any](g *grid.Grid[S]) *Universe[S, E] {
	return &Universe[S, E]{Grid: g}
}

// Step allocates a fresh grid of identical dimensions and boundary policy
// and, for each position in row-major order, writes Cell.Update(view) into
// it. For a fixed initial grid and rule, Step^n is bit-identical across
// runs.
func (u *Universe[S, E]) Step() *Universe[S, E] {
	out := grid.New(u.Grid.Dim(), u.Grid.Boundary())
	u.Grid.Visit(func(p cell.Position, current S) {
		view := u.Grid.View(p)
		next := current.Update(view)
		// The output grid has identical dimensions, so every position Visit
		// yields is in-bounds by construction.
		_ = out.Set(p, next)
	})
	return &Universe[S, E]{Grid: out}
}

// rowResult carries one worker's fully computed row back to the merger.
type rowResult[S any] struct {
	row   int
	cells []S
}

func computeRow[S cell.Cell[S, E], E any](g *grid.Grid[S], row, cols int) []S {
	cells := make([]S, cols)
	for col := 0; col < cols; col++ {
		p := cell.Position{Row: row, Col: col}
		view := g.View(p)
		cells[col] = view.State().Update(view)
	}
	return cells
}

// StepParallel is equivalent to Step but partitions rows across nworkers
// goroutines. Row indices are claimed from a shared channel; each worker
// computes whole rows and emits them on its own results channel; the
// per-worker channels are fanned into one with channerics.Merge and written
// into the output grid as they arrive. Row arrival order is irrelevant
// since positions are independent (spec.md §4.3's concurrency allowance).
func (u *Universe[S, E]) StepParallel(done <-chan struct{}, nworkers int) *Universe[S, E] {
	g := u.Grid
	dims := g.Dim()
	out := grid.New(dims, g.Boundary())
	if nworkers < 1 {
		nworkers = 1
	}
	if nworkers > dims.Rows {
		nworkers = dims.Rows
	}

	rowIndices := make(chan int)
	go func() {
		defer close(rowIndices)
		for r := 0; r < dims.Rows; r++ {
			select {
			case rowIndices <- r:
			case <-done:
				return
			}
		}
	}()

	workers := make([]<-chan rowResult[S], nworkers)
	for i := 0; i < nworkers; i++ {
		results := make(chan rowResult[S])
		go func() {
			defer close(results)
			for row := range channerics.OrDone(done, rowIndices) {
				res := rowResult[S]{row: row, cells: computeRow[S, E](g, row, dims.Cols)}
				select {
				case results <- res:
				case <-done:
					return
				}
			}
		}()
		workers[i] = results
	}

	for res := range channerics.Merge(done, workers...) {
		for col, c := range res.cells {
			_ = out.Set(cell.Position{Row: res.row, Col: col}, c)
		}
	}

	return &Universe[S, E]{Grid: out}
}
