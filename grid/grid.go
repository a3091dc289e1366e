// Package grid implements the dense rectangular cell storage described in
// spec.md §3/§4.2: fixed dimensions, row-major storage, a pluggable
// boundary policy, and a GridView read accessor bound to a focal position.
package grid

import (
	"encoding/json"
	"fmt"

	"automaton/cell"
)

// Kind selects how out-of-range neighbor reads and raw Get calls resolve.
type Kind int

const (
	// Toroidal wraps indices modulo the grid's dimensions.
	Toroidal Kind = iota
	// Fixed returns a fixed default cell for any out-of-range access.
	Fixed
)

// BoundaryPolicy pairs a Kind with the default cell used for: Fixed
// out-of-range reads, and grid initialization (§3's Grid invariant that a
// new grid holds a valid Cell value at every index).
type BoundaryPolicy[S comparable] struct {
	Kind    Kind
	Default S
}

// NewToroidal returns a wrapping boundary policy. initDefault seeds every
// cell at construction time; a Toroidal policy never consults it afterward.
func NewToroidal[S comparable](initDefault S) BoundaryPolicy[S] {
	return BoundaryPolicy[S]{Kind: Toroidal, Default: initDefault}
}

// NewFixed returns a boundary policy that resolves any out-of-range access
// (including grid initialization) to defaultCell.
func NewFixed[S comparable](defaultCell S) BoundaryPolicy[S] {
	return BoundaryPolicy[S]{Kind: Fixed, Default: defaultCell}
}

// ErrOutOfRangePosition is returned by Set when the position falls outside
// the grid's dimensions; per spec.md §7 this is a caller bug, fatal to the
// operation.
var ErrOutOfRangePosition = fmt.Errorf("grid: position out of range")

// Grid is a dense nb_rows x nb_cols array of cells in row-major order.
// Size never changes after construction; grids are value-copyable via
// Clone, and not internally synchronized.
type Grid[S comparable] struct {
	dims     cell.Dimensions
	boundary BoundaryPolicy[S]
	cells    []S
}

// New allocates a grid of the given dimensions, every cell initialized to
// boundary.Default. dims.Rows and dims.Cols must both be positive.
func New[S comparable](dims cell.Dimensions, boundary BoundaryPolicy[S]) *Grid[S] {
	cells := make([]S, dims.Rows*dims.Cols)
	for i := range cells {
		cells[i] = boundary.Default
	}
	return &Grid[S]{dims: dims, boundary: boundary, cells: cells}
}

// Dim returns the grid's dimensions.
func (g *Grid[S]) Dim() cell.Dimensions {
	return g.dims
}

// Boundary returns the grid's boundary policy.
func (g *Grid[S]) Boundary() BoundaryPolicy[S] {
	return g.boundary
}

func (g *Grid[S]) index(p cell.Position) int {
	return p.Row*g.dims.Cols + p.Col
}

func (g *Grid[S]) inBounds(p cell.Position) bool {
	return p.Row >= 0 && p.Row < g.dims.Rows && p.Col >= 0 && p.Col < g.dims.Cols
}

// resolve applies the grid's boundary policy to a (possibly out-of-range)
// position, returning the position to read from and whether it should be
// read at all (false under Fixed means "use boundary.Default instead").
func (g *Grid[S]) resolve(p cell.Position) (cell.Position, bool) {
	if g.inBounds(p) {
		return p, true
	}
	if g.boundary.Kind == Toroidal {
		row := ((p.Row % g.dims.Rows) + g.dims.Rows) % g.dims.Rows
		col := ((p.Col % g.dims.Cols) + g.dims.Cols) % g.dims.Cols
		return cell.Position{Row: row, Col: col}, true
	}
	return cell.Position{}, false
}

// Get reads the cell at position, applying the boundary policy for
// positions outside the grid's dimensions.
func (g *Grid[S]) Get(p cell.Position) S {
	if resolved, ok := g.resolve(p); ok {
		return g.cells[g.index(resolved)]
	}
	return g.boundary.Default
}

// Set writes cell c at position p. p must be in-bounds; ErrOutOfRangePosition
// is returned otherwise.
func (g *Grid[S]) Set(p cell.Position, c S) error {
	if !g.inBounds(p) {
		return fmt.Errorf("%w: %+v", ErrOutOfRangePosition, p)
	}
	g.cells[g.index(p)] = c
	return nil
}

// GetMultiple resolves each offset in rels relative to focal under the
// grid's boundary policy, in input order.
func (g *Grid[S]) GetMultiple(focal cell.Position, rels []cell.RelCoords) []S {
	out := make([]S, len(rels))
	for i, rel := range rels {
		out[i] = g.Get(cell.Position{Row: focal.Row + rel.DRow, Col: focal.Col + rel.DCol})
	}
	return out
}

// View returns a read-only handle centred at position. The returned
// GridView must not outlive the read phase of a single generation.
func (g *Grid[S]) View(position cell.Position) GridView[S] {
	return GridView[S]{grid: g, focal: position}
}

// Clone returns a deep, independent copy of the grid.
func (g *Grid[S]) Clone() *Grid[S] {
	cells := make([]S, len(g.cells))
	copy(cells, g.cells)
	return &Grid[S]{dims: g.dims, boundary: g.boundary, cells: cells}
}

// Equal reports whether two grids have identical dimensions and cell
// contents. Boundary policy is not part of cell equality.
func (g *Grid[S]) Equal(other *Grid[S]) bool {
	if g.dims != other.dims || len(g.cells) != len(other.cells) {
		return false
	}
	for i, c := range g.cells {
		if c != other.cells[i] {
			return false
		}
	}
	return true
}

// Visit calls fn for every position in row-major order along with its cell.
func (g *Grid[S]) Visit(fn func(p cell.Position, c S)) {
	for row := 0; row < g.dims.Rows; row++ {
		for col := 0; col < g.dims.Cols; col++ {
			p := cell.Position{Row: row, Col: col}
			fn(p, g.cells[g.index(p)])
		}
	}
}

// jsonGrid is Grid's wire shape for the dashboard's /gen/{n} endpoint;
// Grid itself keeps its fields unexported since dims/cells must stay in
// lockstep, so JSON marshaling goes through this explicit mirror. Grid has
// no UnmarshalJSON.
type jsonGrid[S comparable] struct {
	Dims  cell.Dimensions `json:"dims"`
	Cells []S             `json:"cells"`
}

// MarshalJSON implements json.Marshaler, omitting the boundary policy
// since it is a construction-time parameter, not per-generation state.
func (g *Grid[S]) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonGrid[S]{Dims: g.dims, Cells: g.cells})
}

// GridView is a transient, read-only handle bound to a Grid and a focal
// position. It implements cell.View[S] so rule authors can write
// Update(view cell.View[S]) without importing package grid.
type GridView[S comparable] struct {
	grid  *Grid[S]
	focal cell.Position
}

// State returns the focal cell's own value.
func (v GridView[S]) State() S {
	return v.grid.Get(v.focal)
}

// Get reads the neighbor at the given offset from the focal position,
// applying the grid's boundary policy.
func (v GridView[S]) Get(rel cell.RelCoords) S {
	return v.grid.Get(cell.Position{Row: v.focal.Row + rel.DRow, Col: v.focal.Col + rel.DCol})
}

// GetMultiple resolves each offset relative to the focal position, in
// input order.
func (v GridView[S]) GetMultiple(rels []cell.RelCoords) []S {
	return v.grid.GetMultiple(v.focal, rels)
}

// Position returns the view's focal position.
func (v GridView[S]) Position() cell.Position {
	return v.focal
}
