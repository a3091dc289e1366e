package diff

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"automaton/cell"
	"automaton/grid"
)

func gridOf(dims cell.Dimensions, live ...cell.Position) *grid.Grid[int] {
	g := grid.New(dims, grid.NewFixed(0))
	for _, p := range live {
		_ = g.Set(p, 1)
	}
	return g
}

func TestComputeAndApply(t *testing.T) {
	Convey("Given two grids differing at one position", t, func() {
		dims := cell.Dimensions{Rows: 2, Cols: 2}
		before := gridOf(dims)
		after := gridOf(dims, cell.Position{Row: 0, Col: 1})

		d, err := Compute(before, after)
		So(err, ShouldBeNil)
		So(d.Len(), ShouldEqual, 1)

		Convey("Apply reproduces after from before", func() {
			out, err := Apply(before, d)
			So(err, ShouldBeNil)
			So(out.Equal(after), ShouldBeTrue)
		})

		Convey("Apply rejects a grid that doesn't match the recorded before-state", func() {
			wrong := gridOf(dims, cell.Position{Row: 0, Col: 1})
			_, err := Apply(wrong, d)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given identical grids", t, func() {
		dims := cell.Dimensions{Rows: 2, Cols: 2}
		g := gridOf(dims, cell.Position{Row: 1, Col: 1})

		Convey("Compute returns the empty diff", func() {
			d, err := Compute(g, g.Clone())
			So(err, ShouldBeNil)
			So(d.Len(), ShouldEqual, 0)
		})
	})

	Convey("Given grids of mismatched dimensions", t, func() {
		a := grid.New(cell.Dimensions{Rows: 2, Cols: 2}, grid.NewFixed(0))
		b := grid.New(cell.Dimensions{Rows: 3, Cols: 3}, grid.NewFixed(0))

		Convey("Compute reports a dimension mismatch", func() {
			_, err := Compute(a, b)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestStack(t *testing.T) {
	Convey("Given a cell that flips then flips back", t, func() {
		dims := cell.Dimensions{Rows: 1, Cols: 2}
		g0 := gridOf(dims)
		g1 := gridOf(dims, cell.Position{Row: 0, Col: 0})
		g2 := gridOf(dims)

		d1, _ := Compute(g0, g1)
		d2, _ := Compute(g1, g2)

		Convey("Stacking both diffs is the identity", func() {
			stacked := Stack(d1, d2)
			So(stacked.Len(), ShouldEqual, 0)
			So(stacked.Equal(Empty[int]()), ShouldBeTrue)
		})
	})

	Convey("Given two diffs touching disjoint positions", t, func() {
		dims := cell.Dimensions{Rows: 1, Cols: 2}
		g0 := gridOf(dims)
		g1 := gridOf(dims, cell.Position{Row: 0, Col: 0})
		g2 := gridOf(dims, cell.Position{Row: 0, Col: 0}, cell.Position{Row: 0, Col: 1})

		d1, _ := Compute(g0, g1)
		d2, _ := Compute(g1, g2)

		Convey("Stacking preserves both entries", func() {
			stacked := Stack(d1, d2)
			So(stacked.Len(), ShouldEqual, 2)

			out, err := Apply(g0, stacked)
			So(err, ShouldBeNil)
			So(out.Equal(g2), ShouldBeTrue)
		})
	})

	Convey("Stacking no diffs returns the identity", t, func() {
		So(Stack[int]().Len(), ShouldEqual, 0)
	})
}
