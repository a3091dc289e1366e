package grid

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"automaton/cell"
)

func TestToroidalBoundary(t *testing.T) {
	Convey("Given a 3x3 toroidal grid", t, func() {
		dims := cell.Dimensions{Rows: 3, Cols: 3}
		g := New(dims, NewToroidal(0))
		So(g.Set(cell.Position{Row: 0, Col: 0}, 1), ShouldBeNil)
		So(g.Set(cell.Position{Row: 2, Col: 2}, 2), ShouldBeNil)

		Convey("Negative offsets wrap to the opposite edge", func() {
			So(g.Get(cell.Position{Row: -1, Col: -1}), ShouldEqual, 2)
		})

		Convey("Offsets past the far edge wrap back to the start", func() {
			So(g.Get(cell.Position{Row: 3, Col: 3}), ShouldEqual, 1)
		})
	})
}

func TestFixedBoundary(t *testing.T) {
	Convey("Given a 3x3 fixed-boundary grid", t, func() {
		dims := cell.Dimensions{Rows: 3, Cols: 3}
		g := New(dims, NewFixed(9))

		Convey("Out-of-range reads return the default", func() {
			So(g.Get(cell.Position{Row: -1, Col: 0}), ShouldEqual, 9)
			So(g.Get(cell.Position{Row: 3, Col: 0}), ShouldEqual, 9)
		})

		Convey("In-range cells default to the same value at construction", func() {
			So(g.Get(cell.Position{Row: 1, Col: 1}), ShouldEqual, 9)
		})

		Convey("Set rejects out-of-range positions", func() {
			err := g.Set(cell.Position{Row: -1, Col: 0}, 1)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestGetMultiple(t *testing.T) {
	Convey("Given a toroidal grid with one live cell", t, func() {
		dims := cell.Dimensions{Rows: 3, Cols: 3}
		g := New(dims, NewToroidal(0))
		So(g.Set(cell.Position{Row: 0, Col: 0}, 7), ShouldBeNil)

		Convey("GetMultiple resolves each offset independently, in order", func() {
			rels := []cell.RelCoords{{DRow: 0, DCol: 0}, {DRow: -1, DCol: -1}}
			got := g.GetMultiple(cell.Position{Row: 0, Col: 0}, rels)
			So(got, ShouldResemble, []int{7, 0})
		})
	})
}

func TestCloneIndependence(t *testing.T) {
	Convey("Given a grid and its clone", t, func() {
		dims := cell.Dimensions{Rows: 2, Cols: 2}
		g := New(dims, NewFixed(0))
		clone := g.Clone()

		Convey("Mutating the original does not affect the clone", func() {
			So(g.Set(cell.Position{Row: 0, Col: 0}, 1), ShouldBeNil)
			So(clone.Get(cell.Position{Row: 0, Col: 0}), ShouldEqual, 0)
			So(g.Equal(clone), ShouldBeFalse)
		})
	})
}

func TestVisitOrder(t *testing.T) {
	Convey("Given a 2x3 grid", t, func() {
		dims := cell.Dimensions{Rows: 2, Cols: 3}
		g := New(dims, NewFixed(0))

		Convey("Visit walks every position exactly once in row-major order", func() {
			var seen []cell.Position
			g.Visit(func(p cell.Position, c int) {
				seen = append(seen, p)
			})
			So(seen, ShouldResemble, []cell.Position{
				{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2},
				{Row: 1, Col: 0}, {Row: 1, Col: 1}, {Row: 1, Col: 2},
			})
		})
	})
}
