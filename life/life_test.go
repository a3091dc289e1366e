package life

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"automaton/cell"
	"automaton/grid"
)

func TestBlinkerOscillates(t *testing.T) {
	Convey("Given a vertical blinker on a 5x5 toroidal grid", t, func() {
		dims := cell.Dimensions{Rows: 5, Cols: 5}
		vertical := []cell.Position{{Row: 1, Col: 2}, {Row: 2, Col: 2}, {Row: 3, Col: 2}}
		horizontal := []cell.Position{{Row: 2, Col: 1}, {Row: 2, Col: 2}, {Row: 2, Col: 3}}

		g := NewGrid(dims, grid.NewToroidal(Dead), vertical)

		Convey("One generation flips it to horizontal", func() {
			next := stepOnce(g)
			want := NewGrid(dims, grid.NewToroidal(Dead), horizontal)
			So(next.Equal(want), ShouldBeTrue)
		})

		Convey("Two generations return it to vertical", func() {
			next := stepOnce(stepOnce(g))
			want := NewGrid(dims, grid.NewToroidal(Dead), vertical)
			So(next.Equal(want), ShouldBeTrue)
		})
	})
}

func TestDeadGridStaysDead(t *testing.T) {
	Convey("Given an all-dead grid", t, func() {
		dims := cell.Dimensions{Rows: 4, Cols: 4}
		g := NewGrid(dims, grid.NewToroidal(Dead), nil)

		Convey("It never spontaneously produces a live cell", func() {
			next := stepOnce(g)
			So(next.Equal(g), ShouldBeTrue)
		})
	})
}

func TestRenderGlyphs(t *testing.T) {
	Convey("Given alive and dead cells", t, func() {
		Convey("Alive renders '#'", func() {
			So(Alive.Render().Glyph, ShouldEqual, byte('#'))
		})
		Convey("Dead renders '.'", func() {
			So(Dead.Render().Glyph, ShouldEqual, byte('.'))
		})
	})
}

// stepOnce applies the update rule to every cell of g via its own View,
// independent of package universe so this package's tests don't need it.
func stepOnce(g *grid.Grid[State]) *grid.Grid[State] {
	out := grid.New(g.Dim(), g.Boundary())
	g.Visit(func(p cell.Position, s State) {
		_ = out.Set(p, s.Update(g.View(p)))
	})
	return out
}
