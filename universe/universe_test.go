package universe

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"automaton/cell"
	"automaton/grid"
	"automaton/life"
)

func glider8x8() *grid.Grid[life.State] {
	dims := cell.Dimensions{Rows: 8, Cols: 8}
	alive := []cell.Position{
		{Row: 0, Col: 1}, {Row: 1, Col: 2}, {Row: 2, Col: 0}, {Row: 2, Col: 1}, {Row: 2, Col: 2},
	}
	return life.NewGrid(dims, grid.NewToroidal(life.Dead), alive)
}

func TestGliderTranslates(t *testing.T) {
	Convey("Given the canonical glider on an 8x8 toroidal grid", t, func() {
		g := glider8x8()

		Convey("After four sequential steps it has translated by (+1,+1)", func() {
			u := New[life.State, byte](g)
			for i := 0; i < 4; i++ {
				u = u.Step()
			}

			want := life.NewGrid(cell.Dimensions{Rows: 8, Cols: 8}, grid.NewToroidal(life.Dead), []cell.Position{
				{Row: 1, Col: 2}, {Row: 2, Col: 3}, {Row: 3, Col: 1}, {Row: 3, Col: 2}, {Row: 3, Col: 3},
			})
			So(u.Grid.Equal(want), ShouldBeTrue)
		})
	})
}

func TestStepParallelMatchesSequential(t *testing.T) {
	Convey("Given the canonical glider", t, func() {
		g := glider8x8()
		done := make(chan struct{})
		defer close(done)

		Convey("StepParallel produces the same grid as Step regardless of worker count", func() {
			seq := New[life.State, byte](g).Step()
			for _, n := range []int{1, 3, 8, 16} {
				par := New[life.State, byte](g).StepParallel(done, n)
				So(par.Grid.Equal(seq.Grid), ShouldBeTrue)
			}
		})
	})
}

func TestBlockPatternIsStill(t *testing.T) {
	Convey("Given a 2x2 block on an 8x8 fixed grid", t, func() {
		dims := cell.Dimensions{Rows: 8, Cols: 8}
		alive := []cell.Position{
			{Row: 3, Col: 3}, {Row: 3, Col: 4}, {Row: 4, Col: 3}, {Row: 4, Col: 4},
		}
		g := life.NewGrid(dims, grid.NewFixed(life.Dead), alive)

		Convey("It is unchanged by Step", func() {
			next := New[life.State, byte](g).Step()
			So(next.Grid.Equal(g), ShouldBeTrue)
		})
	})
}
