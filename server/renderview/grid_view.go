// Package renderview converts a generation's grid into a server-pushed
// view: each cell becomes a <span> whose text content and style reflect
// its cell.Renderable glyph. Grounded on
// tabular/server/cell_views/values_grid_view.go, which follows the same
// shape (convert a grid to a view-model, diff it into per-cell
// fastview.EleUpdates, template the initial layout).
package renderview

import (
	"fmt"
	"html/template"
	"strings"

	"automaton/cell"
	"automaton/grid"
	"automaton/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// CellViewModel is one rendered cell, already in the row/col orientation
// the template iterates in (unlike the teacher's CellViewModel, no
// y-flip is needed since this is a text grid, not an svg canvas).
type CellViewModel struct {
	Row, Col int
	Glyph    string
	Style    string
}

// ToViewModel converts a generation's grid into the [][]CellViewModel the
// GridView template and its update diffing consume. S must implement
// cell.Renderable so each cell can describe its own glyph; cells that
// don't render as their zero-value glyph ("", "").
func ToViewModel[S comparable](g *grid.Grid[S]) [][]CellViewModel {
	dims := g.Dim()
	rows := make([][]CellViewModel, dims.Rows)
	g.Visit(func(p cell.Position, s S) {
		if rows[p.Row] == nil {
			rows[p.Row] = make([]CellViewModel, dims.Cols)
		}
		glyph, style := renderOf(s)
		rows[p.Row][p.Col] = CellViewModel{
			Row: p.Row, Col: p.Col,
			Glyph: glyph, Style: style,
		}
	})
	return rows
}

func renderOf(s any) (glyph, style string) {
	if r, ok := s.(cell.Renderable); ok {
		sg := r.Render()
		return string(sg.Glyph), sg.Style
	}
	return "", ""
}

// GridView is the ViewComponent that streams per-cell glyph/style updates
// for one automaton's grid.
type GridView struct {
	id      string
	updates chan []fastview.EleUpdate
}

// NewGridView adapts tabular/server/cell_views/values_grid_view.go's
// NewValuesGrid: id identifies this view uniquely among siblings on the
// same page (e.g. multiple universes rendered side by side).
func NewGridView(
	id string,
	done <-chan struct{},
	models <-chan [][]CellViewModel,
) fastview.ViewComponent {
	if strings.Contains(id, "-") {
		id = strings.ReplaceAll(id, "-", "_")
	}
	gv := &GridView{id: template.HTMLEscapeString(id)}

	updates := make(chan []fastview.EleUpdate)
	go func() {
		defer close(updates)
		for rows := range channerics.OrDone(done, models) {
			select {
			case updates <- gv.diff(rows):
			case <-done:
				return
			}
		}
	}()
	gv.updates = updates

	return gv
}

// Updates implements fastview.ViewComponent.
func (gv *GridView) Updates() <-chan []fastview.EleUpdate {
	return gv.updates
}

func (gv *GridView) eleID(row, col int) string {
	return fmt.Sprintf("%s-%d-%d", gv.id, row, col)
}

func (gv *GridView) diff(rows [][]CellViewModel) (ops []fastview.EleUpdate) {
	for _, row := range rows {
		for _, c := range row {
			ops = append(ops, fastview.EleUpdate{
				EleId: gv.eleID(c.Row, c.Col),
				Ops: []fastview.Op{
					{Key: "textContent", Value: c.Glyph},
					{Key: "style", Value: c.Style},
				},
			})
		}
	}
	return
}

// Parse implements fastview.ViewComponent, templating a <pre> grid of
// <span> cells addressable by the same eleID used in diff.
func (gv *GridView) Parse(t *template.Template) (name string, err error) {
	name = gv.id
	_, err = t.Parse(
		`{{ define "` + name + `" }}
		<pre id="` + gv.id + `" style="line-height:1;">
		{{ range $row := . }}
			{{ range $cell := $row }}<span id="` + gv.id + `-{{ $cell.Row }}-{{ $cell.Col }}" style="{{ $cell.Style }}">{{ $cell.Glyph }}</span>{{ end }}
		</br>
		{{ end }}
		</pre>
		{{ end }}`)
	return
}
