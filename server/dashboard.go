// Package server exposes a running simulation over http: a dashboard page
// rendering live generations, a websocket pushing incremental updates to
// it, and JSON endpoints for querying history. Grounded on
// tabular/server/root_view/root_view.go (page composition, fan-in,
// batching) and tabular/server.go (route wiring), generalized from a
// fixed two-view RL dashboard to an arbitrary number of rendered grids.
package server

import (
	"context"
	"html/template"
	"time"

	"automaton/grid"
	"automaton/server/fastview"
	"automaton/server/renderview"

	channerics "github.com/niceyeti/channerics/channels"
)

// batchResolution throttles how often the fanned-in update stream is
// flushed to the page, coalescing redundant per-cell writes the way
// root_view.go's batchify does.
const batchResolution = time.Millisecond * 20

// Dashboard is the page container for one or more rendered grids, each fed
// by its own generation stream, whose updates share a single aggregated
// stream.
type Dashboard struct {
	views   []fastview.ViewComponent
	initial map[string][][]renderview.CellViewModel
	names   []string
	updates <-chan []fastview.EleUpdate
}

// NewDashboard builds a GridView for each (id, generation-stream) pair,
// seeding its initial render from initial[id], and fans the views'
// updates into one throttled stream for the websocket publisher.
func NewDashboard[S comparable](
	ctx context.Context,
	initial map[string]*grid.Grid[S],
	panes map[string]<-chan *grid.Grid[S],
) *Dashboard {
	var views []fastview.ViewComponent
	var names []string
	initialModels := make(map[string][][]renderview.CellViewModel, len(panes))
	for id, gens := range panes {
		modelChan := channerics.Convert(ctx.Done(), gens, renderview.ToViewModel[S])
		views = append(views, renderview.NewGridView(id, ctx.Done(), modelChan))
		names = append(names, id)
		if g, ok := initial[id]; ok {
			initialModels[id] = renderview.ToViewModel(g)
		}
	}

	return &Dashboard{
		views:   views,
		names:   names,
		initial: initialModels,
		updates: fanIn(ctx.Done(), views),
	}
}

// Updates returns the page's single aggregated ele-update stream.
func (d *Dashboard) Updates() <-chan []fastview.EleUpdate {
	return d.updates
}

// RenderData returns the data the dashboard template expects at
// execution time: Panes maps each view's id to its initial cell grid.
func (d *Dashboard) RenderData() map[string]any {
	panes := make(map[string]any, len(d.initial))
	for id, model := range d.initial {
		panes[id] = model
	}
	return map[string]any{"Panes": panes}
}

// Parse renders the page template nesting each pane's own template, and
// bootstraps the client-side websocket listener that applies EleUpdates.
func (d *Dashboard) Parse(parent *template.Template) (name string, err error) {
	for _, vc := range d.views {
		if _, parseErr := vc.Parse(parent); parseErr != nil {
			return "", parseErr
		}
	}

	var bodySpec string
	for _, id := range d.names {
		bodySpec += `{{ template "` + template.HTMLEscapeString(id) + `" (index .Panes "` + id + `") }}`
	}

	name = "dashboard"
	_, err = parent.Parse(`
	{{ define "` + name + `" }}
	<!DOCTYPE html>
	<html>
		<head>
			<link rel="icon" href="data:,">
			<script>
				const ws = new WebSocket("ws://" + window.location.host + "/ws");
				ws.onopen = function(event) { console.log("dashboard socket opened"); };
				ws.onerror = function(event) { console.log("dashboard socket error: ", event); };
				ws.onmessage = function(event) {
					const updates = JSON.parse(event.data);
					for (const update of updates) {
						const ele = document.getElementById(update.EleId);
						if (!ele) { continue; }
						for (const op of update.Ops) {
							if (op.Key === "textContent") {
								ele.textContent = op.Value;
							} else {
								ele.setAttribute(op.Key, op.Value);
							}
						}
					}
				};
			</script>
		</head>
		<body>
		` + bodySpec + `
		</body>
	</html>
	{{ end }}`)
	return
}

// fanIn merges every pane's update stream and batches them, so that the
// websocket publisher always sends the latest per-cell state rather than
// a burst of redundant intermediate writes.
func fanIn(
	done <-chan struct{},
	views []fastview.ViewComponent,
) <-chan []fastview.EleUpdate {
	inputs := make([]<-chan []fastview.EleUpdate, len(views))
	for i, v := range views {
		inputs[i] = v.Updates()
	}
	return batchify(done, channerics.Merge(done, inputs...), batchResolution)
}

// batchify coalesces updates for the same element id within rate,
// forwarding only the latest write per id once the window elapses.
func batchify(
	done <-chan struct{},
	source <-chan []fastview.EleUpdate,
	rate time.Duration,
) <-chan []fastview.EleUpdate {
	output := make(chan []fastview.EleUpdate)

	go func() {
		defer close(output)

		pending := map[string]fastview.EleUpdate{}
		last := time.Now()
		for updates := range channerics.OrDone(done, source) {
			for _, u := range updates {
				pending[u.EleId] = u
			}

			if time.Since(last) > rate && len(updates) > 0 {
				select {
				case output <- values(pending):
					pending = map[string]fastview.EleUpdate{}
					last = time.Now()
				case <-done:
					return
				}
			}
		}
	}()

	return output
}

func values[K comparable, V any](m map[K]V) (out []V) {
	for _, v := range m {
		out = append(out, v)
	}
	return
}
