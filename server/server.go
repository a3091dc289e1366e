package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"automaton/historyservice"
	"automaton/server/fastview"

	"github.com/gorilla/mux"
)

// Server serves the dashboard page, its websocket, and JSON endpoints for
// querying a running Universe's history. Grounded on
// tabular/server/server.go's route/websocket wiring, routed through
// gorilla/mux instead of bare http.HandleFunc so path parameters
// (/gen/{n}, /diff/{a}/{b}) are available without manual parsing.
type Server[S comparable] struct {
	addr      string
	dashboard *Dashboard
	client    *historyservice.Client[S]
}

// NewServer wires a dashboard view over a running historyservice.
func NewServer[S comparable](
	addr string,
	dashboard *Dashboard,
	client *historyservice.Client[S],
) *Server[S] {
	return &Server[S]{
		addr:      addr,
		dashboard: dashboard,
		client:    client,
	}
}

// Serve blocks, serving the dashboard until ctx is cancelled or
// ListenAndServe errors.
func (s *Server[S]) Serve(ctx context.Context) error {
	r := mux.NewRouter()
	r.HandleFunc("/", s.serveIndex).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.serveWebsocket)
	r.HandleFunc("/gen/{n:[0-9]+}", s.serveGen).Methods(http.MethodGet)
	r.HandleFunc("/diff/{ref:[0-9]+}/{target:[0-9]+}", s.serveDiff).Methods(http.MethodGet)

	httpSrv := &http.Server{Addr: s.addr, Handler: r}
	go func() {
		<-ctx.Done()
		_ = httpSrv.Close()
	}()

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func (s *Server[S]) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	t := template.New("index.html")
	tname, err := s.dashboard.Parse(t)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if _, err = t.Parse(`{{ template "` + tname + `" . }}`); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err = t.Execute(w, s.dashboard.RenderData()); err != nil {
		log.Println("render index:", err)
	}
}

// serveWebsocket upgrades the request and streams the dashboard's
// aggregated ele-update stream to it until disconnect.
func (s *Server[S]) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	cli, err := fastview.NewClient(s.dashboard.Updates(), w, r)
	if err != nil {
		log.Println("upgrade:", err)
		return
	}
	if err := cli.Sync(); err != nil {
		log.Println("websocket closed:", err)
	}
}

// serveGen returns the grid at the requested generation as JSON, 404 if
// it has not occurred yet.
func (s *Server[S]) serveGen(w http.ResponseWriter, r *http.Request) {
	gen, err := strconv.Atoi(mux.Vars(r)["n"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	g, ok := s.client.GetGen(gen, false)
	if !ok {
		http.Error(w, "generation not available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(g); err != nil {
		log.Println("encode gen:", err)
	}
}

// serveDiff returns the composed diff between two generations as JSON,
// 404 if the target has not occurred yet, 400 if ref > target.
func (s *Server[S]) serveDiff(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	ref, err := strconv.Atoi(vars["ref"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	target, err := strconv.Atoi(vars["target"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	d, ok, err := s.client.GetDiff(ref, target, false)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !ok {
		http.Error(w, "target generation not available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(d); err != nil {
		log.Println("encode diff:", err)
	}
}
