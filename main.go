// Command automaton drives a Game of Life universe, publishing each
// generation to a history service and serving a live dashboard of it.
// Grounded on tabular/main.go's init/flag/context/channel wiring,
// generalized from a fixed RL training loop to a generic step-driver.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"automaton/cell"
	"automaton/config"
	"automaton/grid"
	"automaton/historyservice"
	"automaton/life"
	"automaton/server"
	"automaton/stats"
	"automaton/universe"

	channerics "github.com/niceyeti/channerics/channels"
)

var (
	configPath *string
	addr       *string
)

func init() {
	configPath = flag.String("config", "./config.yaml", "path to engine config yaml")
	addr = flag.String("addr", "", "dashboard bind address, overrides config's dashboardAddr")
	flag.Parse()
}

// seedGlider returns the canonical five-cell glider, per the conformance
// fixture: alive at (0,1),(1,2),(2,0),(2,1),(2,2).
func seedGlider() []cell.Position {
	return []cell.Position{
		{Row: 0, Col: 1},
		{Row: 1, Col: 2},
		{Row: 2, Col: 0},
		{Row: 2, Col: 1},
		{Row: 2, Col: 2},
	}
}

func boundaryOf(cfg *config.EngineConfig) grid.BoundaryPolicy[life.State] {
	if cfg.Boundary == "fixed" {
		return grid.NewFixed(life.Dead)
	}
	return grid.NewToroidal(life.Dead)
}

func runApp() error {
	cfg, err := config.FromYAML(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *addr != "" {
		cfg.DashboardAddr = *addr
	}
	tick, err := cfg.TickDuration()
	if err != nil {
		return fmt.Errorf("parse tick interval: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dims := cell.Dimensions{Rows: cfg.Rows, Cols: cfg.Cols}
	initial := life.NewGrid(dims, boundaryOf(cfg), seedGlider())

	svc := historyservice.New[life.State](16)
	go svc.Run(initial, cfg.CheckpointFrequency)
	go func() {
		for err := range svc.Errs() {
			log.Println("history service error:", err)
		}
	}()

	client := historyservice.NewClient[life.State](svc.Requests())

	genRate := stats.NewAtomicFloat64(0)
	go logGenRate(ctx, genRate)

	renders := make(chan *grid.Grid[life.State])
	go driveStepLoop(ctx, client, initial, tick, cfg.Workers, renders, genRate)

	panes := map[string]<-chan *grid.Grid[life.State]{"life": renders}
	dashboard := server.NewDashboard(ctx, map[string]*grid.Grid[life.State]{"life": initial}, panes)

	srv := server.NewServer(cfg.DashboardAddr, dashboard, client)
	log.Printf("serving dashboard on %s", cfg.DashboardAddr)
	return srv.Serve(ctx)
}

// driveStepLoop owns the only Universe.StepParallel caller: it advances the
// simulation on tick, pushes each new generation to the history service,
// republishes it to the dashboard's render stream, and records the
// observed generations-per-second in genRate. The core never schedules
// itself (spec's Non-goals); this loop is that scheduler.
func driveStepLoop(
	ctx context.Context,
	client *historyservice.Client[life.State],
	initial *grid.Grid[life.State],
	tick time.Duration,
	workers int,
	renders chan<- *grid.Grid[life.State],
	genRate *stats.AtomicFloat64,
) {
	defer close(renders)

	u := universe.New[life.State, byte](initial)
	current := initial
	last := time.Now()
	for range channerics.NewTicker(ctx.Done(), tick) {
		u = u.StepParallel(ctx.Done(), workers)
		current = u.Grid
		client.PushGen(current)

		now := time.Now()
		if elapsed := now.Sub(last).Seconds(); elapsed > 0 {
			genRate.Set(1 / elapsed)
		}
		last = now

		select {
		case renders <- current:
		case <-ctx.Done():
			return
		}
	}
}

// logGenRate periodically reports the driver's observed step throughput.
func logGenRate(ctx context.Context, genRate *stats.AtomicFloat64) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			log.Printf("generation rate: %.2f/s", genRate.Read())
		case <-ctx.Done():
			return
		}
	}
}

func main() {
	if err := runApp(); err != nil {
		log.Fatal(err)
	}
}
