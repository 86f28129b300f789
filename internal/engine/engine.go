// Package engine owns the live city: the authoritative grid, city stats,
// the economic tick, player interaction, and the agent systems that
// animate it. One loop goroutine performs all mutation; accessors hand
// out snapshots safe to read from anywhere.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/talgya/mini-city/internal/agents"
	"github.com/talgya/mini-city/internal/grid"
	"github.com/talgya/mini-city/internal/news"
)

// Stats is the city's headline state.
type Stats struct {
	Money      int `json:"money"`
	Population int `json:"population"`
	Day        int `json:"day"`
}

// Engine drives the simulation. Create with New, then Start/Stop. All
// state behind the mutex; the loop goroutine is the only writer while
// running, with ApplyClick and SetTool entering from UI goroutines.
type Engine struct {
	cfg Config

	mu        sync.Mutex
	grid      *grid.Grid
	stats     Stats
	timeOfDay float64
	ticks     uint64 // Economic ticks since start
	feed      *news.Feed
	tool      Tool
	rng       *rand.Rand

	vehicles *agents.VehicleSystem
	walkers  *agents.PedestrianSystem
	train    *agents.TrainSystem

	running bool
	stop    chan struct{}
	done    chan struct{}

	// Callbacks fire from engine goroutines, outside the engine lock.
	// Wire them up before Start.
	OnTick func(Stats)     // After every economic tick
	OnDay  func(Stats)     // After a tick that rolled the day over
	OnNews func(news.Item) // After a news item lands in the feed
}

// New creates a stopped engine with a freshly generated city.
func New(cfg Config) *Engine {
	cfg = cfg.normalize()
	if cfg.Seed == 0 {
		cfg.Seed = rand.Int63()
	}

	gen := grid.DefaultGenConfig()
	gen.Size = cfg.GridSize
	gen.Seed = cfg.Seed

	return &Engine{
		cfg:      cfg,
		grid:     grid.Generate(gen),
		stats:    Stats{Money: cfg.StartingMoney},
		feed:     news.NewFeed(cfg.FeedCap),
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		vehicles: agents.NewVehicleSystem(cfg.Seed + 1),
		walkers:  agents.NewPedestrianSystem(cfg.Seed + 2),
		train:    agents.NewTrainSystem(),
	}
}

// Start launches the simulation loop. The economic tick, the day/night
// clock, and agent frames all run until Stop.
func (e *Engine) Start() error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return fmt.Errorf("engine already running")
	}
	e.running = true
	e.stop = make(chan struct{})
	e.done = make(chan struct{})
	e.mu.Unlock()

	go e.run()

	slog.Info("simulation started",
		"grid", e.cfg.GridSize,
		"money", e.cfg.StartingMoney,
		"tick_interval", e.cfg.TickInterval,
		"seed", e.cfg.Seed,
	)
	return nil
}

// Stop halts the loop and waits for it to exit. Safe to call twice.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	close(e.stop)
	e.mu.Unlock()

	<-e.done
	s := e.Stats()
	slog.Info("simulation stopped", "day", s.Day, "money", s.Money, "population", s.Population)
}

// Running reports whether the loop is live.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// run is the single mutation loop: three tickers multiplexed onto one
// goroutine, so a tick or frame step always runs to completion before
// the next begins.
func (e *Engine) run() {
	defer close(e.done)

	econ := time.NewTicker(e.cfg.TickInterval)
	defer econ.Stop()
	clock := time.NewTicker(e.cfg.ClockInterval)
	defer clock.Stop()

	var frameC <-chan time.Time
	if e.cfg.FrameInterval > 0 {
		frame := time.NewTicker(e.cfg.FrameInterval)
		defer frame.Stop()
		frameC = frame.C
	}

	last := time.Now()
	for {
		select {
		case <-e.stop:
			return
		case <-econ.C:
			e.stepEconomy()
		case <-clock.C:
			e.stepClock()
		case now := <-frameC:
			dt := now.Sub(last).Seconds()
			last = now
			e.StepFrame(dt)
		}
	}
}

// StepFrame advances the three movement systems by one rendered frame.
// The internal frame ticker calls it; an embedder rendering on its own
// clock can disable the ticker (negative FrameInterval) and call this
// once per frame instead.
func (e *Engine) StepFrame(dt float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.vehicles.Sync(e.grid)
	e.walkers.Sync(e.grid, e.stats.Population)
	e.train.Sync(e.grid)

	e.vehicles.Advance()
	e.walkers.Advance(dt)
	e.train.Advance(dt)
}

// Grid returns the current grid snapshot. Grids are immutable values;
// the returned pointer stays valid and unchanging even as the city moves
// on to newer revisions.
func (e *Engine) Grid() *grid.Grid {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.grid
}

// Stats returns a copy of the current city stats.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// News returns a copy of the headline feed, oldest first.
func (e *Engine) News() []news.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.feed.Items()
}

// Tool returns the player's selected tool.
func (e *Engine) Tool() Tool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tool
}

// SetTool stores the selected tool. It has no effect on simulation state.
func (e *Engine) SetTool(t Tool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tool = t
}

// VehicleTransforms returns the current pose of every car.
func (e *Engine) VehicleTransforms() []agents.Transform {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vehicles.Transforms()
}

// PedestrianTransforms returns the current pose of every walker.
func (e *Engine) PedestrianTransforms() []agents.Transform {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.walkers.Transforms()
}

// TrainTransforms returns the train's pose, or nil without a usable track.
func (e *Engine) TrainTransforms() []agents.Transform {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.train.Transforms()
}
