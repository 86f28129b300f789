package engine

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/talgya/mini-city/internal/grid"
	"github.com/talgya/mini-city/internal/news"
)

// newTestEngine returns a stopped engine over a blank 10x10 grid, so
// tests lay out exactly the city they need.
func newTestEngine(t *testing.T, money int) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Seed = 1
	cfg.StartingMoney = money
	e := New(cfg)
	e.grid = grid.New(10)
	return e
}

// setTile edits one tile in the engine's grid through the normal
// copy-on-write path.
func setTile(t *testing.T, e *Engine, x, y int, mutate func(*grid.Tile)) {
	t.Helper()
	tile, err := e.grid.At(x, y)
	if err != nil {
		t.Fatalf("At(%d,%d): %v", x, y, err)
	}
	mutate(&tile)
	g, err := e.grid.SetTile(x, y, tile)
	if err != nil {
		t.Fatalf("SetTile(%d,%d): %v", x, y, err)
	}
	e.grid = g
}

// tileAt fetches a tile or fails the test.
func tileAt(t *testing.T, e *Engine, x, y int) grid.Tile {
	t.Helper()
	tile, err := e.grid.At(x, y)
	if err != nil {
		t.Fatalf("At(%d,%d): %v", x, y, err)
	}
	return tile
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, d time.Duration, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// stubNews is a controllable news service. A non-nil gate delays every
// fetch until the gate closes.
type stubNews struct {
	gate chan struct{}

	mu    sync.Mutex
	calls int
	prevs []*news.Item
}

func (s *stubNews) Fetch(snap news.Snapshot, prev *news.Item) (*news.Item, error) {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.prevs = append(s.prevs, prev)
	return &news.Item{
		ID:       fmt.Sprintf("stub-%d", s.calls),
		Text:     fmt.Sprintf("on day %d the town made news", snap.Day),
		Category: news.CategoryNeutral,
	}, nil
}

func (s *stubNews) snapshot() (int, []*news.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls, append([]*news.Item(nil), s.prevs...)
}

func TestEngineLifecycle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 3
	cfg.TickInterval = 5 * time.Millisecond
	cfg.ClockInterval = time.Millisecond
	cfg.FrameInterval = 2 * time.Millisecond

	e := New(cfg)
	if e.Running() {
		t.Fatal("engine running before Start")
	}
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := e.Start(); err == nil {
		t.Error("second Start should fail")
	}

	waitFor(t, 2*time.Second, "first day", func() bool {
		return e.Stats().Day >= 1
	})
	waitFor(t, 2*time.Second, "clock movement", func() bool {
		return e.TimeOfDay() > 0
	})

	e.Stop()
	if e.Running() {
		t.Error("engine still running after Stop")
	}
	e.Stop() // Second Stop must be harmless

	day := e.Stats().Day
	time.Sleep(20 * time.Millisecond)
	if e.Stats().Day != day {
		t.Error("ticks kept firing after Stop")
	}
}

func TestClockWraps(t *testing.T) {
	e := newTestEngine(t, 1000)

	for i := 0; i < 250; i++ {
		e.stepClock()
	}
	if got := e.TimeOfDay(); got < 0.249 || got > 0.251 {
		t.Errorf("timeOfDay = %f after 250 steps, want ~0.25", got)
	}

	e.timeOfDay = 0.9995
	for i := 0; i < 10; i++ {
		e.stepClock()
	}
	if got := e.TimeOfDay(); got < 0.009 || got > 0.011 {
		t.Errorf("timeOfDay = %f after wrap, want ~0.0095", got)
	}
}

func TestStepFrameDrivesAgents(t *testing.T) {
	e := newTestEngine(t, 1000)
	setTile(t, e, 2, 2, func(tl *grid.Tile) { tl.Owned = true; tl.Building = grid.BuildingRoad })
	setTile(t, e, 3, 2, func(tl *grid.Tile) { tl.Owned = true; tl.Building = grid.BuildingRoad })

	e.StepFrame(1.0 / 60)
	if got := len(e.VehicleTransforms()); got != 2 {
		t.Fatalf("vehicles = %d, want 2", got)
	}

	// Pedestrians follow population; none yet at population zero.
	if got := len(e.PedestrianTransforms()); got != 0 {
		t.Errorf("walkers = %d, want 0", got)
	}
	e.stats.Population = 8
	e.StepFrame(1.0 / 60)
	if got := len(e.PedestrianTransforms()); got != 4 {
		t.Errorf("walkers = %d, want 4", got)
	}

	if got := e.TrainTransforms(); got != nil {
		t.Errorf("train = %v, want nil without track", got)
	}
	setTile(t, e, 5, 5, func(tl *grid.Tile) { tl.Owned = true; tl.Building = grid.BuildingRail; tl.Rail = true })
	setTile(t, e, 6, 5, func(tl *grid.Tile) { tl.Owned = true; tl.Building = grid.BuildingRail; tl.Rail = true })
	e.StepFrame(1.0 / 60)
	if got := len(e.TrainTransforms()); got != 1 {
		t.Errorf("train transforms = %d, want 1", got)
	}
}

func TestToolSelection(t *testing.T) {
	e := newTestEngine(t, 500)
	statsBefore := e.Stats()
	gridBefore := e.Grid()

	e.SetTool(ToolResidential)
	if e.Tool() != ToolResidential {
		t.Errorf("tool = %v, want residential", e.Tool())
	}

	if e.Stats() != statsBefore {
		t.Error("SetTool changed stats")
	}
	if e.Grid() != gridBefore {
		t.Error("SetTool changed the grid")
	}
}

func TestToolNames(t *testing.T) {
	for tool, name := range toolNames {
		got, ok := ToolFromString(name)
		if !ok || got != tool {
			t.Errorf("ToolFromString(%q) = %v,%v, want %v", name, got, ok, tool)
		}
	}
	if _, ok := ToolFromString("zeppelin"); ok {
		t.Error("unknown tool name accepted")
	}
}
