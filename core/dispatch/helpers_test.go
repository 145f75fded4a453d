package dispatch

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/kilianp07/dronedispatch/core/facility"
	"github.com/kilianp07/dronedispatch/core/model"
	"github.com/kilianp07/dronedispatch/core/planner"
	"github.com/kilianp07/dronedispatch/infra/logger"
)

// stubPlanner returns a fixed trajectory.
type stubPlanner struct {
	pts   []model.Point
	calls int
}

func (s *stubPlanner) Plan(planner.Query, []model.ActiveFlight) []model.Point {
	s.calls++
	return s.pts
}

func (s *stubPlanner) Lane(planner.Query, []model.ActiveFlight) model.Lane { return model.LaneLeft }

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Add(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
	return c.t
}

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// triangleGraph: A-B-C costs 20 while the direct A-C pathway costs 50.
// The charging station S hangs off B.
func triangleGraph(t *testing.T) *facility.Graph {
	t.Helper()
	g, err := facility.New([]model.Location{
		{ID: 1, Name: "A", Pos: model.Point{X: 0, Y: 0}},
		{ID: 2, Name: "B", Pos: model.Point{X: 5, Y: 3}},
		{ID: 3, Name: "C", Pos: model.Point{X: 10, Y: 0}},
		{ID: 4, Name: "S", Pos: model.Point{X: 5, Y: 8}, Charging: true},
	}, []model.Pathway{
		{From: 1, To: 2, Weight: 10},
		{From: 2, To: 3, Weight: 10},
		{From: 1, To: 3, Weight: 50},
		{From: 2, To: 4, Weight: 5},
	})
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	return g
}

// corridorGraph is a straight corridor 1..5 with 10 m hops, a side room 7
// 100 m off location 3 and a charging station 6 next to the side room.
func corridorGraph(t *testing.T) *facility.Graph {
	t.Helper()
	locs := []model.Location{
		{ID: 6, Name: "S", Pos: model.Point{X: 21, Y: 100}, Charging: true},
		{ID: 7, Name: "Side", Pos: model.Point{X: 20, Y: 100}},
	}
	var paths []model.Pathway
	for i := 1; i <= 5; i++ {
		locs = append(locs, model.Location{ID: model.LocationID(i), Pos: model.Point{X: float64(i-1) * 10}})
		if i > 1 {
			paths = append(paths, model.Pathway{From: model.LocationID(i - 1), To: model.LocationID(i), Weight: 10})
		}
	}
	paths = append(paths,
		model.Pathway{From: 3, To: 7, Weight: 100},
		model.Pathway{From: 7, To: 6, Weight: 1},
	)
	g, err := facility.New(locs, paths)
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	return g
}

func newTestEngine(t *testing.T, cfg Config, g *facility.Graph, p RoutePlanner) (*Engine, *fakeClock) {
	t.Helper()
	if p == nil {
		p = &stubPlanner{}
	}
	e, err := New(cfg, g, p, logger.NopLogger{})
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	clk := newFakeClock()
	e.SetClock(clk.Now)
	return e, clk
}

func addDrone(t *testing.T, e *Engine, spec DroneSpec) string {
	t.Helper()
	id, err := e.AddDrone(spec)
	if err != nil {
		t.Fatalf("add drone: %v", err)
	}
	return id
}

func submit(t *testing.T, e *Engine, in SubmitInput) string {
	t.Helper()
	if in.Requester == "" {
		in.Requester = "nurse-station"
	}
	id, err := e.Submit(in)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return id
}

func mustRequest(t *testing.T, e *Engine, id string) model.Request {
	t.Helper()
	r, err := e.Request(id)
	if err != nil {
		t.Fatalf("request %s: %v", id, err)
	}
	return r
}

func mustDrone(t *testing.T, e *Engine, id string) model.Drone {
	t.Helper()
	d, err := e.Drone(id)
	if err != nil {
		t.Fatalf("drone %s: %v", id, err)
	}
	return d
}
