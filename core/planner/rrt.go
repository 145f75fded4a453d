// Package planner refines a dispatch into a collision-aware trajectory with a
// rapidly-exploring random tree over the facility plane.
package planner

import (
	"math/rand"
	"time"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kilianp07/dronedispatch/core/facility"
	"github.com/kilianp07/dronedispatch/core/model"
)

// Source yields uniform samples in [0,1).
type Source interface {
	Float64() float64
}

// Query describes one planning request.
type Query struct {
	Start     model.Point
	Goal      model.Point
	DroneID   string
	Emergency bool
	Priority  model.Priority
	// Speed is the cruise speed in m/s used to time the trajectory.
	Speed float64
	Now   time.Time
}

// Planner is not safe for concurrent use; the dispatch engine serialises calls.
type Planner struct {
	cfg    Config
	bounds facility.Bounds
	rng    Source
}

// New returns a planner sampling inside bounds grown by cfg.BoundsMargin.
func New(cfg Config, bounds facility.Bounds, rng Source) *Planner {
	cfg.SetDefaults()
	return &Planner{cfg: cfg, bounds: bounds.Expand(cfg.BoundsMargin), rng: rng}
}

// NewSeeded returns a planner with a deterministic math/rand source.
func NewSeeded(cfg Config, bounds facility.Bounds, seed int64) *Planner {
	return New(cfg, bounds, rand.New(rand.NewSource(seed)))
}

// Config returns the effective configuration.
func (p *Planner) Config() Config { return p.cfg }

type treeNode struct {
	pos    r2.Vec
	parent int
	cost   float64
}

// point is the k-d tree entry for a tree node.
type point struct {
	r2.Vec
	idx int
}

func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(point)
	if d == 0 {
		return p.X - q.X
	}
	return p.Y - q.Y
}

func (p point) Dims() int { return 2 }

func (p point) Distance(c kdtree.Comparable) float64 {
	d := r2.Sub(p.Vec, c.(point).Vec)
	return r2.Dot(d, d)
}

func vec(p model.Point) r2.Vec     { return r2.Vec{X: p.X, Y: p.Y} }
func toPoint(v r2.Vec) model.Point { return model.Point{X: v.X, Y: v.Y} }

// Plan grows a tree from q.Start until a node lands within the goal radius
// and returns the branch leading to it. A result shorter than two points
// means no feasible trajectory was found within the iteration budget.
func (p *Planner) Plan(q Query, flights []model.ActiveFlight) []model.Point {
	if q.Speed <= 0 {
		return nil
	}
	lane := p.Lane(q, flights)
	start, goal := vec(q.Start), vec(q.Goal)

	nodes := []treeNode{{pos: start, parent: -1}}
	tree := &kdtree.Tree{}
	tree.Insert(point{Vec: start, idx: 0}, false)

	if r2.Norm(r2.Sub(goal, start)) <= p.cfg.GoalRadius {
		if !p.segmentFree(q, lane, start, goal, 0, flights) {
			return nil
		}
		return []model.Point{q.Start, q.Goal}
	}

	budget := p.cfg.MaxIterations
	if q.Emergency {
		budget = p.cfg.EmergencyIterations
	}
	for i := 0; i < budget; i++ {
		sample := goal
		if p.rng.Float64() >= p.cfg.GoalBias {
			sample = r2.Vec{
				X: p.bounds.MinX + p.rng.Float64()*(p.bounds.MaxX-p.bounds.MinX),
				Y: p.bounds.MinY + p.rng.Float64()*(p.bounds.MaxY-p.bounds.MinY),
			}
		}
		c, _ := tree.Nearest(point{Vec: sample, idx: -1})
		near := c.(point).idx
		from := nodes[near]

		dir := r2.Sub(sample, from.pos)
		d := r2.Norm(dir)
		if d == 0 {
			continue
		}
		next := sample
		if d > p.cfg.StepSize {
			next = r2.Add(from.pos, r2.Scale(p.cfg.StepSize/d, dir))
			d = p.cfg.StepSize
		}
		if !p.segmentFree(q, lane, from.pos, next, from.cost, flights) {
			continue
		}
		nodes = append(nodes, treeNode{pos: next, parent: near, cost: from.cost + d})
		tree.Insert(point{Vec: next, idx: len(nodes) - 1}, false)

		if r2.Norm(r2.Sub(goal, next)) <= p.cfg.GoalRadius {
			return p.branch(nodes, len(nodes)-1, lane)
		}
	}
	return nil
}

// branch walks parents back to the root and returns physical waypoints,
// each node shifted into the lane of the segment that reaches it.
func (p *Planner) branch(nodes []treeNode, leaf int, lane model.Lane) []model.Point {
	var idx []int
	for i := leaf; i >= 0; i = nodes[i].parent {
		idx = append(idx, i)
	}
	res := make([]model.Point, 0, len(idx))
	for k := len(idx) - 1; k >= 0; k-- {
		n := nodes[idx[k]]
		if n.parent < 0 {
			res = append(res, toPoint(n.pos))
			continue
		}
		off := laneOffset(nodes[n.parent].pos, n.pos, lane, p.cfg.LaneWidth)
		res = append(res, toPoint(r2.Add(n.pos, off)))
	}
	return res
}
