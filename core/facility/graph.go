// Package facility models the hospital as a weighted undirected graph of
// locations and pathways and answers shortest-path queries over it.
package facility

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/kilianp07/dronedispatch/core/model"
)

var (
	// ErrUnreachable is returned when no path joins two locations.
	ErrUnreachable = errors.New("location unreachable")
	// ErrUnknownLocation is returned for ids that are not part of the graph.
	ErrUnknownLocation = errors.New("unknown location")
)

type edge struct {
	to     model.LocationID
	weight float64
}

// Graph is immutable once built and safe for concurrent readers.
type Graph struct {
	locs     map[model.LocationID]model.Location
	order    []model.LocationID
	adj      map[model.LocationID][]edge
	pathways []model.Pathway
}

// New builds a graph from locations and pathways. Pathway weights must be
// non-negative and both endpoints must exist.
func New(locations []model.Location, pathways []model.Pathway) (*Graph, error) {
	g := &Graph{
		locs: make(map[model.LocationID]model.Location, len(locations)),
		adj:  make(map[model.LocationID][]edge, len(locations)),
	}
	for _, l := range locations {
		if _, dup := g.locs[l.ID]; dup {
			return nil, fmt.Errorf("duplicate location %d", l.ID)
		}
		g.locs[l.ID] = l
		g.order = append(g.order, l.ID)
	}
	sort.Slice(g.order, func(i, j int) bool { return g.order[i] < g.order[j] })

	for _, p := range pathways {
		if _, ok := g.locs[p.From]; !ok {
			return nil, fmt.Errorf("pathway %d-%d: %w: %d", p.From, p.To, ErrUnknownLocation, p.From)
		}
		if _, ok := g.locs[p.To]; !ok {
			return nil, fmt.Errorf("pathway %d-%d: %w: %d", p.From, p.To, ErrUnknownLocation, p.To)
		}
		if p.Weight < 0 || math.IsNaN(p.Weight) {
			return nil, fmt.Errorf("pathway %d-%d: negative weight %v", p.From, p.To, p.Weight)
		}
		g.adj[p.From] = append(g.adj[p.From], edge{to: p.To, weight: p.Weight})
		if p.From != p.To {
			g.adj[p.To] = append(g.adj[p.To], edge{to: p.From, weight: p.Weight})
		}
		g.pathways = append(g.pathways, p)
	}
	for id := range g.adj {
		es := g.adj[id]
		sort.SliceStable(es, func(i, j int) bool { return es[i].to < es[j].to })
	}
	sort.SliceStable(g.pathways, func(i, j int) bool {
		if g.pathways[i].From != g.pathways[j].From {
			return g.pathways[i].From < g.pathways[j].From
		}
		return g.pathways[i].To < g.pathways[j].To
	})
	return g, nil
}

// Has reports whether id is a location of the graph.
func (g *Graph) Has(id model.LocationID) bool {
	_, ok := g.locs[id]
	return ok
}

// Location returns the location with the given id.
func (g *Graph) Location(id model.LocationID) (model.Location, bool) {
	l, ok := g.locs[id]
	return l, ok
}

// Locations returns all locations ordered by id.
func (g *Graph) Locations() []model.Location {
	res := make([]model.Location, 0, len(g.order))
	for _, id := range g.order {
		res = append(res, g.locs[id])
	}
	return res
}

// Pathways returns every pathway ordered by endpoints.
func (g *Graph) Pathways() []model.Pathway {
	return append([]model.Pathway(nil), g.pathways...)
}

// ChargingStations returns the ids of charging locations in ascending order.
func (g *Graph) ChargingStations() []model.LocationID {
	var res []model.LocationID
	for _, id := range g.order {
		if g.locs[id].Charging {
			res = append(res, id)
		}
	}
	return res
}

// Bounds is the axis-aligned box enclosing every location.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Expand returns b grown by margin on every side.
func (b Bounds) Expand(margin float64) Bounds {
	return Bounds{MinX: b.MinX - margin, MinY: b.MinY - margin, MaxX: b.MaxX + margin, MaxY: b.MaxY + margin}
}

// Bounds returns the bounding box of all locations. An empty graph yields a zero box.
func (g *Graph) Bounds() Bounds {
	if len(g.order) == 0 {
		return Bounds{}
	}
	first := g.locs[g.order[0]].Pos
	b := Bounds{MinX: first.X, MinY: first.Y, MaxX: first.X, MaxY: first.Y}
	for _, id := range g.order[1:] {
		p := g.locs[id].Pos
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b
}

// NearestLocation returns the location closest to p in the plane.
func (g *Graph) NearestLocation(p model.Point) (model.LocationID, bool) {
	best, bestD := model.LocationID(0), math.Inf(1)
	found := false
	for _, id := range g.order {
		if d := g.locs[id].Pos.Dist(p); d < bestD {
			best, bestD, found = id, d, true
		}
	}
	return best, found
}
