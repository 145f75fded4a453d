package facility

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/kilianp07/dronedispatch/core/model"
)

type frontierItem struct {
	id   model.LocationID
	dist float64
}

// frontier orders by tentative distance, then by id for reproducible ties.
type frontier []frontierItem

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].dist != f[j].dist {
		return f[i].dist < f[j].dist
	}
	return f[i].id < f[j].id
}
func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any)   { *f = append(*f, x.(frontierItem)) }
func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	x := old[n-1]
	*f = old[:n-1]
	return x
}

// relax runs Dijkstra from source. When target is non-nil the search stops
// as soon as that node is settled.
func (g *Graph) relax(source model.LocationID, target *model.LocationID) (map[model.LocationID]float64, map[model.LocationID]model.LocationID) {
	dist := map[model.LocationID]float64{source: 0}
	prev := map[model.LocationID]model.LocationID{}
	done := map[model.LocationID]bool{}
	fr := &frontier{{id: source}}
	for fr.Len() > 0 {
		cur := heap.Pop(fr).(frontierItem)
		if done[cur.id] {
			continue
		}
		done[cur.id] = true
		if target != nil && cur.id == *target {
			break
		}
		for _, e := range g.adj[cur.id] {
			if done[e.to] {
				continue
			}
			nd := cur.dist + e.weight
			if old, ok := dist[e.to]; !ok || nd < old {
				dist[e.to] = nd
				prev[e.to] = cur.id
				heap.Push(fr, frontierItem{id: e.to, dist: nd})
			}
		}
	}
	return dist, prev
}

// DistancesFrom returns the shortest distance from source to every reachable location.
func (g *Graph) DistancesFrom(source model.LocationID) (map[model.LocationID]float64, error) {
	if !g.Has(source) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLocation, source)
	}
	dist, _ := g.relax(source, nil)
	return dist, nil
}

// ShortestPath returns the node sequence and total weight of the cheapest
// path between from and to.
func (g *Graph) ShortestPath(from, to model.LocationID) ([]model.LocationID, float64, error) {
	if !g.Has(from) {
		return nil, 0, fmt.Errorf("%w: %d", ErrUnknownLocation, from)
	}
	if !g.Has(to) {
		return nil, 0, fmt.Errorf("%w: %d", ErrUnknownLocation, to)
	}
	if from == to {
		return []model.LocationID{from}, 0, nil
	}
	dist, prev := g.relax(from, &to)
	total, ok := dist[to]
	if !ok {
		return nil, 0, fmt.Errorf("%d to %d: %w", from, to, ErrUnreachable)
	}
	path := []model.LocationID{to}
	for cur := to; cur != from; {
		cur = prev[cur]
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, total, nil
}

// ClosestAmong returns the candidate with the smallest shortest-path distance
// from source. Ties go to the lowest id. ok is false when none is reachable.
func (g *Graph) ClosestAmong(source model.LocationID, candidates []model.LocationID) (model.LocationID, float64, bool) {
	dist, err := g.DistancesFrom(source)
	if err != nil {
		return 0, 0, false
	}
	return Nearest(dist, candidates)
}

// Nearest picks the candidate with the smallest entry in dist, lowest id on ties.
func Nearest(dist map[model.LocationID]float64, candidates []model.LocationID) (model.LocationID, float64, bool) {
	best, bestD := model.LocationID(0), math.Inf(1)
	found := false
	for _, c := range candidates {
		d, ok := dist[c]
		if !ok {
			continue
		}
		if d < bestD || (d == bestD && c < best) {
			best, bestD, found = c, d, true
		}
	}
	return best, bestD, found
}

// RouteLength sums the shortest-path weight between consecutive route
// elements. Adjacent elements need not share a pathway.
func (g *Graph) RouteLength(route []model.LocationID) (float64, error) {
	var total float64
	for i := 1; i < len(route); i++ {
		if route[i] == route[i-1] {
			continue
		}
		_, w, err := g.ShortestPath(route[i-1], route[i])
		if err != nil {
			return 0, err
		}
		total += w
	}
	return total, nil
}

// Expand replaces every hop of route with its shortest path so consecutive
// elements share a pathway.
func (g *Graph) Expand(route []model.LocationID) ([]model.LocationID, error) {
	if len(route) == 0 {
		return nil, nil
	}
	res := []model.LocationID{route[0]}
	for i := 1; i < len(route); i++ {
		if route[i] == res[len(res)-1] {
			continue
		}
		p, _, err := g.ShortestPath(res[len(res)-1], route[i])
		if err != nil {
			return nil, err
		}
		res = append(res, p[1:]...)
	}
	return res, nil
}
