package dispatch

import (
	"fmt"
	"math"

	"github.com/kilianp07/dronedispatch/core/events"
	"github.com/kilianp07/dronedispatch/core/facility"
	"github.com/kilianp07/dronedispatch/core/model"
	"github.com/kilianp07/dronedispatch/core/planner"
)

// assign picks the closest eligible drone for r and commits a route to it.
// Drones that qualify on everything but battery are sent to charge when under
// the recharge threshold. Others are only skipped and, when short is non-nil,
// noted there for the end of the processing pass.
func (e *Engine) assign(r *model.Request, short map[string]struct{}) error {
	dist, err := e.graph.DistancesFrom(r.Origin)
	if err != nil {
		return err
	}
	var back float64
	if _, d, ok := facility.Nearest(dist, e.graph.ChargingStations()); ok {
		back = d
	}

	var best *model.Drone
	bestD := math.Inf(1)
	var low []*model.Drone
	for _, id := range e.sortedDroneIDs() {
		d := e.drones[id]
		if d.Status != model.DroneAvailable || !d.Class.Serves(r.Emergency) {
			continue
		}
		to, ok := dist[d.Location]
		if !ok {
			continue
		}
		need := e.energy.DroneEnergy(to, r.PayloadKg, d.Class) + e.energy.DroneEnergy(back, 0, d.Class)
		if d.BatteryKWh-need < e.cfg.ReserveKWh {
			if d.BatteryLevel() < e.cfg.RechargeBelow {
				low = append(low, d)
			} else if short != nil {
				short[d.ID] = struct{}{}
			}
			continue
		}
		if to < bestD {
			best, bestD = d, to
		}
	}
	for _, d := range low {
		e.log.Infof("drone %s below reserve for request %s (%.4f kWh), charging", d.ID, r.ID, d.BatteryKWh)
		e.sendToCharge(d)
	}
	if best == nil {
		return fmt.Errorf("request %s (%s): %w", r.ID, r.Priority, ErrNoEligibleDrone)
	}
	return e.commit(best, r)
}

// commit builds the route from d to r's origin and makes both assigned.
func (e *Engine) commit(d *model.Drone, r *model.Request) error {
	now := e.now()
	speed := e.cfg.Speeds.For(r.Priority)
	q := planner.Query{
		DroneID:   d.ID,
		Emergency: r.Emergency,
		Priority:  r.Priority,
		Speed:     speed,
		Now:       now,
	}
	rt, err := e.route(d.Location, r.Origin, q)
	if err != nil {
		return err
	}
	f := &model.ActiveFlight{
		DroneID:   d.ID,
		Route:     rt.route,
		Offsets:   rt.offsets,
		Waypoints: rt.waypoints,
		Start:     now,
		Speed:     speed,
		Priority:  r.Priority,
		Lane:      rt.lane,
		Emergency: r.Emergency,
		Stops:     map[string]float64{r.ID: rt.length()},
		Planned:   rt.planned,
		Optimal:   rt.optimal,
		Length:    rt.length(),
	}
	e.flights[d.ID] = f

	d.Status = model.DroneAssigned
	d.Route = append([]model.LocationID(nil), f.Route...)
	d.Requests = []string{r.ID}
	d.Speed = speed
	r.Status = model.RequestAssigned
	r.DroneID = d.ID
	r.AssignedAt = now
	delete(e.pending, r.ID)

	kind := "planned"
	if !f.Planned {
		kind = "fallback"
	}
	eff := efficiency(f.Optimal, f.Length)
	e.stats.routed(f.Planned, eff)
	assignmentsTotal.WithLabelValues(d.Class.String(), kind).Inc()
	requestWait.WithLabelValues(r.Priority.String()).Observe(now.Sub(r.CreatedAt).Seconds())
	pathEfficiency.Observe(eff)
	e.publish(events.AssignmentEvent{
		DroneID:   d.ID,
		RequestID: r.ID,
		Class:     d.Class,
		Priority:  r.Priority,
		Route:     append([]model.LocationID(nil), f.Route...),
		Lane:      f.Lane,
		Planned:   f.Planned,
		LengthM:   f.Length,
		OptimalM:  f.Optimal,
		Wait:      now.Sub(r.CreatedAt),
		Time:      now,
	})
	e.log.Infow("drone assigned", map[string]any{
		"drone_id":   d.ID,
		"request_id": r.ID,
		"class":      d.Class.String(),
		"priority":   r.Priority.String(),
		"route":      kind,
		"lane":       f.Lane.String(),
		"length_m":   f.Length,
	})
	return nil
}

type plannedRoute struct {
	route     []model.LocationID
	offsets   []float64
	waypoints []model.Point
	lane      model.Lane
	planned   bool
	optimal   float64
}

func (p plannedRoute) length() float64 {
	if len(p.offsets) == 0 {
		return 0
	}
	return p.offsets[len(p.offsets)-1]
}

// route asks the planner for a trajectory from start to goal and snaps it to
// the graph. Without a usable trajectory the graph shortest path is flown in
// the lane the planner assigns to q.
func (e *Engine) route(start, goal model.LocationID, q planner.Query) (plannedRoute, error) {
	path, optimal, err := e.graph.ShortestPath(start, goal)
	if err != nil {
		return plannedRoute{}, err
	}
	from, _ := e.graph.Location(start)
	to, _ := e.graph.Location(goal)
	q.Start, q.Goal = from.Pos, to.Pos
	flights := e.otherFlights(q.DroneID)
	lane := e.planner.Lane(q, flights)
	if start == goal {
		return e.fixedRoute(path, lane, true, optimal)
	}

	if pts := e.planner.Plan(q, flights); len(pts) >= 2 {
		rt, err := e.snapRoute(pts, start, goal)
		if err == nil {
			rt.lane = lane
			rt.optimal = optimal
			return rt, nil
		}
		e.log.Debugf("drone %s: snapping trajectory failed: %v", q.DroneID, err)
	}
	e.log.Debugf("drone %s: no trajectory %d->%d, using graph route", q.DroneID, start, goal)
	return e.fixedRoute(path, lane, false, optimal)
}

// fixedRoute flies route node to node.
func (e *Engine) fixedRoute(route []model.LocationID, lane model.Lane, planned bool, optimal float64) (plannedRoute, error) {
	offsets, err := e.offsets(route)
	if err != nil {
		return plannedRoute{}, err
	}
	return plannedRoute{
		route:     route,
		offsets:   offsets,
		waypoints: e.nodeWaypoints(route),
		lane:      lane,
		planned:   planned,
		optimal:   optimal,
	}, nil
}

// snapRoute maps trajectory points to their nearest locations and expands the
// result into a pathway-connected route from start to goal.
func (e *Engine) snapRoute(pts []model.Point, start, goal model.LocationID) (plannedRoute, error) {
	ids := []model.LocationID{start}
	for _, p := range pts {
		id, ok := e.graph.NearestLocation(p)
		if ok && id != ids[len(ids)-1] {
			ids = append(ids, id)
		}
	}
	if ids[len(ids)-1] != goal {
		ids = append(ids, goal)
	}
	route, err := e.graph.Expand(ids)
	if err != nil {
		return plannedRoute{}, err
	}
	offsets, err := e.offsets(route)
	if err != nil {
		return plannedRoute{}, err
	}
	return plannedRoute{route: route, offsets: offsets, waypoints: pts, planned: true}, nil
}

// offsets returns the cumulative pathway distance of each route node.
func (e *Engine) offsets(route []model.LocationID) ([]float64, error) {
	off := make([]float64, len(route))
	for i := 1; i < len(route); i++ {
		w, err := e.graph.RouteLength(route[i-1 : i+1])
		if err != nil {
			return nil, err
		}
		off[i] = off[i-1] + w
	}
	return off, nil
}

func (e *Engine) nodeWaypoints(route []model.LocationID) []model.Point {
	pts := make([]model.Point, 0, len(route))
	for _, id := range route {
		loc, _ := e.graph.Location(id)
		pts = append(pts, loc.Pos)
	}
	return pts
}

// otherFlights copies every active flight except the one of droneID.
func (e *Engine) otherFlights(droneID string) []model.ActiveFlight {
	list := make([]model.ActiveFlight, 0, len(e.flights))
	for _, id := range e.flightIDs() {
		if id == droneID {
			continue
		}
		list = append(list, e.flights[id].Clone())
	}
	return list
}

// efficiency is the optimal over the chosen length, 1 for empty routes.
func efficiency(optimal, length float64) float64 {
	if length <= 0 {
		return 1
	}
	return optimal / length
}
