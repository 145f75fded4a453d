package dispatch

import (
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/dronedispatch/core/events"
	"github.com/kilianp07/dronedispatch/core/facility"
	"github.com/kilianp07/dronedispatch/core/model"
)

// DetourEstimate compares folding a request into a flight against finishing
// the flight and dispatching a second drone.
type DetourEstimate struct {
	// CurrentKWh finishes the current route with the current payload.
	CurrentKWh float64
	// CombinedKWh flies the route including the new stop with both payloads.
	CombinedKWh float64
	// SecondKWh is a separate dispatch to the new request.
	SecondKWh float64
}

// Baseline is the cost of serving both without interception.
func (d DetourEstimate) Baseline() float64 { return d.CurrentKWh + d.SecondKWh }

// SavedKWh is positive when the combined route is cheaper than the baseline.
func (d DetourEstimate) SavedKWh() float64 { return d.Baseline() - d.CombinedKWh }

// Accept reports whether the combined route stays within tolerance of the baseline.
func (d DetourEstimate) Accept(tolerance float64) bool {
	return d.CombinedKWh <= d.Baseline()*(1+tolerance)
}

// InterceptDecision is the outcome of InterceptCheck.
type InterceptDecision struct {
	DroneID   string
	RequestID string
	Accept    bool
	// Reason explains a rejection.
	Reason   string
	Estimate DetourEstimate
	// Sequence lists the remaining stops in visiting order, new request included.
	Sequence  []string
	CurrentM  float64
	CombinedM float64
}

// InterceptCheck evaluates whether the drone should pick up a pending
// request on its way. It does not modify state.
func (e *Engine) InterceptCheck(droneID, requestID string) (InterceptDecision, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, f, r, err := e.interceptTargets(droneID, requestID)
	if err != nil {
		return InterceptDecision{}, err
	}
	return e.interceptDecision(d, f, r)
}

// Intercept applies an accepted InterceptCheck.
func (e *Engine) Intercept(droneID, requestID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, f, r, err := e.interceptTargets(droneID, requestID)
	if err != nil {
		return err
	}
	dec, err := e.interceptDecision(d, f, r)
	if err != nil {
		return err
	}
	if !dec.Accept {
		return fmt.Errorf("drone %s request %s: %s: %w", droneID, requestID, dec.Reason, ErrInterceptRejected)
	}
	if err := e.applyIntercept(d, f, r, dec); err != nil {
		return err
	}
	pendingRequests.Set(float64(len(e.pending)))
	return nil
}

func (e *Engine) interceptTargets(droneID, requestID string) (*model.Drone, *model.ActiveFlight, *model.Request, error) {
	d, ok := e.drones[droneID]
	if !ok {
		return nil, nil, nil, fmt.Errorf("drone %s: %w", droneID, ErrNotFound)
	}
	r, ok := e.requests[requestID]
	if !ok {
		return nil, nil, nil, fmt.Errorf("request %s: %w", requestID, ErrNotFound)
	}
	f, ok := e.flights[droneID]
	if !ok {
		return nil, nil, nil, fmt.Errorf("drone %s has no active flight: %w", droneID, ErrInvalidState)
	}
	if r.Status != model.RequestPending {
		return nil, nil, nil, fmt.Errorf("request %s is %s: %w", requestID, r.Status, ErrInvalidState)
	}
	return d, f, r, nil
}

type stop struct {
	id  string
	loc model.LocationID
}

// interceptDecision tries the new stop at every position among the stops
// still ahead and keeps the shortest sequence.
func (e *Engine) interceptDecision(d *model.Drone, f *model.ActiveFlight, r *model.Request) (InterceptDecision, error) {
	dec := InterceptDecision{DroneID: d.ID, RequestID: r.ID}
	switch {
	case r.Emergency:
		dec.Reason = "emergency requests are dispatched directly"
		return dec, nil
	case !d.Class.Serves(r.Emergency):
		dec.Reason = "class mismatch"
		return dec, nil
	}

	ahead := e.stopsAhead(f)
	current, err := e.sequenceLength(d.Location, ahead)
	if err != nil {
		return dec, err
	}
	best, combined := []stop(nil), math.Inf(1)
	for i := 0; i <= len(ahead); i++ {
		seq := make([]stop, 0, len(ahead)+1)
		seq = append(seq, ahead[:i]...)
		seq = append(seq, stop{id: r.ID, loc: r.Origin})
		seq = append(seq, ahead[i:]...)
		l, err := e.sequenceLength(d.Location, seq)
		if err != nil {
			continue
		}
		if l < combined {
			best, combined = seq, l
		}
	}
	if best == nil {
		dec.Reason = "unreachable"
		return dec, nil
	}

	payload := e.flightPayload(f)
	dec.Estimate = DetourEstimate{
		CurrentKWh:  e.energy.PerMeter(payload, d.Class) * current,
		CombinedKWh: e.energy.PerMeter(payload+r.PayloadKg, d.Class) * combined,
		SecondKWh:   e.secondDispatchKWh(r, d.ID),
	}
	dec.CurrentM, dec.CombinedM = current, combined
	for _, s := range best {
		dec.Sequence = append(dec.Sequence, s.id)
	}
	switch {
	case !dec.Estimate.Accept(e.cfg.Tolerance()):
		dec.Reason = "combined route exceeds tolerance"
	case d.BatteryKWh-dec.Estimate.CombinedKWh < e.cfg.ReserveKWh:
		dec.Reason = "battery below reserve"
	default:
		dec.Accept = true
	}
	return dec, nil
}

// stopsAhead returns the stops of f beyond the drone's last passed node.
func (e *Engine) stopsAhead(f *model.ActiveFlight) []stop {
	cur := passedOffset(f)
	var list []stop
	for _, id := range stopOrder(f) {
		if f.Stops[id] > cur {
			list = append(list, stop{id: id, loc: e.requests[id].Origin})
		}
	}
	return list
}

// passedOffset is the route offset of the last node the drone passed.
func passedOffset(f *model.ActiveFlight) float64 {
	_, idx := f.NodeAt(f.Traveled)
	if idx < 0 || idx >= len(f.Offsets) {
		return 0
	}
	return f.Offsets[idx]
}

func (e *Engine) sequenceLength(from model.LocationID, seq []stop) (float64, error) {
	route := make([]model.LocationID, 0, len(seq)+1)
	route = append(route, from)
	for _, s := range seq {
		route = append(route, s.loc)
	}
	return e.graph.RouteLength(route)
}

// secondDispatchKWh prices serving r separately: from the nearest other
// available drone of the right class, else from the nearest charging station.
func (e *Engine) secondDispatchKWh(r *model.Request, exclude string) float64 {
	dist, err := e.graph.DistancesFrom(r.Origin)
	if err != nil {
		return math.Inf(1)
	}
	best := math.Inf(1)
	for id, d := range e.drones {
		if id == exclude || d.Status != model.DroneAvailable || !d.Class.Serves(r.Emergency) {
			continue
		}
		if v, ok := dist[d.Location]; ok && v < best {
			best = v
		}
	}
	if math.IsInf(best, 1) {
		_, v, ok := facility.Nearest(dist, e.graph.ChargingStations())
		if !ok {
			return math.Inf(1)
		}
		best = v
	}
	return e.energy.DroneEnergy(best, r.PayloadKg, model.ClassFor(r.Emergency))
}

// tryIntercept folds r into the flight with the largest accepted saving.
func (e *Engine) tryIntercept(r *model.Request) bool {
	var best InterceptDecision
	found := false
	for _, id := range e.flightIDs() {
		d, f := e.drones[id], e.flights[id]
		if !d.Class.Serves(r.Emergency) {
			continue
		}
		dec, err := e.interceptDecision(d, f, r)
		if err != nil || !dec.Accept {
			continue
		}
		if !found || dec.Estimate.SavedKWh() > best.Estimate.SavedKWh() {
			best, found = dec, true
		}
	}
	if !found {
		return false
	}
	if err := e.applyIntercept(e.drones[best.DroneID], e.flights[best.DroneID], r, best); err != nil {
		e.log.Warnf("intercept request %s by %s: %v", r.ID, best.DroneID, err)
		return false
	}
	return true
}

// applyIntercept re-commits the flight from the drone's location through
// the stops of dec. Stops already passed keep their delivered distance. A
// drone caught between two nodes keeps its segment and the progress on it.
func (e *Engine) applyIntercept(d *model.Drone, f *model.ActiveFlight, r *model.Request, dec InterceptDecision) error {
	now := e.now()
	passed := passedOffset(f)
	partial := f.Traveled - passed
	locs := []model.LocationID{d.Location}
	if _, idx := f.NodeAt(f.Traveled); partial > stopEpsilon && idx >= 0 && idx+1 < len(f.Route) {
		locs = []model.LocationID{f.Route[idx], f.Route[idx+1]}
	} else {
		partial = 0
	}
	head := len(locs)
	for _, id := range dec.Sequence {
		if id == r.ID {
			locs = append(locs, r.Origin)
			continue
		}
		locs = append(locs, e.requests[id].Origin)
	}
	route, err := e.graph.Expand(locs)
	if err != nil {
		return err
	}
	offsets, err := e.offsets(route)
	if err != nil {
		return err
	}
	stops := make(map[string]float64, len(f.Stops)+1)
	for id, off := range f.Stops {
		if off <= passed {
			stops[id] = off - passed
		}
	}
	at, err := e.graph.RouteLength(locs[:head])
	if err != nil {
		return err
	}
	for i, id := range dec.Sequence {
		hop, err := e.graph.RouteLength(locs[head-1+i : head+i+1])
		if err != nil {
			return err
		}
		at += hop
		stops[id] = at
	}

	f.Flown += passed
	f.Route = route
	f.Offsets = offsets
	f.Waypoints = e.nodeWaypoints(route)
	f.Length = offsets[len(offsets)-1]
	f.Optimal = f.Length
	f.Planned = false
	f.Stops = stops
	f.Priority = e.mostUrgent(f)
	f.Speed = e.cfg.Speeds.For(f.Priority)
	f.Traveled = partial
	f.Start = now.Add(-time.Duration(partial / f.Speed * float64(time.Second)))

	d.Route = append([]model.LocationID(nil), route...)
	d.Requests = stopOrder(f)
	d.Speed = f.Speed
	r.Status = model.RequestAssigned
	r.DroneID = d.ID
	r.AssignedAt = now
	delete(e.pending, r.ID)

	e.stats.interceptions++
	interceptions.Inc()
	requestWait.WithLabelValues(r.Priority.String()).Observe(now.Sub(r.CreatedAt).Seconds())
	e.publish(events.InterceptEvent{
		DroneID:        d.ID,
		RequestID:      r.ID,
		ExtraDistanceM: dec.CombinedM - dec.CurrentM,
		SavedKWh:       dec.Estimate.SavedKWh(),
		Time:           now,
	})
	e.log.Infow("request intercepted", map[string]any{
		"drone_id":   d.ID,
		"request_id": r.ID,
		"extra_m":    dec.CombinedM - dec.CurrentM,
		"saved_kwh":  dec.Estimate.SavedKWh(),
		"stops":      len(stops),
	})
	return nil
}
