package dispatch

import (
	"fmt"
	"math"

	"github.com/kilianp07/dronedispatch/core/energy"
	"github.com/kilianp07/dronedispatch/core/events"
	"github.com/kilianp07/dronedispatch/core/facility"
	"github.com/kilianp07/dronedispatch/core/model"
)

// Complete closes an in-transit request delivered at final, comparing the
// flight against method with the given payload.
func (e *Engine) Complete(requestID string, final model.LocationID, method energy.Method, payloadKg float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.requests[requestID]
	if !ok {
		return fmt.Errorf("request %s: %w", requestID, ErrNotFound)
	}
	if err := e.finish(r, final, method, payloadKg); err != nil {
		return err
	}
	e.processPending()
	return nil
}

// finish runs every check before touching state.
func (e *Engine) finish(r *model.Request, final model.LocationID, method energy.Method, payloadKg float64) error {
	if r.Status != model.RequestInTransit {
		return fmt.Errorf("complete request %s in status %s: %w", r.ID, r.Status, ErrInvalidState)
	}
	d, f := e.drones[r.DroneID], e.flights[r.DroneID]
	if d == nil || f == nil {
		return fmt.Errorf("request %s has no active flight: %w", r.ID, ErrInvalidState)
	}
	off, ok := f.Stops[r.ID]
	if !ok {
		return fmt.Errorf("request %s not on flight of %s: %w", r.ID, d.ID, ErrInvalidState)
	}
	if !e.graph.Has(final) {
		return fmt.Errorf("final location %d: %w", final, facility.ErrUnknownLocation)
	}
	distance := f.Flown + off
	if final != r.Origin {
		_, extra, err := e.graph.ShortestPath(r.Origin, final)
		if err != nil {
			return err
		}
		distance += extra
	}
	rep, err := e.energy.Compare(distance, payloadKg, d.Class, method, f.Speed)
	if err != nil {
		return err
	}

	now := e.now()
	r.Status = model.RequestCompleted
	r.CompletedAt = now
	r.Outcome = &model.Outcome{
		FinalLocation: final,
		Method:        string(method),
		DistanceM:     rep.DistanceM,
		DroneKWh:      rep.DroneKWh,
		BaselineKWh:   rep.BaselineKWh,
		SavedKWh:      rep.SavedKWh,
		CO2SavedKg:    rep.CO2SavedKg,
		DroneTime:     rep.DroneTime,
		WalkingTime:   rep.WalkingTime,
		TimeSaved:     rep.TimeSaved,
	}
	delete(f.Stops, r.ID)
	d.Requests = stopOrder(f)

	e.stats.delivered(r.Outcome)
	completionsTotal.WithLabelValues(string(method)).Inc()
	energySaved.Add(rep.SavedKWh)
	co2Saved.Add(rep.CO2SavedKg)
	e.publish(events.DeliveryEvent{Request: r.Clone(), Class: d.Class, Time: now})
	e.log.Infow("request completed", map[string]any{
		"request_id": r.ID,
		"drone_id":   d.ID,
		"method":     string(method),
		"distance_m": rep.DistanceM,
		"saved_kwh":  rep.SavedKWh,
		"saved_pct":  rep.SavingsPercent(),
	})

	if len(f.Stops) == 0 {
		e.release(d, final, "delivered")
		return nil
	}
	f.Priority = e.mostUrgent(f)
	d.Speed = f.Speed
	return nil
}

// Cancel withdraws a pending or assigned request. A drone left without
// requests has not departed and becomes available where it stands; its
// battery is judged by the next assignment.
func (e *Engine) Cancel(requestID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.requests[requestID]
	if !ok {
		return fmt.Errorf("request %s: %w", requestID, ErrNotFound)
	}
	if !r.Status.Cancellable() {
		return fmt.Errorf("cancel request %s in status %s: %w", r.ID, r.Status, ErrInvalidState)
	}
	if r.Status == model.RequestPending {
		delete(e.pending, r.ID)
	} else if f := e.flights[r.DroneID]; f != nil {
		d := e.drones[r.DroneID]
		delete(f.Stops, r.ID)
		d.Requests = stopOrder(f)
		if len(f.Stops) == 0 {
			e.clearFlight(d, d.Location)
			d.Status = model.DroneAvailable
			e.publishDrone(d, "cancelled")
			e.log.Debugf("drone %s freed at %d by cancel", d.ID, d.Location)
		}
	}
	r.Status = model.RequestCancelled
	e.publish(events.RequestEvent{
		RequestID: r.ID,
		Priority:  r.Priority,
		Emergency: r.Emergency,
		Action:    "cancelled",
		Time:      e.now(),
	})
	e.log.Infof("request %s cancelled", r.ID)
	e.processPending()
	return nil
}

// release ends the flight of d at loc. A drone under the recharge threshold
// goes to charge instead of becoming available.
func (e *Engine) release(d *model.Drone, loc model.LocationID, reason string) {
	e.clearFlight(d, loc)
	if d.BatteryLevel() < e.cfg.RechargeBelow {
		e.sendToCharge(d)
		return
	}
	d.Status = model.DroneAvailable
	e.publishDrone(d, reason)
	e.log.Debugf("drone %s released at %d (%s)", d.ID, loc, reason)
}

func (e *Engine) clearFlight(d *model.Drone, loc model.LocationID) {
	delete(e.flights, d.ID)
	d.Location = loc
	d.Route = nil
	d.Requests = nil
	d.Speed = 0
}

// sendToCharge flies d to the nearest charging station and parks it there.
func (e *Engine) sendToCharge(d *model.Drone) {
	station := d.Location
	if id, dist, ok := e.graph.ClosestAmong(d.Location, e.graph.ChargingStations()); ok {
		station = id
		if dist > 0 {
			d.BatteryKWh = math.Max(0, d.BatteryKWh-e.energy.DroneEnergy(dist, 0, d.Class))
		}
	}
	d.Location = station
	d.Station = station
	d.Status = model.DroneCharging
	d.Route = nil
	d.Speed = 0
	e.publishDrone(d, "charging")
	e.log.Infof("drone %s charging at %d (%.0f%%)", d.ID, station, d.BatteryLevel()*100)
}
