package dispatch

import (
	"math"
	"time"

	"github.com/kilianp07/dronedispatch/core/model"
)

const stopEpsilon = 1e-9

// Advance moves every flight to its position at now. Batteries drain with
// the distance flown, passed stops complete unless completion is manual, and
// parked drones charge for the time elapsed since the previous call.
func (e *Engine) Advance(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if dt := now.Sub(e.lastTick); dt > 0 {
		e.charge(dt)
		e.lastTick = now
	}
	for _, id := range e.flightIDs() {
		if f, ok := e.flights[id]; ok {
			e.advanceFlight(f, now)
		}
	}
	e.processPending()
}

func (e *Engine) advanceFlight(f *model.ActiveFlight, now time.Time) {
	elapsed := now.Sub(f.Start).Seconds()
	if elapsed <= 0 {
		return
	}
	d := e.drones[f.DroneID]
	if d.Status == model.DroneAssigned {
		d.Status = model.DroneInTransit
		d.BatteryKWh = math.Max(0, d.BatteryKWh-e.energy.Drone.BaseKWh)
		e.publishDrone(d, "departed")
	}
	for id := range f.Stops {
		if r := e.requests[id]; r.Status == model.RequestAssigned {
			r.Status = model.RequestInTransit
			r.DepartedAt = now
		}
	}

	traveled := math.Min(elapsed*f.Speed, f.Length)
	if delta := traveled - f.Traveled; delta > 0 {
		d.BatteryKWh = math.Max(0, d.BatteryKWh-e.energy.PerMeter(e.flightPayload(f), d.Class)*delta)
		f.Traveled = traveled
	}
	d.Location, _ = f.NodeAt(traveled)

	if e.cfg.ManualCompletion {
		return
	}
	for _, id := range stopOrder(f) {
		if f.Stops[id] > traveled+stopEpsilon {
			break
		}
		r := e.requests[id]
		if err := e.finish(r, r.Origin, e.cfg.DefaultMethod, r.PayloadKg); err != nil {
			e.log.Errorf("complete request %s: %v", id, err)
			return
		}
		if _, ok := e.flights[d.ID]; !ok {
			return
		}
	}
}

// charge tops up parked drones. A drone reaching its target becomes available.
func (e *Engine) charge(dt time.Duration) {
	for _, id := range e.sortedDroneIDs() {
		d := e.drones[id]
		if d.Status != model.DroneCharging {
			continue
		}
		target := e.cfg.ChargeTarget * d.CapacityKWh
		if d.BatteryKWh >= target {
			target = d.CapacityKWh
		}
		d.BatteryKWh = math.Min(target, d.BatteryKWh+e.cfg.ChargeRateKWhPerSec*dt.Seconds())
		if d.BatteryKWh >= target {
			d.Status = model.DroneAvailable
			e.publishDrone(d, "charged")
			e.log.Infof("drone %s charged to %.0f%% at %d", d.ID, d.BatteryLevel()*100, d.Location)
		}
	}
}
