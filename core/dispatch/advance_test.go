package dispatch

import (
	"testing"
	"time"

	"github.com/kilianp07/dronedispatch/core/energy"
	"github.com/kilianp07/dronedispatch/core/model"
)

func TestAdvanceMovesDrainsAndCompletes(t *testing.T) {
	e, clk := newTestEngine(t, Config{}, triangleGraph(t), nil)
	did := addDrone(t, e, DroneSpec{ID: "d1", Location: 1})
	rid := submit(t, e, SubmitInput{Origin: 3, Priority: model.PriorityUrgent})
	m := energy.Default()
	perM := m.PerMeter(0, model.ClassNormal)

	e.Advance(clk.Add(time.Second))
	d := mustDrone(t, e, did)
	if d.Status != model.DroneInTransit || d.Location != 1 {
		t.Fatalf("after 1s: %s at %d", d.Status, d.Location)
	}
	if !almost(d.BatteryKWh, 0.5-m.Drone.BaseKWh-perM*2.5) {
		t.Fatalf("battery after takeoff %v", d.BatteryKWh)
	}
	r := mustRequest(t, e, rid)
	if r.Status != model.RequestInTransit || !r.DepartedAt.Equal(clk.Now()) {
		t.Fatalf("request %s departed %v", r.Status, r.DepartedAt)
	}

	e.Advance(clk.Add(4 * time.Second))
	if d = mustDrone(t, e, did); d.Location != 2 {
		t.Fatalf("after 5s expected at 2, got %d", d.Location)
	}
	prev := d.BatteryKWh

	e.Advance(clk.Add(4 * time.Second))
	d = mustDrone(t, e, did)
	if d.Status != model.DroneAvailable || d.Location != 3 || len(e.Flights()) != 0 {
		t.Fatalf("drone not released at destination: %+v", d)
	}
	if d.BatteryKWh > prev || !almost(d.BatteryKWh, 0.5-m.Drone.BaseKWh-perM*20) {
		t.Fatalf("battery %v", d.BatteryKWh)
	}
	r = mustRequest(t, e, rid)
	if r.Status != model.RequestCompleted || r.Outcome == nil || r.Outcome.DistanceM != 20 {
		t.Fatalf("request not completed: %+v", r)
	}
	if r.Outcome.Method != string(energy.MethodVehicle) {
		t.Fatalf("default method expected, got %s", r.Outcome.Method)
	}
}

func TestAdvanceBeforeStartDoesNothing(t *testing.T) {
	e, clk := newTestEngine(t, Config{}, triangleGraph(t), nil)
	did := addDrone(t, e, DroneSpec{ID: "d1", Location: 1})
	submit(t, e, SubmitInput{Origin: 3, Priority: model.PriorityUrgent})
	e.Advance(clk.Now())
	if d := mustDrone(t, e, did); d.Status != model.DroneAssigned || d.BatteryKWh != 0.5 {
		t.Fatalf("zero elapsed time must not depart: %+v", d)
	}
}

func TestManualCompletionHoldsAtDestination(t *testing.T) {
	e, clk := newTestEngine(t, Config{ManualCompletion: true}, triangleGraph(t), nil)
	did := addDrone(t, e, DroneSpec{ID: "d1", Location: 1})
	rid := submit(t, e, SubmitInput{Origin: 3, Priority: model.PriorityUrgent})
	e.Advance(clk.Add(time.Minute))
	if d := mustDrone(t, e, did); d.Status != model.DroneInTransit || d.Location != 3 {
		t.Fatalf("drone should hover at destination: %+v", d)
	}
	if r := mustRequest(t, e, rid); r.Status != model.RequestInTransit {
		t.Fatalf("request completed without Complete: %s", r.Status)
	}
}

func TestLowDroneChargesAfterDelivery(t *testing.T) {
	e, clk := newTestEngine(t, Config{}, triangleGraph(t), nil)
	did := addDrone(t, e, DroneSpec{ID: "d1", Location: 1, BatteryKWh: 0.1})
	submit(t, e, SubmitInput{Origin: 3, Priority: model.PriorityUrgent})

	e.Advance(clk.Add(10 * time.Second))
	d := mustDrone(t, e, did)
	if d.Status != model.DroneCharging || d.Location != 4 {
		t.Fatalf("expected charging at station 4, got %s at %d", d.Status, d.Location)
	}
	m := energy.Default()
	want := 0.1 - m.DroneEnergy(20, 0, model.ClassNormal) - m.DroneEnergy(15, 0, model.ClassNormal)
	if !almost(d.BatteryKWh, want) {
		t.Fatalf("battery %v want %v", d.BatteryKWh, want)
	}

	e.Advance(clk.Add(10 * time.Second))
	d = mustDrone(t, e, did)
	if d.Status != model.DroneCharging || !almost(d.BatteryKWh, want+0.1) {
		t.Fatalf("partial charge: %s %v", d.Status, d.BatteryKWh)
	}

	e.Advance(clk.Add(30 * time.Second))
	d = mustDrone(t, e, did)
	if d.Status != model.DroneAvailable || !almost(d.BatteryKWh, 0.4) {
		t.Fatalf("expected available at 80%%, got %s %v", d.Status, d.BatteryKWh)
	}
	if st := e.Stats(); st.DronesByStatus["available"] != 1 {
		t.Fatalf("stats %+v", st.DronesByStatus)
	}
}

func TestChargedDroneServesPendingRequest(t *testing.T) {
	e, clk := newTestEngine(t, Config{}, triangleGraph(t), nil)
	did := addDrone(t, e, DroneSpec{ID: "d1", Location: 2, BatteryKWh: 0.02})
	rid := submit(t, e, SubmitInput{Origin: 3, Priority: model.PriorityEmergent})
	if d := mustDrone(t, e, did); d.Status != model.DroneCharging {
		t.Fatalf("expected charging, got %s", d.Status)
	}
	if r := mustRequest(t, e, rid); r.Status != model.RequestPending {
		t.Fatalf("expected pending, got %s", r.Status)
	}
	e.Advance(clk.Add(time.Minute))
	if r := mustRequest(t, e, rid); r.Status != model.RequestAssigned || r.DroneID != did {
		t.Fatalf("charged drone should take the request: %+v", r)
	}
}
