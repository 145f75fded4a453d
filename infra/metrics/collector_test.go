package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/kilianp07/dronedispatch/core/events"
	coremetrics "github.com/kilianp07/dronedispatch/core/metrics"
	"github.com/kilianp07/dronedispatch/core/model"
	"github.com/kilianp07/dronedispatch/internal/eventbus"
)

type chanSink struct {
	deliveries  chan coremetrics.DeliveryRecord
	states      chan coremetrics.DroneStateEvent
	assignments chan coremetrics.AssignmentRecord
}

func newChanSink() *chanSink {
	return &chanSink{
		deliveries:  make(chan coremetrics.DeliveryRecord, 4),
		states:      make(chan coremetrics.DroneStateEvent, 4),
		assignments: make(chan coremetrics.AssignmentRecord, 4),
	}
}

func (s *chanSink) RecordDelivery(r coremetrics.DeliveryRecord) error {
	s.deliveries <- r
	return nil
}

func (s *chanSink) RecordDroneState(e coremetrics.DroneStateEvent) error {
	s.states <- e
	return nil
}

func (s *chanSink) RecordAssignment(r coremetrics.AssignmentRecord) error {
	s.assignments <- r
	return nil
}

func TestStartEventCollector(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sink := newChanSink()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartEventCollector(ctx, bus, sink)

	now := time.Now()
	req := model.Request{
		ID:       "r1",
		DroneID:  "d1",
		Priority: model.PriorityEmergent,
		Outcome:  &model.Outcome{Method: "vehicle", DistanceM: 20, SavedKWh: 0.04},
	}
	bus.Publish(events.DeliveryEvent{Request: req, Class: model.ClassEmergency, Time: now})
	bus.Publish(events.DroneStateEvent{Drone: model.Drone{ID: "d1"}, Reason: "released", Time: now})
	bus.Publish(events.AssignmentEvent{DroneID: "d1", RequestID: "r2", Planned: true, LengthM: 10, Time: now})
	bus.Publish(events.RequestEvent{RequestID: "r3", Action: "submitted"})

	select {
	case rec := <-sink.deliveries:
		if rec.RequestID != "r1" || rec.DroneID != "d1" || rec.Class != model.ClassEmergency || rec.Method != "vehicle" || rec.DistanceM != 20 {
			t.Errorf("delivery record: %+v", rec)
		}
	case <-time.After(time.Second):
		t.Fatal("delivery not forwarded")
	}
	select {
	case ev := <-sink.states:
		if ev.Drone.ID != "d1" || ev.Reason != "released" {
			t.Errorf("state: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("drone state not forwarded")
	}
	select {
	case rec := <-sink.assignments:
		if rec.RequestID != "r2" || !rec.Planned {
			t.Errorf("assignment: %+v", rec)
		}
	case <-time.After(time.Second):
		t.Fatal("assignment not forwarded")
	}
}

func TestDeliveryRecordWithoutOutcome(t *testing.T) {
	rec := DeliveryRecord(events.DeliveryEvent{Request: model.Request{ID: "r1"}})
	if rec.RequestID != "r1" || rec.Method != "" || rec.DistanceM != 0 {
		t.Fatalf("unexpected record %+v", rec)
	}
}
