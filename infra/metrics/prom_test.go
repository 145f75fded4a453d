package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kilianp07/dronedispatch/core/metrics"
	"github.com/kilianp07/dronedispatch/core/model"
)

func TestPromSink_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	rec := coremetrics.DeliveryRecord{DroneID: "d1", Method: "walking", DistanceM: 30, SavedKWh: 0.02, Time: time.Now()}
	for i := 0; i < 2; i++ {
		if err := sink.RecordDelivery(rec); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if v := testutil.ToFloat64(sink.deliveries.WithLabelValues("d1", "normal", "walking")); v != 2 {
		t.Errorf("deliveries = %v, want 2", v)
	}
	if v := testutil.ToFloat64(sink.saved.WithLabelValues("walking")); v < 0.0399 || v > 0.0401 {
		t.Errorf("saved = %v, want 0.04", v)
	}

	_ = sink.RecordDroneState(coremetrics.DroneStateEvent{Drone: model.Drone{ID: "d1", BatteryKWh: 0.25, CapacityKWh: 0.5}})
	if v := testutil.ToFloat64(sink.battery.WithLabelValues("d1")); v != 0.5 {
		t.Errorf("battery = %v, want 0.5", v)
	}

	_ = sink.RecordAssignment(coremetrics.AssignmentRecord{DroneID: "d1", Planned: true, LengthM: 40})
	if n := testutil.CollectAndCount(sink.routes); n != 1 {
		t.Errorf("route series = %d, want 1", n)
	}
}

func TestPromSink_RegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.deliveries != second.deliveries {
		t.Fatalf("expected the registered collector to be reused")
	}
}
