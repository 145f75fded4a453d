package metrics

import (
	"context"

	"github.com/kilianp07/dronedispatch/core/events"
	coremetrics "github.com/kilianp07/dronedispatch/core/metrics"
	"github.com/kilianp07/dronedispatch/core/monitoring"
	"github.com/kilianp07/dronedispatch/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and forwards engine events
// to the sink. It stops when the context is canceled or the bus is closed.
// Sink errors are logged and reported to the monitor; they do not stop the
// collector.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		defer monitoring.Recover()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := forward(ev, sink); err != nil {
					collectorLog.Warnf("record %T: %v", ev, err)
					monitoring.CaptureException(err, map[string]string{"component": "metrics-collector"})
				}
			}
		}
	}()
}

func forward(ev eventbus.Event, sink coremetrics.MetricsSink) error {
	switch e := ev.(type) {
	case events.DeliveryEvent:
		return sink.RecordDelivery(DeliveryRecord(e))
	case events.DroneStateEvent:
		if r, ok := sink.(coremetrics.DroneStateRecorder); ok {
			return r.RecordDroneState(coremetrics.DroneStateEvent{Drone: e.Drone, Reason: e.Reason, Time: e.Time})
		}
	case events.AssignmentEvent:
		if r, ok := sink.(coremetrics.AssignmentRecorder); ok {
			return r.RecordAssignment(coremetrics.AssignmentRecord{
				DroneID:   e.DroneID,
				RequestID: e.RequestID,
				Class:     e.Class,
				Priority:  e.Priority,
				Planned:   e.Planned,
				LengthM:   e.LengthM,
				OptimalM:  e.OptimalM,
				Wait:      e.Wait,
				Time:      e.Time,
			})
		}
	}
	return nil
}

// DeliveryRecord flattens a delivery event. Events without an outcome yield
// a record with only identifiers set.
func DeliveryRecord(e events.DeliveryEvent) coremetrics.DeliveryRecord {
	r := e.Request
	rec := coremetrics.DeliveryRecord{
		RequestID: r.ID,
		DroneID:   r.DroneID,
		Class:     e.Class,
		Priority:  r.Priority,
		Time:      e.Time,
	}
	if o := r.Outcome; o != nil {
		rec.Method = o.Method
		rec.DistanceM = o.DistanceM
		rec.DroneKWh = o.DroneKWh
		rec.BaselineKWh = o.BaselineKWh
		rec.SavedKWh = o.SavedKWh
		rec.CO2SavedKg = o.CO2SavedKg
		rec.TimeSaved = o.TimeSaved
	}
	return rec
}
