package metrics

import (
	"time"

	"github.com/kilianp07/dronedispatch/core/model"
)

// DeliveryRecord is the accounting of one completed request.
type DeliveryRecord struct {
	RequestID   string
	DroneID     string
	Class       model.DroneClass
	Priority    model.Priority
	Method      string
	DistanceM   float64
	DroneKWh    float64
	BaselineKWh float64
	SavedKWh    float64
	CO2SavedKg  float64
	TimeSaved   time.Duration
	Time        time.Time
}

// MetricsSink records completed deliveries.
type MetricsSink interface {
	RecordDelivery(rec DeliveryRecord) error
}

// DroneStateEvent is a snapshot of a drone after a status change.
type DroneStateEvent struct {
	Drone  model.Drone
	Reason string
	Time   time.Time
}

// DroneStateRecorder records drone snapshots.
type DroneStateRecorder interface {
	RecordDroneState(ev DroneStateEvent) error
}

// AssignmentRecord describes a committed route.
type AssignmentRecord struct {
	DroneID   string
	RequestID string
	Class     model.DroneClass
	Priority  model.Priority
	Planned   bool
	LengthM   float64
	OptimalM  float64
	Wait      time.Duration
	Time      time.Time
}

// Efficiency returns the optimal to chosen length ratio, 1 for empty routes.
func (a AssignmentRecord) Efficiency() float64 {
	if a.LengthM <= 0 {
		return 1
	}
	return a.OptimalM / a.LengthM
}

// AssignmentRecorder records route commits.
type AssignmentRecorder interface {
	RecordAssignment(rec AssignmentRecord) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordDelivery(DeliveryRecord) error     { return nil }
func (NopSink) RecordDroneState(DroneStateEvent) error  { return nil }
func (NopSink) RecordAssignment(AssignmentRecord) error { return nil }
