package events

import (
	"time"

	"github.com/kilianp07/dronedispatch/core/model"
)

// AssignmentEvent is published when a route is committed to a drone.
// Planned is false when the graph fallback produced the route.
type AssignmentEvent struct {
	DroneID   string
	RequestID string
	Class     model.DroneClass
	Priority  model.Priority
	Route     []model.LocationID
	Lane      model.Lane
	Planned   bool
	LengthM   float64
	OptimalM  float64
	Wait      time.Duration
	Time      time.Time
}

// InterceptEvent is published when a drone in flight takes an extra stop.
type InterceptEvent struct {
	DroneID        string
	RequestID      string
	ExtraDistanceM float64
	SavedKWh       float64
	Time           time.Time
}
