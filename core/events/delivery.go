package events

import (
	"time"

	"github.com/kilianp07/dronedispatch/core/model"
)

// DeliveryEvent carries a completed request and the class of the drone that served it.
type DeliveryEvent struct {
	Request model.Request
	Class   model.DroneClass
	Time    time.Time
}

// DroneStateEvent is a drone snapshot taken on a status change.
type DroneStateEvent struct {
	Drone  model.Drone
	Reason string
	Time   time.Time
}
