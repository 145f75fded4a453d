package model

// DroneClass restricts which requests a drone may serve.
type DroneClass int

const (
	ClassNormal DroneClass = iota
	ClassEmergency
)

// String returns the class label.
func (c DroneClass) String() string {
	if c == ClassEmergency {
		return "emergency"
	}
	return "normal"
}

// ClassFor returns the class that serves requests with the given emergency flag.
func ClassFor(emergency bool) DroneClass {
	if emergency {
		return ClassEmergency
	}
	return ClassNormal
}

// Serves reports whether a drone of class c may take a request with the given flag.
func (c DroneClass) Serves(emergency bool) bool { return c == ClassFor(emergency) }

// DroneStatus is the operational state of a drone.
type DroneStatus int

const (
	DroneAvailable DroneStatus = iota
	DroneAssigned
	DroneInTransit
	DroneCharging
)

var droneStatusNames = [...]string{"available", "assigned", "in_transit", "charging"}

func (s DroneStatus) String() string {
	if s < 0 || int(s) >= len(droneStatusNames) {
		return "unknown"
	}
	return droneStatusNames[s]
}

// Drone is a delivery drone of the fleet.
type Drone struct {
	ID          string
	Location    LocationID
	Class       DroneClass
	Status      DroneStatus
	BatteryKWh  float64
	CapacityKWh float64
	// Requests holds the ids of the requests carried on the current flight.
	Requests []string
	Route    []LocationID
	Speed    float64
	// Station is the charging station the drone is parked at while charging.
	Station LocationID
}

// BatteryLevel returns the state of charge in [0,1].
func (d Drone) BatteryLevel() float64 {
	if d.CapacityKWh <= 0 {
		return 0
	}
	return d.BatteryKWh / d.CapacityKWh
}

// Clone returns a copy that shares no slices with d.
func (d Drone) Clone() Drone {
	d.Requests = append([]string(nil), d.Requests...)
	d.Route = append([]LocationID(nil), d.Route...)
	return d
}
