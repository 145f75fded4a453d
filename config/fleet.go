package config

import (
	"fmt"

	"github.com/kilianp07/dronedispatch/core/dispatch"
	"github.com/kilianp07/dronedispatch/core/facility"
	"github.com/kilianp07/dronedispatch/core/model"
)

const (
	defaultEmergencyDrones = 6
	defaultNormalDrones    = 14
)

// FleetConfig lists the drones registered at startup.
type FleetConfig struct {
	Drones []dispatch.DroneSpec `json:"drones"`
}

// SetDefaults places the default fleet on l when no drone is configured:
// emergency drones cycle over the first two rooms and the last one, normal
// drones over every location.
func (c *FleetConfig) SetDefaults(l facility.Layout) {
	if len(c.Drones) > 0 || l.Empty() {
		return
	}
	c.Drones = DefaultFleet(l)
}

// DefaultFleet returns six emergency and fourteen normal drones on l.
func DefaultFleet(l facility.Layout) []dispatch.DroneSpec {
	locs := l.Locations
	hubs := []int{locs[0].ID}
	if len(locs) > 1 {
		hubs = append(hubs, locs[1].ID)
	}
	last := locs[0].ID
	for _, loc := range locs {
		if !loc.Charging {
			last = loc.ID
		}
	}
	emergencyAt := []int{hubs[0], hubs[len(hubs)-1], hubs[0], hubs[len(hubs)-1], last, hubs[0]}

	specs := make([]dispatch.DroneSpec, 0, defaultEmergencyDrones+defaultNormalDrones)
	for i := 0; i < defaultEmergencyDrones; i++ {
		specs = append(specs, dispatch.DroneSpec{
			ID:        fmt.Sprintf("drone-%02d", len(specs)+1),
			Location:  model.LocationID(emergencyAt[i%len(emergencyAt)]),
			Emergency: true,
		})
	}
	for i := 0; i < defaultNormalDrones; i++ {
		specs = append(specs, dispatch.DroneSpec{
			ID:       fmt.Sprintf("drone-%02d", len(specs)+1),
			Location: model.LocationID(locs[i%len(locs)].ID),
		})
	}
	return specs
}

// Validate rejects duplicate ids and drones placed off the facility.
func (c FleetConfig) Validate(l facility.Layout) error {
	known := make(map[int]bool, len(l.Locations))
	for _, loc := range l.Locations {
		known[loc.ID] = true
	}
	seen := make(map[string]bool, len(c.Drones))
	for i, d := range c.Drones {
		if d.ID != "" {
			if seen[d.ID] {
				return fmt.Errorf("duplicate drone id %s", d.ID)
			}
			seen[d.ID] = true
		}
		if !known[int(d.Location)] {
			return fmt.Errorf("drone %d: unknown location %d", i, d.Location)
		}
		if d.BatteryKWh < 0 || d.CapacityKWh < 0 {
			return fmt.Errorf("drone %d: negative battery", i)
		}
	}
	return nil
}
