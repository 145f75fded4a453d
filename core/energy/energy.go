// Package energy converts flight distances into energy and emission figures
// and compares them with the traditional transport a delivery replaces.
package energy

import (
	"errors"
	"fmt"
	"math"

	"github.com/kilianp07/dronedispatch/core/model"
)

// ErrUnknownBaseline is returned for comparison methods without a profile.
var ErrUnknownBaseline = errors.New("unknown baseline method")

// Method is a traditional transport used as comparison baseline.
type Method string

const (
	MethodVehicle      Method = "vehicle"
	MethodElectricCart Method = "electric_cart"
	MethodWalking      Method = "walking"
)

// Profile is a fixed cost plus a per-meter cost, in kWh.
type Profile struct {
	BaseKWh     float64 `json:"base_kwh"`
	PerMeterKWh float64 `json:"per_meter_kwh"`
}

func (p Profile) cost(distanceM float64) float64 {
	return p.BaseKWh + p.PerMeterKWh*math.Max(distanceM, 0)
}

// Model holds the calibration used by every computation.
type Model struct {
	Drone Profile `json:"drone"`
	// EmergencyFactor scales the per-meter drone cost of emergency-class drones.
	EmergencyFactor float64            `json:"emergency_factor"`
	Baselines       map[Method]Profile `json:"baselines"`
	// EmissionFactor is in kg CO2 per kWh.
	EmissionFactor float64 `json:"emission_factor"`
	// WalkingSpeed is in m/s.
	WalkingSpeed float64 `json:"walking_speed"`
}

// Default returns the calibration used when nothing is configured.
func Default() Model {
	return Model{
		Drone:           Profile{BaseKWh: 0.005, PerMeterKWh: 0.0001},
		EmergencyFactor: 1.2,
		Baselines: map[Method]Profile{
			MethodVehicle:      {BaseKWh: 0.1, PerMeterKWh: 0.0003},
			MethodElectricCart: {BaseKWh: 0.05, PerMeterKWh: 0.00015},
			MethodWalking:      {BaseKWh: 0.001, PerMeterKWh: 0.0002},
		},
		EmissionFactor: 0.4,
		WalkingSpeed:   3 * 1.60934 / 3.6,
	}
}

// PayloadFactor scales the per-meter drone cost with the carried weight.
// Weight is clamped to [0,2] kg: 0.9 empty, 1.0 at 1 kg, 1.33 at 2 kg.
func PayloadFactor(payloadKg float64) float64 {
	w := math.Min(math.Max(payloadKg, 0), 2)
	if w <= 1 {
		return 0.9 + 0.1*w
	}
	return 1 + 0.33*(w-1)
}

// PerMeter returns the drone cost of one meter of flight.
func (m Model) PerMeter(payloadKg float64, class model.DroneClass) float64 {
	f := PayloadFactor(payloadKg)
	if class == model.ClassEmergency {
		f *= m.EmergencyFactor
	}
	return m.Drone.PerMeterKWh * f
}

// DroneEnergy is the takeoff/landing cost plus the distance term.
func (m Model) DroneEnergy(distanceM, payloadKg float64, class model.DroneClass) float64 {
	return m.Drone.BaseKWh + m.PerMeter(payloadKg, class)*math.Max(distanceM, 0)
}

// BaselineEnergy returns what the traditional method would spend on distanceM.
func (m Model) BaselineEnergy(distanceM float64, method Method) (float64, error) {
	p, ok := m.Baselines[method]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownBaseline, method)
	}
	return p.cost(distanceM), nil
}

// CO2FromKWh converts energy into kg of CO2 using the grid factor.
func (m Model) CO2FromKWh(kwh float64) float64 {
	return kwh * m.EmissionFactor
}

// SetDefaults fills unset fields from Default.
func (m *Model) SetDefaults() {
	d := Default()
	if m.Drone == (Profile{}) {
		m.Drone = d.Drone
	}
	if m.EmergencyFactor == 0 {
		m.EmergencyFactor = d.EmergencyFactor
	}
	if m.Baselines == nil {
		m.Baselines = d.Baselines
	}
	if m.EmissionFactor == 0 {
		m.EmissionFactor = d.EmissionFactor
	}
	if m.WalkingSpeed == 0 {
		m.WalkingSpeed = d.WalkingSpeed
	}
}

// Validate rejects negative costs and non-positive speeds.
func (m Model) Validate() error {
	if m.Drone.BaseKWh < 0 || m.Drone.PerMeterKWh < 0 {
		return fmt.Errorf("drone profile must be non-negative")
	}
	for k, p := range m.Baselines {
		if p.BaseKWh < 0 || p.PerMeterKWh < 0 {
			return fmt.Errorf("baseline %s must be non-negative", k)
		}
	}
	if m.EmissionFactor < 0 {
		return fmt.Errorf("emission factor must be non-negative")
	}
	if m.WalkingSpeed <= 0 {
		return fmt.Errorf("walking speed must be positive")
	}
	return nil
}

var std = Default()

// DroneEnergy uses the default calibration.
func DroneEnergy(distanceM, payloadKg float64, class model.DroneClass) float64 {
	return std.DroneEnergy(distanceM, payloadKg, class)
}

// BaselineEnergy uses the default calibration.
func BaselineEnergy(distanceM float64, method Method) (float64, error) {
	return std.BaselineEnergy(distanceM, method)
}

// CO2FromKWh uses the default grid factor.
func CO2FromKWh(kwh float64) float64 { return std.CO2FromKWh(kwh) }
