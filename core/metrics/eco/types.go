package eco

import "time"

// Record aggregates the energy account of one drone for one day.
type Record struct {
	DroneID     string
	Date        time.Time
	Deliveries  int
	DroneKWh    float64
	BaselineKWh float64
}

// SavedKWh is the energy the baselines would have spent beyond the drone.
func (r Record) SavedKWh() float64 {
	return r.BaselineKWh - r.DroneKWh
}

// CO2Avoided returns the kilograms of CO2 avoided using the emission factor.
func (r Record) CO2Avoided(factor float64) float64 {
	return r.SavedKWh() * factor
}

// EnergyRatio returns baseline energy per drone kWh.
func (r Record) EnergyRatio() float64 {
	if r.DroneKWh == 0 {
		if r.BaselineKWh == 0 {
			return 0
		}
		return r.BaselineKWh
	}
	return r.BaselineKWh / r.DroneKWh
}
