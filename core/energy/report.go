package energy

import (
	"time"

	"github.com/kilianp07/dronedispatch/core/model"
)

// Report compares one delivery against its traditional baseline.
type Report struct {
	DistanceM   float64
	Method      Method
	DroneKWh    float64
	BaselineKWh float64
	SavedKWh    float64
	CO2SavedKg  float64
	DroneTime   time.Duration
	WalkingTime time.Duration
	TimeSaved   time.Duration
}

// SavingsPercent returns the saved share of the baseline in percent.
func (r Report) SavingsPercent() float64 {
	if r.BaselineKWh <= 0 {
		return 0
	}
	return r.SavedKWh / r.BaselineKWh * 100
}

// Compare builds a Report for a flight of distanceM at droneSpeed m/s.
func (m Model) Compare(distanceM, payloadKg float64, class model.DroneClass, method Method, droneSpeed float64) (Report, error) {
	base, err := m.BaselineEnergy(distanceM, method)
	if err != nil {
		return Report{}, err
	}
	drone := m.DroneEnergy(distanceM, payloadKg, class)
	saved := base - drone
	r := Report{
		DistanceM:   distanceM,
		Method:      method,
		DroneKWh:    drone,
		BaselineKWh: base,
		SavedKWh:    saved,
		CO2SavedKg:  m.CO2FromKWh(saved),
		WalkingTime: seconds(distanceM / m.WalkingSpeed),
	}
	if droneSpeed > 0 {
		r.DroneTime = seconds(distanceM / droneSpeed)
	}
	r.TimeSaved = r.WalkingTime - r.DroneTime
	return r, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
