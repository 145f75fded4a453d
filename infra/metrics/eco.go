package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	core "github.com/kilianp07/dronedispatch/core/metrics"
	eco "github.com/kilianp07/dronedispatch/core/metrics/eco"
)

// EcoSink aggregates deliveries into daily per-drone ecological KPIs.
type EcoSink struct {
	store  eco.Store
	factor float64
	saved  *prometheus.GaugeVec
	ratio  *prometheus.GaugeVec
	co2    *prometheus.GaugeVec
}

// NewEcoSink creates a sink with Prometheus gauges registered on reg.
// factor is the grid emission factor in kg CO2 per kWh.
func NewEcoSink(store eco.Store, factor float64, reg prometheus.Registerer) (*EcoSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	saved, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "drone_energy_saved_kwh",
		Help: "Daily energy saved per drone against the baseline",
	}, []string{"drone_id", "day"}))
	if err != nil {
		return nil, err
	}
	ratio, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "drone_energy_ratio",
		Help: "Daily ratio of baseline to drone energy",
	}, []string{"drone_id", "day"}))
	if err != nil {
		return nil, err
	}
	co2, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "drone_co2_avoided_kg",
		Help: "Daily CO2 avoided per drone",
	}, []string{"drone_id", "day"}))
	if err != nil {
		return nil, err
	}
	return &EcoSink{store: store, factor: factor, saved: saved, ratio: ratio, co2: co2}, nil
}

// RecordDelivery adds the delivery to the day of the drone and refreshes its gauges.
func (s *EcoSink) RecordDelivery(r core.DeliveryRecord) error {
	rec := eco.Record{
		DroneID:     r.DroneID,
		Date:        r.Time,
		Deliveries:  1,
		DroneKWh:    r.DroneKWh,
		BaselineKWh: r.BaselineKWh,
	}
	if err := s.store.Add(rec); err != nil {
		return err
	}
	records, err := s.store.Query(r.DroneID, rec.Date, rec.Date)
	if err != nil || len(records) == 0 {
		return err
	}
	day := records[0]
	dayStr := day.Date.Format("2006-01-02")
	s.saved.WithLabelValues(r.DroneID, dayStr).Set(day.SavedKWh())
	s.ratio.WithLabelValues(r.DroneID, dayStr).Set(day.EnergyRatio())
	s.co2.WithLabelValues(r.DroneID, dayStr).Set(day.CO2Avoided(s.factor))
	return nil
}
