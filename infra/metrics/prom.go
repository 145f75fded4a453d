package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/dronedispatch/core/metrics"
)

// PromSink records deliveries and drone snapshots in Prometheus metrics.
type PromSink struct {
	deliveries *prometheus.CounterVec
	distance   *prometheus.HistogramVec
	saved      *prometheus.GaugeVec
	battery    *prometheus.GaugeVec
	routes     *prometheus.HistogramVec
}

// NewPromSink registers delivery metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	deliveries, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "drone_deliveries_total",
		Help: "Completed deliveries per drone",
	}, []string{"drone_id", "class", "method"}))
	if err != nil {
		return nil, err
	}
	distance, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "delivery_distance_meters",
		Help:    "Distance flown per delivery",
		Buckets: prometheus.ExponentialBuckets(10, 2, 8),
	}, []string{"class"}))
	if err != nil {
		return nil, err
	}
	saved, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "delivery_energy_saved_kwh",
		Help: "Cumulative energy saved against the baseline per method",
	}, []string{"method"}))
	if err != nil {
		return nil, err
	}
	battery, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "drone_battery_level",
		Help: "Last reported state of charge per drone",
	}, []string{"drone_id"}))
	if err != nil {
		return nil, err
	}
	routes, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "route_length_meters",
		Help:    "Length of committed routes",
		Buckets: prometheus.ExponentialBuckets(10, 2, 8),
	}, []string{"route"}))
	if err != nil {
		return nil, err
	}
	return &PromSink{deliveries: deliveries, distance: distance, saved: saved, battery: battery, routes: routes}, nil
}

// RecordDelivery updates the delivery counters.
func (s *PromSink) RecordDelivery(rec coremetrics.DeliveryRecord) error {
	s.deliveries.WithLabelValues(rec.DroneID, rec.Class.String(), rec.Method).Inc()
	s.distance.WithLabelValues(rec.Class.String()).Observe(rec.DistanceM)
	s.saved.WithLabelValues(rec.Method).Add(rec.SavedKWh)
	return nil
}

// RecordDroneState sets the battery gauge of the drone.
func (s *PromSink) RecordDroneState(ev coremetrics.DroneStateEvent) error {
	s.battery.WithLabelValues(ev.Drone.ID).Set(ev.Drone.BatteryLevel())
	return nil
}

// RecordAssignment observes the committed route length.
func (s *PromSink) RecordAssignment(rec coremetrics.AssignmentRecord) error {
	kind := "planned"
	if !rec.Planned {
		kind = "fallback"
	}
	s.routes.WithLabelValues(kind).Observe(rec.LengthM)
	return nil
}
