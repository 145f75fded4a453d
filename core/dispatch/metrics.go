package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsSubmitted *prometheus.CounterVec
	assignmentsTotal  *prometheus.CounterVec
	interceptions     prometheus.Counter
	completionsTotal  *prometheus.CounterVec
	energySaved       prometheus.Gauge
	co2Saved          prometheus.Gauge
	pendingRequests   prometheus.Gauge
	requestWait       *prometheus.HistogramVec
	pathEfficiency    prometheus.Histogram
)

type collectors struct {
	submitted   *prometheus.CounterVec
	assignments *prometheus.CounterVec
	intercepts  prometheus.Counter
	completions *prometheus.CounterVec
	saved       prometheus.Gauge
	co2         prometheus.Gauge
	pending     prometheus.Gauge
	wait        *prometheus.HistogramVec
	efficiency  prometheus.Histogram
}

// newCollectors creates new metric collectors.
func newCollectors() collectors {
	return collectors{
		submitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dispatch_requests_submitted_total",
				Help: "Number of transport requests submitted",
			},
			[]string{"priority"},
		),
		assignments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dispatch_assignments_total",
				Help: "Number of routes committed to drones",
			},
			[]string{"class", "route"},
		),
		intercepts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "dispatch_interceptions_total",
				Help: "Number of requests picked up by drones already in flight",
			},
		),
		completions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dispatch_completions_total",
				Help: "Number of completed deliveries by comparison method",
			},
			[]string{"method"},
		),
		saved: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "dispatch_energy_saved_kwh",
				Help: "Cumulative energy saved against the baseline method",
			},
		),
		co2: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "dispatch_co2_saved_kg",
				Help: "Cumulative CO2 avoided against the baseline method",
			},
		),
		pending: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "dispatch_pending_requests",
				Help: "Requests waiting for a drone",
			},
		),
		wait: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dispatch_request_wait_seconds",
				Help:    "Time from submission to assignment",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"priority"},
		),
		efficiency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dispatch_path_efficiency_ratio",
				Help:    "Graph-optimal over committed route length",
				Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
			},
		),
	}
}

func (c collectors) install() {
	requestsSubmitted = c.submitted
	assignmentsTotal = c.assignments
	interceptions = c.intercepts
	completionsTotal = c.completions
	energySaved = c.saved
	co2Saved = c.co2
	pendingRequests = c.pending
	requestWait = c.wait
	pathEfficiency = c.efficiency
}

func init() {
	newCollectors().install()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(requestsSubmitted, assignmentsTotal, interceptions, completionsTotal,
		energySaved, co2Saved, pendingRequests, requestWait, pathEfficiency)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	newCollectors().install()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
