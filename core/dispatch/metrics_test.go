package dispatch

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMetricsRegistration(t *testing.T) {
	ResetMetrics(nil)
	t.Cleanup(func() { ResetMetrics(nil) })
	reg := prometheus.NewRegistry()
	MustRegisterMetrics(reg)
	// touch metrics so they are exported
	requestsSubmitted.WithLabelValues("CTAS-I").Inc()
	assignmentsTotal.WithLabelValues("emergency", "planned").Inc()
	interceptions.Inc()
	completionsTotal.WithLabelValues("vehicle").Inc()
	energySaved.Add(0.1)
	co2Saved.Add(0.04)
	pendingRequests.Set(2)
	requestWait.WithLabelValues("CTAS-I").Observe(0.5)
	pathEfficiency.Observe(0.9)
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, mf := range mfs {
		names[*mf.Name] = true
	}
	expected := []string{
		"dispatch_requests_submitted_total",
		"dispatch_assignments_total",
		"dispatch_interceptions_total",
		"dispatch_completions_total",
		"dispatch_energy_saved_kwh",
		"dispatch_co2_saved_kg",
		"dispatch_pending_requests",
		"dispatch_request_wait_seconds",
		"dispatch_path_efficiency_ratio",
	}
	for _, n := range expected {
		if !names[n] {
			t.Errorf("metric %s not registered", n)
		}
	}
}
