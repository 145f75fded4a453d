package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/dronedispatch/core/factory"
	coremetrics "github.com/kilianp07/dronedispatch/core/metrics"
	eco "github.com/kilianp07/dronedispatch/core/metrics/eco"
)

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterMetricsSink("prometheus", func(map[string]any) (coremetrics.MetricsSink, error) {
		return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	})

	_ = coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c struct {
			URL    string `json:"url"`
			Token  string `json:"token"`
			Org    string `json:"org"`
			Bucket string `json:"bucket"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	})

	_ = coremetrics.RegisterMetricsSink("eco", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		c := struct {
			EmissionFactor float64 `json:"emission_factor"`
		}{EmissionFactor: 0.4}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewEcoSink(eco.NewMemoryStore(), c.EmissionFactor, prometheus.DefaultRegisterer)
	})
}
