// Package metrics implements the metrics sinks: Prometheus, InfluxDB and the
// daily ecological KPI aggregator, plus the collector that feeds them from
// the dispatch event bus.
package metrics

import "github.com/kilianp07/dronedispatch/infra/logger"

var collectorLog = logger.New("metrics-collector")
