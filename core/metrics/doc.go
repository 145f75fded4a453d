// Package metrics defines the sinks that receive delivery and fleet metrics.
// Sinks like PromSink, InfluxSink and EcoSink live in infra/metrics and can be
// combined with NewMultiSink. The factory helpers return a MultiSink
// automatically when multiple sinks are configured.
package metrics
