// Package infra contains technical adapters such as metrics exporters,
// logging and error monitoring. These packages should depend only on the
// interfaces defined in the core packages.
package infra
