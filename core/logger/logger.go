// Package logger defines the logging contract used across the dispatch core.
package logger

// Logger exposes leveled printf-style logging plus structured variants for
// events that dashboards and log pipelines query by field.
type Logger interface {
	Debugf(format string, args ...any)
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Infow(msg string, fields map[string]any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
