// Package monitoring reports unexpected failures of the dispatch service,
// such as sink write errors and panics in background loops.
package monitoring

import "time"

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

var current Monitor = NopMonitor{}

// Init sets the process monitor. A nil monitor is ignored.
func Init(m Monitor) {
	if m != nil {
		current = m
	}
}

// CaptureException records the error with optional tags such as the drone
// or sink involved.
func CaptureException(err error, tags map[string]string) {
	current.CaptureException(err, tags)
}

// Recover must be deferred directly; it reports and re-panics.
func Recover() {
	current.Recover()
}

func Flush(d time.Duration) {
	current.Flush(d)
}
