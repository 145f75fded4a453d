package events

import (
	"time"

	"github.com/kilianp07/dronedispatch/core/model"
)

// RequestEvent is published when a request enters or leaves the queue
// without being served. Action is "submitted" or "cancelled".
type RequestEvent struct {
	RequestID string
	Priority  model.Priority
	Emergency bool
	Action    string
	Time      time.Time
}
