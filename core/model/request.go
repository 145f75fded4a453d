package model

import "time"

// RequestStatus is the lifecycle state of a transport request.
type RequestStatus int

const (
	RequestPending RequestStatus = iota
	RequestAssigned
	RequestInTransit
	RequestCompleted
	RequestCancelled
)

var requestStatusNames = [...]string{"pending", "assigned", "in_transit", "completed", "cancelled"}

func (s RequestStatus) String() string {
	if s < 0 || int(s) >= len(requestStatusNames) {
		return "unknown"
	}
	return requestStatusNames[s]
}

// Cancellable reports whether a request in status s may still be cancelled.
func (s RequestStatus) Cancellable() bool {
	return s == RequestPending || s == RequestAssigned
}

// Request is a priority-ranked delivery to a requester location.
type Request struct {
	ID        string
	Requester string
	Origin    LocationID
	Priority  Priority
	Emergency bool
	PayloadKg float64
	Status    RequestStatus
	DroneID   string
	CreatedAt time.Time
	// Seq is the submission order, used to break creation-time ties.
	Seq uint64

	AssignedAt  time.Time
	DepartedAt  time.Time
	CompletedAt time.Time

	Outcome *Outcome
}

// Outcome holds the accounting attached to a completed request.
type Outcome struct {
	FinalLocation LocationID
	Method        string
	DistanceM     float64
	DroneKWh      float64
	BaselineKWh   float64
	SavedKWh      float64
	CO2SavedKg    float64
	DroneTime     time.Duration
	WalkingTime   time.Duration
	TimeSaved     time.Duration
}

// Clone returns a deep copy of r.
func (r Request) Clone() Request {
	if r.Outcome != nil {
		o := *r.Outcome
		r.Outcome = &o
	}
	return r
}

// Before reports whether r is served ahead of o in the pending order.
func (r Request) Before(o Request) bool {
	if r.Priority != o.Priority {
		return r.Priority.MoreUrgent(o.Priority)
	}
	if !r.CreatedAt.Equal(o.CreatedAt) {
		return r.CreatedAt.Before(o.CreatedAt)
	}
	return r.Seq < o.Seq
}
