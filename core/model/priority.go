package model

import "fmt"

// Priority is the five-tier CTAS urgency ordinal. Lower values are more urgent.
type Priority int

const (
	PriorityResuscitation Priority = iota + 1
	PriorityEmergent
	PriorityUrgent
	PriorityLessUrgent
	PriorityNonUrgent
)

// Priorities lists every tier from most to least urgent.
var Priorities = []Priority{
	PriorityResuscitation,
	PriorityEmergent,
	PriorityUrgent,
	PriorityLessUrgent,
	PriorityNonUrgent,
}

// String returns the CTAS label of the tier.
func (p Priority) String() string {
	switch p {
	case PriorityResuscitation:
		return "CTAS-I"
	case PriorityEmergent:
		return "CTAS-II"
	case PriorityUrgent:
		return "CTAS-III"
	case PriorityLessUrgent:
		return "CTAS-IV"
	case PriorityNonUrgent:
		return "CTAS-V"
	default:
		return "unknown"
	}
}

// Valid reports whether p is one of the five tiers.
func (p Priority) Valid() bool {
	return p >= PriorityResuscitation && p <= PriorityNonUrgent
}

// MoreUrgent reports whether p must be served before o.
func (p Priority) MoreUrgent(o Priority) bool { return p < o }

// SpeedClass groups tiers sharing the same cruise speed.
type SpeedClass int

const (
	SpeedEmergency SpeedClass = iota
	SpeedNormal
	SpeedLow
)

// SpeedClass returns the cruise class of the tier.
func (p Priority) SpeedClass() SpeedClass {
	switch p {
	case PriorityResuscitation, PriorityEmergent:
		return SpeedEmergency
	case PriorityUrgent:
		return SpeedNormal
	case PriorityLessUrgent, PriorityNonUrgent:
		return SpeedLow
	default:
		panic(fmt.Sprintf("model: invalid priority %d", int(p)))
	}
}

// Speeds holds cruise speeds in m/s per speed class.
type Speeds struct {
	Emergency float64 `json:"emergency"`
	Normal    float64 `json:"normal"`
	Low       float64 `json:"low"`
}

// DefaultSpeeds are the cruise speeds used when none are configured.
func DefaultSpeeds() Speeds {
	return Speeds{Emergency: 4.0, Normal: 2.5, Low: 1.5}
}

// For returns the cruise speed for p.
func (s Speeds) For(p Priority) float64 {
	switch p.SpeedClass() {
	case SpeedEmergency:
		return s.Emergency
	case SpeedNormal:
		return s.Normal
	default:
		return s.Low
	}
}
