package model

import "time"

// Lane is one of the three parallel tracks of a pathway.
type Lane int

const (
	LaneLeft Lane = iota
	LaneMiddle
	LaneRight
)

var laneNames = [...]string{"left", "middle", "right"}

func (l Lane) String() string {
	if l < 0 || int(l) >= len(laneNames) {
		return "unknown"
	}
	return laneNames[l]
}

// Offset returns the signed number of lane widths from the middle lane.
// Positive values are to the left of the travel direction.
func (l Lane) Offset() float64 {
	return float64(LaneMiddle - l)
}

// ActiveFlight is the live record of a committed route.
type ActiveFlight struct {
	DroneID string
	Route   []LocationID
	// Offsets holds the cumulative distance of each Route node from its start.
	Offsets   []float64
	Waypoints []Point
	Start     time.Time
	Speed     float64
	Priority  Priority
	Lane      Lane
	Emergency bool
	// Stops maps request ids to their offset along Route, in meters.
	Stops map[string]float64
	// Flown is the distance covered on earlier commits of the same trip.
	Flown   float64
	Planned bool
	// Optimal is the graph shortest-path length between route ends.
	Optimal float64
	Length  float64
	// Traveled is the distance covered on Route so far.
	Traveled float64
}

// Clone returns a deep copy of f.
func (f ActiveFlight) Clone() ActiveFlight {
	f.Route = append([]LocationID(nil), f.Route...)
	f.Offsets = append([]float64(nil), f.Offsets...)
	f.Waypoints = append([]Point(nil), f.Waypoints...)
	stops := make(map[string]float64, len(f.Stops))
	for k, v := range f.Stops {
		stops[k] = v
	}
	f.Stops = stops
	return f
}

// NodeAt returns the last route node passed after traveling d meters.
func (f ActiveFlight) NodeAt(d float64) (LocationID, int) {
	idx := 0
	for i, off := range f.Offsets {
		if off > d {
			break
		}
		idx = i
	}
	if idx >= len(f.Route) {
		return 0, -1
	}
	return f.Route[idx], idx
}

// PositionAt predicts where the flight is at time t along its waypoints.
// Before the start it sits on the first waypoint; after arrival it holds the last.
func (f ActiveFlight) PositionAt(t time.Time) Point {
	if len(f.Waypoints) == 0 {
		return Point{}
	}
	d := t.Sub(f.Start).Seconds() * f.Speed
	if d <= 0 {
		return f.Waypoints[0]
	}
	for i := 1; i < len(f.Waypoints); i++ {
		a, b := f.Waypoints[i-1], f.Waypoints[i]
		seg := a.Dist(b)
		if d <= seg {
			if seg == 0 {
				return b
			}
			r := d / seg
			return Point{X: a.X + (b.X-a.X)*r, Y: a.Y + (b.Y-a.Y)*r}
		}
		d -= seg
	}
	return f.Waypoints[len(f.Waypoints)-1]
}
