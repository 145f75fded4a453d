package planner

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kilianp07/dronedispatch/core/model"
)

// outranks reports whether a has right of way over b. Emergency traffic
// beats normal traffic, then the more urgent tier wins.
func outranks(aEmergency bool, aPriority model.Priority, bEmergency bool, bPriority model.Priority) bool {
	if aEmergency != bEmergency {
		return aEmergency
	}
	return aPriority.MoreUrgent(bPriority)
}

// clearance returns the separation q must keep from f, or 0 when q has
// right of way and ignores it.
func (p *Planner) clearance(q Query, lane model.Lane, f model.ActiveFlight) float64 {
	sameLane := lane == f.Lane
	switch {
	case outranks(f.Emergency, f.Priority, q.Emergency, q.Priority):
		r := p.cfg.ObstacleRadius
		if f.Emergency && !q.Emergency {
			r *= p.cfg.EmergencyYieldFactor
		}
		if sameLane {
			r = math.Max(r, p.cfg.SameLaneFactor*p.cfg.LaneWidth)
		}
		return r
	case outranks(q.Emergency, q.Priority, f.Emergency, f.Priority):
		return 0
	case sameLane:
		return math.Max(p.cfg.ObstacleRadius, p.cfg.SameLaneFactor*p.cfg.LaneWidth)
	default:
		return p.cfg.MinSeparation
	}
}

// Lane picks the track q flies in. Urgent and emergency traffic takes the
// middle; the rest keeps left unless a comparable drone near the corridor
// already does.
func (p *Planner) Lane(q Query, flights []model.ActiveFlight) model.Lane {
	if q.Emergency || q.Priority <= p.cfg.MiddleLaneThreshold {
		return model.LaneMiddle
	}
	start, goal := vec(q.Start), vec(q.Goal)
	near := 3 * p.cfg.LaneWidth
	leftTaken, rightTaken := false, false
	for _, f := range flights {
		if f.DroneID == q.DroneID || f.Emergency != q.Emergency {
			continue
		}
		if distToSegment(vec(f.PositionAt(q.Now)), start, goal) > near {
			continue
		}
		switch f.Lane {
		case model.LaneLeft:
			leftTaken = true
		case model.LaneRight:
			rightTaken = true
		}
	}
	if leftTaken && !rightTaken {
		return model.LaneRight
	}
	return model.LaneLeft
}

// laneOffset is the perpendicular shift of lane l for travel from a to b.
func laneOffset(a, b r2.Vec, l model.Lane, width float64) r2.Vec {
	d := r2.Sub(b, a)
	n := r2.Norm(d)
	if n == 0 || l == model.LaneMiddle {
		return r2.Vec{}
	}
	left := r2.Vec{X: -d.Y / n, Y: d.X / n}
	return r2.Scale(l.Offset()*width, left)
}

func distToSegment(p, a, b r2.Vec) float64 {
	ab := r2.Sub(b, a)
	l2 := r2.Dot(ab, ab)
	if l2 == 0 {
		return r2.Norm(r2.Sub(p, a))
	}
	t := math.Max(0, math.Min(1, r2.Dot(r2.Sub(p, a), ab)/l2))
	return r2.Norm(r2.Sub(p, r2.Add(a, r2.Scale(t, ab))))
}

// segmentFree checks the physical segment a→b, flown from cost metres into
// the trip, against every other flight's predicted position.
func (p *Planner) segmentFree(q Query, lane model.Lane, a, b r2.Vec, cost float64, flights []model.ActiveFlight) bool {
	off := laneOffset(a, b, lane, p.cfg.LaneWidth)
	pa, pb := r2.Add(a, off), r2.Add(b, off)
	length := r2.Norm(r2.Sub(b, a))
	n := int(math.Ceil(length/p.cfg.SampleStep)) + 1
	start, goal := vec(q.Start), vec(q.Goal)
	for _, f := range flights {
		if f.DroneID == q.DroneID {
			continue
		}
		r := p.clearance(q, lane, f)
		if r <= 0 {
			continue
		}
		for i := 0; i <= n; i++ {
			s := float64(i) / float64(n)
			pos := r2.Add(pa, r2.Scale(s, r2.Sub(pb, pa)))
			// Take-off and landing pads are shared.
			if r2.Norm(r2.Sub(pos, start)) < p.cfg.ObstacleRadius || r2.Norm(r2.Sub(pos, goal)) < p.cfg.GoalRadius {
				continue
			}
			at := q.Now.Add(time.Duration((cost + s*length) / q.Speed * float64(time.Second)))
			if r2.Norm(r2.Sub(pos, vec(f.PositionAt(at)))) < r {
				return false
			}
		}
	}
	return true
}
