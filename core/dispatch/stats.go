package dispatch

import (
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/dronedispatch/core/model"
)

// tally accumulates counters that cannot be derived from current state.
type tally struct {
	saved         []float64
	co2Kg         float64
	distanceM     float64
	interceptions int
	planned       int
	fallback      int
	efficiency    []float64
}

func (t *tally) routed(planned bool, eff float64) {
	if planned {
		t.planned++
	} else {
		t.fallback++
	}
	t.efficiency = append(t.efficiency, eff)
}

func (t *tally) delivered(o *model.Outcome) {
	t.saved = append(t.saved, o.SavedKWh)
	t.co2Kg += o.CO2SavedKg
	t.distanceM += o.DistanceM
}

// Stats is a snapshot of fleet and delivery statistics.
type Stats struct {
	RequestsByStatus   map[string]int
	RequestsByPriority map[string]int
	DronesByStatus     map[string]int
	DronesByClass      map[string]int
	Pending            int
	Completed          int
	TotalSavedKWh      float64
	AvgSavedKWh        float64
	TotalCO2SavedKg    float64
	TotalDistanceM     float64
	Interceptions      int
	PlannedRoutes      int
	FallbackRoutes     int
	// AvgPathEfficiency is the mean graph-optimal over committed route length.
	AvgPathEfficiency float64
}

// Stats returns a snapshot of the statistics.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := Stats{
		RequestsByStatus:   map[string]int{},
		RequestsByPriority: map[string]int{},
		DronesByStatus:     map[string]int{},
		DronesByClass:      map[string]int{},
		Pending:            len(e.pending),
		Completed:          len(e.stats.saved),
		TotalCO2SavedKg:    e.stats.co2Kg,
		TotalDistanceM:     e.stats.distanceM,
		Interceptions:      e.stats.interceptions,
		PlannedRoutes:      e.stats.planned,
		FallbackRoutes:     e.stats.fallback,
	}
	for _, r := range e.requests {
		s.RequestsByStatus[r.Status.String()]++
		s.RequestsByPriority[r.Priority.String()]++
	}
	for _, d := range e.drones {
		s.DronesByStatus[d.Status.String()]++
		s.DronesByClass[d.Class.String()]++
	}
	for _, v := range e.stats.saved {
		s.TotalSavedKWh += v
	}
	if len(e.stats.saved) > 0 {
		s.AvgSavedKWh = stat.Mean(e.stats.saved, nil)
	}
	if len(e.stats.efficiency) > 0 {
		s.AvgPathEfficiency = stat.Mean(e.stats.efficiency, nil)
	}
	return s
}
