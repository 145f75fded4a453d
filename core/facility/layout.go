package facility

import (
	"fmt"

	"github.com/kilianp07/dronedispatch/core/model"
)

// LocationSpec describes a location in a layout file.
type LocationSpec struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Floor    int     `json:"floor"`
	Charging bool    `json:"charging"`
}

// PathwaySpec describes a pathway. A zero weight means the straight-line
// distance between the endpoints.
type PathwaySpec struct {
	From   int     `json:"from"`
	To     int     `json:"to"`
	Weight float64 `json:"weight"`
}

// Layout is the configuration form of a facility graph.
type Layout struct {
	Locations []LocationSpec `json:"locations"`
	Pathways  []PathwaySpec  `json:"pathways"`
}

// Empty reports whether the layout defines no locations.
func (l Layout) Empty() bool { return len(l.Locations) == 0 }

// Validate checks that every pathway references a declared location.
func (l Layout) Validate() error {
	ids := make(map[int]bool, len(l.Locations))
	for _, s := range l.Locations {
		if ids[s.ID] {
			return fmt.Errorf("duplicate location id %d", s.ID)
		}
		ids[s.ID] = true
	}
	for _, p := range l.Pathways {
		if !ids[p.From] || !ids[p.To] {
			return fmt.Errorf("pathway %d-%d references unknown location", p.From, p.To)
		}
		if p.Weight < 0 {
			return fmt.Errorf("pathway %d-%d has negative weight", p.From, p.To)
		}
	}
	return nil
}

// FromLayout builds a Graph from its configuration form.
func FromLayout(l Layout) (*Graph, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	locs := make([]model.Location, 0, len(l.Locations))
	pos := make(map[int]model.Point, len(l.Locations))
	for _, s := range l.Locations {
		p := model.Point{X: s.X, Y: s.Y}
		pos[s.ID] = p
		locs = append(locs, model.Location{
			ID:       model.LocationID(s.ID),
			Name:     s.Name,
			Pos:      p,
			Floor:    s.Floor,
			Charging: s.Charging,
		})
	}
	paths := make([]model.Pathway, 0, len(l.Pathways))
	for _, p := range l.Pathways {
		w := p.Weight
		if w == 0 {
			w = pos[p.From].Dist(pos[p.To])
		}
		paths = append(paths, model.Pathway{From: model.LocationID(p.From), To: model.LocationID(p.To), Weight: w})
	}
	return New(locs, paths)
}

// HospitalLayout is the demo floor: eight rooms on a 30x10 m grid with a
// charging station halfway along every corridor.
func HospitalLayout() Layout {
	rooms := []LocationSpec{
		{ID: 1, Name: "Emergency Room", X: 0, Y: 0, Floor: 1},
		{ID: 2, Name: "ICU", X: 10, Y: 0, Floor: 1},
		{ID: 3, Name: "Pharmacy", X: 20, Y: 0, Floor: 1},
		{ID: 4, Name: "Lab", X: 30, Y: 0, Floor: 1},
		{ID: 5, Name: "Cafeteria", X: 0, Y: 10, Floor: 1},
		{ID: 6, Name: "Ward A", X: 10, Y: 10, Floor: 1},
		{ID: 7, Name: "Ward B", X: 20, Y: 10, Floor: 1},
		{ID: 8, Name: "Surgery", X: 30, Y: 10, Floor: 1},
	}
	corridors := [][2]int{
		{1, 2}, {2, 3}, {3, 4},
		{1, 5}, {2, 6}, {3, 7}, {4, 8},
		{5, 6}, {6, 7}, {7, 8},
	}
	l := Layout{Locations: rooms}
	byID := make(map[int]LocationSpec, len(rooms))
	for _, r := range rooms {
		byID[r.ID] = r
	}
	for i, c := range corridors {
		a, b := byID[c[0]], byID[c[1]]
		id := 9 + i
		l.Locations = append(l.Locations, LocationSpec{
			ID:       id,
			Name:     fmt.Sprintf("Charging Station %d-%d", a.ID, b.ID),
			X:        (a.X + b.X) / 2,
			Y:        (a.Y + b.Y) / 2,
			Floor:    1,
			Charging: true,
		})
		l.Pathways = append(l.Pathways,
			PathwaySpec{From: a.ID, To: b.ID, Weight: 10},
			PathwaySpec{From: a.ID, To: id, Weight: 5},
			PathwaySpec{From: id, To: b.ID, Weight: 5},
		)
	}
	return l
}
