package model

import "math"

// LocationID identifies a node of the facility graph.
type LocationID int

// Point is a position in the facility plane, in meters.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Location is a room, corridor junction or charging station.
type Location struct {
	ID       LocationID
	Name     string
	Pos      Point
	Floor    int
	Charging bool
}

// Pathway is an undirected weighted edge between two locations.
type Pathway struct {
	From   LocationID
	To     LocationID
	Weight float64
}
