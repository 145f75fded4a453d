package dispatch

import (
	"fmt"
	"sort"

	"github.com/kilianp07/dronedispatch/core/model"
)

// Drone returns a copy of the drone with the given id.
func (e *Engine) Drone(id string) (model.Drone, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, ok := e.drones[id]
	if !ok {
		return model.Drone{}, fmt.Errorf("drone %s: %w", id, ErrNotFound)
	}
	return d.Clone(), nil
}

// Drones returns copies of all drones sorted by id.
func (e *Engine) Drones() []model.Drone {
	e.mu.Lock()
	defer e.mu.Unlock()
	list := make([]model.Drone, 0, len(e.drones))
	for _, id := range e.sortedDroneIDs() {
		list = append(list, e.drones[id].Clone())
	}
	return list
}

// Request returns a copy of the request with the given id.
func (e *Engine) Request(id string) (model.Request, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.requests[id]
	if !ok {
		return model.Request{}, fmt.Errorf("request %s: %w", id, ErrNotFound)
	}
	return r.Clone(), nil
}

// Requests returns copies of all requests in submission order.
func (e *Engine) Requests() []model.Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	list := make([]model.Request, 0, len(e.requests))
	for _, r := range e.requests {
		list = append(list, r.Clone())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Seq < list[j].Seq })
	return list
}

// Pending returns the pending requests in service order.
func (e *Engine) Pending() []model.Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	ordered := e.pendingOrdered()
	list := make([]model.Request, len(ordered))
	for i, r := range ordered {
		list[i] = r.Clone()
	}
	return list
}

// Flights returns copies of the active flights sorted by drone id.
func (e *Engine) Flights() []model.ActiveFlight {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.otherFlights("")
}
