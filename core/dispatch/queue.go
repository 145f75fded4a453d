package dispatch

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kilianp07/dronedispatch/core/model"
)

// pendingOrdered returns the pending requests most urgent first.
func (e *Engine) pendingOrdered() []*model.Request {
	list := make([]*model.Request, 0, len(e.pending))
	for id := range e.pending {
		list = append(list, e.requests[id])
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Before(*list[j]) })
	return list
}

// processPending walks the pending set in strict priority order. Each
// non-emergency request first tries to join a flight already underway.
func (e *Engine) processPending() {
	short := make(map[string]struct{})
	for _, r := range e.pendingOrdered() {
		if _, ok := e.pending[r.ID]; !ok {
			continue
		}
		if !r.Emergency && !e.cfg.DisableInterception && e.tryIntercept(r) {
			continue
		}
		if err := e.assign(r, short); err != nil {
			if errors.Is(err, ErrNoEligibleDrone) {
				e.log.Debugf("request %s stays pending: %v", r.ID, err)
				continue
			}
			e.log.Warnf("assign request %s: %v", r.ID, err)
		}
	}
	e.topUp(short)
	pendingRequests.Set(float64(len(e.pending)))
}

// topUp sends drones that fell short of a pending request and got nothing
// else this pass to charge. A full battery has nothing to gain.
func (e *Engine) topUp(short map[string]struct{}) {
	for _, id := range e.sortedDroneIDs() {
		if _, ok := short[id]; !ok {
			continue
		}
		d := e.drones[id]
		if d.Status != model.DroneAvailable || d.BatteryKWh >= d.CapacityKWh {
			continue
		}
		e.log.Infof("drone %s short for pending requests (%.4f kWh), charging", d.ID, d.BatteryKWh)
		e.sendToCharge(d)
	}
}

// ProcessPending runs a processing pass over the pending set.
func (e *Engine) ProcessPending() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.processPending()
}

// Assign runs the assignment for one pending request, bypassing the queue order.
func (e *Engine) Assign(requestID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.requests[requestID]
	if !ok {
		return fmt.Errorf("request %s: %w", requestID, ErrNotFound)
	}
	if r.Status != model.RequestPending {
		return fmt.Errorf("request %s is %s: %w", requestID, r.Status, ErrInvalidState)
	}
	err := e.assign(r, nil)
	pendingRequests.Set(float64(len(e.pending)))
	return err
}

func (e *Engine) sortedDroneIDs() []string {
	ids := make([]string, 0, len(e.drones))
	for id := range e.drones {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (e *Engine) flightIDs() []string {
	ids := make([]string, 0, len(e.flights))
	for id := range e.flights {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// stopOrder lists the requests of f by route offset.
func stopOrder(f *model.ActiveFlight) []string {
	ids := make([]string, 0, len(f.Stops))
	for id := range f.Stops {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if f.Stops[ids[i]] != f.Stops[ids[j]] {
			return f.Stops[ids[i]] < f.Stops[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids
}

// flightPayload is the weight carried for every request still on f.
func (e *Engine) flightPayload(f *model.ActiveFlight) float64 {
	var w float64
	for id := range f.Stops {
		w += e.requests[id].PayloadKg
	}
	return w
}

// mostUrgent returns the most urgent priority among the requests of f.
func (e *Engine) mostUrgent(f *model.ActiveFlight) model.Priority {
	p := model.PriorityNonUrgent
	for id := range f.Stops {
		if rp := e.requests[id].Priority; rp.MoreUrgent(p) {
			p = rp
		}
	}
	return p
}
