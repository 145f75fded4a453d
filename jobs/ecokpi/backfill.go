// Package ecokpi rebuilds the daily ecological KPIs from request history.
package ecokpi

import (
	"github.com/kilianp07/dronedispatch/core/model"
	eco "github.com/kilianp07/dronedispatch/core/metrics/eco"
)

// Backfill adds every completed request to the store, one delivery each,
// dated by its completion time. Requests without an outcome are skipped.
func Backfill(store eco.Store, history []model.Request) (int, error) {
	n := 0
	for _, r := range history {
		if r.Status != model.RequestCompleted || r.Outcome == nil || r.DroneID == "" {
			continue
		}
		rec := eco.Record{
			DroneID:     r.DroneID,
			Date:        r.CompletedAt,
			Deliveries:  1,
			DroneKWh:    r.Outcome.DroneKWh,
			BaselineKWh: r.Outcome.BaselineKWh,
		}
		if err := store.Add(rec); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
