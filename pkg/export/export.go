// Package export writes simulation results for offline analysis.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/dronedispatch/core/model"
)

// WriteJSON writes the requests to w in JSON format.
func WriteJSON(w io.Writer, requests []model.Request) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(requests)
}

var csvHeader = []string{
	"request_id", "requester", "origin", "priority", "emergency", "status", "drone_id",
	"created_at", "completed_at", "distance_m", "drone_kwh", "baseline_kwh", "saved_kwh", "co2_saved_kg",
}

// WriteCSV writes one row per request. Energy columns are empty for
// requests that were not completed.
func WriteCSV(w io.Writer, requests []model.Request) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range requests {
		rec := []string{
			r.ID,
			r.Requester,
			strconv.Itoa(int(r.Origin)),
			r.Priority.String(),
			strconv.FormatBool(r.Emergency),
			r.Status.String(),
			r.DroneID,
			formatTime(r.CreatedAt),
			formatTime(r.CompletedAt),
		}
		if o := r.Outcome; o != nil {
			rec = append(rec, formatFloat(o.DistanceM), formatFloat(o.DroneKWh), formatFloat(o.BaselineKWh),
				formatFloat(o.SavedKWh), formatFloat(o.CO2SavedKg))
		} else {
			rec = append(rec, "", "", "", "", "")
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
