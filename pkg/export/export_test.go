package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/kilianp07/dronedispatch/core/model"
)

func sampleRequests() []model.Request {
	at := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	return []model.Request{
		{
			ID: "r1", Requester: "DR001", Origin: 2, Priority: model.PriorityResuscitation, Emergency: true,
			Status: model.RequestCompleted, DroneID: "d1", CreatedAt: at, CompletedAt: at.Add(time.Minute),
			Outcome: &model.Outcome{DistanceM: 20, DroneKWh: 0.007, BaselineKWh: 0.106, SavedKWh: 0.099, CO2SavedKg: 0.0396},
		},
		{ID: "r2", Requester: "NU001", Origin: 6, Priority: model.PriorityNonUrgent, Status: model.RequestPending, CreatedAt: at},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRequests()); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(rows))
	}
	if len(rows[1]) != len(csvHeader) || len(rows[2]) != len(csvHeader) {
		t.Fatalf("row width mismatch: %v", rows)
	}
	first := rows[1]
	if first[0] != "r1" || first[3] != "CTAS-I" || first[5] != "completed" || first[8] != "2024-03-01T08:01:00Z" || first[9] != "20" {
		t.Errorf("unexpected row %v", first)
	}
	if rows[2][8] != "" || rows[2][12] != "" {
		t.Errorf("pending row should have empty completion columns: %v", rows[2])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleRequests()); err != nil {
		t.Fatalf("write: %v", err)
	}
	var got []model.Request
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0].Outcome == nil || got[1].Outcome != nil {
		t.Fatalf("unexpected decode %+v", got)
	}
}
