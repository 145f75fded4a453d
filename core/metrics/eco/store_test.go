package eco

import (
	"math"
	"testing"
	"time"
)

func TestMemoryStore_Aggregation(t *testing.T) {
	s := NewMemoryStore()
	d := Day(time.Now())
	if err := s.Add(Record{DroneID: "d1", Date: d, Deliveries: 1, DroneKWh: 0.01, BaselineKWh: 0.2}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add(Record{DroneID: "d1", Date: d.Add(2 * time.Hour), Deliveries: 1, DroneKWh: 0.02, BaselineKWh: 0.1}); err != nil {
		t.Fatalf("add2: %v", err)
	}
	if err := s.Add(Record{DroneID: "d1", Date: d.AddDate(0, 0, 2), Deliveries: 1}); err != nil {
		t.Fatalf("add3: %v", err)
	}
	recs, err := s.Query("d1", d, d)
	if err != nil || len(recs) != 1 {
		t.Fatalf("query: %v len=%d", err, len(recs))
	}
	if recs[0].Deliveries != 2 {
		t.Fatalf("expected 2 deliveries got %d", recs[0].Deliveries)
	}
	if math.Abs(recs[0].SavedKWh()-0.27) > 1e-9 {
		t.Fatalf("saved %f", recs[0].SavedKWh())
	}
	all, _ := s.Query("d1", d, d.AddDate(0, 0, 3))
	if len(all) != 2 || !all[0].Date.Before(all[1].Date) {
		t.Fatalf("expected two ordered days, got %+v", all)
	}
	if none, _ := s.Query("other", d, d); len(none) != 0 {
		t.Fatalf("unexpected records for unknown drone")
	}
}

func TestRecordCalculations(t *testing.T) {
	r := Record{DroneKWh: 2, BaselineKWh: 6}
	if r.EnergyRatio() != 3 {
		t.Fatalf("ratio")
	}
	if r.CO2Avoided(0.5) != 2 {
		t.Fatalf("co2")
	}
	if (Record{}).EnergyRatio() != 0 {
		t.Fatalf("empty ratio")
	}
}
