package eco

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps records in memory.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[time.Time]*Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]map[time.Time]*Record{}}
}

// Add merges r into the record of its drone and day.
func (s *MemoryStore) Add(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byDay := s.data[r.DroneID]
	if byDay == nil {
		byDay = map[time.Time]*Record{}
		s.data[r.DroneID] = byDay
	}
	d := Day(r.Date)
	rec := byDay[d]
	if rec == nil {
		rec = &Record{DroneID: r.DroneID, Date: d}
		byDay[d] = rec
	}
	rec.Deliveries += r.Deliveries
	rec.DroneKWh += r.DroneKWh
	rec.BaselineKWh += r.BaselineKWh
	return nil
}

// Query returns the drone's records between start and end inclusive, oldest first.
func (s *MemoryStore) Query(droneID string, start, end time.Time) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start, end = Day(start), Day(end)
	var res []Record
	for d, r := range s.data[droneID] {
		if d.Before(start) || d.After(end) {
			continue
		}
		res = append(res, *r)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Date.Before(res[j].Date) })
	return res, nil
}
