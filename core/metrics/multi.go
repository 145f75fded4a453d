package metrics

// MultiSink fans records out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDelivery forwards the record to all sinks, returning the first error.
func (m *MultiSink) RecordDelivery(rec DeliveryRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordDelivery(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordDroneState forwards to sinks implementing DroneStateRecorder.
func (m *MultiSink) RecordDroneState(ev DroneStateEvent) error {
	for _, s := range m.Sinks {
		if r, ok := s.(DroneStateRecorder); ok {
			if err := r.RecordDroneState(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordAssignment forwards to sinks implementing AssignmentRecorder.
func (m *MultiSink) RecordAssignment(rec AssignmentRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(AssignmentRecorder); ok {
			if err := r.RecordAssignment(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every sink that holds resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
