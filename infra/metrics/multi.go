package metrics

// MultiSink fanouts solve records to multiple sinks.
type MultiSink struct {
	Sinks []SolveSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...SolveSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSolve forwards the record to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordSolve(rec SolveRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordSolve(rec); err != nil {
			return err
		}
	}
	return nil
}
