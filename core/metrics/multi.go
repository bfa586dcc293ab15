package metrics

import "errors"

// MultiSink fans events out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink combines sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordGeneration forwards ev to every sink and joins their errors.
func (m *MultiSink) RecordGeneration(ev GenerationEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordGeneration(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Flush flushes the sinks that buffer.
func (m *MultiSink) Flush() error {
	var errs []error
	for _, s := range m.Sinks {
		if f, ok := s.(Flusher); ok {
			if err := f.Flush(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Flush flushes s when it buffers events.
func Flush(s MetricsSink) error {
	if f, ok := s.(Flusher); ok {
		return f.Flush()
	}
	return nil
}
