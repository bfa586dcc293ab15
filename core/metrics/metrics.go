package metrics

import (
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/pca-scheduler/core/factory"
)

// Config lists the sinks generation events are sent to.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
}

// GenerationEvent summarises one call to the schedule generator.
type GenerationEvent struct {
	SetID     uuid.UUID
	Workers   int
	Requested int
	Produced  int
	Trials    int
	Space     int
	Exhausted bool
	Duration  time.Duration
	Time      time.Time
}

// Outcome classifies the event as "complete", "partial" or "empty".
func (e GenerationEvent) Outcome() string {
	switch {
	case e.Produced == 0:
		return "empty"
	case e.Produced < e.Requested:
		return "partial"
	default:
		return "complete"
	}
}

// MetricsSink records generation events.
type MetricsSink interface {
	RecordGeneration(ev GenerationEvent) error
}

// Flusher is implemented by sinks that buffer and need an explicit flush,
// such as the Prometheus textfile sink.
type Flusher interface {
	Flush() error
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) RecordGeneration(GenerationEvent) error { return nil }
