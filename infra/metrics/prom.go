package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/pca-scheduler/core/metrics"
)

// PromSink records generation events in Prometheus metrics. A command-line
// run does not live long enough to be scraped, so the sink can write its
// registry to a node_exporter textfile on Flush.
type PromSink struct {
	generations *prometheus.CounterVec
	produced    prometheus.Counter
	trials      prometheus.Histogram
	duration    prometheus.Histogram
	workers     prometheus.Gauge

	gatherer prometheus.Gatherer
	textfile string
}

// NewPromSink registers generation metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer, prometheus.DefaultGatherer, "")
}

// NewPromSinkWithRegistry registers metrics on reg. When textfile is set,
// Flush writes everything gatherer exposes to that path.
func NewPromSinkWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer, textfile string) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	generations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pcasched_generations_total",
		Help: "Schedule generation calls by outcome",
	}, []string{"outcome"})
	produced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pcasched_schedules_produced_total",
		Help: "Distinct schedules produced",
	})
	trials := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pcasched_generation_trials",
		Help:    "Permutations tried per generation call",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pcasched_generation_duration_seconds",
		Help:    "Wall time of a generation call",
		Buckets: prometheus.DefBuckets,
	})
	workers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pcasched_workers",
		Help: "Workers in the store at the last generation",
	})

	var err error
	if generations, err = register(reg, generations); err != nil {
		return nil, err
	}
	if produced, err = register(reg, produced); err != nil {
		return nil, err
	}
	if trials, err = register(reg, trials); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if workers, err = register(reg, workers); err != nil {
		return nil, err
	}
	return &PromSink{
		generations: generations,
		produced:    produced,
		trials:      trials,
		duration:    duration,
		workers:     workers,
		gatherer:    gatherer,
		textfile:    textfile,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordGeneration updates the counters for one generation call.
func (s *PromSink) RecordGeneration(ev coremetrics.GenerationEvent) error {
	s.generations.WithLabelValues(ev.Outcome()).Inc()
	s.produced.Add(float64(ev.Produced))
	s.trials.Observe(float64(ev.Trials))
	s.duration.Observe(ev.Duration.Seconds())
	s.workers.Set(float64(ev.Workers))
	return nil
}

// Flush writes the textfile when one is configured.
func (s *PromSink) Flush() error {
	if s.textfile == "" || s.gatherer == nil {
		return nil
	}
	return prometheus.WriteToTextfile(s.textfile, s.gatherer)
}
