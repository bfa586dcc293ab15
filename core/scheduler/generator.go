package scheduler

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/google/uuid"

	corelogger "github.com/kilianp07/pca-scheduler/core/logger"
	"github.com/kilianp07/pca-scheduler/core/metrics"
	"github.com/kilianp07/pca-scheduler/core/model"
)

// HardMaxWorkers is the largest worker set whose permutation count fits in an int.
const HardMaxWorkers = 20

var (
	// ErrInvalidCount is returned when fewer than one schedule is requested.
	ErrInvalidCount = errors.New("schedule count must be at least 1")
	// ErrTooManyWorkers is returned when the permutation space is too large.
	ErrTooManyWorkers = errors.New("too many workers")
	// ErrNoSchedules is returned when not a single schedule could be built.
	ErrNoSchedules = errors.New("could not generate unique schedules")
)

// Config holds generation settings.
type Config struct {
	// MaxWorkers caps the store size accepted by Generate.
	MaxWorkers int `json:"max_workers"`
	// Seed makes runs reproducible. Zero picks a random seed.
	Seed uint64 `json:"seed"`
	// DefaultCount is used by callers that do not ask for a count.
	DefaultCount int `json:"default_count"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.MaxWorkers == 0 {
		c.MaxWorkers = 10
	}
	if c.DefaultCount == 0 {
		c.DefaultCount = 1
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.MaxWorkers < 1 || c.MaxWorkers > HardMaxWorkers {
		return fmt.Errorf("max_workers must be between 1 and %d", HardMaxWorkers)
	}
	if c.DefaultCount < 1 {
		return fmt.Errorf("default_count must be positive")
	}
	return nil
}

// Generator builds schedule sets. It is not safe for concurrent use.
type Generator struct {
	cfg  Config
	rng  *rand.Rand
	log  corelogger.Logger
	sink metrics.MetricsSink
	now  func() time.Time
}

// Option customises a Generator.
type Option func(*Generator)

// WithRand replaces the random source, typically with a seeded one in tests.
func WithRand(r *rand.Rand) Option { return func(g *Generator) { g.rng = r } }

// WithLogger sets the logger.
func WithLogger(l corelogger.Logger) Option { return func(g *Generator) { g.log = l } }

// WithSink sets the metrics sink.
func WithSink(s metrics.MetricsSink) Option { return func(g *Generator) { g.sink = s } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(g *Generator) { g.now = now } }

// NewGenerator validates cfg and returns a Generator.
func NewGenerator(cfg Config, opts ...Option) (*Generator, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Generator{cfg: cfg, log: nopLogger{}, sink: metrics.NopSink{}, now: time.Now}
	for _, o := range opts {
		o(g)
	}
	if g.rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = rand.Uint64()
		}
		g.log.Debugf("generator seed %d", seed)
		g.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return g, nil
}

// Config returns the effective settings.
func (g *Generator) Config() Config { return g.cfg }

// Generate returns up to count distinct schedules for the workers in store.
// Every permutation of the workers is tried at most once; when they run out
// first, the set is marked Exhausted and holds fewer than count schedules.
// ErrNoSchedules is returned, together with the empty set, when nothing was
// produced. With no workers there is a single empty permutation, which gives
// one schedule where every day is unassigned.
func (g *Generator) Generate(store map[string]model.AvailabilitySet, count int) (model.ScheduleSet, error) {
	if count < 1 {
		return model.ScheduleSet{}, fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}
	if len(store) > g.cfg.MaxWorkers {
		return model.ScheduleSet{}, fmt.Errorf("%w: %d workers, limit %d", ErrTooManyWorkers, len(store), g.cfg.MaxWorkers)
	}
	start := g.now()
	names := make([]string, 0, len(store))
	for n := range store {
		names = append(names, n)
	}
	sort.Strings(names)

	pool := newPermPool(len(names), g.rng)
	set := model.ScheduleSet{
		ID:          uuid.New(),
		GeneratedAt: start,
		Requested:   count,
		Space:       pool.Size(),
	}
	seen := make(map[model.Schedule]struct{}, count)
	order := make([]int, len(names))
	for len(set.Schedules) < count {
		idx, ok := pool.Next()
		if !ok {
			set.Exhausted = true
			break
		}
		set.Trials++
		s := assign(names, pool.Permutation(idx, order), store)
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		set.Schedules = append(set.Schedules, s)
	}

	ev := metrics.GenerationEvent{
		SetID:     set.ID,
		Workers:   len(names),
		Requested: count,
		Produced:  len(set.Schedules),
		Trials:    set.Trials,
		Space:     set.Space,
		Exhausted: set.Exhausted,
		Duration:  g.now().Sub(start),
		Time:      start,
	}
	if err := g.sink.RecordGeneration(ev); err != nil {
		g.log.Warnf("record generation metrics: %v", err)
	}
	g.log.Debugw("schedules generated", map[string]any{
		"set_id":    set.ID.String(),
		"workers":   ev.Workers,
		"requested": count,
		"produced":  ev.Produced,
		"trials":    set.Trials,
		"space":     set.Space,
	})
	if len(set.Schedules) == 0 {
		return set, ErrNoSchedules
	}
	return set, nil
}

// assign builds the schedule for one priority order. Each worker gets a
// private copy of their days; a day is removed from it once given out.
func assign(names []string, order []int, store map[string]model.AvailabilitySet) model.Schedule {
	working := make([]map[int]struct{}, len(order))
	for i, w := range order {
		days := make(map[int]struct{})
		for _, d := range store[names[w]] {
			if d >= model.FirstDay && d <= model.LastDay {
				days[d] = struct{}{}
			}
		}
		working[i] = days
	}
	return model.NewSchedule(func(day int) model.Assignment {
		for i, w := range order {
			if _, ok := working[i][day]; ok {
				delete(working[i], day)
				return model.AssignedTo(names[w])
			}
		}
		return model.Unassigned()
	})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
