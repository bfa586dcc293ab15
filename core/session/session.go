// Package session owns the state of one interactive run: the availability
// store, the month being planned and the last generated schedule set.
package session

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/kilianp07/pca-scheduler/core/availability"
	corelogger "github.com/kilianp07/pca-scheduler/core/logger"
	"github.com/kilianp07/pca-scheduler/core/model"
	"github.com/kilianp07/pca-scheduler/core/scheduler"
)

// Session is not safe for concurrent use.
type Session struct {
	store   *availability.Store
	gen     *scheduler.Generator
	log     corelogger.Logger
	period  model.Period
	current model.ScheduleSet
}

// New returns an empty session planning model.DefaultPeriod.
func New(gen *scheduler.Generator, log corelogger.Logger) *Session {
	return &Session{
		store:  availability.NewStore(),
		gen:    gen,
		log:    log,
		period: model.DefaultPeriod,
	}
}

// Store exposes the availability store.
func (s *Session) Store() *availability.Store { return s.store }

// Period returns the month being planned.
func (s *Session) Period() model.Period { return s.period }

// SetPeriod validates and sets the month being planned.
func (s *Session) SetPeriod(month, year int) error {
	p, err := model.NewPeriod(month, year)
	if err != nil {
		return err
	}
	s.period = p
	return nil
}

// AddWorker parses text and stores it under name, replacing any previous
// availability for that name.
func (s *Session) AddWorker(name, text string) error {
	replaced, err := s.store.Add(name, text)
	if err != nil {
		return err
	}
	if replaced {
		s.log.Infof("replaced availability of %s", name)
	}
	return nil
}

// Workers lists workers as "Name: 1, 2, 3".
func (s *Session) Workers() []string { return s.store.Lines() }

// Generate replaces the current schedule set with a new one. On error the
// previous set is kept, except for scheduler.ErrNoSchedules which clears it.
func (s *Session) Generate(count int) (model.ScheduleSet, error) {
	set, err := s.gen.Generate(s.store.Snapshot(), count)
	if err != nil && set.ID == uuid.Nil {
		return model.ScheduleSet{}, err
	}
	s.current = set
	if err != nil {
		return set, err
	}
	if set.Partial() {
		s.log.Warnf("only %d of %d schedules are unique", set.Len(), count)
	}
	return set, nil
}

// Current returns the last generated set.
func (s *Session) Current() model.ScheduleSet { return s.current }

// Schedule returns schedule n of the current set, counting from 1.
func (s *Session) Schedule(n int) (model.Schedule, error) {
	if n < 1 || n > len(s.current.Schedules) {
		return model.Schedule{}, fmt.Errorf("no schedule %d (have %d)", n, len(s.current.Schedules))
	}
	return s.current.Schedules[n-1], nil
}
