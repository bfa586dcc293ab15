package availability

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kilianp07/pca-scheduler/core/model"
)

// ErrEmptyWorkerName is returned when a worker is added without a name.
var ErrEmptyWorkerName = errors.New("worker name is required")

// Store maps worker names to their availability. Adding a name that already
// exists replaces the previous availability; sets are never merged.
type Store struct {
	workers map[string]model.AvailabilitySet
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{workers: make(map[string]model.AvailabilitySet)}
}

// Put stores a copy of set under name and reports whether it replaced an
// existing entry.
func (s *Store) Put(name string, set model.AvailabilitySet) (replaced bool, err error) {
	if name == "" {
		return false, ErrEmptyWorkerName
	}
	_, replaced = s.workers[name]
	s.workers[name] = set.Clone()
	return replaced, nil
}

// Add parses text and stores the result under name. The store is left
// untouched when parsing fails.
func (s *Store) Add(name, text string) (replaced bool, err error) {
	if name == "" {
		return false, ErrEmptyWorkerName
	}
	set, err := Parse(text)
	if err != nil {
		return false, fmt.Errorf("worker %s: %w", name, err)
	}
	return s.Put(name, set)
}

// Get returns a copy of the availability stored for name.
func (s *Store) Get(name string) (model.AvailabilitySet, bool) {
	set, ok := s.workers[name]
	return set.Clone(), ok
}

// Len returns the number of workers.
func (s *Store) Len() int { return len(s.workers) }

// Names returns the worker names in ascending order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.workers))
	for n := range s.workers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Workers returns every worker sorted by name.
func (s *Store) Workers() []model.Worker {
	out := make([]model.Worker, 0, len(s.workers))
	for _, n := range s.Names() {
		out = append(out, model.Worker{Name: n, Availability: s.workers[n].Clone()})
	}
	return out
}

// Snapshot returns a deep copy of the store contents.
func (s *Store) Snapshot() map[string]model.AvailabilitySet {
	out := make(map[string]model.AvailabilitySet, len(s.workers))
	for n, set := range s.workers {
		out[n] = set.Clone()
	}
	return out
}

// Lines renders one "Name: 1, 2, 3" line per worker, sorted by name.
func (s *Store) Lines() []string {
	lines := make([]string, 0, len(s.workers))
	for _, w := range s.Workers() {
		lines = append(lines, fmt.Sprintf("%s: %s", w.Name, w.Availability))
	}
	return lines
}
