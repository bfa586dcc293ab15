package scheduler

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/pca-scheduler/core/availability"
	"github.com/kilianp07/pca-scheduler/core/model"
)

// RosterEntry is one worker line of a roster file.
type RosterEntry struct {
	Name         string `json:"name" yaml:"name"`
	Availability string `json:"availability" yaml:"availability"`
}

// Roster lists workers with their availability text and, optionally, the
// month the schedules are for.
type Roster struct {
	Month   int           `json:"month" yaml:"month"`
	Year    int           `json:"year" yaml:"year"`
	Workers []RosterEntry `json:"workers" yaml:"workers"`
}

// LoadRoster reads a Roster from a JSON or YAML file.
func LoadRoster(path string) (Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return Roster{}, err
	}
	defer func() { _ = f.Close() }()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	r, err := DecodeRoster(f, ext)
	if err != nil {
		return Roster{}, fmt.Errorf("roster %s: %w", path, err)
	}
	return r, nil
}

// DecodeRoster reads a Roster from r in the given format ("yaml" or "json").
func DecodeRoster(r io.Reader, format string) (Roster, error) {
	var roster Roster
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&roster); err != nil && err != io.EOF {
			return roster, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&roster); err != nil {
			return roster, err
		}
	default:
		return roster, fmt.Errorf("unsupported format: %s", format)
	}
	return roster, nil
}

// Period returns the roster month. ok is false when the roster names none.
func (r Roster) Period() (p model.Period, ok bool, err error) {
	if r.Month == 0 && r.Year == 0 {
		return model.Period{}, false, nil
	}
	p, err = model.NewPeriod(r.Month, r.Year)
	return p, err == nil, err
}

// Apply parses every entry and adds it to store. Nothing is stored unless
// all entries parse. Later entries replace earlier ones with the same name.
func (r Roster) Apply(store *availability.Store) error {
	parsed := make([]model.Worker, 0, len(r.Workers))
	for i, e := range r.Workers {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return fmt.Errorf("worker %d: %w", i+1, availability.ErrEmptyWorkerName)
		}
		set, err := availability.Parse(e.Availability)
		if err != nil {
			return fmt.Errorf("worker %s: %w", name, err)
		}
		parsed = append(parsed, model.Worker{Name: name, Availability: set})
	}
	for _, w := range parsed {
		if _, err := store.Put(w.Name, w.Availability); err != nil {
			return err
		}
	}
	return nil
}
