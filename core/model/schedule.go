package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	// FirstDay is the first calendar slot of a Schedule.
	FirstDay = 1
	// LastDay is the last calendar slot of a Schedule.
	LastDay = 31
	// DaysPerSchedule is the fixed number of slots in a Schedule.
	DaysPerSchedule = LastDay - FirstDay + 1
)

// UnassignedLabel is how an unassigned day is shown in text output.
const UnassignedLabel = "No one available"

// Assignment is the outcome for one day: either a worker or nobody.
// Worker names are never empty, so the zero value means unassigned.
type Assignment struct {
	Worker string
}

// Unassigned returns the sentinel for a day no worker could take.
func Unassigned() Assignment { return Assignment{} }

// AssignedTo returns an Assignment for the named worker.
func AssignedTo(worker string) Assignment { return Assignment{Worker: worker} }

// IsAssigned reports whether a worker holds the day.
func (a Assignment) IsAssigned() bool { return a.Worker != "" }

func (a Assignment) String() string {
	if !a.IsAssigned() {
		return UnassignedLabel
	}
	return a.Worker
}

// MarshalJSON encodes unassigned days as null.
func (a Assignment) MarshalJSON() ([]byte, error) {
	if !a.IsAssigned() {
		return []byte("null"), nil
	}
	return json.Marshal(a.Worker)
}

// UnmarshalJSON accepts a worker name or null.
func (a *Assignment) UnmarshalJSON(b []byte) error {
	var name *string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	if name == nil {
		*a = Unassigned()
		return nil
	}
	*a = AssignedTo(*name)
	return nil
}

// Schedule holds one Assignment for every day in FirstDay..LastDay. It is a
// value type: copies are independent and two schedules compare with ==.
type Schedule struct {
	days [DaysPerSchedule]Assignment
}

// NewSchedule builds a schedule from a day-indexed assignment function.
func NewSchedule(assign func(day int) Assignment) Schedule {
	var s Schedule
	for day := FirstDay; day <= LastDay; day++ {
		s.days[day-FirstDay] = assign(day)
	}
	return s
}

// Day returns the assignment of day. ok is false outside FirstDay..LastDay.
func (s Schedule) Day(day int) (a Assignment, ok bool) {
	if day < FirstDay || day > LastDay {
		return Assignment{}, false
	}
	return s.days[day-FirstDay], true
}

// Days returns the assignments in day order, index 0 being FirstDay.
func (s Schedule) Days() []Assignment {
	out := make([]Assignment, DaysPerSchedule)
	copy(out, s.days[:])
	return out
}

// Equal reports whether both schedules assign every day identically.
func (s Schedule) Equal(o Schedule) bool { return s.days == o.days }

// Load counts the days held by each worker. Unassigned days are omitted.
func (s Schedule) Load() map[string]int {
	load := make(map[string]int)
	for _, a := range s.days {
		if a.IsAssigned() {
			load[a.Worker]++
		}
	}
	return load
}

// Unassigned returns the days no worker could take.
func (s Schedule) Unassigned() []int {
	var days []int
	for i, a := range s.days {
		if !a.IsAssigned() {
			days = append(days, i+FirstDay)
		}
	}
	return days
}

// MarshalJSON encodes the schedule as {"1": "Alice", "2": null, ...}.
func (s Schedule) MarshalJSON() ([]byte, error) {
	m := make(map[string]Assignment, DaysPerSchedule)
	for i, a := range s.days {
		m[strconv.Itoa(i+FirstDay)] = a
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes the object form produced by MarshalJSON. Missing
// days decode as unassigned.
func (s *Schedule) UnmarshalJSON(b []byte) error {
	var m map[string]Assignment
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	var out Schedule
	for k, a := range m {
		day, err := strconv.Atoi(k)
		if err != nil || day < FirstDay || day > LastDay {
			return fmt.Errorf("invalid schedule day %q", k)
		}
		out.days[day-FirstDay] = a
	}
	*s = out
	return nil
}

// ScheduleSet is the result of one generation call.
type ScheduleSet struct {
	ID          uuid.UUID  `json:"id"`
	GeneratedAt time.Time  `json:"generated_at"`
	Requested   int        `json:"requested"`
	Trials      int        `json:"trials"`
	Space       int        `json:"permutation_space"`
	Exhausted   bool       `json:"exhausted"`
	Schedules   []Schedule `json:"schedules"`
}

// Len returns the number of distinct schedules produced.
func (s ScheduleSet) Len() int { return len(s.Schedules) }

// Partial reports whether fewer schedules than requested were produced.
func (s ScheduleSet) Partial() bool { return len(s.Schedules) < s.Requested }
