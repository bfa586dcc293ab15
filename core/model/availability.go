package model

import (
	"slices"
	"strconv"
	"strings"
)

// AvailabilitySet is the strictly ascending list of days a worker can take.
// Every element is at least 1.
type AvailabilitySet []int

// Contains reports whether day is part of the set.
func (s AvailabilitySet) Contains(day int) bool {
	_, ok := slices.BinarySearch(s, day)
	return ok
}

// Clone returns an independent copy of the set.
func (s AvailabilitySet) Clone() AvailabilitySet {
	if s == nil {
		return nil
	}
	return slices.Clone(s)
}

// String renders the set as "1, 2, 3".
func (s AvailabilitySet) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ", ")
}

// Worker pairs a worker name with the days they can take.
type Worker struct {
	Name         string          `json:"name"`
	Availability AvailabilitySet `json:"availability"`
}
