package model

import (
	"fmt"
	"time"
)

// Period is the month a schedule is rendered for.
type Period struct {
	Month time.Month `json:"month"`
	Year  int        `json:"year"`
}

// DefaultPeriod is used until the user picks a month.
var DefaultPeriod = Period{Month: time.January, Year: 2024}

// NewPeriod validates month and year.
func NewPeriod(month, year int) (Period, error) {
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("month %d out of range 1-12", month)
	}
	if year < 1 {
		return Period{}, fmt.Errorf("year %d must be positive", year)
	}
	return Period{Month: time.Month(month), Year: year}, nil
}

// Label returns the calendar title, e.g. "1/2024".
func (p Period) Label() string {
	return fmt.Sprintf("%d/%d", int(p.Month), p.Year)
}

// First returns midnight UTC of the first day of the month.
func (p Period) First() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Days returns the number of days in the month.
func (p Period) Days() int {
	return p.First().AddDate(0, 1, -1).Day()
}
