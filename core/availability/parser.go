// Package availability turns free-text day lists into AvailabilitySets and
// keeps the per-worker store the generator reads from.
package availability

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/kilianp07/pca-scheduler/core/model"
)

// MaxRangeSpan bounds how many days a single "a-b" token may expand to.
const MaxRangeSpan = 10000

// ErrParse is matched by every *ParseError through errors.Is.
var ErrParse = errors.New("invalid availability")

// ParseError reports the token that could not be interpreted.
type ParseError struct {
	Input  string
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("invalid availability %q: %s", e.Input, e.Reason)
	}
	return fmt.Sprintf("invalid availability %q: token %q: %s", e.Input, e.Token, e.Reason)
}

// Is makes errors.Is(err, ErrParse) hold.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Parse reads a comma-separated list of days and inclusive "start-end"
// ranges, e.g. "1-5, 8,10". The result is sorted with duplicates removed.
// Values have no upper bound; callers restrict them when needed.
func Parse(text string) (model.AvailabilitySet, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ParseError{Input: text, Reason: "empty"}
	}
	var days []int
	for _, raw := range strings.Split(text, ",") {
		tok := strings.TrimSpace(raw)
		if tok == "" {
			return nil, &ParseError{Input: text, Token: raw, Reason: "empty token"}
		}
		if !strings.Contains(tok, "-") {
			d, err := parseDay(tok)
			if err != nil {
				return nil, &ParseError{Input: text, Token: tok, Reason: err.Error()}
			}
			days = append(days, d)
			continue
		}
		bounds := strings.Split(tok, "-")
		if len(bounds) != 2 {
			return nil, &ParseError{Input: text, Token: tok, Reason: "range must be start-end"}
		}
		start, err := parseDay(bounds[0])
		if err != nil {
			return nil, &ParseError{Input: text, Token: tok, Reason: "range start: " + err.Error()}
		}
		end, err := parseDay(bounds[1])
		if err != nil {
			return nil, &ParseError{Input: text, Token: tok, Reason: "range end: " + err.Error()}
		}
		if end < start {
			return nil, &ParseError{Input: text, Token: tok, Reason: "range end before start"}
		}
		if end-start >= MaxRangeSpan {
			return nil, &ParseError{Input: text, Token: tok, Reason: fmt.Sprintf("range wider than %d days", MaxRangeSpan)}
		}
		for d := start; d <= end; d++ {
			days = append(days, d)
		}
	}
	slices.Sort(days)
	return model.AvailabilitySet(slices.Compact(days)), nil
}

func parseDay(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("missing number")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%q is not a number", s)
		}
	}
	d, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is out of range", s)
	}
	if d < 1 {
		return 0, errors.New("days start at 1")
	}
	return d, nil
}
