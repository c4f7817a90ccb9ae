package coauthor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidFilter wraps every filter validation failure.
var ErrInvalidFilter = errors.New("invalid filter")

// Filter narrows the papers and coauthors that make it into a graph. Zero
// values mean no restriction.
type Filter struct {
	YearFrom     int `json:"yearFrom,omitempty"`
	YearTo       int `json:"yearTo,omitempty"`
	MinShared    int `json:"minShared,omitempty"`
	MaxCoauthors int `json:"maxCoauthors,omitempty"`
}

// Key returns a canonical string for the filter, stable across equivalent
// values (MinShared 0 and 1 are the same filter).
func (f Filter) Key() string {
	return fmt.Sprintf("years=%d:%d;min=%d;max=%d", f.YearFrom, f.YearTo, f.minShared(), max(f.MaxCoauthors, 0))
}

// Validate rejects inverted year ranges and negative limits.
func (f Filter) Validate() error {
	if f.YearFrom > 0 && f.YearTo > 0 && f.YearFrom > f.YearTo {
		return fmt.Errorf("%w: year range %d:%d is inverted", ErrInvalidFilter, f.YearFrom, f.YearTo)
	}
	if f.MinShared < 0 || f.MaxCoauthors < 0 {
		return fmt.Errorf("%w: min-shared and max-coauthors must not be negative", ErrInvalidFilter)
	}
	return nil
}

func (f Filter) minShared() int {
	return max(f.MinShared, 1)
}

func (f Filter) keepsYear(year int) bool {
	if f.YearFrom == 0 && f.YearTo == 0 {
		return true
	}
	if year == 0 {
		return false
	}
	if f.YearFrom > 0 && year < f.YearFrom {
		return false
	}
	if f.YearTo > 0 && year > f.YearTo {
		return false
	}
	return true
}

// ParseYears parses "2015:2024", "2015:", ":2024" or "2020" into a range.
func ParseYears(s string) (from, to int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, nil
	}
	lo, hi, found := strings.Cut(s, ":")
	if !found {
		hi = lo
	}
	if from, err = parseYear(lo); err != nil {
		return 0, 0, err
	}
	if to, err = parseYear(hi); err != nil {
		return 0, 0, err
	}
	return from, to, nil
}

func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < 0 {
		return 0, fmt.Errorf("%w: invalid year %q", ErrInvalidFilter, s)
	}
	return y, nil
}
