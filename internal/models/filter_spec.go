package models

import (
	"fmt"
	"strconv"
	"strings"
)

// FilterSpec is the user's sidebar selection: a set of genres and an
// inclusive year range.
type FilterSpec struct {
	Genres  []string `json:"genres"`
	YearMin int      `json:"year_min"`
	YearMax int      `json:"year_max"`
}

// Empty reports whether the spec can never match a record.
func (f FilterSpec) Empty() bool {
	return len(f.Genres) == 0 || f.YearMin > f.YearMax
}

// GenreSet returns the selected genres as a lookup set.
func (f FilterSpec) GenreSet() map[string]struct{} {
	set := make(map[string]struct{}, len(f.Genres))
	for _, g := range f.Genres {
		set[g] = struct{}{}
	}
	return set
}

// Matches reports whether r satisfies genre in Genres AND YearMin <= year <= YearMax.
func (f FilterSpec) Matches(r Record) bool {
	if r.Year < f.YearMin || r.Year > f.YearMax {
		return false
	}
	for _, g := range f.Genres {
		if g == r.Genre {
			return true
		}
	}
	return false
}

// ParseYearRange parses "2000-2010" or a single year "2005".
func ParseYearRange(s string) (int, int, error) {
	s = strings.TrimSpace(s)
	lo, hi, found := strings.Cut(s, "-")
	min, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year range %q: %w", s, err)
	}
	if !found {
		return min, min, nil
	}
	max, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year range %q: %w", s, err)
	}
	return min, max, nil
}
