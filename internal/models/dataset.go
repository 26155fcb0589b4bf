package models

import (
	"sort"
)

// Dataset is the cleaned, ordered sequence of records. It is built once and
// treated as read-only for the lifetime of the process.
type Dataset struct {
	records []Record
}

// NewDataset wraps records in a Dataset. The slice is copied so later
// mutation by the caller cannot leak in.
func NewDataset(records []Record) *Dataset {
	owned := make([]Record, len(records))
	copy(owned, records)
	return &Dataset{records: owned}
}

// Records returns the records in source order. Callers must not modify the
// returned slice.
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	return d.records
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Values returns the distinct values of dim in encounter order.
func (d *Dataset) Values(dim Dimension) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range d.Records() {
		v := dim.Value(r)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// Genres returns the distinct genres in encounter order.
func (d *Dataset) Genres() []string {
	return d.Values(DimGenre)
}

// Platforms returns the distinct platforms sorted ascending.
func (d *Dataset) Platforms() []string {
	out := d.Values(DimPlatform)
	sort.Strings(out)
	return out
}

// Publishers returns the distinct publishers sorted ascending.
func (d *Dataset) Publishers() []string {
	out := d.Values(DimPublisher)
	sort.Strings(out)
	return out
}

// YearBounds returns the smallest and largest year. ok is false for an empty
// dataset.
func (d *Dataset) YearBounds() (min, max int, ok bool) {
	for i, r := range d.Records() {
		if i == 0 || r.Year < min {
			min = r.Year
		}
		if i == 0 || r.Year > max {
			max = r.Year
		}
		ok = true
	}
	return min, max, ok
}
