// Package aggregate turns filtered records into the derived tables each panel
// consumes.
//
// Every function here is pure: it reads its input, never mutates it, and
// returns a fresh table. All of them are total over well-typed input; an empty
// input yields an empty (non-nil) result rather than an error, so an empty
// selection flows through to an empty chart.
//
// Grouping preserves encounter order: the first time a key tuple is seen
// fixes its position in the output. Ranking sorts stably, so ties keep that
// order too.
package aggregate

import (
	"sort"
	"strings"

	"github.com/rewired-gh/vgdash/internal/models"
)

// Row is one row of a grouped table: the key tuple (one value per table
// dimension) and the summed metric.
type Row struct {
	Keys  []string `json:"keys"`
	Value float64  `json:"value"`
}

// Key returns the value of the i-th key, or "" when out of range.
func (r Row) Key(i int) string {
	if i < 0 || i >= len(r.Keys) {
		return ""
	}
	return r.Keys[i]
}

// Table is a grouped-sum or ranked table.
type Table struct {
	Dims   []models.Dimension `json:"dims"`
	Metric models.Metric      `json:"metric"`
	Rows   []Row              `json:"rows"`
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Total sums the metric over all rows.
func (t Table) Total() float64 {
	var sum float64
	for _, r := range t.Rows {
		sum += r.Value
	}
	return sum
}

// Keys returns the first key of every row, in row order.
func (t Table) Keys() []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Key(0)
	}
	return out
}

// Lookup returns the value for an exact key tuple.
func (t Table) Lookup(keys ...string) (float64, bool) {
	want := tupleKey(keys)
	for _, r := range t.Rows {
		if tupleKey(r.Keys) == want {
			return r.Value, true
		}
	}
	return 0, false
}

const keySep = "\x1f"

func tupleKey(keys []string) string {
	return strings.Join(keys, keySep)
}

func keysOf(r models.Record, dims []models.Dimension) []string {
	keys := make([]string, len(dims))
	for i, d := range dims {
		keys[i] = d.Value(r)
	}
	return keys
}

// GroupSum sums metric per unique combination of dims. There is one output
// row per combination observed in rows, in encounter order; no zero rows are
// synthesized.
func GroupSum(rows []models.Record, dims []models.Dimension, metric models.Metric) Table {
	index := make(map[string]int)
	out := Table{
		Dims:   append([]models.Dimension(nil), dims...),
		Metric: metric,
		Rows:   []Row{},
	}
	for _, r := range rows {
		keys := keysOf(r, dims)
		k := tupleKey(keys)
		i, ok := index[k]
		if !ok {
			i = len(out.Rows)
			index[k] = i
			out.Rows = append(out.Rows, Row{Keys: keys})
		}
		out.Rows[i].Value += metric.Value(r)
	}
	return out
}

// SortBy returns a copy of t with rows ordered by dimension values ascending,
// using each dimension's natural order (years numerically).
func SortBy(t Table) Table {
	out := t
	out.Rows = append([]Row(nil), t.Rows...)
	sort.SliceStable(out.Rows, func(i, j int) bool {
		for k, d := range t.Dims {
			if c := d.Compare(out.Rows[i].Key(k), out.Rows[j].Key(k)); c != 0 {
				return c < 0
			}
		}
		return false
	})
	return out
}

// Restrict keeps the records whose dim value is one of keys, preserving order.
// It is used to cap cardinality (for example to the top publishers) before a
// downstream grouping.
func Restrict(rows []models.Record, dim models.Dimension, keys []string) []models.Record {
	allowed := make(map[string]bool, len(keys))
	for _, k := range keys {
		allowed[k] = true
	}
	out := make([]models.Record, 0, len(rows))
	for _, r := range rows {
		if allowed[dim.Value(r)] {
			out = append(out, r)
		}
	}
	return out
}

// Domain returns the distinct values of dim in rows, sorted ascending by the
// dimension's natural order.
func Domain(rows []models.Record, dim models.Dimension) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, r := range rows {
		v := dim.Value(r)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sortValues(dim, out)
	return out
}

func sortValues(dim models.Dimension, values []string) {
	sort.SliceStable(values, func(i, j int) bool {
		return dim.Compare(values[i], values[j]) < 0
	})
}

// Sum totals metric over rows.
func Sum(rows []models.Record, metric models.Metric) float64 {
	var total float64
	for _, r := range rows {
		total += metric.Value(r)
	}
	return total
}
