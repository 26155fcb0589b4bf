// Package filter applies the sidebar selection to the dataset.
//
// Apply is deterministic and total: an empty genre set or an inverted year
// range yields an empty view, never an error. Record order is preserved and
// filtering an already-filtered view with the same spec is a no-op.
package filter

import (
	"fmt"

	"github.com/rewired-gh/vgdash/internal/models"
)

// View is the filtered sequence of records.
type View []models.Record

// Apply returns the records satisfying spec, in input order.
func Apply(records []models.Record, spec models.FilterSpec) View {
	if spec.Empty() {
		return View{}
	}
	genres := spec.GenreSet()
	out := make(View, 0, len(records))
	for _, r := range records {
		if r.Year < spec.YearMin || r.Year > spec.YearMax {
			continue
		}
		if _, ok := genres[r.Genre]; !ok {
			continue
		}
		out = append(out, r)
	}
	return out
}

// DefaultSpec mirrors the sidebar defaults: the first n genres in encounter
// order and the full year range of the dataset.
func DefaultSpec(ds *models.Dataset, n int) models.FilterSpec {
	genres := ds.Genres()
	if n < len(genres) {
		genres = genres[:n]
	}
	min, max, _ := ds.YearBounds()
	return models.FilterSpec{
		Genres:  append([]string(nil), genres...),
		YearMin: min,
		YearMax: max,
	}
}

// Summary is the sidebar info line for a view.
func Summary(v View) string {
	return fmt.Sprintf("%d games found based on selected filters.", len(v))
}
