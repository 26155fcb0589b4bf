package aggregate

import (
	"sort"

	"github.com/rewired-gh/vgdash/internal/models"
)

// TopN ranks the groups of key by summed metric, descending, and returns the
// top n. Ties keep input encounter order. The result has exactly
// min(n, distinct groups) rows; n <= 0 yields an empty table.
func TopN(rows []models.Record, key models.Dimension, metric models.Metric, n int) Table {
	grouped := GroupSum(rows, []models.Dimension{key}, metric)

	sort.SliceStable(grouped.Rows, func(i, j int) bool {
		return grouped.Rows[i].Value > grouped.Rows[j].Value
	})

	if n <= 0 {
		grouped.Rows = []Row{}
		return grouped
	}
	if n < len(grouped.Rows) {
		grouped.Rows = grouped.Rows[:n]
	}
	return grouped
}

// TopKeys is TopN reduced to the ranked key values.
func TopKeys(rows []models.Record, key models.Dimension, metric models.Metric, n int) []string {
	return TopN(rows, key, metric, n).Keys()
}

// TopRecords returns the n individual records with the largest metric,
// descending, ties in input order. Unlike TopN nothing is grouped, so a title
// released on several platforms can appear more than once.
func TopRecords(rows []models.Record, metric models.Metric, n int) []models.Record {
	if n <= 0 {
		return []models.Record{}
	}
	sorted := make([]models.Record, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return metric.Value(sorted[i]) > metric.Value(sorted[j])
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
