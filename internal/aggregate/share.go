package aggregate

import (
	"github.com/rewired-gh/vgdash/internal/models"
)

// ShareRow is one (period, category) cell of a share table.
type ShareRow struct {
	Period   string  `json:"period"`
	Category string  `json:"category"`
	Value    float64 `json:"value"`
	Share    float64 `json:"share"` // percent of the period total
}

// ShareTable holds per-period category shares.
type ShareTable struct {
	Period   models.Dimension `json:"period"`
	Category models.Dimension `json:"category"`
	Metric   models.Metric    `json:"metric"`
	Rows     []ShareRow       `json:"rows"`
}

// ShareOfPeriod computes, for every observed (period, category) pair,
// 100 * sum / period total. Rows are ordered by period then category.
//
// A period whose total is zero emits a share of 0 for each of its categories
// so the panel stays renderable.
func ShareOfPeriod(rows []models.Record, period, category models.Dimension, metric models.Metric) ShareTable {
	grouped := SortBy(GroupSum(rows, []models.Dimension{period, category}, metric))

	totals := make(map[string]float64)
	for _, r := range grouped.Rows {
		totals[r.Key(0)] += r.Value
	}

	out := ShareTable{
		Period:   period,
		Category: category,
		Metric:   metric,
		Rows:     make([]ShareRow, 0, len(grouped.Rows)),
	}
	for _, r := range grouped.Rows {
		share := 0.0
		if total := totals[r.Key(0)]; total != 0 {
			share = 100 * r.Value / total
		}
		out.Rows = append(out.Rows, ShareRow{
			Period:   r.Key(0),
			Category: r.Key(1),
			Value:    r.Value,
			Share:    share,
		})
	}
	return out
}

// Periods returns the distinct periods in row order.
func (s ShareTable) Periods() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range s.Rows {
		if !seen[r.Period] {
			seen[r.Period] = true
			out = append(out, r.Period)
		}
	}
	return out
}
