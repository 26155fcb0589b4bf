package aggregate

import (
	"github.com/rewired-gh/vgdash/internal/models"
)

// DenseFill produces the full cross product domainA × domainB, summing metric
// for each combination and filling absent combinations with 0. Domains are
// de-duplicated; records whose values fall outside either domain are ignored.
// Rows are sorted by dimA then dimB ascending in each dimension's natural
// order.
//
// Stacked and area views need this so a missing combination renders as zero
// rather than an interpolated gap.
func DenseFill(rows []models.Record, dimA models.Dimension, domainA []string, dimB models.Dimension, domainB []string, metric models.Metric) Table {
	as := uniqueSorted(dimA, domainA)
	bs := uniqueSorted(dimB, domainB)

	sums := make(map[string]float64)
	for _, r := range rows {
		sums[tupleKey([]string{dimA.Value(r), dimB.Value(r)})] += metric.Value(r)
	}

	out := Table{
		Dims:   []models.Dimension{dimA, dimB},
		Metric: metric,
		Rows:   make([]Row, 0, len(as)*len(bs)),
	}
	for _, a := range as {
		for _, b := range bs {
			keys := []string{a, b}
			out.Rows = append(out.Rows, Row{Keys: keys, Value: sums[tupleKey(keys)]})
		}
	}
	return out
}

// YearDomain returns every year from min to max inclusive as strings.
func YearDomain(min, max int) []string {
	if min > max {
		return []string{}
	}
	out := make([]string, 0, max-min+1)
	for y := min; y <= max; y++ {
		out = append(out, models.DimYear.Value(models.Record{Year: y}))
	}
	return out
}

func uniqueSorted(dim models.Dimension, values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sortValues(dim, out)
	return out
}
