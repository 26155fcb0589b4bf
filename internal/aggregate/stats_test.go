package aggregate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/vgdash/internal/models"
)

func TestQuantile(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		q    float64
		want float64
	}{
		{"median odd", []float64{5, 1, 3, 2, 4}, 0.5, 3},
		{"median even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"first quartile", []float64{1, 2, 3, 4, 5}, 0.25, 2},
		{"interpolated", []float64{0, 10}, 0.95, 9.5},
		{"single value", []float64{7}, 0.99, 7},
		{"clamped high", []float64{1, 2}, 2, 2},
		{"clamped low", []float64{1, 2}, -1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Quantile(tt.xs, tt.q), 1e-9)
		})
	}
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
}

func TestBox(t *testing.T) {
	b, ok := Box("Sports", []float64{1, 2, 3, 4, 5, 100})
	require.True(t, ok)
	assert.Equal(t, 6, b.N)
	assert.Equal(t, 1.0, b.Min)
	assert.Equal(t, 100.0, b.Max)
	assert.InDelta(t, 3.5, b.Median, 1e-9)
	assert.Equal(t, []float64{100}, b.Outliers)
	assert.Equal(t, 5.0, b.UpperWhisker)
	assert.Equal(t, 1.0, b.LowerWhisker)
	assert.LessOrEqual(t, b.Q1, b.Median)
	assert.LessOrEqual(t, b.Median, b.Q3)

	_, ok = Box("empty", nil)
	assert.False(t, ok)
}

func TestSummariesPerCategory(t *testing.T) {
	rows := []models.Record{
		{Genre: "Action", Year: 2000, GlobalSales: 1},
		{Genre: "Sports", Year: 2000, GlobalSales: 4},
		{Genre: "Action", Year: 2001, GlobalSales: 3},
	}
	sums := Summaries(rows, models.DimGenre, models.MetricGlobalSales)
	require.Len(t, sums, 2)
	assert.Equal(t, "Action", sums[0].Category)
	assert.Equal(t, 2, sums[0].N)
	assert.InDelta(t, 2, sums[0].Mean, 1e-9)
	assert.Equal(t, "Sports", sums[1].Category)
	assert.Equal(t, 4.0, sums[1].Median)
}

func TestDensities(t *testing.T) {
	rows := []models.Record{
		{Genre: "Action", Year: 2000, GlobalSales: 1},
		{Genre: "Action", Year: 2001, GlobalSales: 2},
		{Genre: "Action", Year: 2002, GlobalSales: 4},
		{Genre: "Puzzle", Year: 2002, GlobalSales: 0.5},
	}
	curves := Densities(rows, models.DimGenre, models.MetricGlobalSales, 16)
	require.Len(t, curves, 2)

	action := curves[0]
	assert.Equal(t, "Action", action.Category)
	require.Len(t, action.Xs, 16)
	require.Len(t, action.Ys, 16)
	assert.Equal(t, 1.0, action.Xs[0])
	assert.Equal(t, 4.0, action.Xs[15])
	for _, y := range action.Ys {
		assert.False(t, math.IsNaN(y))
		assert.GreaterOrEqual(t, y, 0.0)
	}

	puzzle := curves[1]
	assert.Equal(t, 1, puzzle.N)
	assert.Empty(t, puzzle.Xs)
}

func TestCorrelation(t *testing.T) {
	rows := []models.Record{
		{Year: 2000, NASales: 1, EUSales: 2, JPSales: 3, GlobalSales: 6},
		{Year: 2001, NASales: 2, EUSales: 4, JPSales: 1, GlobalSales: 7},
		{Year: 2002, NASales: 3, EUSales: 6, JPSales: 2, GlobalSales: 11},
	}
	m := Correlation(rows, []models.Metric{models.MetricNASales, models.MetricEUSales, models.MetricOtherSales})

	require.Len(t, m.Values, 3)
	assert.InDelta(t, 1, m.Values[0][0], 1e-9)
	assert.InDelta(t, 1, m.Values[0][1], 1e-9, "EU is exactly 2x NA")
	assert.InDelta(t, m.Values[0][1], m.Values[1][0], 1e-12)
	assert.Equal(t, 0.0, m.Values[2][2], "constant column has no defined correlation")
	assert.Equal(t, 0.0, m.Values[0][2])
}

func TestLinearFit(t *testing.T) {
	f := LinearFit([]float64{0, 1, 2, 3}, []float64{1, 3, 5, 7})
	require.True(t, f.OK)
	assert.InDelta(t, 2, f.Slope, 1e-6)
	assert.InDelta(t, 1, f.Intercept, 1e-6)
	assert.InDelta(t, 21, f.At(10), 1e-5)

	assert.False(t, LinearFit([]float64{1}, []float64{1}).OK)
	assert.False(t, LinearFit([]float64{2, 2}, []float64{1, 5}).OK)
}
