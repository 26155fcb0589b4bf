package aggregate

import (
	"math"
	"sort"

	"github.com/aclements/go-moremath/fit"
	"github.com/aclements/go-moremath/stats"
	"github.com/aclements/go-moremath/vec"

	"github.com/rewired-gh/vgdash/internal/models"
)

// Quantile returns the q-quantile of xs using linear interpolation between
// closest ranks (the default of most dataframe libraries). q is clamped to
// [0, 1]. An empty sample yields NaN; a single value is its own quantile.
func Quantile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	return sortedQuantile(sorted, q)
}

func sortedQuantile(sorted []float64, q float64) float64 {
	q = math.Max(0, math.Min(1, q))
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Values extracts metric from every record.
func Values(rows []models.Record, metric models.Metric) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = metric.Value(r)
	}
	return out
}

// BoxStats summarizes one category's distribution for box and violin plots.
// Whiskers extend to the most extreme values within 1.5 IQR of the quartiles;
// values beyond them are outliers.
type BoxStats struct {
	Category     string    `json:"category"`
	N            int       `json:"n"`
	Min          float64   `json:"min"`
	Q1           float64   `json:"q1"`
	Median       float64   `json:"median"`
	Q3           float64   `json:"q3"`
	Max          float64   `json:"max"`
	LowerWhisker float64   `json:"lower_whisker"`
	UpperWhisker float64   `json:"upper_whisker"`
	Mean         float64   `json:"mean"`
	Outliers     []float64 `json:"outliers"`
}

// Box summarizes xs. ok is false for an empty sample.
func Box(category string, xs []float64) (BoxStats, bool) {
	if len(xs) == 0 {
		return BoxStats{Category: category, Outliers: []float64{}}, false
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	b := BoxStats{
		Category: category,
		N:        len(sorted),
		Q1:       sortedQuantile(sorted, 0.25),
		Median:   sortedQuantile(sorted, 0.5),
		Q3:       sortedQuantile(sorted, 0.75),
		Mean:     stats.Mean(sorted),
		Outliers: []float64{},
	}
	b.Min, b.Max = stats.Bounds(sorted)

	iqr := b.Q3 - b.Q1
	lowFence, highFence := b.Q1-1.5*iqr, b.Q3+1.5*iqr
	b.LowerWhisker, b.UpperWhisker = b.Max, b.Min
	for _, x := range sorted {
		if x < lowFence || x > highFence {
			b.Outliers = append(b.Outliers, x)
			continue
		}
		if x < b.LowerWhisker {
			b.LowerWhisker = x
		}
		if x > b.UpperWhisker {
			b.UpperWhisker = x
		}
	}
	return b, true
}

// Summaries computes BoxStats of metric per value of dim, categories in
// encounter order.
func Summaries(rows []models.Record, dim models.Dimension, metric models.Metric) []BoxStats {
	order, groups := partition(rows, dim, metric)
	out := make([]BoxStats, 0, len(order))
	for _, cat := range order {
		if b, ok := Box(cat, groups[cat]); ok {
			out = append(out, b)
		}
	}
	return out
}

func partition(rows []models.Record, dim models.Dimension, metric models.Metric) ([]string, map[string][]float64) {
	groups := make(map[string][]float64)
	var order []string
	for _, r := range rows {
		k := dim.Value(r)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], metric.Value(r))
	}
	return order, groups
}

// DensityCurve is a kernel density estimate of one category, evaluated on an
// evenly spaced grid between the category's bounds.
type DensityCurve struct {
	Category string    `json:"category"`
	N        int       `json:"n"`
	Xs       []float64 `json:"xs"`
	Ys       []float64 `json:"ys"`
}

// Densities estimates the distribution of metric per value of dim with a
// Gaussian KDE (Scott's bandwidth), reflected at zero since sales are never
// negative. Categories with fewer than two distinct values get no curve
// points; their N still reports the sample size.
func Densities(rows []models.Record, dim models.Dimension, metric models.Metric, points int) []DensityCurve {
	if points < 2 {
		points = 2
	}
	order, groups := partition(rows, dim, metric)
	out := make([]DensityCurve, 0, len(order))
	for _, cat := range order {
		xs := groups[cat]
		curve := DensityCurve{Category: cat, N: len(xs), Xs: []float64{}, Ys: []float64{}}

		if len(xs) < 2 {
			out = append(out, curve)
			continue
		}
		sample := stats.Sample{Xs: xs}
		lo, hi := sample.Bounds()
		bw := stats.BandwidthScott(sample)
		if hi > lo && bw > 0 && !math.IsNaN(bw) {
			kde := stats.KDE{
				Sample:         sample,
				Bandwidth:      bw,
				BoundaryMethod: stats.BoundaryReflect,
				BoundaryMin:    0,
				BoundaryMax:    math.Inf(1),
			}
			curve.Xs = vec.Linspace(lo, hi, points)
			curve.Ys = vec.Map(kde.PDF, curve.Xs)
		}
		out = append(out, curve)
	}
	return out
}

// Matrix is a square table of pairwise values between metrics.
type Matrix struct {
	Metrics []models.Metric `json:"metrics"`
	Values  [][]float64     `json:"values"`
}

// Correlation returns the Pearson correlation between every pair of metrics.
// A pair where either side has zero variance (including fewer than two rows)
// reports 0; the diagonal is 1 whenever the metric varies.
func Correlation(rows []models.Record, metrics []models.Metric) Matrix {
	cols := make([][]float64, len(metrics))
	means := make([]float64, len(metrics))
	for i, m := range metrics {
		cols[i] = Values(rows, m)
		if len(cols[i]) > 0 {
			means[i] = stats.Mean(cols[i])
		}
	}

	out := Matrix{
		Metrics: append([]models.Metric(nil), metrics...),
		Values:  make([][]float64, len(metrics)),
	}
	for i := range metrics {
		out.Values[i] = make([]float64, len(metrics))
		for j := range metrics {
			out.Values[i][j] = pearson(cols[i], cols[j], means[i], means[j])
		}
	}
	return out
}

func pearson(xs, ys []float64, mx, my float64) float64 {
	var sxy, sxx, syy float64
	for k := range xs {
		dx, dy := xs[k]-mx, ys[k]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0
	}
	return sxy / math.Sqrt(sxx*syy)
}

// Fit is a least-squares line y = Intercept + Slope*x.
type Fit struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	OK        bool    `json:"ok"`
}

// At evaluates the line.
func (f Fit) At(x float64) float64 {
	return f.Intercept + f.Slope*x
}

// LinearFit fits an ordinary least-squares line through the points. OK is
// false when there are fewer than two points or x does not vary.
func LinearFit(xs, ys []float64) Fit {
	if len(xs) < 2 || len(xs) != len(ys) {
		return Fit{}
	}
	lo, hi := stats.Bounds(xs)
	if lo == hi {
		return Fit{}
	}
	r := fit.PolynomialRegression(xs, ys, nil, 1)
	intercept := r.F(0)
	return Fit{Slope: r.F(1) - intercept, Intercept: intercept, OK: true}
}
