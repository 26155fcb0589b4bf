package panel

import (
	"fmt"

	"github.com/rewired-gh/vgdash/internal/aggregate"
	"github.com/rewired-gh/vgdash/internal/models"
)

// densityPoints is the grid size of violin curves.
const densityPoints = 64

// Advisory messages attached to results.
const (
	AdvisoryNoRows      = "No data matches the current selection."
	AdvisorySampled     = "Showing %d of %d games."
	AdvisoryZeroPeriods = "%d period(s) have zero total sales; their shares are shown as 0."
)

// Profile holds several metrics summed per category, one row per category.
type Profile struct {
	Dim        models.Dimension `json:"dim"`
	Metrics    []models.Metric  `json:"metrics"`
	Categories []string         `json:"categories"`
	Values     [][]float64      `json:"values"`
}

// Result is an evaluated panel. Exactly one of the derived table fields is
// set, matching the descriptor's aggregation.
type Result struct {
	Panel      Descriptor `json:"panel"`
	InputRows  int        `json:"input_rows"`
	Advisories []string   `json:"advisories"`

	Table     *aggregate.Table         `json:"table,omitempty"`
	Records   []models.Record          `json:"records,omitempty"`
	Shares    *aggregate.ShareTable    `json:"shares,omitempty"`
	Hierarchy *aggregate.Hierarchy     `json:"hierarchy,omitempty"`
	Flow      *aggregate.Flow          `json:"flow,omitempty"`
	Boxes     []aggregate.BoxStats     `json:"boxes,omitempty"`
	Densities []aggregate.DensityCurve `json:"densities,omitempty"`
	Matrix    *aggregate.Matrix        `json:"matrix,omitempty"`
	Profile   *Profile                 `json:"profile,omitempty"`

	// YMax is the focused value-axis bound, nil when the axis autoscales.
	YMax  *float64       `json:"y_max,omitempty"`
	// Trend is the least-squares line through a scatter, when requested.
	Trend *aggregate.Fit `json:"trend,omitempty"`
}

// Empty reports whether the panel has nothing to draw.
func (r *Result) Empty() bool {
	switch {
	case r.Table != nil:
		return r.Table.Len() == 0
	case r.Shares != nil:
		return len(r.Shares.Rows) == 0
	case r.Hierarchy != nil:
		return len(r.Hierarchy.Root.Children) == 0
	case r.Flow != nil:
		return len(r.Flow.Nodes) == 0
	case r.Matrix != nil:
		return r.InputRows == 0
	case r.Profile != nil:
		return len(r.Profile.Categories) == 0
	}
	return len(r.Records) == 0 && len(r.Boxes) == 0 && len(r.Densities) == 0
}

// Build evaluates d. Full-scope panels read full; the rest read view. An
// empty input is not an error: the result is empty and carries an advisory.
func Build(d Descriptor, full *models.Dataset, view []models.Record) (*Result, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	rows := view
	if d.Scope == ScopeFull {
		rows = full.Records()
	}

	res := &Result{Panel: d, InputRows: len(rows), Advisories: []string{}}
	if len(rows) == 0 {
		res.Advisories = append(res.Advisories, AdvisoryNoRows)
	}

	agg := d.Aggregation
	switch agg.Op {
	case OpRecords:
		buildRecords(res, d, rows)

	case OpGroupSum:
		t := aggregate.SortBy(aggregate.GroupSum(rows, agg.Dims, agg.Metric))
		res.Table = &t
		res.clip(d.Options.Clip, rowValues(t.Rows))

	case OpTopN:
		t := aggregate.TopN(rows, agg.Dims[0], agg.Metric, agg.N)
		res.Table = &t
		res.clip(d.Options.Clip, rowValues(t.Rows))

	case OpTopRecords:
		res.Records = aggregate.TopRecords(rows, agg.Metric, agg.N)

	case OpShare:
		s := aggregate.ShareOfPeriod(rows, agg.Dims[0], agg.Dims[1], agg.Metric)
		res.Shares = &s
		if n := zeroPeriods(s); n > 0 {
			res.Advisories = append(res.Advisories, fmt.Sprintf(AdvisoryZeroPeriods, n))
		}

	case OpDenseFill:
		t := denseTop(rows, agg)
		res.Table = &t
		res.clip(d.Options.Clip, rowValues(t.Rows))

	case OpHierarchy:
		h := aggregate.HierarchyPath(rows, agg.Dims, agg.Metric)
		res.Hierarchy = &h

	case OpFlow:
		top := aggregate.TopKeys(rows, agg.Dims[0], agg.Metric, agg.N)
		f := aggregate.FlowGraph(aggregate.Restrict(rows, agg.Dims[0], top), agg.Dims, agg.Metric)
		res.Flow = &f

	case OpDistribution:
		res.Boxes = aggregate.Summaries(rows, agg.Dims[0], agg.Metric)
		res.clip(d.Options.Clip, aggregate.Values(rows, agg.Metric))

	case OpDensity:
		res.Densities = aggregate.Densities(rows, agg.Dims[0], agg.Metric, densityPoints)
		res.clip(d.Options.Clip, aggregate.Values(rows, agg.Metric))

	case OpCorrelation:
		m := aggregate.Correlation(rows, agg.Metrics)
		res.Matrix = &m

	case OpProfile:
		res.Profile = profile(rows, agg.Dims[0], agg.Metrics)
	}

	return res, nil
}

func buildRecords(res *Result, d Descriptor, rows []models.Record) {
	agg := d.Aggregation
	category := models.DimGenre
	if len(agg.Dims) > 0 {
		category = agg.Dims[0]
	}

	sampled := d.Options.Sampling.Apply(rows, category)
	if len(sampled) < len(rows) {
		res.Advisories = append(res.Advisories, fmt.Sprintf(AdvisorySampled, len(sampled), len(rows)))
	}
	res.Records = sampled

	if len(agg.Metrics) < 2 {
		return
	}
	// Bounds and the fit use every row so they do not depend on the sample.
	xs := aggregate.Values(rows, agg.Metrics[0])
	ys := aggregate.Values(rows, agg.Metrics[1])
	res.clip(d.Options.Clip, ys)
	if d.Options.Trendline {
		if f := aggregate.LinearFit(xs, ys); f.OK {
			res.Trend = &f
		}
	}
}

// denseTop restricts rows to the top N values of the first dimension and
// fills every (value, year) combination across the years present in rows.
func denseTop(rows []models.Record, agg Aggregation) aggregate.Table {
	dimA, dimB := agg.Dims[0], agg.Dims[1]
	top := aggregate.TopKeys(rows, dimA, agg.Metric, agg.N)
	kept := aggregate.Restrict(rows, dimA, top)

	var domainB []string
	if dimB == models.DimYear {
		if min, max, ok := models.NewDataset(rows).YearBounds(); ok {
			domainB = aggregate.YearDomain(min, max)
		}
	} else {
		domainB = aggregate.Domain(rows, dimB)
	}
	return aggregate.DenseFill(kept, dimA, top, dimB, domainB, agg.Metric)
}

func profile(rows []models.Record, dim models.Dimension, metrics []models.Metric) *Profile {
	p := &Profile{
		Dim:        dim,
		Metrics:    append([]models.Metric(nil), metrics...),
		Categories: []string{},
		Values:     [][]float64{},
	}
	index := make(map[string]int)
	for _, r := range rows {
		k := dim.Value(r)
		i, ok := index[k]
		if !ok {
			i = len(p.Categories)
			index[k] = i
			p.Categories = append(p.Categories, k)
			p.Values = append(p.Values, make([]float64, len(metrics)))
		}
		for j, m := range metrics {
			p.Values[i][j] += m.Value(r)
		}
	}
	return p
}

func zeroPeriods(s aggregate.ShareTable) int {
	totals := make(map[string]float64)
	for _, r := range s.Rows {
		totals[r.Period] += r.Value
	}
	n := 0
	for _, t := range totals {
		if t == 0 {
			n++
		}
	}
	return n
}

func rowValues(rows []aggregate.Row) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.Value
	}
	return out
}

func (r *Result) clip(policy ClipPolicy, values []float64) {
	if max, ok := policy.Bound(values); ok {
		r.YMax = &max
	}
}
