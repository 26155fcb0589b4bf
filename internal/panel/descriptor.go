// Package panel declares the dashboard's charts as immutable descriptors and
// evaluates them into derived tables.
//
// A Descriptor names one aggregation, the channels a renderer should map the
// result onto and a closed set of display options. It carries no behaviour of
// its own; Build is the only place a descriptor meets data.
package panel

import (
	"errors"
	"fmt"

	"github.com/rewired-gh/vgdash/internal/models"
)

// Kind is the chart family a renderer should draw.
type Kind int

const (
	KindScatter Kind = iota
	KindBox
	KindTreemap
	KindBar
	KindHistogram
	KindHeatmap
	KindViolin
	KindSunburst
	KindParallel
	KindArea
	KindShare
	KindFlow
)

var kindNames = []string{
	"scatter", "box", "treemap", "bar", "histogram", "heatmap",
	"violin", "sunburst", "parallel", "area", "share", "flow",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Valid reports whether k is a declared kind.
func (k Kind) Valid() bool {
	return k >= 0 && int(k) < len(kindNames)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Scope selects which rows a panel reads.
type Scope int

const (
	// ScopeFiltered reads the sidebar-filtered view.
	ScopeFiltered Scope = iota
	// ScopeFull reads the whole dataset regardless of the sidebar.
	ScopeFull
)

func (s Scope) String() string {
	switch s {
	case ScopeFiltered:
		return "filtered"
	case ScopeFull:
		return "full"
	}
	return fmt.Sprintf("scope(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Scope) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Op is the aggregation a panel evaluates.
type Op int

const (
	// OpRecords passes (optionally sampled) records through.
	OpRecords Op = iota
	// OpGroupSum sums Metric per Dims, ordered by dimension values.
	OpGroupSum
	// OpTopN ranks Dims[0] groups by Metric and keeps N.
	OpTopN
	// OpTopRecords keeps the N individual records with the largest Metric.
	OpTopRecords
	// OpShare computes the share of Dims[1] within each Dims[0] period.
	OpShare
	// OpDenseFill crosses the top N values of Dims[0] with every year in view.
	OpDenseFill
	// OpHierarchy rolls Metric up along Dims.
	OpHierarchy
	// OpFlow links adjacent Dims stages, restricted to the top N of Dims[0].
	OpFlow
	// OpDistribution summarizes Metric per Dims[0] as box statistics.
	OpDistribution
	// OpDensity estimates Metric's density per Dims[0].
	OpDensity
	// OpCorrelation correlates Metrics pairwise.
	OpCorrelation
	// OpProfile sums each of Metrics per Dims[0].
	OpProfile
)

var opNames = []string{
	"records", "group_sum", "top_n", "top_records", "share_of_period", "dense_fill",
	"hierarchy_path", "flow_graph", "distribution", "density", "correlation", "profile",
}

func (o Op) String() string {
	if o < 0 || int(o) >= len(opNames) {
		return fmt.Sprintf("op(%d)", int(o))
	}
	return opNames[o]
}

// MarshalText implements encoding.TextMarshaler.
func (o Op) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// minDims is how many dimensions each op needs.
var minDims = map[Op]int{
	OpRecords:      0,
	OpGroupSum:     1,
	OpTopN:         1,
	OpTopRecords:   0,
	OpShare:        2,
	OpDenseFill:    2,
	OpHierarchy:    0,
	OpFlow:         2,
	OpDistribution: 1,
	OpDensity:      1,
	OpCorrelation:  0,
	OpProfile:      1,
}

// Aggregation is the function a panel applies and its parameters.
type Aggregation struct {
	Op      Op                 `json:"op"`
	Dims    []models.Dimension `json:"dims,omitempty"`
	Metric  models.Metric      `json:"metric"`
	Metrics []models.Metric    `json:"metrics,omitempty"`
	N       int                `json:"n,omitempty"`
}

// Encoding maps derived-table fields onto visual channels. Empty channels are
// unused.
type Encoding struct {
	X     string `json:"x,omitempty"`
	Y     string `json:"y,omitempty"`
	Color string `json:"color,omitempty"`
	Facet string `json:"facet,omitempty"`
}

// Descriptor is one dashboard panel.
type Descriptor struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Kind        Kind        `json:"kind"`
	Scope       Scope       `json:"scope"`
	Aggregation Aggregation `json:"aggregation"`
	Encoding    Encoding    `json:"encoding"`
	Options     Options     `json:"options"`
}

// Validate checks that the descriptor only uses recognized values.
func (d Descriptor) Validate() error {
	if d.ID == "" {
		return errors.New("panel id must not be empty")
	}
	if !d.Kind.Valid() {
		return fmt.Errorf("panel %s: unknown kind %d", d.ID, int(d.Kind))
	}
	if d.Scope != ScopeFiltered && d.Scope != ScopeFull {
		return fmt.Errorf("panel %s: unknown scope %d", d.ID, int(d.Scope))
	}

	agg := d.Aggregation
	need, ok := minDims[agg.Op]
	if !ok {
		return fmt.Errorf("panel %s: unknown aggregation %d", d.ID, int(agg.Op))
	}
	if len(agg.Dims) < need {
		return fmt.Errorf("panel %s: %s needs %d dimensions, got %d", d.ID, agg.Op, need, len(agg.Dims))
	}
	for _, dim := range agg.Dims {
		if !dim.Valid() {
			return fmt.Errorf("panel %s: unknown dimension %d", d.ID, int(dim))
		}
	}
	if !agg.Metric.Valid() {
		return fmt.Errorf("panel %s: unknown metric %d", d.ID, int(agg.Metric))
	}
	for _, m := range agg.Metrics {
		if !m.Valid() {
			return fmt.Errorf("panel %s: unknown metric %d", d.ID, int(m))
		}
	}
	switch agg.Op {
	case OpTopN, OpTopRecords, OpDenseFill, OpFlow:
		if agg.N <= 0 {
			return fmt.Errorf("panel %s: %s needs a positive N", d.ID, agg.Op)
		}
	case OpCorrelation, OpProfile:
		if len(agg.Metrics) == 0 {
			return fmt.Errorf("panel %s: %s needs metrics", d.ID, agg.Op)
		}
	case OpRecords:
		if d.Options.Trendline && len(agg.Metrics) < 2 {
			return fmt.Errorf("panel %s: trendline needs x and y metrics", d.ID)
		}
	}

	if err := d.Options.Validate(); err != nil {
		return fmt.Errorf("panel %s: %w", d.ID, err)
	}
	return nil
}

// WithOrder returns a copy of d whose hierarchy or flow stages follow dims.
// Other panels are returned unchanged, as is d when dims is empty.
func WithOrder(d Descriptor, dims []models.Dimension) Descriptor {
	if len(dims) == 0 {
		return d
	}
	switch d.Aggregation.Op {
	case OpHierarchy, OpFlow:
		d.Aggregation.Dims = append([]models.Dimension(nil), dims...)
	}
	return d
}
