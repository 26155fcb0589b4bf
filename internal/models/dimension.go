package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Dimension names a categorical column of a Record that the pipeline can
// group, filter or stage by.
type Dimension int

const (
	DimName Dimension = iota
	DimPlatform
	DimYear
	DimGenre
	DimPublisher
)

var dimensionNames = map[Dimension]string{
	DimName:      "name",
	DimPlatform:  "platform",
	DimYear:      "year",
	DimGenre:     "genre",
	DimPublisher: "publisher",
}

// Dimensions lists every known dimension in declaration order.
func Dimensions() []Dimension {
	return []Dimension{DimName, DimPlatform, DimYear, DimGenre, DimPublisher}
}

func (d Dimension) String() string {
	if s, ok := dimensionNames[d]; ok {
		return s
	}
	return fmt.Sprintf("dimension(%d)", int(d))
}

// Label is the column heading used in the source table.
func (d Dimension) Label() string {
	s := d.String()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Valid reports whether d is one of the declared dimensions.
func (d Dimension) Valid() bool {
	_, ok := dimensionNames[d]
	return ok
}

// Value returns the record's value for this dimension as a string key.
func (d Dimension) Value(r Record) string {
	switch d {
	case DimName:
		return r.Name
	case DimPlatform:
		return r.Platform
	case DimYear:
		return strconv.Itoa(r.Year)
	case DimGenre:
		return r.Genre
	case DimPublisher:
		return r.Publisher
	}
	return ""
}

// Compare orders two values of this dimension. Years compare numerically,
// everything else lexically. It returns -1, 0 or +1.
func (d Dimension) Compare(a, b string) int {
	if d == DimYear {
		ai, aerr := strconv.Atoi(a)
		bi, berr := strconv.Atoi(b)
		if aerr == nil && berr == nil {
			switch {
			case ai < bi:
				return -1
			case ai > bi:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(a, b)
}

// ParseDimension resolves a dimension from its name, case-insensitively.
func ParseDimension(s string) (Dimension, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for d, name := range dimensionNames {
		if name == want {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown dimension %q", s)
}

// ParseDimensions resolves a list of dimension names, failing on the first
// unknown entry.
func ParseDimensions(names []string) ([]Dimension, error) {
	dims := make([]Dimension, 0, len(names))
	for _, n := range names {
		d, err := ParseDimension(n)
		if err != nil {
			return nil, err
		}
		dims = append(dims, d)
	}
	return dims, nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Dimension) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Metric names a numeric quantity summed by the aggregation library.
type Metric int

const (
	MetricGlobalSales Metric = iota
	MetricNASales
	MetricEUSales
	MetricJPSales
	MetricOtherSales
	// MetricCount contributes 1 per record (release counts).
	MetricCount
)

var metricNames = map[Metric]string{
	MetricGlobalSales: "global_sales",
	MetricNASales:     "na_sales",
	MetricEUSales:     "eu_sales",
	MetricJPSales:     "jp_sales",
	MetricOtherSales:  "other_sales",
	MetricCount:       "count",
}

var metricLabels = map[Metric]string{
	MetricGlobalSales: "Global_Sales",
	MetricNASales:     "NA_Sales",
	MetricEUSales:     "EU_Sales",
	MetricJPSales:     "JP_Sales",
	MetricOtherSales:  "Other_Sales",
	MetricCount:       "Count",
}

// RegionalMetrics are the per-region sales columns plus the global total.
func RegionalMetrics() []Metric {
	return []Metric{MetricNASales, MetricEUSales, MetricJPSales, MetricOtherSales, MetricGlobalSales}
}

func (m Metric) String() string {
	if s, ok := metricNames[m]; ok {
		return s
	}
	return fmt.Sprintf("metric(%d)", int(m))
}

// Label is the column heading used in the source table.
func (m Metric) Label() string {
	if s, ok := metricLabels[m]; ok {
		return s
	}
	return m.String()
}

// Valid reports whether m is one of the declared metrics.
func (m Metric) Valid() bool {
	_, ok := metricNames[m]
	return ok
}

// Value returns the record's contribution to this metric.
func (m Metric) Value(r Record) float64 {
	switch m {
	case MetricGlobalSales:
		return r.GlobalSales
	case MetricNASales:
		return r.NASales
	case MetricEUSales:
		return r.EUSales
	case MetricJPSales:
		return r.JPSales
	case MetricOtherSales:
		return r.OtherSales
	case MetricCount:
		return 1
	}
	return 0
}

// ParseMetric resolves a metric from its name or source column label.
func ParseMetric(s string) (Metric, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for m, name := range metricNames {
		if name == want || strings.ToLower(metricLabels[m]) == want {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown metric %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Metric) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
