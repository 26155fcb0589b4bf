// Package models defines the core domain entities for the vgdash application.
// These models represent video-game sales records, the dataset they form, the
// typed dimensions and metrics the pipeline groups by, and the user's filter.
// Records carry built-in validation so malformed rows are rejected at load time
// instead of deep inside an aggregation.
package models

import (
	"errors"
	"math"
)

// Record is a single sales entry for one title on one platform.
// Sales figures are in millions of units. GlobalSales is reported as-is and is
// not required to equal the sum of the regional fields.
type Record struct {
	Name        string  `json:"name"`
	Platform    string  `json:"platform"`
	Year        int     `json:"year"`
	Genre       string  `json:"genre"`
	Publisher   string  `json:"publisher"`
	NASales     float64 `json:"na_sales"`
	EUSales     float64 `json:"eu_sales"`
	JPSales     float64 `json:"jp_sales"`
	OtherSales  float64 `json:"other_sales"`
	GlobalSales float64 `json:"global_sales"`
}

// Validate checks that all record fields are valid
func (r *Record) Validate() error {
	if r.Year <= 0 {
		return errors.New("year must be present and positive")
	}
	if r.Publisher == "" {
		return errors.New("publisher must not be empty")
	}
	for _, v := range []float64{r.NASales, r.EUSales, r.JPSales, r.OtherSales, r.GlobalSales} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("sales must be finite")
		}
		if v < 0 {
			return errors.New("sales must not be negative")
		}
	}
	return nil
}
