package storage

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rewired-gh/vgdash/internal/logger"
	"github.com/rewired-gh/vgdash/internal/models"
)

// Column headings every source must provide.
const (
	colName      = "Name"
	colPlatform  = "Platform"
	colYear      = "Year"
	colGenre     = "Genre"
	colPublisher = "Publisher"
	colNA        = "NA_Sales"
	colEU        = "EU_Sales"
	colJP        = "JP_Sales"
	colOther     = "Other_Sales"
	colGlobal    = "Global_Sales"
)

var requiredColumns = []string{
	colName, colPlatform, colYear, colGenre, colPublisher,
	colNA, colEU, colJP, colOther, colGlobal,
}

// naTokens are the cell values treated as missing, matching the default NA
// markers of common dataframe readers.
var naTokens = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

func isMissing(cell string) bool {
	return naTokens[strings.TrimSpace(cell)]
}

// rowOutcome classifies a raw row after cleaning.
type rowOutcome int

const (
	rowKept rowOutcome = iota
	rowMissing
	rowMalformed
)

// cleanRow applies the cleaning rules in order: drop rows missing year or
// publisher, then truncate year to an integer. Cells are looked up through
// get, which returns the raw text for a column heading.
func cleanRow(get func(col string) string) (models.Record, rowOutcome, error) {
	yearCell := get(colYear)
	publisher := get(colPublisher)
	if isMissing(yearCell) || isMissing(publisher) {
		return models.Record{}, rowMissing, nil
	}

	yearF, err := strconv.ParseFloat(strings.TrimSpace(yearCell), 64)
	if err != nil || math.IsNaN(yearF) || math.IsInf(yearF, 0) {
		return models.Record{}, rowMalformed, fmt.Errorf("invalid year %q", yearCell)
	}

	rec := models.Record{
		Name:      textCell(get(colName)),
		Platform:  textCell(get(colPlatform)),
		Year:      int(math.Trunc(yearF)),
		Genre:     textCell(get(colGenre)),
		Publisher: strings.TrimSpace(publisher),
	}

	sales := []struct {
		col string
		dst *float64
	}{
		{colNA, &rec.NASales},
		{colEU, &rec.EUSales},
		{colJP, &rec.JPSales},
		{colOther, &rec.OtherSales},
		{colGlobal, &rec.GlobalSales},
	}
	for _, s := range sales {
		v, err := salesCell(get(s.col))
		if err != nil {
			return models.Record{}, rowMalformed, fmt.Errorf("column %s: %w", s.col, err)
		}
		*s.dst = v
	}

	if err := rec.Validate(); err != nil {
		return models.Record{}, rowMalformed, err
	}
	return rec, rowKept, nil
}

func textCell(cell string) string {
	if isMissing(cell) {
		return ""
	}
	return strings.TrimSpace(cell)
}

// salesCell parses a sales figure; missing cells count as zero.
func salesCell(cell string) (float64, error) {
	if isMissing(cell) {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid sales value %q", cell)
	}
	return v, nil
}

// collector accumulates cleaned rows and their stats.
type collector struct {
	records []models.Record
	stats   LoadStats
}

func (c *collector) add(line int, get func(col string) string) {
	c.stats.RawRows++
	rec, outcome, err := cleanRow(get)
	switch outcome {
	case rowMissing:
		c.stats.DroppedMissing++
	case rowMalformed:
		c.stats.RejectedMalformed++
		logger.Debug("Rejected row %d: %v", line, err)
	default:
		c.records = append(c.records, rec)
		c.stats.Kept++
	}
}
