package panel

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/rewired-gh/vgdash/internal/aggregate"
	"github.com/rewired-gh/vgdash/internal/models"
)

// ClipMode controls how a panel's value axis is bounded.
type ClipMode int

const (
	// ClipFull autoscales to the data.
	ClipFull ClipMode = iota
	// ClipFocused bounds the axis so a few outliers do not flatten the rest.
	ClipFocused
)

func (c ClipMode) String() string {
	switch c {
	case ClipFull:
		return "full"
	case ClipFocused:
		return "focused"
	}
	return fmt.Sprintf("clip(%d)", int(c))
}

// MarshalText implements encoding.TextMarshaler.
func (c ClipMode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ClipPolicy is a focused bound given either as a fixed value or as a
// percentile of the plotted values. Fixed wins when both are set.
type ClipPolicy struct {
	Mode       ClipMode `json:"mode"`
	Fixed      float64  `json:"fixed,omitempty"`
	Percentile float64  `json:"percentile,omitempty"` // in (0, 1]
}

// FixedClip bounds the axis at max.
func FixedClip(max float64) ClipPolicy {
	return ClipPolicy{Mode: ClipFocused, Fixed: max}
}

// PercentileClip bounds the axis at the q-quantile of the plotted values.
func PercentileClip(q float64) ClipPolicy {
	return ClipPolicy{Mode: ClipFocused, Percentile: q}
}

// Bound returns the axis maximum for values. ok is false when the axis
// should autoscale: full mode, or nothing to plot. A single value is its own
// percentile.
func (c ClipPolicy) Bound(values []float64) (max float64, ok bool) {
	if c.Mode != ClipFocused || len(values) == 0 {
		return 0, false
	}
	if c.Fixed > 0 {
		return c.Fixed, true
	}
	return aggregate.Quantile(values, c.Percentile), true
}

func (c ClipPolicy) validate() error {
	switch c.Mode {
	case ClipFull:
		return nil
	case ClipFocused:
		if c.Fixed < 0 {
			return errors.New("fixed clip bound must not be negative")
		}
		if c.Fixed == 0 && (c.Percentile <= 0 || c.Percentile > 1) {
			return fmt.Errorf("clip percentile %v out of range (0, 1]", c.Percentile)
		}
		return nil
	}
	return fmt.Errorf("unknown clip mode %d", int(c.Mode))
}

// SamplingMode thins overplotted views.
type SamplingMode int

const (
	SampleNone SamplingMode = iota
	// SamplePerCategory keeps the first Cap records of every colour category.
	SamplePerCategory
	// SampleRandom keeps Cap records drawn with a fixed seed.
	SampleRandom
)

func (s SamplingMode) String() string {
	switch s {
	case SampleNone:
		return "none"
	case SamplePerCategory:
		return "per_category"
	case SampleRandom:
		return "random"
	}
	return fmt.Sprintf("sampling(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s SamplingMode) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Sampling caps the number of plotted records.
type Sampling struct {
	Mode SamplingMode `json:"mode"`
	Cap  int          `json:"cap,omitempty"`
	Seed int64        `json:"seed,omitempty"`
}

func (s Sampling) validate() error {
	switch s.Mode {
	case SampleNone:
		return nil
	case SamplePerCategory, SampleRandom:
		if s.Cap <= 0 {
			return fmt.Errorf("sampling cap must be positive, got %d", s.Cap)
		}
		return nil
	}
	return fmt.Errorf("unknown sampling mode %d", int(s.Mode))
}

// Apply thins rows. Both modes keep the surviving records in input order, and
// the same seed always selects the same records.
func (s Sampling) Apply(rows []models.Record, category models.Dimension) []models.Record {
	switch s.Mode {
	case SamplePerCategory:
		counts := make(map[string]int)
		out := make([]models.Record, 0, len(rows))
		for _, r := range rows {
			k := category.Value(r)
			if counts[k] < s.Cap {
				counts[k]++
				out = append(out, r)
			}
		}
		return out
	case SampleRandom:
		if len(rows) <= s.Cap {
			return append([]models.Record(nil), rows...)
		}
		rng := rand.New(rand.NewSource(s.Seed))
		picked := rng.Perm(len(rows))[:s.Cap]
		sort.Ints(picked)
		out := make([]models.Record, len(picked))
		for i, idx := range picked {
			out[i] = rows[idx]
		}
		return out
	}
	return rows
}

// Options are the recognized display switches of a panel.
type Options struct {
	LogX         bool       `json:"log_x"`
	LogY         bool       `json:"log_y"`
	SizeByMetric bool       `json:"size_by_metric"`
	Trendline    bool       `json:"trendline"`
	Clip         ClipPolicy `json:"clip"`
	Sampling     Sampling   `json:"sampling"`
}

// Validate rejects unrecognized modes and non-positive caps.
func (o Options) Validate() error {
	if err := o.Clip.validate(); err != nil {
		return err
	}
	return o.Sampling.validate()
}
