package panel

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/vgdash/internal/aggregate"
	"github.com/rewired-gh/vgdash/internal/config"
	"github.com/rewired-gh/vgdash/internal/models"
)

func testConfig() config.DashboardConfig {
	return config.DashboardConfig{
		DefaultGenreCount: 5,
		TopPublishers:     10,
		FlowPublishers:    2,
		TopPlatforms:      3,
		TopGames:          5,
		HierarchyOrder:    []string{"genre", "platform", "year"},
		SampleCap:         2000,
		SampleSeed:        42,
	}
}

func fixture() []models.Record {
	mk := func(name, platform string, year int, genre, publisher string, na, eu, global float64) models.Record {
		return models.Record{
			Name: name, Platform: platform, Year: year, Genre: genre, Publisher: publisher,
			NASales: na, EUSales: eu, GlobalSales: global,
		}
	}
	return []models.Record{
		mk("Wii Sports", "Wii", 2006, "Sports", "Nintendo", 41.49, 29.02, 82.74),
		mk("GTA: San Andreas", "PS2", 2004, "Action", "Take-Two Interactive", 9.43, 0.4, 20.81),
		mk("Gran Turismo 3", "PS2", 2001, "Racing", "Sony Computer Entertainment", 6.85, 5.09, 14.98),
		mk("Mario Kart Wii", "Wii", 2008, "Racing", "Nintendo", 15.85, 12.88, 35.82),
		mk("Halo 3", "X360", 2007, "Shooter", "Microsoft Game Studios", 7.97, 2.81, 12.12),
		mk("GTA V", "PS3", 2013, "Action", "Take-Two Interactive", 7.01, 9.27, 21.4),
		mk("FIFA 16", "PS4", 2015, "Sports", "Electronic Arts", 1.11, 6.06, 8.57),
		mk("Need for Speed", "PS2", 2003, "Racing", "Electronic Arts", 3.27, 2.83, 7.2),
	}
}

func TestDefaults(t *testing.T) {
	panels, err := Defaults(testConfig())
	require.NoError(t, err)
	require.Len(t, panels, 13)

	seen := make(map[string]bool)
	for _, p := range panels {
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
		assert.NoError(t, p.Validate())
		assert.NotEmpty(t, p.Title)
	}

	treemap, ok := Find(panels, "market-treemap")
	require.True(t, ok)
	assert.Equal(t, ScopeFull, treemap.Scope)
	assert.Equal(t, aggregate.DefaultHierarchy, treemap.Aggregation.Dims)

	sunburst, ok := Find(panels, "sunburst")
	require.True(t, ok)
	assert.Equal(t, []models.Dimension{models.DimGenre, models.DimPlatform, models.DimYear}, sunburst.Aggregation.Dims)

	box, _ := Find(panels, "sales-by-genre")
	assert.Equal(t, PercentileClip(0.95), box.Options.Clip)
	violin, _ := Find(panels, "violin-by-genre")
	assert.Equal(t, FixedClip(5.0), violin.Options.Clip)
	scatter, _ := Find(panels, "na-vs-eu")
	assert.Equal(t, PercentileClip(0.99), scatter.Options.Clip)

	_, ok = Find(panels, "nope")
	assert.False(t, ok)
}

func TestDefaultsRejectsBadOrder(t *testing.T) {
	cfg := testConfig()
	cfg.HierarchyOrder = []string{"genre", "studio"}
	_, err := Defaults(cfg)
	assert.Error(t, err)
}

func TestBuildEveryDefault(t *testing.T) {
	rows := fixture()
	full := models.NewDataset(rows)
	panels, err := Defaults(testConfig())
	require.NoError(t, err)

	for _, p := range panels {
		t.Run(p.ID, func(t *testing.T) {
			res, err := Build(p, full, rows)
			require.NoError(t, err)
			assert.Equal(t, len(rows), res.InputRows)
			assert.False(t, res.Empty())
			assert.Empty(t, res.Advisories)
		})
	}
}

func TestBuildEmptyView(t *testing.T) {
	full := models.NewDataset(fixture())
	panels, err := Defaults(testConfig())
	require.NoError(t, err)

	for _, p := range panels {
		t.Run(p.ID, func(t *testing.T) {
			res, err := Build(p, full, nil)
			require.NoError(t, err)
			if p.Scope == ScopeFull {
				assert.False(t, res.Empty(), "full-scope panels ignore the selection")
				return
			}
			assert.True(t, res.Empty())
			assert.Contains(t, res.Advisories, AdvisoryNoRows)
			assert.Nil(t, res.YMax)
			assert.Nil(t, res.Trend)
		})
	}
}

func TestBuildTopPublishers(t *testing.T) {
	p, _ := Find(mustDefaults(t), "top-publishers")
	res, err := Build(p, nil, fixture())
	require.NoError(t, err)
	require.NotNil(t, res.Table)
	assert.Equal(t, "Nintendo", res.Table.Rows[0].Key(0))
	assert.InDelta(t, 82.74+35.82, res.Table.Rows[0].Value, 1e-9)
}

func TestBuildReleasesPerYearIsOrdered(t *testing.T) {
	p, _ := Find(mustDefaults(t), "releases-per-year")
	res, err := Build(p, nil, fixture())
	require.NoError(t, err)
	assert.Equal(t, []string{"2001", "2003", "2004", "2006", "2007", "2008", "2013", "2015"}, res.Table.Keys())
	assert.Equal(t, float64(len(fixture())), res.Table.Total())
}

func TestBuildPlatformTrend(t *testing.T) {
	p, _ := Find(mustDefaults(t), "platform-trend")
	res, err := Build(p, nil, fixture())
	require.NoError(t, err)

	// Top 3 platforms by sales: Wii, PS2, PS3; years 2001..2015.
	assert.Equal(t, 3*15, res.Table.Len())
	v, ok := res.Table.Lookup("PS3", "2001")
	require.True(t, ok)
	assert.Equal(t, 0.0, v)
	v, ok = res.Table.Lookup("PS2", "2003")
	require.True(t, ok)
	assert.Equal(t, 7.2, v)
	_, ok = res.Table.Lookup("X360", "2007")
	assert.False(t, ok)
}

func TestBuildPublisherFlow(t *testing.T) {
	p, _ := Find(mustDefaults(t), "publisher-flow")
	res, err := Build(p, nil, fixture())
	require.NoError(t, err)
	require.NotNil(t, res.Flow)

	var publishers []string
	for _, n := range res.Flow.Nodes {
		if n.Stage == models.DimPublisher {
			publishers = append(publishers, n.Label)
		}
	}
	assert.ElementsMatch(t, []string{"Nintendo", "Take-Two Interactive"}, publishers)
}

func TestBuildScatter(t *testing.T) {
	p, _ := Find(mustDefaults(t), "na-vs-eu")
	rows := fixture()
	res, err := Build(p, nil, rows)
	require.NoError(t, err)

	assert.Len(t, res.Records, len(rows))
	require.NotNil(t, res.YMax)
	assert.InDelta(t, aggregate.Quantile(aggregate.Values(rows, models.MetricEUSales), 0.99), *res.YMax, 1e-9)
	require.NotNil(t, res.Trend)
	assert.True(t, res.Trend.OK)
	assert.Positive(t, res.Trend.Slope)
}

func TestBuildViolinUsesFixedBound(t *testing.T) {
	p, _ := Find(mustDefaults(t), "violin-by-genre")
	res, err := Build(p, nil, fixture())
	require.NoError(t, err)
	require.NotNil(t, res.YMax)
	assert.Equal(t, 5.0, *res.YMax)
	assert.NotEmpty(t, res.Densities)
}

func TestBuildWithOrder(t *testing.T) {
	p, _ := Find(mustDefaults(t), "sunburst")
	p = WithOrder(p, []models.Dimension{models.DimPublisher, models.DimGenre})
	res, err := Build(p, nil, fixture())
	require.NoError(t, err)
	assert.Equal(t, "Publisher -> Genre", res.Hierarchy.Describe())

	bar, _ := Find(mustDefaults(t), "top-publishers")
	assert.Equal(t, bar, WithOrder(bar, []models.Dimension{models.DimYear}))
	assert.Equal(t, p, WithOrder(p, nil))
}

func TestBuildRejectsInvalid(t *testing.T) {
	_, err := Build(Descriptor{ID: "x", Aggregation: Aggregation{Op: OpTopN, Dims: []models.Dimension{models.DimGenre}}}, nil, fixture())
	assert.Error(t, err, "top_n without N")

	_, err = Build(Descriptor{ID: "x", Aggregation: Aggregation{Op: OpShare, Dims: []models.Dimension{models.DimYear}}}, nil, fixture())
	assert.Error(t, err, "share with one dimension")

	_, err = Build(Descriptor{ID: "x", Kind: Kind(99)}, nil, fixture())
	assert.Error(t, err)
}

func TestShareAdvisoryForZeroPeriod(t *testing.T) {
	d := Descriptor{
		ID:   "share",
		Kind: KindShare,
		Aggregation: Aggregation{
			Op:     OpShare,
			Dims:   []models.Dimension{models.DimYear, models.DimPlatform},
			Metric: models.MetricJPSales,
		},
	}
	res, err := Build(d, nil, fixture())
	require.NoError(t, err)
	for _, r := range res.Shares.Rows {
		assert.Equal(t, 0.0, r.Share)
	}
	assert.Contains(t, res.Advisories, fmt.Sprintf(AdvisoryZeroPeriods, 8))
}

func TestClipPolicyBound(t *testing.T) {
	tests := []struct {
		name   string
		policy ClipPolicy
		values []float64
		want   float64
		ok     bool
	}{
		{"full autoscales", ClipPolicy{}, []float64{1, 2, 3}, 0, false},
		{"fixed", FixedClip(5), []float64{1, 200}, 5, true},
		{"fixed without values", FixedClip(5), nil, 0, false},
		{"percentile", PercentileClip(0.5), []float64{1, 2, 3}, 2, true},
		{"percentile empty", PercentileClip(0.95), nil, 0, false},
		{"percentile single row", PercentileClip(0.95), []float64{7.5}, 7.5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.policy.Bound(tt.values)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"zero value", Options{}, false},
		{"focused percentile", Options{Clip: PercentileClip(0.95)}, false},
		{"focused fixed", Options{Clip: FixedClip(5)}, false},
		{"focused without bound", Options{Clip: ClipPolicy{Mode: ClipFocused}}, true},
		{"percentile above one", Options{Clip: PercentileClip(95)}, true},
		{"negative fixed", Options{Clip: ClipPolicy{Mode: ClipFocused, Fixed: -1, Percentile: 0.5}}, true},
		{"unknown clip", Options{Clip: ClipPolicy{Mode: ClipMode(7)}}, true},
		{"random with cap", Options{Sampling: Sampling{Mode: SampleRandom, Cap: 10}}, false},
		{"per category without cap", Options{Sampling: Sampling{Mode: SamplePerCategory}}, true},
		{"unknown sampling", Options{Sampling: Sampling{Mode: SamplingMode(9), Cap: 1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSamplingPerCategory(t *testing.T) {
	s := Sampling{Mode: SamplePerCategory, Cap: 1}
	out := s.Apply(fixture(), models.DimGenre)

	names := make([]string, len(out))
	for i, r := range out {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"Wii Sports", "GTA: San Andreas", "Gran Turismo 3", "Halo 3"}, names)
}

func TestSamplingRandom(t *testing.T) {
	rows := make([]models.Record, 100)
	for i := range rows {
		rows[i] = models.Record{Name: fmt.Sprintf("game-%03d", i), Year: 2000, Publisher: "p"}
	}
	s := Sampling{Mode: SampleRandom, Cap: 10, Seed: 42}

	first := s.Apply(rows, models.DimGenre)
	second := s.Apply(rows, models.DimGenre)
	require.Len(t, first, 10)
	assert.Equal(t, first, second, "same seed selects the same rows")
	for i := 1; i < len(first); i++ {
		assert.Less(t, first[i-1].Name, first[i].Name, "original order preserved")
	}

	small := s.Apply(rows[:5], models.DimGenre)
	assert.Len(t, small, 5)
	assert.Len(t, Sampling{}.Apply(rows, models.DimGenre), 100)
}

func TestScatterSamplingAdvisory(t *testing.T) {
	cfg := testConfig()
	cfg.SampleCap = 3
	panels, err := Defaults(cfg)
	require.NoError(t, err)
	p, _ := Find(panels, "na-vs-eu")

	res, err := Build(p, nil, fixture())
	require.NoError(t, err)
	assert.Len(t, res.Records, 3)
	assert.Contains(t, res.Advisories, fmt.Sprintf(AdvisorySampled, 3, len(fixture())))

	// The bound and the trendline come from every row, not the sample.
	full, err := Build(mustDefaults(t)[0], nil, fixture())
	require.NoError(t, err)
	require.NotNil(t, res.YMax)
	require.NotNil(t, res.Trend)
	assert.Equal(t, *full.YMax, *res.YMax)
	assert.Equal(t, *full.Trend, *res.Trend)

	xs := aggregate.Values(fixture(), models.MetricNASales)
	ys := aggregate.Values(fixture(), models.MetricEUSales)
	assert.Equal(t, aggregate.LinearFit(xs, ys), *res.Trend)
}

func mustDefaults(t *testing.T) []Descriptor {
	t.Helper()
	panels, err := Defaults(testConfig())
	require.NoError(t, err)
	return panels
}
