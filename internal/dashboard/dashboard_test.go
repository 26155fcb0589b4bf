package dashboard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/vgdash/internal/config"
	"github.com/rewired-gh/vgdash/internal/metrics"
	"github.com/rewired-gh/vgdash/internal/models"
	"github.com/rewired-gh/vgdash/internal/panel"
	"github.com/rewired-gh/vgdash/internal/storage"
)

const csvData = `Rank,Name,Platform,Year,Genre,Publisher,NA_Sales,EU_Sales,JP_Sales,Other_Sales,Global_Sales
1,Wii Sports,Wii,2006,Sports,Nintendo,41.49,29.02,3.77,8.46,82.74
2,Super Mario Bros.,NES,1985,Platform,Nintendo,29.08,3.58,6.81,0.77,40.24
3,Mario Kart Wii,Wii,2008,Racing,Nintendo,15.85,12.88,3.79,3.31,35.82
4,Pokemon Red/Pokemon Blue,GB,1996,Role-Playing,Nintendo,11.27,8.89,10.22,1,31.37
5,Tetris,GB,1989,Puzzle,Nintendo,23.2,2.26,4.22,0.58,30.26
6,Duck Hunt,NES,1984,Shooter,Nintendo,26.93,0.63,0.28,0.47,28.31
7,Grand Theft Auto V,PS3,2013,Action,Take-Two Interactive,7.01,9.27,0.97,4.14,21.4
8,Madden NFL 2004,PS2,N/A,Sports,Electronic Arts,4.26,0.26,0.01,0.71,5.23
9,Call of Duty: Black Ops,X360,2010,Shooter,Activision,9.67,3.73,0.11,1.13,14.64
10,FIFA 16,PS4,2015,Sports,Electronic Arts,1.11,6.06,0.06,1.26,8.57
`

func newService(t *testing.T, m *metrics.Metrics) *Service {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vgsales.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvData), 0o644))

	cfg := config.DashboardConfig{
		DefaultGenreCount: 5,
		TopPublishers:     10,
		FlowPublishers:    5,
		TopPlatforms:      12,
		TopGames:          20,
		HierarchyOrder:    []string{"genre", "platform", "year"},
		SampleCap:         2000,
		SampleSeed:        42,
	}
	panels, err := panel.Defaults(cfg)
	require.NoError(t, err)

	store, err := storage.Open(path, "csv", "")
	require.NoError(t, err)
	return New(store, panels, cfg.DefaultGenreCount, m)
}

func TestOptions(t *testing.T) {
	svc := newService(t, nil)
	choices, err := svc.Options(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Sports", "Platform", "Racing", "Role-Playing", "Puzzle", "Shooter", "Action"}, choices.Genres)
	assert.Equal(t, []string{"Sports", "Platform", "Racing", "Role-Playing", "Puzzle"}, choices.DefaultGenres)
	assert.Equal(t, 1984, choices.YearMin)
	assert.Equal(t, 2015, choices.YearMax)
	assert.Equal(t, 9, choices.Records)
	assert.Contains(t, choices.Dimensions, "publisher")
}

func TestEvaluateDefaultSelection(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	svc := newService(t, m)
	ctx := context.Background()

	spec, err := svc.DefaultSpec(ctx)
	require.NoError(t, err)

	page, err := svc.Evaluate(ctx, Request{Spec: spec})
	require.NoError(t, err)

	assert.Equal(t, 6, page.Matched)
	assert.Equal(t, "6 games found based on selected filters.", page.Summary)
	assert.Empty(t, page.Advisories)
	assert.Empty(t, page.Errors)
	require.Len(t, page.Panels, len(svc.Panels()))
	for i, res := range page.Panels {
		assert.Equal(t, svc.Panels()[i].ID, res.Panel.ID)
	}

	assert.Equal(t, 9.0, testutil.ToFloat64(m.DatasetRecords))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PanelBuilds.WithLabelValues("top-games", metrics.OutcomeOK)))
}

func TestEvaluateEmptySelection(t *testing.T) {
	svc := newService(t, nil)
	page, err := svc.Evaluate(context.Background(), Request{Spec: models.FilterSpec{YearMin: 1980, YearMax: 2020}})
	require.NoError(t, err)

	assert.Equal(t, 0, page.Matched)
	assert.Equal(t, []string{AdvisoryNoGenres}, page.Advisories)
	for _, res := range page.Panels {
		if res.Panel.Scope == panel.ScopeFull {
			assert.False(t, res.Empty(), res.Panel.ID)
			continue
		}
		assert.True(t, res.Empty(), res.Panel.ID)
	}
}

func TestEvaluateNoMatches(t *testing.T) {
	svc := newService(t, nil)
	spec := models.FilterSpec{Genres: []string{"Puzzle"}, YearMin: 2000, YearMax: 2010}
	page, err := svc.Evaluate(context.Background(), Request{Spec: spec})
	require.NoError(t, err)
	assert.Equal(t, []string{AdvisoryNoMatches}, page.Advisories)

	spec = models.FilterSpec{Genres: []string{"Puzzle"}, YearMin: 2010, YearMax: 2000}
	page, err = svc.Evaluate(context.Background(), Request{Spec: spec})
	require.NoError(t, err)
	assert.Equal(t, []string{AdvisoryEmptyRange}, page.Advisories)
}

func TestSelectBuildsNoPanels(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	svc := newService(t, m)
	spec := models.FilterSpec{Genres: []string{"Shooter"}, YearMin: 1980, YearMax: 2020}

	sel, err := svc.Select(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, 2, sel.Matched)
	assert.Equal(t, "2 games found based on selected filters.", sel.Summary)
	assert.Empty(t, sel.Advisories)
	assert.Equal(t, 0, testutil.CollectAndCount(m.PanelBuilds))

	sel, err = svc.Select(context.Background(), models.FilterSpec{YearMin: 1980, YearMax: 2020})
	require.NoError(t, err)
	assert.Equal(t, []string{AdvisoryNoGenres}, sel.Advisories)
}

func TestPanelWithOrder(t *testing.T) {
	svc := newService(t, nil)
	spec := models.FilterSpec{Genres: []string{"Sports", "Shooter"}, YearMin: 1980, YearMax: 2020}
	order := []models.Dimension{models.DimPlatform, models.DimGenre}

	res, err := svc.Panel(context.Background(), "sunburst", Request{Spec: spec, Order: order})
	require.NoError(t, err)
	require.NotNil(t, res.Hierarchy)
	assert.Equal(t, "Platform -> Genre", res.Hierarchy.Describe())

	flow, err := svc.Panel(context.Background(), "publisher-flow", Request{Spec: spec, Order: order})
	require.NoError(t, err)
	assert.Equal(t, []models.Dimension{models.DimPublisher, models.DimGenre, models.DimPlatform}, flow.Flow.Stages)
}

func TestPanelUnknown(t *testing.T) {
	svc := newService(t, nil)
	_, err := svc.Panel(context.Background(), "pie", Request{})
	assert.True(t, errors.Is(err, ErrUnknownPanel))
}

func TestLoadErrorIsFatal(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "missing.csv"), "auto", "")
	require.NoError(t, err)
	svc := New(store, nil, 5, nil)

	_, err = svc.Evaluate(context.Background(), Request{})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = svc.Options(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBrokenPanelBecomesAdvisory(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	svc := newService(t, m)
	svc.panels = append(svc.panels, panel.Descriptor{
		ID:          "broken",
		Title:       "Broken",
		Aggregation: panel.Aggregation{Op: panel.OpTopN, Dims: []models.Dimension{models.DimGenre}},
	})

	spec, err := svc.DefaultSpec(context.Background())
	require.NoError(t, err)
	page, err := svc.Evaluate(context.Background(), Request{Spec: spec})
	require.NoError(t, err)

	require.Len(t, page.Errors, 1)
	assert.Equal(t, "broken", page.Errors[0].PanelID)
	assert.Len(t, page.Panels, len(svc.panels)-1)
	require.Len(t, page.Advisories, 1)
	assert.Contains(t, page.Advisories[0], "Broken could not be drawn")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PanelBuilds.WithLabelValues("broken", metrics.OutcomeError)))
}
