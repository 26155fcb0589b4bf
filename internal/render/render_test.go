package render

import (
	"bytes"
	"testing"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/vgdash/internal/config"
	"github.com/rewired-gh/vgdash/internal/dashboard"
	"github.com/rewired-gh/vgdash/internal/models"
	"github.com/rewired-gh/vgdash/internal/panel"
)

func records() []models.Record {
	return []models.Record{
		{Name: "Wii Sports", Platform: "Wii", Year: 2006, Genre: "Sports", Publisher: "Nintendo", NASales: 41.49, EUSales: 29.02, JPSales: 3.77, OtherSales: 8.46, GlobalSales: 82.74},
		{Name: "Mario Kart Wii", Platform: "Wii", Year: 2008, Genre: "Racing", Publisher: "Nintendo", NASales: 15.85, EUSales: 12.88, JPSales: 3.79, OtherSales: 3.31, GlobalSales: 35.82},
		{Name: "Gran Turismo 3", Platform: "PS2", Year: 2001, Genre: "Racing", Publisher: "Sony Computer Entertainment", NASales: 6.85, EUSales: 5.09, JPSales: 1.87, OtherSales: 1.16, GlobalSales: 14.98},
		{Name: "FIFA 16", Platform: "PS4", Year: 2015, Genre: "Sports", Publisher: "Electronic Arts", NASales: 1.11, EUSales: 6.06, JPSales: 0.06, OtherSales: 1.26, GlobalSales: 8.57},
		{Name: "Racing Arcade", Platform: "Arcade", Year: 1995, Genre: "Arcade", Publisher: "Sega", NASales: 0.5, EUSales: 0.2, JPSales: 0.9, OtherSales: 0.1, GlobalSales: 1.7},
	}
}

func buildPage(t *testing.T, view []models.Record) *dashboard.Page {
	t.Helper()
	panels, err := panel.Defaults(config.DashboardConfig{
		TopPublishers:  10,
		FlowPublishers: 5,
		TopPlatforms:   12,
		TopGames:       20,
		HierarchyOrder: []string{"genre", "platform", "year"},
		SampleCap:      100,
		SampleSeed:     1,
	})
	require.NoError(t, err)

	full := models.NewDataset(records())
	page := &dashboard.Page{}
	for _, p := range panels {
		res, err := panel.Build(p, full, view)
		require.NoError(t, err)
		page.Panels = append(page.Panels, res)
	}
	return page
}

func TestWriteRendersEveryPanel(t *testing.T) {
	page := buildPage(t, records())

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, page))
	html := buf.String()

	assert.Contains(t, html, PageTitle)
	for _, title := range []string{
		"North America vs. Europe Sales",
		"Global Sales Distribution by Genre",
		"Top 10 Publishers",
		"Game Releases per Year",
		"Sales Correlation Between Regions",
		"Regional Sales Profile by Genre",
		"Platform Share of Yearly Sales",
		"Top 20 Games",
	} {
		assert.Contains(t, html, title)
	}
	assert.Contains(t, html, "genre:Arcade")
	assert.Contains(t, html, "platform:Arcade")
	assert.Contains(t, html, "p.name.slice(i + 1)")
}

func TestWriteEmptySelection(t *testing.T) {
	page := buildPage(t, nil)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, page))
	assert.Contains(t, buf.String(), panel.AdvisoryNoRows)
}

func TestChartKinds(t *testing.T) {
	page := buildPage(t, records())
	byID := make(map[string]*panel.Result)
	for _, res := range page.Panels {
		byID[res.Panel.ID] = res
	}

	assert.IsType(t, &charts.Scatter{}, Chart(byID["na-vs-eu"]))
	assert.IsType(t, &charts.BoxPlot{}, Chart(byID["sales-by-genre"]))
	assert.IsType(t, &charts.Sunburst{}, Chart(byID["market-treemap"]))
	assert.IsType(t, &charts.Bar{}, Chart(byID["top-publishers"]))
	assert.IsType(t, &charts.HeatMap{}, Chart(byID["regional-correlation"]))
	assert.IsType(t, &charts.Line{}, Chart(byID["violin-by-genre"]))
	assert.IsType(t, &charts.Parallel{}, Chart(byID["regional-profile"]))
	assert.IsType(t, &charts.Line{}, Chart(byID["platform-trend"]))
	assert.IsType(t, &charts.Bar{}, Chart(byID["platform-share"]))
	assert.IsType(t, &charts.Sankey{}, Chart(byID["publisher-flow"]))
}

func TestSymbolSize(t *testing.T) {
	assert.Equal(t, 4, symbolSize(0))
	assert.Equal(t, 10, symbolSize(3))
	assert.Equal(t, 40, symbolSize(82.74))
}
