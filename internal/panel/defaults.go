package panel

import (
	"fmt"

	"github.com/rewired-gh/vgdash/internal/aggregate"
	"github.com/rewired-gh/vgdash/internal/config"
	"github.com/rewired-gh/vgdash/internal/models"
)

// Clip bounds of the default panels. Box plots use a percentile so the bound
// follows the selection, the violin uses a fixed ceiling so its density
// curves stay comparable across genres, and the scatter keeps all but the top
// percent of points in frame.
const (
	boxClipPercentile     = 0.95
	violinClipMax         = 5.0
	scatterClipPercentile = 0.99
)

// Defaults returns the dashboard's panels in display order.
func Defaults(cfg config.DashboardConfig) ([]Descriptor, error) {
	order, err := models.ParseDimensions(cfg.HierarchyOrder)
	if err != nil {
		return nil, fmt.Errorf("hierarchy order: %w", err)
	}

	panels := []Descriptor{
		{
			ID:          "na-vs-eu",
			Title:       "North America vs. Europe Sales",
			Description: "Relationship between NA_Sales and EU_Sales for the selected genres and years.",
			Kind:        KindScatter,
			Aggregation: Aggregation{
				Op:      OpRecords,
				Dims:    []models.Dimension{models.DimGenre},
				Metric:  models.MetricGlobalSales,
				Metrics: []models.Metric{models.MetricNASales, models.MetricEUSales},
			},
			Encoding: Encoding{X: "NA_Sales", Y: "EU_Sales", Color: "Genre"},
			Options: Options{
				SizeByMetric: true,
				Trendline:    true,
				Clip:         PercentileClip(scatterClipPercentile),
				Sampling:     Sampling{Mode: SampleRandom, Cap: cfg.SampleCap, Seed: cfg.SampleSeed},
			},
		},
		{
			ID:          "sales-by-genre",
			Title:       "Global Sales Distribution by Genre",
			Description: "Median, quartiles and outliers of Global_Sales per selected genre.",
			Kind:        KindBox,
			Aggregation: Aggregation{
				Op:     OpDistribution,
				Dims:   []models.Dimension{models.DimGenre},
				Metric: models.MetricGlobalSales,
			},
			Encoding: Encoding{X: "Genre", Y: "Global_Sales", Color: "Genre"},
			Options:  Options{Clip: PercentileClip(boxClipPercentile)},
		},
		{
			ID:          "market-treemap",
			Title:       "Market Share Hierarchy: Publisher -> Genre -> Platform",
			Description: "Which publishers and platforms dominate the entire (unfiltered) market.",
			Kind:        KindTreemap,
			Scope:       ScopeFull,
			Aggregation: Aggregation{
				Op:     OpHierarchy,
				Dims:   append([]models.Dimension(nil), aggregate.DefaultHierarchy...),
				Metric: models.MetricGlobalSales,
			},
			Encoding: Encoding{Y: "Global_Sales"},
		},
		{
			ID:          "top-publishers",
			Title:       fmt.Sprintf("Top %d Publishers", cfg.TopPublishers),
			Description: "Publishers ranked by summed Global_Sales.",
			Kind:        KindBar,
			Aggregation: Aggregation{
				Op:     OpTopN,
				Dims:   []models.Dimension{models.DimPublisher},
				Metric: models.MetricGlobalSales,
				N:      cfg.TopPublishers,
			},
			Encoding: Encoding{X: "Publisher", Y: "Global_Sales"},
		},
		{
			ID:          "releases-per-year",
			Title:       "Game Releases per Year",
			Description: "Number of releases in the selection for each year.",
			Kind:        KindHistogram,
			Aggregation: Aggregation{
				Op:     OpGroupSum,
				Dims:   []models.Dimension{models.DimYear},
				Metric: models.MetricCount,
			},
			Encoding: Encoding{X: "Year", Y: "Count"},
		},
		{
			ID:          "regional-correlation",
			Title:       "Sales Correlation Between Regions",
			Description: "Pearson correlation of the regional sales columns.",
			Kind:        KindHeatmap,
			Aggregation: Aggregation{
				Op:      OpCorrelation,
				Metric:  models.MetricGlobalSales,
				Metrics: models.RegionalMetrics(),
			},
			Encoding: Encoding{X: "Region", Y: "Region", Color: "Correlation"},
		},
		{
			ID:          "violin-by-genre",
			Title:       "Global Sales Density by Genre",
			Description: "Kernel density of Global_Sales per selected genre.",
			Kind:        KindViolin,
			Aggregation: Aggregation{
				Op:     OpDensity,
				Dims:   []models.Dimension{models.DimGenre},
				Metric: models.MetricGlobalSales,
			},
			Encoding: Encoding{X: "Genre", Y: "Global_Sales", Color: "Genre"},
			Options:  Options{Clip: FixedClip(violinClipMax)},
		},
		{
			ID:          "sunburst",
			Title:       "Sales Hierarchy",
			Description: "Global_Sales rolled up along the chosen dimension order.",
			Kind:        KindSunburst,
			Aggregation: Aggregation{
				Op:     OpHierarchy,
				Dims:   order,
				Metric: models.MetricGlobalSales,
			},
			Encoding: Encoding{Y: "Global_Sales"},
		},
		{
			ID:          "regional-profile",
			Title:       "Regional Sales Profile by Genre",
			Description: "Summed sales of each region for every selected genre.",
			Kind:        KindParallel,
			Aggregation: Aggregation{
				Op:     OpProfile,
				Dims:   []models.Dimension{models.DimGenre},
				Metric: models.MetricGlobalSales,
				Metrics: []models.Metric{
					models.MetricNASales, models.MetricEUSales, models.MetricJPSales, models.MetricOtherSales,
				},
			},
			Encoding: Encoding{Color: "Genre"},
		},
		{
			ID:          "platform-trend",
			Title:       fmt.Sprintf("Sales of the Top %d Platforms by Year", cfg.TopPlatforms),
			Description: "Stacked Global_Sales per year; years without releases count as zero.",
			Kind:        KindArea,
			Aggregation: Aggregation{
				Op:     OpDenseFill,
				Dims:   []models.Dimension{models.DimPlatform, models.DimYear},
				Metric: models.MetricGlobalSales,
				N:      cfg.TopPlatforms,
			},
			Encoding: Encoding{X: "Year", Y: "Global_Sales", Color: "Platform"},
		},
		{
			ID:          "platform-share",
			Title:       "Platform Share of Yearly Sales",
			Description: "Percentage of each year's Global_Sales taken by every platform.",
			Kind:        KindShare,
			Aggregation: Aggregation{
				Op:     OpShare,
				Dims:   []models.Dimension{models.DimYear, models.DimPlatform},
				Metric: models.MetricGlobalSales,
			},
			Encoding: Encoding{X: "Year", Y: "Share", Color: "Platform"},
		},
		{
			ID:          "publisher-flow",
			Title:       fmt.Sprintf("Sales Flow of the Top %d Publishers", cfg.FlowPublishers),
			Description: "Global_Sales flowing from publishers through genres to platforms.",
			Kind:        KindFlow,
			Aggregation: Aggregation{
				Op:     OpFlow,
				Dims:   []models.Dimension{models.DimPublisher, models.DimGenre, models.DimPlatform},
				Metric: models.MetricGlobalSales,
				N:      cfg.FlowPublishers,
			},
			Encoding: Encoding{Color: "Stage"},
		},
		{
			ID:          "top-games",
			Title:       fmt.Sprintf("Top %d Games", cfg.TopGames),
			Description: "Best-selling individual releases in the selection.",
			Kind:        KindBar,
			Aggregation: Aggregation{
				Op:     OpTopRecords,
				Metric: models.MetricGlobalSales,
				N:      cfg.TopGames,
			},
			Encoding: Encoding{X: "Global_Sales", Y: "Name", Color: "Platform"},
		},
	}

	for _, p := range panels {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	return panels, nil
}

// Find returns the panel with id.
func Find(panels []Descriptor, id string) (Descriptor, bool) {
	for _, p := range panels {
		if p.ID == id {
			return p, true
		}
	}
	return Descriptor{}, false
}
