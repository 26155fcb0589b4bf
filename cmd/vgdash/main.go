package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/rewired-gh/vgdash/internal/config"
	"github.com/rewired-gh/vgdash/internal/dashboard"
	"github.com/rewired-gh/vgdash/internal/logger"
	"github.com/rewired-gh/vgdash/internal/metrics"
	"github.com/rewired-gh/vgdash/internal/panel"
	"github.com/rewired-gh/vgdash/internal/server"
	"github.com/rewired-gh/vgdash/internal/storage"
)

var (
	configPath  string
	datasetPath string
	genres      []string
	years       string
	order       []string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to configuration file (empty for defaults)")
	rootCmd.PersistentFlags().StringVarP(&datasetPath, "data", "d", "", "Path to the sales dataset, overriding dataset.path")
}

// addSelectionFlags registers the sidebar selection on commands that render
// a single page.
func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&genres, "genre", "g", nil, "Genres to include (default: the first genres in the dataset)")
	cmd.Flags().StringVarP(&years, "years", "y", "", "Inclusive year range, e.g. 2000-2010 (default: every year)")
	cmd.Flags().StringSliceVar(&order, "order", nil, "Sunburst hierarchy order, e.g. platform,genre")
}

var rootCmd = &cobra.Command{
	Use:           "vgdash",
	Short:         "Exploratory dashboard over video game sales",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// app is everything a command needs after configuration is loaded.
type app struct {
	cfg      *config.Config
	store    *storage.Store
	svc      *dashboard.Service
	metrics  *metrics.Metrics
	registry *prometheus.Registry
}

func setup() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if datasetPath != "" {
		cfg.Dataset.Path = datasetPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	if configPath != "" {
		logger.Info("Configuration loaded from %s", configPath)
	}

	store, err := storage.Open(cfg.Dataset.Path, cfg.Dataset.Format, cfg.Dataset.Table)
	if err != nil {
		return nil, err
	}
	panels, err := panel.Defaults(cfg.Dashboard)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	return &app{
		cfg:      cfg,
		store:    store,
		svc:      dashboard.New(store, panels, cfg.Dashboard.DefaultGenreCount, m),
		metrics:  m,
		registry: reg,
	}, nil
}

// load reads the dataset up front. A failed load halts the command.
func (a *app) load(ctx context.Context) error {
	ds, err := a.svc.Dataset(ctx)
	if err != nil {
		return err
	}
	st := a.store.Stats()
	logger.Info("Loaded %d records from %s (%d rows read, %d dropped for missing year or publisher, %d malformed)",
		ds.Len(), a.cfg.Dataset.Path, st.RawRows, st.DroppedMissing, st.RejectedMalformed)
	return nil
}

// selection builds a dashboard request from the selection flags, with the
// dataset defaults for anything left unset.
func (a *app) selection(ctx context.Context) (dashboard.Request, error) {
	def, err := a.svc.DefaultSpec(ctx)
	if err != nil {
		return dashboard.Request{}, err
	}
	q := url.Values{}
	for _, g := range genres {
		q.Add(server.ParamGenre, g)
	}
	if years != "" {
		q.Set(server.ParamYears, years)
	}
	for _, o := range order {
		q.Add(server.ParamOrder, strings.ToLower(o))
	}
	return server.ParseRequest(q, def)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
