// Package dashboard runs one request/response cycle of the dashboard: take a
// sidebar selection, filter the cached dataset and evaluate every panel.
//
// A Service never mutates the dataset. Each Evaluate call is a synchronous
// pass over the in-memory records; an empty selection produces empty panels
// and advisories, never an error. Only a failed dataset load is returned as an
// error, and callers treat it as fatal.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rewired-gh/vgdash/internal/filter"
	"github.com/rewired-gh/vgdash/internal/logger"
	"github.com/rewired-gh/vgdash/internal/metrics"
	"github.com/rewired-gh/vgdash/internal/models"
	"github.com/rewired-gh/vgdash/internal/panel"
	"github.com/rewired-gh/vgdash/internal/storage"
)

// ErrUnknownPanel is returned when a panel id is not part of the dashboard.
var ErrUnknownPanel = errors.New("unknown panel")

// Advisories shown above the panels.
const (
	AdvisoryNoGenres   = "No genres selected. Choose at least one genre in the sidebar."
	AdvisoryEmptyRange = "The selected year range is empty."
	AdvisoryNoMatches  = "No games match the selected filters."
)

// Service evaluates the dashboard's panels against the cached dataset.
type Service struct {
	store         *storage.Store
	panels        []panel.Descriptor
	defaultGenres int
	metrics       *metrics.Metrics
}

// New creates a Service. m may be nil.
func New(store *storage.Store, panels []panel.Descriptor, defaultGenres int, m *metrics.Metrics) *Service {
	return &Service{
		store:         store,
		panels:        panels,
		defaultGenres: defaultGenres,
		metrics:       m,
	}
}

// Request is a sidebar selection plus the chosen hierarchy ordering.
type Request struct {
	Spec  models.FilterSpec
	Order []models.Dimension
}

// PanelError represents a per-panel failure during evaluation
type PanelError struct {
	PanelID string
	Err     error
}

func (e PanelError) Error() string {
	return fmt.Sprintf("panel %s: %v", e.PanelID, e.Err)
}

// Page is one evaluated dashboard.
type Page struct {
	Spec       models.FilterSpec  `json:"spec"`
	Order      []models.Dimension `json:"order,omitempty"`
	Matched    int                `json:"matched"`
	Summary    string             `json:"summary"`
	Advisories []string           `json:"advisories"`
	Panels     []*panel.Result    `json:"panels"`
	Errors     []PanelError       `json:"-"`
}

// Choices are the values the sidebar offers.
type Choices struct {
	Genres        []string `json:"genres"`
	DefaultGenres []string `json:"default_genres"`
	YearMin       int      `json:"year_min"`
	YearMax       int      `json:"year_max"`
	Dimensions    []string `json:"dimensions"`
	Records       int      `json:"records"`
}

// Panels returns the dashboard's descriptors in display order.
func (s *Service) Panels() []panel.Descriptor {
	return s.panels
}

// Dataset returns the loaded dataset, loading it on first use.
func (s *Service) Dataset(ctx context.Context) (*models.Dataset, error) {
	ds, err := s.store.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	s.metrics.SetDatasetRecords(ds.Len())
	return ds, nil
}

// Options lists the sidebar choices derived from the dataset.
func (s *Service) Options(ctx context.Context) (*Choices, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	def := filter.DefaultSpec(ds, s.defaultGenres)

	dims := make([]string, 0, 4)
	for _, d := range []models.Dimension{models.DimPublisher, models.DimGenre, models.DimPlatform, models.DimYear} {
		dims = append(dims, d.String())
	}

	return &Choices{
		Genres:        ds.Genres(),
		DefaultGenres: def.Genres,
		YearMin:       def.YearMin,
		YearMax:       def.YearMax,
		Dimensions:    dims,
		Records:       ds.Len(),
	}, nil
}

// DefaultSpec returns the selection shown before the user changes anything.
func (s *Service) DefaultSpec(ctx context.Context) (models.FilterSpec, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return models.FilterSpec{}, err
	}
	return filter.DefaultSpec(ds, s.defaultGenres), nil
}

// Selection is what the sidebar reports about a filter without building any
// panel.
type Selection struct {
	Matched    int      `json:"matched"`
	Summary    string   `json:"summary"`
	Advisories []string `json:"advisories"`
}

// Select filters the dataset with spec and summarizes the match.
func (s *Service) Select(ctx context.Context, spec models.FilterSpec) (*Selection, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	view := filter.Apply(ds.Records(), spec)
	return newSelection(spec, view), nil
}

func newSelection(spec models.FilterSpec, view filter.View) *Selection {
	return &Selection{
		Matched:    len(view),
		Summary:    filter.Summary(view),
		Advisories: selectionAdvisories(spec, len(view)),
	}
}

// Evaluate filters the dataset with req and builds every panel.
func (s *Service) Evaluate(ctx context.Context, req Request) (*Page, error) {
	start := time.Now()
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}

	view := filter.Apply(ds.Records(), req.Spec)
	sel := newSelection(req.Spec, view)
	page := &Page{
		Spec:       req.Spec,
		Order:      req.Order,
		Matched:    sel.Matched,
		Summary:    sel.Summary,
		Advisories: sel.Advisories,
		Panels:     make([]*panel.Result, 0, len(s.panels)),
	}

	for _, d := range s.panels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := s.build(s.ordered(d, req.Order), ds, view)
		if err != nil {
			pe := PanelError{PanelID: d.ID, Err: err}
			logger.Warn("Failed to build panel: %v", pe)
			page.Errors = append(page.Errors, pe)
			page.Advisories = append(page.Advisories, fmt.Sprintf("%s could not be drawn: %v", d.Title, err))
			continue
		}
		page.Panels = append(page.Panels, res)
	}

	elapsed := time.Since(start)
	s.metrics.ObserveEvaluateLatency(elapsed)
	logger.Debug("Evaluated %d panels over %d of %d records in %v", len(page.Panels), len(view), ds.Len(), elapsed)
	return page, nil
}

// Panel filters the dataset with req and builds the single panel id.
func (s *Service) Panel(ctx context.Context, id string, req Request) (*panel.Result, error) {
	d, ok := panel.Find(s.panels, id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPanel, id)
	}
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	view := filter.Apply(ds.Records(), req.Spec)
	return s.build(s.ordered(d, req.Order), ds, view)
}

func (s *Service) build(d panel.Descriptor, ds *models.Dataset, view filter.View) (*panel.Result, error) {
	res, err := panel.Build(d, ds, view)
	switch {
	case err != nil:
		s.metrics.IncrementPanelBuild(d.ID, metrics.OutcomeError)
	case res.Empty():
		s.metrics.IncrementPanelBuild(d.ID, metrics.OutcomeEmpty)
	default:
		s.metrics.IncrementPanelBuild(d.ID, metrics.OutcomeOK)
	}
	return res, err
}

// ordered applies a user-chosen hierarchy ordering to the sunburst. The
// treemap and flow keep their fixed stages.
func (s *Service) ordered(d panel.Descriptor, order []models.Dimension) panel.Descriptor {
	if d.Kind != panel.KindSunburst {
		return d
	}
	return panel.WithOrder(d, order)
}

func selectionAdvisories(spec models.FilterSpec, matched int) []string {
	out := []string{}
	switch {
	case len(spec.Genres) == 0:
		out = append(out, AdvisoryNoGenres)
	case spec.YearMin > spec.YearMax:
		out = append(out, AdvisoryEmptyRange)
	case matched == 0:
		out = append(out, AdvisoryNoMatches)
	}
	return out
}
