// Package storage loads the sales dataset from its backing source and keeps
// the cleaned result for the lifetime of the process.
//
// A Store is the single owned copy of the dataset. It is populated on first
// access and never invalidated: repeated calls return the identical
// *models.Dataset without re-reading the source. Loading is fatal on failure;
// there is no partial-dataset mode.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rewired-gh/vgdash/internal/models"
)

// ErrNotFound is returned (wrapped in a LoadError) when the backing file is absent.
var ErrNotFound = errors.New("dataset source not found")

// LoadError reports a failure to produce the dataset. It is fatal for the
// dashboard.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load dataset %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Source reads raw rows and returns cleaned records.
type Source interface {
	Load(ctx context.Context) ([]models.Record, LoadStats, error)
	Path() string
}

// LoadStats counts what the cleaning rules did to the raw rows.
type LoadStats struct {
	RawRows           int
	DroppedMissing    int // rows missing year or publisher
	RejectedMalformed int
	Kept              int
}

// Store holds the once-loaded dataset.
type Store struct {
	source Source

	mu      sync.Mutex
	loaded  bool
	dataset *models.Dataset
	stats   LoadStats
	err     error
}

// New creates a Store over source. Nothing is read until Dataset is called.
func New(source Source) *Store {
	return &Store{source: source}
}

// Open picks a source for path by format ("csv", "sqlite" or "auto", which
// chooses by file extension) and returns a Store over it.
func Open(path, format, table string) (*Store, error) {
	src, err := NewSource(path, format, table)
	if err != nil {
		return nil, err
	}
	return New(src), nil
}

// NewSource builds the Source for path.
func NewSource(path, format, table string) (Source, error) {
	switch strings.ToLower(format) {
	case "", "auto":
		switch strings.ToLower(filepath.Ext(path)) {
		case ".db", ".sqlite", ".sqlite3":
			return NewSQLiteSource(path, table), nil
		}
		return NewCSVSource(path), nil
	case "csv":
		return NewCSVSource(path), nil
	case "sqlite":
		return NewSQLiteSource(path, table), nil
	}
	return nil, fmt.Errorf("unknown dataset format %q", format)
}

// Dataset returns the cleaned dataset, loading it on first call.
// A failed load is remembered; callers are expected to halt. A load abandoned
// because ctx ended is not remembered, and the next call reads the source again.
func (s *Store) Dataset(ctx context.Context) (*models.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.dataset, s.err
	}

	ds, stats, err := s.load(ctx)
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	s.loaded = true
	s.dataset, s.stats, s.err = ds, stats, err
	return s.dataset, s.err
}

func (s *Store) load(ctx context.Context) (*models.Dataset, LoadStats, error) {
	path := s.source.Path()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, LoadStats{}, &LoadError{Path: path, Err: ErrNotFound}
		}
		return nil, LoadStats{}, &LoadError{Path: path, Err: err}
	}

	records, stats, err := s.source.Load(ctx)
	if err != nil {
		var le *LoadError
		if !errors.As(err, &le) {
			err = &LoadError{Path: path, Err: err}
		}
		return nil, LoadStats{}, err
	}
	return models.NewDataset(records), stats, nil
}

// Stats returns the cleaning counters of the completed load.
func (s *Store) Stats() LoadStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
