package storage

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rewired-gh/vgdash/internal/models"

	_ "modernc.org/sqlite"
)

// DefaultTable is the SQLite table read when none is configured.
const DefaultTable = "vgsales"

// CSVSource reads a comma-delimited file with a header row.
type CSVSource struct {
	path  string
	comma rune
}

// NewCSVSource returns a source over the delimited file at path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path, comma: ','}
}

// Path returns the backing file.
func (c *CSVSource) Path() string {
	return c.path
}

// Load reads and cleans every row of the file in source order.
func (c *CSVSource) Load(ctx context.Context) ([]models.Record, LoadStats, error) {
	f, err := os.Open(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, LoadStats{}, &LoadError{Path: c.path, Err: ErrNotFound}
		}
		return nil, LoadStats{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return readCSV(ctx, f, c.comma)
}

func readCSV(ctx context.Context, r io.Reader, comma rune) ([]models.Record, LoadStats, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, LoadStats{}, errors.New("empty file: missing header row")
		}
		return nil, LoadStats{}, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	if err := checkColumns(func(col string) bool { _, ok := index[col]; return ok }); err != nil {
		return nil, LoadStats{}, err
	}

	var c collector
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, LoadStats{}, err
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, LoadStats{}, fmt.Errorf("failed to read row %d: %w", line, err)
		}
		c.add(line, func(col string) string {
			i := index[col]
			if i >= len(row) {
				return ""
			}
			return row[i]
		})
	}
	return c.records, c.stats, nil
}

func checkColumns(has func(col string) bool) error {
	var missing []string
	for _, col := range requiredColumns {
		if !has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// SQLiteSource reads the dataset from a table of a SQLite database file. The
// table must carry the same column names as the delimited file.
type SQLiteSource struct {
	path  string
	table string
}

// NewSQLiteSource returns a source over table in the database at path.
func NewSQLiteSource(path, table string) *SQLiteSource {
	if table == "" {
		table = DefaultTable
	}
	return &SQLiteSource{path: path, table: table}
}

// Path returns the backing database file.
func (s *SQLiteSource) Path() string {
	return s.path
}

// Load reads and cleans every row of the table in rowid order.
func (s *SQLiteSource) Load(ctx context.Context) ([]models.Record, LoadStats, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		// sql.Open would silently create an empty database.
		return nil, LoadStats{}, &LoadError{Path: s.path, Err: ErrNotFound}
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("open sqlite %s: %w", s.path, err)
	}
	defer func() { _ = db.Close() }()

	cols := make([]string, len(requiredColumns))
	for i, c := range requiredColumns {
		cols[i] = `CAST("` + c + `" AS TEXT)`
	}
	query := fmt.Sprintf(`SELECT %s FROM "%s" ORDER BY rowid`,
		strings.Join(cols, ", "), strings.ReplaceAll(s.table, `"`, `""`))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("query %s: %w", s.table, err)
	}
	defer func() { _ = rows.Close() }()

	var c collector
	line := 0
	for rows.Next() {
		line++
		cells := make([]sql.NullString, len(requiredColumns))
		dest := make([]any, len(cells))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, LoadStats{}, fmt.Errorf("scan row %d: %w", line, err)
		}
		c.add(line, func(col string) string {
			for i, rc := range requiredColumns {
				if rc == col {
					if !cells[i].Valid {
						return ""
					}
					return cells[i].String
				}
			}
			return ""
		})
	}
	if err := rows.Err(); err != nil {
		return nil, LoadStats{}, fmt.Errorf("read rows: %w", err)
	}
	return c.records, c.stats, nil
}
