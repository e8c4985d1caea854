// Package dataset imports the static band CSV into the catalog. The
// expected layout is a header row of Band, Active, Origin, Genres and
// an optional Formed column; genres are a comma-separated list inside
// one field.
package dataset

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Weird-ragazzo/bandrec/internal/band"
)

// Stats summarizes one completed import.
type Stats struct {
	ID          string    `json:"id"`
	SourcePath  string    `json:"source_path"`
	BandCount   int       `json:"band_count"`
	OriginCount int       `json:"origin_count"`
	GenreCount  int       `json:"genre_count"`
	ImportedAt  time.Time `json:"imported_at"`
}

// Importer parses band CSV files and replaces the catalog with their
// contents.
type Importer struct {
	db     *sql.DB
	bands  *band.Service
	logger *slog.Logger
}

// NewImporter creates a dataset importer.
func NewImporter(db *sql.DB, bands *band.Service, logger *slog.Logger) *Importer {
	return &Importer{db: db, bands: bands, logger: logger}
}

// Import reads the CSV at path, replaces the catalog in one transaction,
// and records import stats.
func (im *Importer) Import(ctx context.Context, path string) (*Stats, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path comes from trusted config
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close() //nolint:errcheck

	bands, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing dataset %s: %w", path, err)
	}

	if err := im.bands.ReplaceAll(ctx, bands); err != nil {
		return nil, fmt.Errorf("replacing catalog: %w", err)
	}

	stats := &Stats{
		ID:          uuid.New().String(),
		SourcePath:  path,
		BandCount:   len(bands),
		OriginCount: countDistinct(bands, func(b band.Band) []string { return []string{b.Origin} }),
		GenreCount:  countDistinct(bands, func(b band.Band) []string { return b.Genres }),
		ImportedAt:  time.Now().UTC(),
	}
	if err := im.record(ctx, stats); err != nil {
		// The catalog swap already succeeded; a failed stats row is not fatal.
		im.logger.Warn("recording import stats", "error", err)
	}

	im.logger.Info("dataset imported",
		slog.String("path", path),
		slog.Int("bands", stats.BandCount),
		slog.Int("origins", stats.OriginCount),
		slog.Int("genres", stats.GenreCount),
	)
	return stats, nil
}

// LastImport returns the most recent import stats, or nil, nil if no
// import has been recorded.
func (im *Importer) LastImport(ctx context.Context) (*Stats, error) {
	row := im.db.QueryRowContext(ctx, `
		SELECT id, source_path, band_count, origin_count, genre_count, imported_at
		FROM imports ORDER BY imported_at DESC LIMIT 1`)

	var s Stats
	var importedAt string
	err := row.Scan(&s.ID, &s.SourcePath, &s.BandCount, &s.OriginCount, &s.GenreCount, &importedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading last import: %w", err)
	}
	s.ImportedAt, _ = time.Parse(time.RFC3339, importedAt)
	return &s, nil
}

func (im *Importer) record(ctx context.Context, s *Stats) error {
	_, err := im.db.ExecContext(ctx, `
		INSERT INTO imports (id, source_path, band_count, origin_count, genre_count, imported_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.SourcePath, s.BandCount, s.OriginCount, s.GenreCount,
		s.ImportedAt.Format(time.RFC3339),
	)
	return err
}

// Parse reads band rows from CSV data. The header row is required and
// column order is taken from it; Band, Active, Origin and Genres must
// all be present.
func Parse(r io.Reader) ([]band.Band, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("dataset is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var bands []band.Band
	seen := make(map[string]int)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		b, err := parseRow(record, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if prev, dup := seen[b.Name]; dup {
			return nil, fmt.Errorf("line %d: duplicate band %q (first seen on line %d)", line, b.Name, prev)
		}
		seen[b.Name] = line
		bands = append(bands, b)
	}

	if len(bands) == 0 {
		return nil, fmt.Errorf("dataset has no band rows")
	}
	return bands, nil
}

// columns maps header names to field positions.
type columns struct {
	name   int
	active int
	origin int
	genres int
	formed int // -1 when absent
}

func mapColumns(header []string) (columns, error) {
	cols := columns{name: -1, active: -1, origin: -1, genres: -1, formed: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "band", "name":
			cols.name = i
		case "active":
			cols.active = i
		case "origin":
			cols.origin = i
		case "genres":
			cols.genres = i
		case "formed", "formed_year":
			cols.formed = i
		}
	}
	for _, req := range []struct {
		name string
		idx  int
	}{
		{"Band", cols.name},
		{"Active", cols.active},
		{"Origin", cols.origin},
		{"Genres", cols.genres},
	} {
		if req.idx < 0 {
			return cols, fmt.Errorf("dataset header is missing column %q", req.name)
		}
	}
	return cols, nil
}

func parseRow(record []string, cols columns) (band.Band, error) {
	var b band.Band

	field := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	b.Name = field(cols.name)
	if b.Name == "" {
		return b, fmt.Errorf("band name is empty")
	}
	b.Origin = field(cols.origin)

	active, err := parseActive(field(cols.active))
	if err != nil {
		return b, fmt.Errorf("band %q: %w", b.Name, err)
	}
	b.Active = active

	b.Genres = splitGenres(field(cols.genres))

	if raw := field(cols.formed); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return b, fmt.Errorf("band %q: invalid formed year %q", b.Name, raw)
		}
		b.FormedYear = year
	}

	return b, nil
}

func parseActive(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0", "":
		return false, nil
	}
	return false, fmt.Errorf("invalid active value %q", s)
}

// splitGenres splits a comma-separated genre field, trimming whitespace
// and dropping empties.
func splitGenres(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if g := strings.TrimSpace(p); g != "" {
			genres = append(genres, g)
		}
	}
	if len(genres) == 0 {
		return nil
	}
	return genres
}

func countDistinct(bands []band.Band, get func(band.Band) []string) int {
	set := make(map[string]struct{})
	for _, b := range bands {
		for _, v := range get(b) {
			if v != "" {
				set[v] = struct{}{}
			}
		}
	}
	return len(set)
}
