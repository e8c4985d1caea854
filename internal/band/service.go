package band

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

const bandColumns = `id, name, active, origin, genres, formed_year, ordinal, created_at, updated_at`

// Service provides band catalog data operations.
type Service struct {
	db *sql.DB
}

// NewService creates a band catalog service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Create inserts a new band.
func (s *Service) Create(ctx context.Context, b *Band) error {
	if b.Name == "" {
		return fmt.Errorf("band name is required")
	}
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bands (id, name, active, origin, genres, formed_year, ordinal, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		b.ID, b.Name, boolToInt(b.Active), b.Origin,
		MarshalStringSlice(b.Genres), nullableInt(b.FormedYear), b.Ordinal,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("creating band: %w", err)
	}
	return nil
}

// GetByID retrieves a band by primary key.
func (s *Service) GetByID(ctx context.Context, id string) (*Band, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bandColumns+` FROM bands WHERE id = ?`, id)
	b, err := scanBand(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("band not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting band by id: %w", err)
	}
	return b, nil
}

// GetByName retrieves a band by its unique name.
// Returns nil, nil when no band matches.
func (s *Service) GetByName(ctx context.Context, name string) (*Band, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bandColumns+` FROM bands WHERE name = ?`, name)
	b, err := scanBand(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting band by name: %w", err)
	}
	return b, nil
}

// List returns all bands in dataset order.
func (s *Service) List(ctx context.Context) ([]Band, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bandColumns+` FROM bands ORDER BY ordinal`)
	if err != nil {
		return nil, fmt.Errorf("listing bands: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var bands []Band
	for rows.Next() {
		b, err := scanBand(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning band: %w", err)
		}
		bands = append(bands, *b)
	}
	return bands, rows.Err()
}

// Count returns the number of bands in the catalog.
func (s *Service) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bands`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting bands: %w", err)
	}
	return count, nil
}

// DistinctOrigins returns all distinct origin values, sorted.
func (s *Service) DistinctOrigins(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT origin FROM bands WHERE origin != '' ORDER BY origin`)
	if err != nil {
		return nil, fmt.Errorf("listing origins: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var origins []string
	for rows.Next() {
		var o string
		if err := rows.Scan(&o); err != nil {
			return nil, fmt.Errorf("scanning origin: %w", err)
		}
		origins = append(origins, o)
	}
	return origins, rows.Err()
}

// DistinctGenres returns all distinct genre values across the catalog,
// sorted. Genres are stored as JSON arrays, so the distinct set is
// collected in Go rather than SQL.
func (s *Service) DistinctGenres(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT genres FROM bands`)
	if err != nil {
		return nil, fmt.Errorf("listing genres: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	seen := make(map[string]struct{})
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning genres: %w", err)
		}
		for _, g := range UnmarshalStringSlice(raw) {
			if g != "" {
				seen[g] = struct{}{}
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	genres := make([]string, 0, len(seen))
	for g := range seen {
		genres = append(genres, g)
	}
	sort.Strings(genres)
	return genres, nil
}

// ReplaceAll swaps the entire catalog for the given bands in one
// transaction. Ordinals are assigned from slice order. Used by the
// dataset importer so readers never observe a half-imported catalog.
func (s *Service) ReplaceAll(ctx context.Context, bands []Band) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM bands`); err != nil {
		return fmt.Errorf("clearing bands: %w", err)
	}

	now := time.Now().UTC()
	for i := range bands {
		b := &bands[i]
		if b.Name == "" {
			return fmt.Errorf("band at ordinal %d has no name", i)
		}
		if b.ID == "" {
			b.ID = uuid.New().String()
		}
		b.Ordinal = i
		b.CreatedAt = now
		b.UpdatedAt = now

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO bands (id, name, active, origin, genres, formed_year, ordinal, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			b.ID, b.Name, boolToInt(b.Active), b.Origin,
			MarshalStringSlice(b.Genres), nullableInt(b.FormedYear), b.Ordinal,
			now.Format(time.RFC3339), now.Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("inserting band %q: %w", b.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing catalog replace: %w", err)
	}
	return nil
}

// scanBand scans a database row into a Band struct.
func scanBand(row interface{ Scan(...any) error }) (*Band, error) {
	var b Band
	var active int
	var genres string
	var formedYear sql.NullInt64
	var createdAt, updatedAt string

	err := row.Scan(
		&b.ID, &b.Name, &active, &b.Origin,
		&genres, &formedYear, &b.Ordinal,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Active = active != 0
	b.Genres = UnmarshalStringSlice(genres)
	if formedYear.Valid {
		b.FormedYear = int(formedYear.Int64)
	}
	b.CreatedAt = parseTime(createdAt)
	b.UpdatedAt = parseTime(updatedAt)

	return &b, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func nullableInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}

// parseTime parses a time string, handling both RFC3339 and SQLite datetime formats.
func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}
