package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// GeocodeRecord is one persisted geocoding result. NotFound marks a negative
// entry: the provider answered and found nothing, so there is no point in
// asking again soon.
type GeocodeRecord struct {
	Location string    `json:"location"`
	Lat      float64   `json:"lat"`
	Lon      float64   `json:"lon"`
	State    string    `json:"state,omitempty"`
	NotFound bool      `json:"not_found,omitempty"`
	Source   string    `json:"source,omitempty"`
	Created  time.Time `json:"created"`
}

// SQLGeocodeCache is a Postgres-backed cache mapping location strings to
// geocoding results, including negative results.
type SQLGeocodeCache struct {
	DB *sql.DB
}

// Open connects to Postgres via the pgx stdlib driver and verifies the
// connection.
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("verify postgres connection: %w", err)
	}

	return db, nil
}

// NewSQLGeocodeCache wraps an open database handle.
func NewSQLGeocodeCache(db *sql.DB) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db}
}

// EnsureSchema creates the cache table if it does not exist.
func (s *SQLGeocodeCache) EnsureSchema(ctx context.Context) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	q := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		location   TEXT PRIMARY KEY,
		lat        DOUBLE PRECISION NOT NULL,
		lon        DOUBLE PRECISION NOT NULL,
		state      TEXT NOT NULL DEFAULT '',
		not_found  BOOLEAN NOT NULL DEFAULT FALSE,
		source     TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`
	if _, err := s.DB.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("geocode cache: create table: %w", err)
	}
	return nil
}

// Get fetches the cached record for a location. The second return is false
// when the location has never been cached.
func (s *SQLGeocodeCache) Get(ctx context.Context, location string) (*GeocodeRecord, bool, error) {
	if s.DB == nil {
		return nil, false, errors.New("geocode cache: db is nil")
	}

	location = strings.TrimSpace(location)
	if location == "" {
		return nil, false, nil
	}

	q := `
	SELECT location, lat, lon, state, not_found, source, created_at
	FROM geocode_cache
	WHERE location = $1;
	`

	var rec GeocodeRecord
	err := s.DB.QueryRowContext(ctx, q, location).Scan(
		&rec.Location, &rec.Lat, &rec.Lon, &rec.State,
		&rec.NotFound, &rec.Source, &rec.Created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}

	return &rec, true, nil
}

// Put stores or replaces the record for a location.
func (s *SQLGeocodeCache) Put(ctx context.Context, rec GeocodeRecord) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}
	if strings.TrimSpace(rec.Location) == "" {
		return fmt.Errorf("insert geocode cache: empty location key")
	}

	q := `
	INSERT INTO geocode_cache (location, lat, lon, state, not_found, source)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (location) DO UPDATE
	SET lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		state = EXCLUDED.state,
		not_found = EXCLUDED.not_found,
		source = EXCLUDED.source,
		created_at = now();
	`
	if _, err := s.DB.ExecContext(ctx, q,
		rec.Location, rec.Lat, rec.Lon, rec.State, rec.NotFound, rec.Source); err != nil {
		return fmt.Errorf("insert geocode cache location=%q: %w", rec.Location, err)
	}

	return nil
}
