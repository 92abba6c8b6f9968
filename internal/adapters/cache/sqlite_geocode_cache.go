package cache

import (
	"context"
	"database/sql"
	"errors"
	"excursion-route-planner/internal/domain"
	"excursion-route-planner/internal/platform/obs"
	"excursion-route-planner/internal/ports"
	"fmt"
	"strings"
)

// SQLite backed cache mapping city names to geographic coordinates.
// Keys are expected to be normalized by the caller.
type SqliteGeocodeCache struct {
	DB *sql.DB
}

var _ ports.GeocodeCache = (*SqliteGeocodeCache)(nil)

func NewSqliteGeocodeCache(db *sql.DB) *SqliteGeocodeCache {
	return &SqliteGeocodeCache{DB: db}
}

// Fetch cached coordinates for the given cities.
func (s *SqliteGeocodeCache) GetMany(
	ctx context.Context,
	cities []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "sqlite.geocode.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	uniq := uniqueKeys(cities)
	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	args := make([]any, 0, len(uniq))
	for _, c := range uniq {
		args = append(args, c)
	}

	q := fmt.Sprintf(`
	SELECT city, lon, lat
    FROM geocode_cache
    WHERE city IN (%s);
	`, placeholders(len(uniq)))

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.Coordinates, len(uniq))
	for rows.Next() {
		var city string
		var lon, lat float64
		if err := rows.Scan(&city, &lon, &lat); err != nil {
			return nil, fmt.Errorf("get geocode cache: scan rows: %w", err)
		}
		out[city] = domain.Coordinates{Lon: lon, Lat: lat}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get geocode cache: row iteration: %w", err)
	}

	return out, nil
}

// Store city -> coordinate mappings in the cache.
func (s *SqliteGeocodeCache) PutMany(
	ctx context.Context,
	results map[string]domain.Coordinates,
) (err error) {
	defer obs.Time(ctx, "sqlite.geocode.cache.PutMany")(&err)

	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO geocode_cache (city, lon, lat)
    VALUES (?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for city, c := range results {
		if strings.TrimSpace(city) == "" {
			return errors.New("insert geocode cache: empty city key")
		}

		if _, err := stmt.ExecContext(ctx, city, c.Lon, c.Lat); err != nil {
			return fmt.Errorf("insert geocode cache city=%q: %w", city, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert geocode cache commit: %w", err)
	}

	return nil
}
