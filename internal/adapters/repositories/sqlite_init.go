package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the SQLite database schema used by the local caches and the
// itinerary repository. Postgres uses the goose migrations instead.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createDistanceCacheQuery := `
	CREATE TABLE IF NOT EXISTS distance_cache (
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        km REAL NOT NULL,
        PRIMARY KEY (origin, destination)
    );
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        city TEXT PRIMARY KEY,
        lon REAL NOT NULL,
        lat REAL NOT NULL
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_distance_cache_destination_origin
    ON distance_cache(destination, origin);
	`

	createItinerariesQuery := `
	CREATE TABLE IF NOT EXISTS itineraries (
        id TEXT PRIMARY KEY,
        origin TEXT NOT NULL,
        tour TEXT NOT NULL,
        distance REAL NOT NULL,
        created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
    );
	`

	createStopsQuery := `
	CREATE TABLE IF NOT EXISTS itinerary_stops (
        itinerary_id TEXT NOT NULL REFERENCES itineraries(id) ON DELETE CASCADE,
        position INTEGER NOT NULL,
        location TEXT NOT NULL,
        arrive_at TEXT,
        depart_at TEXT,
        label TEXT NOT NULL,
        PRIMARY KEY (itinerary_id, position)
    );
	`

	statements := []string{
		createDistanceCacheQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
		createItinerariesQuery,
		createStopsQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
