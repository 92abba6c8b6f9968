package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"excursion-route-planner/internal/domain"
	"excursion-route-planner/internal/ports"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SQLite-backed implementation of the ItineraryRepository port.
type SqliteItineraryRepository struct{ DB *sql.DB }

var _ ports.ItineraryRepository = (*SqliteItineraryRepository)(nil)

func NewSqliteItineraryRepository(db *sql.DB) *SqliteItineraryRepository {
	return &SqliteItineraryRepository{DB: db}
}

// SaveItinerary stores the itinerary and its ordered stops, assigning an id
// when it has none.
func (s *SqliteItineraryRepository) SaveItinerary(ctx context.Context, it *domain.Itinerary) error {
	if s.DB == nil {
		return errors.New("sqlite itinerary repository: DB is nil")
	}
	if it == nil {
		return errors.New("save itinerary: itinerary is nil")
	}
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}

	tour, err := json.Marshal(it.Tour)
	if err != nil {
		return fmt.Errorf("save itinerary: encode tour: %w", err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save itinerary: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO itineraries (id, origin, tour, distance)
	VALUES (?, ?, ?, ?);
	`, it.ID.String(), it.Origin, string(tour), it.Distance)
	if err != nil {
		return fmt.Errorf("save itinerary id=%s: insert itinerary: %w", it.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO itinerary_stops (itinerary_id, position, location, arrive_at, depart_at, label)
	VALUES (?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("save itinerary: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, stop := range it.Stops {
		if _, err := stmt.ExecContext(ctx, it.ID.String(), i, stop.Location, formatTime(stop.ArriveAt), formatTime(stop.DepartAt), stop.Label); err != nil {
			return fmt.Errorf("save itinerary id=%s: insert stop #%d: %w", it.ID, i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save itinerary: commit tx: %w", err)
	}

	return nil
}

// Return the itinerary with its stops in order.
func (s *SqliteItineraryRepository) GetItinerary(ctx context.Context, id uuid.UUID) (*domain.Itinerary, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite itinerary repository: DB is nil")
	}

	it := &domain.Itinerary{ID: id}
	var tour string
	err := s.DB.QueryRowContext(ctx, `
	SELECT origin, tour, distance
	FROM itineraries
	WHERE id = ?;
	`, id.String()).Scan(&it.Origin, &tour, &it.Distance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get itinerary id=%s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get itinerary id=%s: query itineraries table: %w", id, err)
	}
	if err := json.Unmarshal([]byte(tour), &it.Tour); err != nil {
		return nil, fmt.Errorf("get itinerary id=%s: decode tour: %w", id, err)
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT location, arrive_at, depart_at, label
	FROM itinerary_stops
	WHERE itinerary_id = ?
	ORDER BY position;
	`, id.String())
	if err != nil {
		return nil, fmt.Errorf("get itinerary id=%s: query itinerary_stops table: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			stop             domain.Stop
			arrive, departAt sql.NullString
		)
		if err := rows.Scan(&stop.Location, &arrive, &departAt, &stop.Label); err != nil {
			return nil, fmt.Errorf("get itinerary id=%s: scan row: %w", id, err)
		}
		if stop.ArriveAt, err = parseTime(arrive); err != nil {
			return nil, fmt.Errorf("get itinerary id=%s: %w", id, err)
		}
		if stop.DepartAt, err = parseTime(departAt); err != nil {
			return nil, fmt.Errorf("get itinerary id=%s: %w", id, err)
		}
		it.Stops = append(it.Stops, stop)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get itinerary id=%s: row iteration: %w", id, err)
	}

	return it, nil
}

func formatTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339), Valid: true}
}

func parseTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil, fmt.Errorf("parse stop time %q: %w", s.String, err)
	}
	return &t, nil
}
