package repositories

import (
	"context"
	"errors"
	"excursion-route-planner/internal/domain"
	"excursion-route-planner/internal/ports"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// pgDB is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn and
// pgx.Tx. Tests pass a transaction that is rolled back afterwards.
type pgDB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgItineraryRepository is the Postgres implementation of ItineraryRepository.
// The schema comes from the goose migrations.
type PgItineraryRepository struct {
	db pgDB
}

var _ ports.ItineraryRepository = (*PgItineraryRepository)(nil)

func NewPgItineraryRepository(db pgDB) *PgItineraryRepository {
	return &PgItineraryRepository{db: db}
}

// SaveItinerary inserts the itinerary and all its stops in one transaction.
func (r *PgItineraryRepository) SaveItinerary(ctx context.Context, it *domain.Itinerary) error {
	if it == nil {
		return errors.New("repositories.PgItineraryRepository.SaveItinerary: itinerary is nil")
	}
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repositories.PgItineraryRepository.SaveItinerary: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const insertItinerary = `
		INSERT INTO itineraries (id, origin, tour, distance)
		VALUES (@id, @origin, @tour, @distance)`

	_, err = tx.Exec(ctx, insertItinerary, pgx.NamedArgs{
		"id":       it.ID,
		"origin":   it.Origin,
		"tour":     it.Tour,
		"distance": it.Distance,
	})
	if err != nil {
		return fmt.Errorf("repositories.PgItineraryRepository.SaveItinerary: insert itinerary: %w", err)
	}

	const insertStop = `
		INSERT INTO itinerary_stops (itinerary_id, position, location, arrive_at, depart_at, label)
		VALUES (@itinerary_id, @position, @location, @arrive_at, @depart_at, @label)`

	batch := &pgx.Batch{}
	for i, stop := range it.Stops {
		batch.Queue(insertStop, pgx.NamedArgs{
			"itinerary_id": it.ID,
			"position":     i,
			"location":     stop.Location,
			"arrive_at":    stop.ArriveAt, // nil becomes NULL
			"depart_at":    stop.DepartAt,
			"label":        stop.Label,
		})
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("repositories.PgItineraryRepository.SaveItinerary: insert stops: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repositories.PgItineraryRepository.SaveItinerary: commit: %w", err)
	}
	return nil
}

// GetItinerary loads an itinerary and its stops in position order.
func (r *PgItineraryRepository) GetItinerary(ctx context.Context, id uuid.UUID) (*domain.Itinerary, error) {
	const selectItinerary = `
		SELECT origin, tour, distance
		FROM itineraries
		WHERE id = @id`

	it := &domain.Itinerary{ID: id}
	err := r.db.QueryRow(ctx, selectItinerary, pgx.NamedArgs{"id": id}).Scan(&it.Origin, &it.Tour, &it.Distance)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("repositories.PgItineraryRepository.GetItinerary: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("repositories.PgItineraryRepository.GetItinerary: %w", err)
	}

	const selectStops = `
		SELECT location, arrive_at, depart_at, label
		FROM itinerary_stops
		WHERE itinerary_id = @id
		ORDER BY position`

	rows, err := r.db.Query(ctx, selectStops, pgx.NamedArgs{"id": id})
	if err != nil {
		return nil, fmt.Errorf("repositories.PgItineraryRepository.GetItinerary: stops: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			stop           domain.Stop
			arrive, depart pgtype.Timestamptz
		)
		if err := rows.Scan(&stop.Location, &arrive, &depart, &stop.Label); err != nil {
			return nil, fmt.Errorf("repositories.PgItineraryRepository.GetItinerary: scan: %w", err)
		}
		if arrive.Valid {
			t := arrive.Time
			stop.ArriveAt = &t
		}
		if depart.Valid {
			t := depart.Time
			stop.DepartAt = &t
		}
		it.Stops = append(it.Stops, stop)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repositories.PgItineraryRepository.GetItinerary: rows: %w", err)
	}

	return it, nil
}
