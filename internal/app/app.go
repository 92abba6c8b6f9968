// Package app assembles adapters behind ports from the loaded configuration.
// It is shared by the planner CLI and the HTTP server.
package app

import (
	"context"
	"database/sql"
	"errors"
	"excursion-route-planner/internal/adapters/atlas"
	"excursion-route-planner/internal/adapters/cache"
	"excursion-route-planner/internal/adapters/distance"
	"excursion-route-planner/internal/adapters/repositories"
	"excursion-route-planner/internal/config"
	"excursion-route-planner/internal/platform/db"
	"excursion-route-planner/internal/ports"
	"excursion-route-planner/internal/services"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// NewLogger returns a JSON logger at the named level (debug, info, warn,
// error); unknown levels fall back to info.
func NewLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// Deps holds the wired adapters. Close releases every connection they own.
type Deps struct {
	Distances ports.DistanceOracle
	Waypoints ports.WaypointOracle
	// Itineraries is nil when no database is configured.
	Itineraries ports.ItineraryRepository

	closers []func() error
}

func (d *Deps) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		errs = append(errs, d.closers[i]())
	}
	return errors.Join(errs...)
}

// Wire builds the oracles, optional caches and optional itinerary
// repository named by cfg. On error everything opened so far is closed.
func Wire(ctx context.Context, cfg config.Config, logger *slog.Logger) (_ *Deps, err error) {
	d := &Deps{}
	defer func() {
		if err != nil {
			_ = d.Close()
		}
	}()

	var cacheDB *sql.DB
	if cfg.CacheDSN != "" {
		if db.IsPostgres(cfg.CacheDSN) {
			cacheDB, err = db.Open(cfg.CacheDSN)
		} else {
			cacheDB, err = db.OpenSqlite(cfg.CacheDSN)
		}
		if err != nil {
			return nil, fmt.Errorf("wire: cache database: %w", err)
		}
		d.closers = append(d.closers, cacheDB.Close)
	}

	switch cfg.Oracle {
	case config.OracleORS:
		var (
			distances ports.DistanceCache
			geocodes  ports.GeocodeCache
		)
		if cacheDB != nil {
			if db.IsPostgres(cfg.CacheDSN) {
				distances, geocodes = cache.NewSQLDistanceCache(cacheDB), cache.NewSQLGeocodeCache(cacheDB)
			} else {
				distances, geocodes = cache.NewSqliteDistanceCache(cacheDB), cache.NewSqliteGeocodeCache(cacheDB)
			}
		}
		ors, err := distance.NewORSOracle(distance.ORSConfig{
			APIKey:  cfg.ORSAPIKey,
			Country: cfg.ORSCountry,
		}, distances, geocodes, logger)
		if err != nil {
			return nil, fmt.Errorf("wire: %w", err)
		}
		d.Distances, d.Waypoints = ors, ors
	default:
		a, err := atlas.Load(cfg.AtlasPath)
		if err != nil {
			return nil, fmt.Errorf("wire: %w", err)
		}
		d.Distances, d.Waypoints = a, a
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		d.closers = append(d.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("wire: redis %s: %w", cfg.RedisAddr, err)
		}
		d.Waypoints = cache.NewRedisWaypointCache(client, d.Waypoints, logger)
	}

	switch {
	case cfg.DatabaseURL != "":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("wire: itinerary database: %w", err)
		}
		d.closers = append(d.closers, func() error { pool.Close(); return nil })
		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("wire: itinerary database: %w", err)
		}
		d.Itineraries = repositories.NewPgItineraryRepository(pool)
	case cacheDB != nil && !db.IsPostgres(cfg.CacheDSN):
		d.Itineraries = repositories.NewSqliteItineraryRepository(cacheDB)
	}

	return d, nil
}

// NewPlanner builds the orchestrator over the wired oracles.
func NewPlanner(cfg config.Config, d *Deps, logger *slog.Logger) *services.Planner {
	p := services.NewPlanner(d.Distances, d.Waypoints, cfg.Schedule, logger)
	p.Concurrency = cfg.GraphConcurrency
	return p
}
