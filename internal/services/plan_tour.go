package services

import (
	"context"
	"errors"
	"excursion-route-planner/internal/domain"
	"excursion-route-planner/internal/platform/obs"
	"excursion-route-planner/internal/ports"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

type PlanTourRequest struct {
	Origin     string
	DepartAt   time.Time
	Excursions []domain.Excursion
}

// Planner computes the shortest closed tour over the excursion cities and
// expands it into a day-bounded itinerary.
type Planner struct {
	Distances   ports.DistanceOracle
	Waypoints   ports.WaypointOracle
	Config      domain.ScheduleConfig
	Concurrency int
	Logger      *slog.Logger
}

func NewPlanner(
	distances ports.DistanceOracle,
	waypoints ports.WaypointOracle,
	cfg domain.ScheduleConfig,
	logger *slog.Logger,
) *Planner {
	return &Planner{
		Distances:   distances,
		Waypoints:   waypoints,
		Config:      cfg,
		Concurrency: defaultGraphConcurrency,
		Logger:      logger,
	}
}

// PlanTour runs graph building, exhaustive tour selection, scheduling and
// completion. Either the full itinerary is returned or the run fails.
func (p *Planner) PlanTour(ctx context.Context, req PlanTourRequest) (_ *domain.Itinerary, err error) {
	defer obs.Time(ctx, "planner.PlanTour")(&err)

	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	origin := strings.TrimSpace(req.Origin)
	if origin == "" {
		return nil, errors.New("plan tour: origin must be non-empty")
	}
	if len(req.Excursions) == 0 {
		return nil, errors.New("plan tour: at least one excursion is required")
	}
	if p.Distances == nil {
		return nil, errors.New("plan tour: distance oracle must be non-nil")
	}
	if err := p.Config.Validate(); err != nil {
		return nil, fmt.Errorf("plan tour: %w", err)
	}

	cities := TourCities(origin, req.Excursions)

	graph, err := BuildDistanceGraph(ctx, append([]string{origin}, cities...), p.Distances, p.Concurrency, logger)
	if err != nil {
		return nil, fmt.Errorf("plan tour: %w", err)
	}

	tour, distance, err := ShortestTour(origin, cities, graph)
	if err != nil {
		return nil, fmt.Errorf("plan tour: %w", err)
	}
	logger.InfoContext(ctx, "tour selected", "origin", origin, "tour", tour, "distance", distance)

	scheduler := &Scheduler{
		Graph:      graph,
		Distances:  p.Distances,
		Waypoints:  p.Waypoints,
		Config:     p.Config,
		Origin:     origin,
		Excursions: ExcursionsByCity(req.Excursions),
		Logger:     logger,
	}

	state := domain.NewScheduleState(req.DepartAt)
	stops, state, err := scheduler.Schedule(ctx, state, tour)
	if err != nil {
		return nil, fmt.Errorf("plan tour: %w", err)
	}

	stops, _, err = scheduler.Complete(ctx, state, stops)
	if err != nil {
		return nil, fmt.Errorf("plan tour: %w", err)
	}

	it := &domain.Itinerary{
		Origin:   origin,
		Tour:     tour,
		Distance: distance,
		Stops:    stops,
	}
	if err := it.Validate(); err != nil {
		return nil, fmt.Errorf("plan tour: %w", err)
	}

	logger.InfoContext(ctx, "itinerary planned", "origin", origin, "stops", len(stops))
	return it, nil
}

// TourCities returns the distinct excursion cities in first-seen order,
// excluding the origin.
func TourCities(origin string, excursions []domain.Excursion) []string {
	seen := map[string]struct{}{origin: {}}
	cities := make([]string, 0, len(excursions))
	for _, e := range excursions {
		if _, ok := seen[e.City]; ok {
			continue
		}
		seen[e.City] = struct{}{}
		cities = append(cities, e.City)
	}
	return cities
}
