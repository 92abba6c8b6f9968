package ports

import (
	"context"
	"excursion-route-planner/internal/domain"
)

// Persistent cache of origin->destination distances.
type DistanceCache interface {
	GetMany(ctx context.Context, origin string, destinations []string) (map[string]float64, error)
	PutMany(ctx context.Context, origin string, results map[string]float64) error
}

// Persistent cache of address->coordinate lookups.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}
