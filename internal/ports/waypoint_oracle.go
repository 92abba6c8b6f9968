package ports

import (
	"context"
	"excursion-route-planner/internal/domain"
)

// Contract for locating stopovers along a route.
type WaypointOracle interface {
	// Return the farthest intermediate location on the from->to route whose
	// cumulative distance from `from` does not exceed maxDistance.
	// ok is false when no such location exists.
	FarthestReachable(ctx context.Context, from string, to string, maxDistance float64) (wp domain.Waypoint, ok bool, err error)
}
