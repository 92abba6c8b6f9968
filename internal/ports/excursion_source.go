package ports

import (
	"context"
	"excursion-route-planner/internal/domain"
)

// Port: a boundary for loading the excursions to visit.
type ExcursionSource interface {
	// Return all excursions in source order. Malformed records fail with
	// domain.ErrConfig.
	ListExcursions(ctx context.Context) ([]domain.Excursion, error)
}
