package ports

import (
	"context"
	"excursion-route-planner/internal/domain"

	"github.com/google/uuid"
)

// Port: a boundary persisting a finished itinerary.
type ItinerarySink interface {
	SaveItinerary(ctx context.Context, it *domain.Itinerary) error
}

// Port: persisted itineraries that can be read back by id.
type ItineraryRepository interface {
	ItinerarySink
	// Returns domain.ErrNotFound if no itinerary with that id exists.
	GetItinerary(ctx context.Context, id uuid.UUID) (*domain.Itinerary, error)
}
