package services

import (
	"context"
	"errors"
	"excursion-route-planner/internal/domain"
	"fmt"
)

// Complete closes the itinerary with the return leg from the last stop to the
// origin. Long return legs are cut by as many overnight stopovers as needed;
// the final stop is the origin's ending point, which has no departure.
func (s *Scheduler) Complete(
	ctx context.Context,
	state domain.ScheduleState,
	stops []domain.Stop,
) ([]domain.Stop, domain.ScheduleState, error) {
	if len(stops) == 0 {
		return nil, state, errors.New("complete tour: no stops to complete")
	}

	last := stops[len(stops)-1].Location
	if last == s.Origin && len(stops) == 1 {
		// Nothing was visited; the tour ends where it started.
		end := state.At(state.Clock)
		return append(stops, domain.Stop{Location: s.Origin, ArriveAt: &end, Label: domain.LabelEndingPoint}), state, nil
	}

	distance, err := s.legDistance(ctx, last, s.Origin)
	if err != nil {
		return nil, state, fmt.Errorf("complete tour: return leg: %w", err)
	}

	stops, state, err = s.drive(ctx, state, stops, last, s.Origin, distance)
	if err != nil {
		return nil, state, fmt.Errorf("complete tour: return leg: %w", err)
	}

	return stops, state, nil
}
