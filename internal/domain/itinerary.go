package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Represents the day-bounded driving plan produced for one closed tour.
// Tour is the chosen city order (origin first, return leg implicit) and
// Distance is its score. Stops are ordered; the first is the origin's
// starting point and, once complete, the last is the origin's ending point.
// ID is zero until the itinerary is saved.
type Itinerary struct {
	ID       uuid.UUID
	Origin   string
	Tour     []string
	Distance float64
	Stops    []Stop
}

// Validate checks the structural invariants of a completed itinerary:
// origin at both ends and non-decreasing timestamps.
func (it *Itinerary) Validate() error {
	if it == nil || len(it.Stops) < 2 {
		return errors.New("validate itinerary: at least a start and an end stop are required")
	}

	first := it.Stops[0]
	last := it.Stops[len(it.Stops)-1]
	if first.Location != it.Origin || first.Label != LabelStartingPoint {
		return fmt.Errorf("validate itinerary: first stop %q (%s) is not the origin starting point", first.Location, first.Label)
	}
	if last.Location != it.Origin || last.Label != LabelEndingPoint {
		return fmt.Errorf("validate itinerary: last stop %q (%s) is not the origin ending point", last.Location, last.Label)
	}

	prev := first.DepartAt
	for i, s := range it.Stops[1:] {
		if s.ArriveAt == nil {
			return fmt.Errorf("validate itinerary: stop #%d %q has no arrival", i+2, s.Location)
		}
		if prev != nil && s.ArriveAt.Before(*prev) {
			return fmt.Errorf("validate itinerary: stop #%d %q arrives before the previous departure", i+2, s.Location)
		}
		if s.DepartAt != nil && s.DepartAt.Before(*s.ArriveAt) {
			return fmt.Errorf("validate itinerary: stop #%d %q departs before it arrives", i+2, s.Location)
		}
		prev = s.DepartAt
	}

	return nil
}
