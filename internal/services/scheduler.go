package services

import (
	"context"
	"errors"
	"excursion-route-planner/internal/domain"
	"excursion-route-planner/internal/ports"
	"fmt"
	"log/slog"
	"time"
)

// LegOutcome is the result of one scheduling step along a leg.
// It is one of Direct, SplitInserted or RolledOverToNextDay.
type LegOutcome interface {
	isLegOutcome()
}

// Direct means the destination was reached.
type Direct struct {
	Stop domain.Stop
}

// SplitInserted means the leg was cut at an overnight stopover; Remaining is
// the distance still to drive from the stopover to the destination.
type SplitInserted struct {
	Stop      domain.Stop
	Remaining float64
}

// RolledOverToNextDay means nothing could be driven today. Driving resumes at
// DepartAt, which becomes the previous stop's departure unless that stop is an
// excursion, and the same leg must be retried.
type RolledOverToNextDay struct {
	DepartAt time.Time
}

func (Direct) isLegOutcome()              {}
func (SplitInserted) isLegOutcome()       {}
func (RolledOverToNextDay) isLegOutcome() {}

// Scheduler turns a tour into timestamped stops while respecting the daily
// driving budget and excursion admission times. It is strictly sequential:
// every step consumes the ScheduleState produced by the previous one.
type Scheduler struct {
	Graph      *domain.DistanceGraph
	Distances  ports.DistanceOracle
	Waypoints  ports.WaypointOracle
	Config     domain.ScheduleConfig
	Origin     string
	Excursions map[string]domain.Excursion
	Logger     *slog.Logger
}

// ExcursionsByCity indexes excursions by city; the first excursion listed for
// a city is the one scheduled there.
func ExcursionsByCity(excursions []domain.Excursion) map[string]domain.Excursion {
	out := make(map[string]domain.Excursion, len(excursions))
	for _, e := range excursions {
		if _, ok := out[e.City]; !ok {
			out[e.City] = e
		}
	}
	return out
}

func (s *Scheduler) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// Schedule walks the tour leg by leg, excluding the return to the origin.
// The first stop is the origin's starting point departing at the state's clock.
func (s *Scheduler) Schedule(
	ctx context.Context,
	state domain.ScheduleState,
	tour []string,
) ([]domain.Stop, domain.ScheduleState, error) {
	if len(tour) == 0 {
		return nil, state, errors.New("schedule: tour must be non-empty")
	}

	departAt := state.At(state.Clock)
	stops := []domain.Stop{{
		Location: tour[0],
		DepartAt: &departAt,
		Label:    domain.LabelStartingPoint,
	}}

	for i := 0; i < len(tour)-1; i++ {
		distance, err := s.legDistance(ctx, tour[i], tour[i+1])
		if err != nil {
			return nil, state, fmt.Errorf("schedule: leg %d: %w", i+1, err)
		}

		stops, state, err = s.drive(ctx, state, stops, tour[i], tour[i+1], distance)
		if err != nil {
			return nil, state, fmt.Errorf("schedule: leg %d: %w", i+1, err)
		}
	}

	return stops, state, nil
}

// drive repeats Leg until the destination is reached, appending stopovers and
// moving departures on rollovers.
func (s *Scheduler) drive(
	ctx context.Context,
	state domain.ScheduleState,
	stops []domain.Stop,
	from string,
	to string,
	distance float64,
) ([]domain.Stop, domain.ScheduleState, error) {
	for {
		outcome, next, err := s.Leg(ctx, state, from, to, distance)
		if err != nil {
			return nil, state, err
		}
		state = next

		switch o := outcome.(type) {
		case Direct:
			return append(stops, o.Stop), state, nil
		case SplitInserted:
			stops = append(stops, o.Stop)
			from = o.Stop.Location
			distance = o.Remaining
		case RolledOverToNextDay:
			// An excursion still ends at admission plus duration; the
			// overnight wait shows as the gap to the next arrival.
			if prev := &stops[len(stops)-1]; !prev.IsExcursion() {
				departAt := o.DepartAt
				prev.DepartAt = &departAt
			}
		default:
			return nil, state, fmt.Errorf("drive %q -> %q: unexpected outcome %T", from, to, outcome)
		}
	}
}

// Leg performs one scheduling step from `from` towards `to`, which lie
// `distance` apart, and returns the outcome with the updated state.
func (s *Scheduler) Leg(
	ctx context.Context,
	state domain.ScheduleState,
	from string,
	to string,
	distance float64,
) (LegOutcome, domain.ScheduleState, error) {
	cfg := s.Config
	budget := state.RemainingBudget(cfg)

	if distance <= budget {
		stop, next := s.arrive(state, to, distance)
		s.logger().DebugContext(ctx, "leg direct", "from", from, "to", to, "distance", distance)
		return Direct{Stop: stop}, next, nil
	}

	if budget > 0 {
		wp, ok := s.farthestReachable(ctx, from, to, budget)
		if ok && wp.Distance > 0 && wp.Distance <= budget && wp.Distance < distance {
			remaining := distance - wp.Distance
			// Only stop here if tomorrow can reach somewhere beyond it.
			if remaining > cfg.DailyDistance() {
				_, ok = s.farthestReachable(ctx, wp.City, to, cfg.DailyDistance())
			}
			if ok {
				stop, next := s.stopover(state, wp)
				s.logger().DebugContext(ctx, "leg split", "from", from, "to", to, "stopover", wp.City, "remaining", remaining)
				return SplitInserted{Stop: stop, Remaining: remaining}, next, nil
			}
		}
	}

	if state.Fresh(cfg) {
		return nil, state, fmt.Errorf(
			"leg from %q to %q: no stopover within a full day's drive of %v: %w",
			from, to, cfg.DailyDistance(), domain.ErrRouteInfeasible,
		)
	}

	next := state.NextDay(cfg)
	s.logger().DebugContext(ctx, "leg rolled over", "from", from, "to", to, "date", next.Date.Format(time.DateOnly))
	return RolledOverToNextDay{DepartAt: next.At(next.Clock)}, next, nil
}

// arrive builds the stop for a directly reached destination.
func (s *Scheduler) arrive(state domain.ScheduleState, to string, distance float64) (domain.Stop, domain.ScheduleState) {
	hours := distance / s.Config.Velocity
	arrival := state.Clock + hours
	arriveAt := state.At(arrival)

	if to == s.Origin {
		state.Clock = arrival
		state.DrivenToday += hours
		return domain.Stop{Location: to, ArriveAt: &arriveAt, Label: domain.LabelEndingPoint}, state
	}

	exc, ok := s.Excursions[to]
	if !ok {
		state.Clock = arrival
		state.DrivenToday += hours
		departAt := arriveAt
		return domain.Stop{Location: to, ArriveAt: &arriveAt, DepartAt: &departAt, Label: domain.LabelStoppingPoint}, state
	}

	if start, ok := exc.NextAdmission(arrival); ok {
		state.Clock = start + exc.Duration
		state.DrivenToday += hours
	} else {
		state = state.NextDay(s.Config)
		state.Clock = exc.AdmissionTimes[0] + exc.Duration
	}

	departAt := state.At(state.Clock)
	return domain.Stop{Location: to, ArriveAt: &arriveAt, DepartAt: &departAt, Label: exc.Name}, state
}

// stopover builds the overnight stop at wp; the next day starts at the
// configured day start.
func (s *Scheduler) stopover(state domain.ScheduleState, wp domain.Waypoint) (domain.Stop, domain.ScheduleState) {
	arriveAt := state.At(state.Clock + wp.Distance/s.Config.Velocity)
	next := state.NextDay(s.Config)
	departAt := next.At(next.Clock)

	return domain.Stop{
		Location: wp.City,
		ArriveAt: &arriveAt,
		DepartAt: &departAt,
		Label:    domain.LabelStoppingPoint,
	}, next
}

// farthestReachable treats oracle failures as "no waypoint".
func (s *Scheduler) farthestReachable(ctx context.Context, from, to string, maxDistance float64) (domain.Waypoint, bool) {
	if s.Waypoints == nil {
		return domain.Waypoint{}, false
	}

	wp, ok, err := s.Waypoints.FarthestReachable(ctx, from, to, maxDistance)
	if err != nil {
		s.logger().WarnContext(ctx, "waypoint unavailable", "from", from, "to", to, "max_distance", maxDistance, "error", err)
		return domain.Waypoint{}, false
	}
	return wp, ok
}

// legDistance reads the graph and falls back to a direct oracle query.
func (s *Scheduler) legDistance(ctx context.Context, from, to string) (float64, error) {
	if d, ok := s.Graph.Distance(from, to); ok {
		return d, nil
	}

	if s.Distances != nil {
		d, err := s.Distances.Distance(ctx, from, to)
		if err == nil && d > 0 {
			return d, nil
		}
		if err != nil {
			return 0, fmt.Errorf("leg distance from %q to %q: %v: %w", from, to, err, domain.ErrRouteInfeasible)
		}
	}

	return 0, fmt.Errorf("leg distance from %q to %q: %w", from, to, domain.ErrRouteInfeasible)
}
