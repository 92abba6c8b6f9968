package services

import (
	"excursion-route-planner/internal/domain"
	"fmt"
	"iter"
	"math"
)

// Permutations yields every ordering of cities. Each yielded slice is freshly
// allocated and may be retained by the caller.
//
// Orderings are built by removing one element, permuting the rest and
// appending the removed element. Candidates are removed last-to-first, so the
// first ordering yielded is the input order itself. The sequence is
// deterministic for a fixed input and restarts on every range.
func Permutations(cities []string) iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		permute(cities, yield)
	}
}

func permute(cities []string, yield func([]string) bool) bool {
	if len(cities) <= 1 {
		return yield(append([]string(nil), cities...))
	}

	for i := len(cities) - 1; i >= 0; i-- {
		rest := make([]string, 0, len(cities)-1)
		rest = append(rest, cities[:i]...)
		rest = append(rest, cities[i+1:]...)

		removed := cities[i]
		cont := permute(rest, func(p []string) bool {
			return yield(append(p, removed))
		})
		if !cont {
			return false
		}
	}

	return true
}

// Tours yields every closed tour starting at origin.
func Tours(origin string, cities []string) iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		for p := range Permutations(cities) {
			tour := make([]string, 0, len(p)+1)
			tour = append(tour, origin)
			tour = append(tour, p...)
			if !yield(tour) {
				return
			}
		}
	}
}

// ScoreTour returns the length of the closed tour, including the implicit
// edge from the last city back to the first.
func ScoreTour(tour []string, graph *domain.DistanceGraph) (float64, error) {
	if len(tour) < 2 {
		return 0, nil
	}

	total, err := graph.Edge(tour[len(tour)-1], tour[0])
	if err != nil {
		return 0, fmt.Errorf("score tour: %w", err)
	}
	for i := 0; i < len(tour)-1; i++ {
		d, err := graph.Edge(tour[i], tour[i+1])
		if err != nil {
			return 0, fmt.Errorf("score tour: %w", err)
		}
		total += d
	}

	return total, nil
}

// ShortestTour scores every tour with the origin fixed first and keeps the
// minimum. On exact ties the tour enumerated first wins.
func ShortestTour(origin string, cities []string, graph *domain.DistanceGraph) ([]string, float64, error) {
	var (
		best     []string
		bestCost = math.Inf(1)
	)

	for tour := range Tours(origin, cities) {
		cost, err := ScoreTour(tour, graph)
		if err != nil {
			return nil, 0, fmt.Errorf("shortest tour: %w", err)
		}
		if cost < bestCost {
			best = tour
			bestCost = cost
		}
	}

	if best == nil {
		return nil, 0, fmt.Errorf("shortest tour: no tour from %q: %w", origin, domain.ErrRouteInfeasible)
	}

	return best, bestCost, nil
}
