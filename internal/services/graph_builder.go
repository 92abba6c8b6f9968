package services

import (
	"context"
	"errors"
	"excursion-route-planner/internal/domain"
	"excursion-route-planner/internal/ports"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

const defaultGraphConcurrency = 8

// pairDistance is one oracle answer, written by exactly one goroutine into its
// own slot before the barrier.
type pairDistance struct {
	distance float64
	ok       bool
}

// BuildDistanceGraph queries the oracle for every ordered pair of cities
// concurrently and assembles the DistanceGraph once all queries finished.
//
// Failed queries leave the pair absent; later lookups against it raise
// domain.ErrRouteInfeasible. When both orientations resolve, the one assembled
// first (row-major over cities) is retained.
func BuildDistanceGraph(
	ctx context.Context,
	cities []string,
	oracle ports.DistanceOracle,
	concurrency int,
	logger *slog.Logger,
) (*domain.DistanceGraph, error) {
	if oracle == nil {
		return nil, errors.New("build distance graph: oracle must be non-nil")
	}
	if concurrency <= 0 {
		concurrency = defaultGraphConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}

	n := len(cities)
	results := make([]pairDistance, n*n)

	var g errgroup.Group
	g.SetLimit(concurrency)

	// Prefer one batched row per origin when supported to reduce external API calls.
	if mo, ok := oracle.(ports.DistanceMatrixOracle); ok {
		for i, from := range cities {
			targets := make([]string, 0, n-1)
			for j, to := range cities {
				if j != i {
					targets = append(targets, to)
				}
			}

			g.Go(func() error {
				row, err := mo.Distances(ctx, from, targets)
				if err != nil {
					logger.WarnContext(ctx, "distance row unavailable", "from", from, "error", err)
					return nil
				}
				for j, to := range cities {
					if d, ok := row[to]; ok && j != i {
						results[i*n+j] = pairDistance{distance: d, ok: true}
					}
				}
				return nil
			})
		}
	} else {
		for i, from := range cities {
			for j, to := range cities {
				if i == j {
					continue
				}

				g.Go(func() error {
					d, err := oracle.Distance(ctx, from, to)
					if err != nil {
						logger.WarnContext(ctx, "distance unavailable", "from", from, "to", to, "error", err)
						return nil
					}
					results[i*n+j] = pairDistance{distance: d, ok: true}
					return nil
				})
			}
		}
	}

	// Barrier: no partial graph is ever exposed.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("build distance graph: %w", err)
	}

	graph := domain.NewDistanceGraph()
	for i, from := range cities {
		for j, to := range cities {
			r := results[i*n+j]
			if i == j || !r.ok || r.distance <= 0 {
				continue
			}
			graph.Add(from, to, r.distance)
		}
	}

	logger.DebugContext(ctx, "distance graph built", "cities", n, "pairs", graph.Len())
	return graph, nil
}
