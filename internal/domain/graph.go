package domain

import "fmt"

// pair is an ordered key; DistanceGraph stores each unordered pair once
// under whichever orientation was assembled first.
type pair struct{ from, to string }

// DistanceGraph is an undirected weighted graph over city names.
// It is assembled once per run and read-only afterwards.
type DistanceGraph struct {
	edges map[pair]float64
}

func NewDistanceGraph() *DistanceGraph {
	return &DistanceGraph{edges: make(map[pair]float64)}
}

// Add records the distance between a and b unless either orientation of the
// pair is already present. It reports whether the entry was retained.
func (g *DistanceGraph) Add(a, b string, distance float64) bool {
	if a == b {
		return false
	}
	if _, ok := g.Distance(a, b); ok {
		return false
	}
	g.edges[pair{a, b}] = distance
	return true
}

// Distance looks up (a, b) and then (b, a).
func (g *DistanceGraph) Distance(a, b string) (float64, bool) {
	if g == nil {
		return 0, false
	}
	if d, ok := g.edges[pair{a, b}]; ok {
		return d, true
	}
	d, ok := g.edges[pair{b, a}]
	return d, ok
}

// Edge is Distance with a route-infeasible error naming the pair.
func (g *DistanceGraph) Edge(a, b string) (float64, error) {
	d, ok := g.Distance(a, b)
	if !ok {
		return 0, fmt.Errorf("distance graph: no edge from %q to %q: %w", a, b, ErrRouteInfeasible)
	}
	return d, nil
}

// Len returns the number of unordered pairs stored.
func (g *DistanceGraph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.edges)
}
