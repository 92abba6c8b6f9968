package ports

import "context"

// Contract for retrieving the driving distance between two cities.
//
// Implementations must be safe for concurrent use. When no distance is known
// they return an error wrapping domain.ErrUnavailable; callers treat any error
// (including timeouts) as "no value".
type DistanceOracle interface {
	Distance(ctx context.Context, from string, to string) (float64, error)
}

// Optional extension of DistanceOracle that supports batched lookups.
type DistanceMatrixOracle interface {
	DistanceOracle
	// Return distances from one origin to many destinations. Destinations
	// without a known distance are absent from the result.
	Distances(ctx context.Context, from string, to []string) (map[string]float64, error)
}
