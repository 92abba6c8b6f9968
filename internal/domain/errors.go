package domain

import "errors"

// ErrRouteInfeasible is returned when a required leg has no known distance,
// neither in the DistanceGraph nor from a direct oracle query, or when no
// stopover can be found within a full day's driving budget.
var ErrRouteInfeasible = errors.New("route infeasible")

// ErrConfig is returned for malformed excursion records and invalid
// scheduling configuration. It is surfaced immediately, never skipped.
var ErrConfig = errors.New("config error")

// ErrUnavailable is the "no value" signal returned by distance oracles.
// The planner treats it as an absent pair, not as a failure.
var ErrUnavailable = errors.New("distance unavailable")

// ErrNotFound is returned by repositories when the requested itinerary does
// not exist. Handlers map it to HTTP 404.
var ErrNotFound = errors.New("not found")
