package domain

import "time"

// Labels of non-excursion stops. Excursion stops are labeled with the
// excursion name.
const (
	LabelStartingPoint = "starting-point"
	LabelStoppingPoint = "stopping-point"
	LabelEndingPoint   = "ending-point"
)

// Represents a single entry of an itinerary.
// ArriveAt is nil for the starting point; DepartAt is nil for the ending point.
type Stop struct {
	Location string
	ArriveAt *time.Time
	DepartAt *time.Time
	Label    string
}

// IsWaypoint reports whether the stop is a stopover or a pass-through city
// rather than an excursion or an origin stop.
func (s Stop) IsWaypoint() bool { return s.Label == LabelStoppingPoint }

// Waypoint is an intermediate location on a route, measured from the start of
// the route.
type Waypoint struct {
	City     string
	Distance float64
}

// IsExcursion reports whether the stop is an excursion visit.
func (s Stop) IsExcursion() bool {
	switch s.Label {
	case LabelStartingPoint, LabelStoppingPoint, LabelEndingPoint:
		return false
	}
	return s.Label != ""
}
