package distance

import (
	"context"
	"errors"
	"excursion-route-planner/internal/domain"
	"excursion-route-planner/internal/platform/obs"
	"fmt"
	"net/http"
)

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
	Units       string      `json:"units"`
}

type directionsResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Segments []struct {
				Steps []struct {
					Distance  float64 `json:"distance"`
					WayPoints []int   `json:"way_points"`
				} `json:"steps"`
			} `json:"segments"`
		} `json:"properties"`
	} `json:"features"`
}

// FarthestReachable follows the driving directions from -> to step by step
// and names the locality at the end of the last step that still fits within
// maxDistance kilometres.
func (o *ORSOracle) FarthestReachable(
	ctx context.Context,
	from string,
	to string,
	maxDistance float64,
) (_ domain.Waypoint, _ bool, err error) {
	defer obs.Time(ctx, "ors.FarthestReachable")(&err)

	from, to = o.normalize(from), o.normalize(to)
	if from == "" || to == "" {
		return domain.Waypoint{}, false, errors.New("ORS waypoint: from and to must be non-empty")
	}
	if maxDistance <= 0 {
		return domain.Waypoint{}, false, nil
	}

	fromCoord, err := o.geocode(ctx, from)
	if err != nil {
		return domain.Waypoint{}, false, fmt.Errorf("retrieving coordinates: %w", err)
	}
	toCoord, err := o.geocode(ctx, to)
	if err != nil {
		return domain.Waypoint{}, false, fmt.Errorf("retrieving coordinates: %w", err)
	}

	route, err := o.fetchDirections(ctx, fromCoord, toCoord)
	if err != nil {
		return domain.Waypoint{}, false, fmt.Errorf("fetching directions %q -> %q: %w", from, to, err)
	}

	feature := route.Features[0]
	points := feature.Geometry.Coordinates

	var (
		travelled float64
		reached   float64
		vertex    = -1
	)
walk:
	for _, seg := range feature.Properties.Segments {
		for _, step := range seg.Steps {
			if travelled+step.Distance > maxDistance {
				break walk
			}
			travelled += step.Distance
			if len(step.WayPoints) == 2 && step.WayPoints[1] < len(points) && step.Distance > 0 {
				reached, vertex = travelled, step.WayPoints[1]
			}
		}
	}

	if vertex < 0 || len(points[vertex]) != 2 {
		return domain.Waypoint{}, false, nil
	}

	city, err := o.reverseCity(ctx, domain.Coordinates{Lon: points[vertex][0], Lat: points[vertex][1]})
	if errors.Is(err, domain.ErrUnavailable) {
		return domain.Waypoint{}, false, nil
	}
	if err != nil {
		return domain.Waypoint{}, false, err
	}
	if city == from || city == to {
		return domain.Waypoint{}, false, nil
	}

	return domain.Waypoint{City: city, Distance: reached}, true, nil
}

func (o *ORSOracle) fetchDirections(ctx context.Context, from, to domain.Coordinates) (*directionsResponse, error) {
	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", o.baseURL, o.profile)

	req := directionsRequest{
		Coordinates: [][]float64{from.CoordsToList(), to.CoordsToList()},
		Units:       "km",
	}

	var dr directionsResponse
	if err := o.call(ctx, http.MethodPost, endpoint, nil, req, &dr); err != nil {
		return nil, fmt.Errorf("directions request: %w", err)
	}
	if len(dr.Features) == 0 {
		return nil, fmt.Errorf("no route: %w", domain.ErrUnavailable)
	}

	return &dr, nil
}
