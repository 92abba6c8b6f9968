package distance

import (
	"context"
	"errors"
	"excursion-route-planner/internal/domain"
	"fmt"
	"net/http"
)

type matrixRequest struct {
	Locations    [][]float64 `json:"locations"`
	Destinations []int       `json:"destinations"`
	Metrics      []string    `json:"metrics"`
	Sources      []int       `json:"sources"`
	Units        string      `json:"units"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
}

// fetchMatrixRow retrieves kilometres from one origin to many destinations
// using the OpenRouteService matrix endpoint. Unroutable destinations come
// back as null and are left out of the result.
func (o *ORSOracle) fetchMatrixRow(
	ctx context.Context,
	originCoord domain.Coordinates,
	destinations []string,
	destinationCoords []domain.Coordinates,
) (map[string]float64, error) {
	if len(destinations) != len(destinationCoords) {
		return nil, errors.New("destinations and destinationCoords are expected to have the same length")
	}

	if len(destinations) == 0 {
		return map[string]float64{}, nil
	}

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)

	locations := make([][]float64, 0, 1+len(destinationCoords))
	locations = append(locations, originCoord.CoordsToList())
	for _, c := range destinationCoords {
		locations = append(locations, c.CoordsToList())
	}

	destIdx := make([]int, 0, len(destinationCoords))
	for i := 1; i < len(locations); i++ {
		destIdx = append(destIdx, i)
	}

	req := matrixRequest{
		Locations:    locations,
		Destinations: destIdx,
		Metrics:      []string{"distance"},
		Sources:      []int{0},
		Units:        "km",
	}

	var mr matrixResponse
	if err := o.call(ctx, http.MethodPost, endpoint, nil, req, &mr); err != nil {
		return nil, fmt.Errorf("matrix request: %w", err)
	}

	if len(mr.Distances) != 1 {
		return nil, fmt.Errorf("expected 1 source row; got %d", len(mr.Distances))
	}

	row := mr.Distances[0]
	if len(row) != len(destinations) {
		return nil, fmt.Errorf(
			"row length does not match destinations: distances=%d destinations=%d",
			len(row), len(destinations),
		)
	}

	out := make(map[string]float64, len(destinations))
	for i, dest := range destinations {
		if row[i] == nil || *row[i] <= 0 {
			continue
		}
		out[dest] = *row[i]
	}

	return out, nil
}
