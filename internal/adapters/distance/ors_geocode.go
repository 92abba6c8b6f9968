package distance

import (
	"context"
	"excursion-route-planner/internal/domain"
	"excursion-route-planner/internal/platform/obs"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Name     string `json:"name"`
			Locality string `json:"locality"`
		} `json:"properties"`
	} `json:"features"`
}

// geocode resolves one city through the cache, then /geocode/search.
// Concurrent lookups of the same city share a single request.
func (o *ORSOracle) geocode(ctx context.Context, city string) (domain.Coordinates, error) {
	v, err, _ := o.geocodes.Do(city, func() (any, error) {
		if o.geocodeCache != nil {
			hits, err := o.geocodeCache.GetMany(ctx, []string{city})
			if err != nil {
				o.logger.WarnContext(ctx, "geocode cache read failed", "city", city, "error", err)
			} else if c, ok := hits[city]; ok {
				return c, nil
			}
		}

		c, err := o.searchCity(ctx, city)
		if err != nil {
			return domain.Coordinates{}, err
		}

		if o.geocodeCache != nil {
			if err := o.geocodeCache.PutMany(ctx, map[string]domain.Coordinates{city: c}); err != nil {
				o.logger.WarnContext(ctx, "geocode cache write failed", "city", city, "error", err)
			}
		}
		return c, nil
	})
	if err != nil {
		return domain.Coordinates{}, err
	}
	return v.(domain.Coordinates), nil
}

func (o *ORSOracle) searchCity(ctx context.Context, city string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.searchCity")(&err)

	q := url.Values{}
	q.Set("text", city)
	q.Set("size", "1")
	if o.country != "" {
		q.Set("boundary.country", o.country)
	}

	decoded, err := o.getGeocode(ctx, o.baseURL+"/geocode/search", q)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", city, err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("no geocode results for %q: %w", city, domain.ErrUnavailable)
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, fmt.Errorf("invalid coordinate format for %q", city)
	}

	return domain.Coordinates{Lon: coords[0], Lat: coords[1]}, nil
}

// reverseCity names the locality nearest to c via /geocode/reverse.
func (o *ORSOracle) reverseCity(ctx context.Context, c domain.Coordinates) (_ string, err error) {
	defer obs.Time(ctx, "ors.reverseCity")(&err)

	q := url.Values{}
	q.Set("point.lon", strconv.FormatFloat(c.Lon, 'f', -1, 64))
	q.Set("point.lat", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	q.Set("layers", "locality")
	q.Set("size", "1")

	decoded, err := o.getGeocode(ctx, o.baseURL+"/geocode/reverse", q)
	if err != nil {
		return "", fmt.Errorf("reverse geocode %s: %w", c.Param(), err)
	}

	if len(decoded.Features) == 0 {
		return "", fmt.Errorf("no locality near %s: %w", c.Param(), domain.ErrUnavailable)
	}

	p := decoded.Features[0].Properties
	if p.Locality != "" {
		return p.Locality, nil
	}
	if p.Name != "" {
		return p.Name, nil
	}
	return "", fmt.Errorf("unnamed locality near %s: %w", c.Param(), domain.ErrUnavailable)
}

func (o *ORSOracle) getGeocode(ctx context.Context, endpoint string, q url.Values) (*geocodeResponse, error) {
	var decoded geocodeResponse
	if err := o.call(ctx, http.MethodGet, endpoint, q, nil, &decoded); err != nil {
		return nil, err
	}
	return &decoded, nil
}
