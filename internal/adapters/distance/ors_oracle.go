package distance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"excursion-route-planner/internal/domain"
	"excursion-route-planner/internal/platform/obs"
	"excursion-route-planner/internal/ports"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

const defaultBaseURL = "https://api.openrouteservice.org"

// ORSConfig selects the OpenRouteService account and request defaults.
type ORSConfig struct {
	APIKey  string
	BaseURL string // defaults to the public API
	Profile string // defaults to "driving-car"
	Country string // optional ISO country filter for geocoding
}

// ORSOracle implements the distance and waypoint oracles using OpenRouteService.
//
// It coordinates:
//   - City name normalization
//   - Persistent geocode caching, with concurrent lookups of one city collapsed
//   - Persistent distance matrix caching
//   - External API calls with retry/backoff
//
// The oracle is safe for concurrent use.
type ORSOracle struct {
	session       *http.Client
	apiKey        string
	baseURL       string
	profile       string
	country       string
	distanceCache ports.DistanceCache
	geocodeCache  ports.GeocodeCache
	geocodes      singleflight.Group
	logger        *slog.Logger
}

var (
	_ ports.DistanceMatrixOracle = (*ORSOracle)(nil)
	_ ports.WaypointOracle       = (*ORSOracle)(nil)
)

// NewORSOracle builds an oracle; either cache may be nil.
func NewORSOracle(
	cfg ORSConfig,
	distanceCache ports.DistanceCache,
	geocodeCache ports.GeocodeCache,
	logger *slog.Logger,
) (*ORSOracle, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("ORS api key is empty: %w", domain.ErrConfig)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Profile == "" {
		cfg.Profile = "driving-car"
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ORSOracle{
		session:       &http.Client{Timeout: 10 * time.Second},
		apiKey:        cfg.APIKey,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		profile:       cfg.Profile,
		country:       cfg.Country,
		distanceCache: distanceCache,
		geocodeCache:  geocodeCache,
		logger:        logger,
	}, nil
}

// normalize ensures consistent cache keys by collapsing whitespace.
func (o *ORSOracle) normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Distance delegates to the batched path to reuse caching and matrix logic.
// The result is in kilometres.
func (o *ORSOracle) Distance(ctx context.Context, from, to string) (float64, error) {
	normFrom, normTo := o.normalize(from), o.normalize(to)
	if normFrom == "" || normTo == "" {
		return 0, errors.New("ORS distance: from and to must be non-empty")
	}

	results, err := o.Distances(ctx, normFrom, []string{normTo})
	if err != nil {
		return 0, fmt.Errorf("ORS distance %q -> %q: %w", normFrom, normTo, err)
	}

	km, ok := results[normTo]
	if !ok {
		return 0, fmt.Errorf("ORS distance %q -> %q: %w", normFrom, normTo, domain.ErrUnavailable)
	}

	return km, nil
}

// Distances computes kilometres from one origin to many destinations.
// Destinations equal to the origin are skipped.
func (o *ORSOracle) Distances(
	ctx context.Context,
	from string,
	to []string,
) (_ map[string]float64, err error) {
	defer obs.Time(ctx, "ors.Distances")(&err)

	origin := o.normalize(from)
	if origin == "" {
		return nil, errors.New("origin must be non-empty")
	}

	seen := make(map[string]struct{}, len(to))
	destList := make([]string, 0, len(to))
	for _, d := range to {
		nd := o.normalize(d)
		if nd == "" || nd == origin {
			continue
		}
		if _, ok := seen[nd]; ok {
			continue
		}
		seen[nd] = struct{}{}
		destList = append(destList, nd)
	}

	if len(destList) == 0 {
		return map[string]float64{}, nil
	}

	hits := make(map[string]float64)
	// Check persistent distance cache before issuing external API calls.
	if o.distanceCache != nil {
		cached, err := o.distanceCache.GetMany(ctx, origin, destList)
		if err != nil {
			o.logger.WarnContext(ctx, "distance cache read failed", "origin", origin, "error", err)
		} else {
			hits = cached
		}
	}

	misses := make([]string, 0, len(destList))
	for _, d := range destList {
		if _, ok := hits[d]; !ok {
			misses = append(misses, d)
		}
	}

	if len(misses) == 0 {
		return hits, nil
	}

	originCoord, err := o.geocode(ctx, origin)
	if err != nil {
		return nil, fmt.Errorf("retrieving coordinates: %w", err)
	}

	// Unresolvable destinations are left out of the row instead of failing it.
	rowDests := make([]string, 0, len(misses))
	rowCoords := make([]domain.Coordinates, 0, len(misses))
	for _, d := range misses {
		c, err := o.geocode(ctx, d)
		if err != nil {
			o.logger.WarnContext(ctx, "geocode failed", "city", d, "error", err)
			continue
		}
		rowDests = append(rowDests, d)
		rowCoords = append(rowCoords, c)
	}

	// Fetch a single origin->many matrix row for all cache misses.
	fetched, err := o.fetchMatrixRow(ctx, originCoord, rowDests, rowCoords)
	if err != nil {
		return nil, fmt.Errorf("fetching matrix row: %w", err)
	}

	if o.distanceCache != nil && len(fetched) > 0 {
		if err := o.distanceCache.PutMany(ctx, origin, fetched); err != nil {
			o.logger.WarnContext(ctx, "distance cache write failed", "origin", origin, "error", err)
		}
	}

	out := make(map[string]float64, len(hits)+len(fetched))
	for k, v := range hits {
		out[k] = v
	}
	for k, v := range fetched {
		out[k] = v
	}

	return out, nil
}

// APIError is a non-2xx answer from OpenRouteService.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ORS status %d: %s", e.Status, e.Message)
}

// Temporary reports whether the request may succeed when repeated: rate
// limiting and server-side failures.
func (e *APIError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

// retryDelays are the pauses between attempts of one call.
var retryDelays = []time.Duration{200 * time.Millisecond, 400 * time.Millisecond, 800 * time.Millisecond}

// call sends body (if any) as JSON to endpoint and decodes the JSON answer
// into out. Temporary API errors and network failures are retried after each
// of retryDelays; cancellation of ctx ends the wait.
func (o *ORSOracle) call(ctx context.Context, method, endpoint string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		err := o.send(ctx, method, endpoint, query, payload, out)
		if err == nil || attempt == len(retryDelays) || !retryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		o.logger.DebugContext(ctx, "retrying ORS request", "endpoint", endpoint, "attempt", attempt+1, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelays[attempt]):
		}
	}
}

func (o *ORSOracle) send(ctx context.Context, method, endpoint string, query url.Values, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", o.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}

	resp, err := o.session.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
