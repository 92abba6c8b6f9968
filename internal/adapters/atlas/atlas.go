// Package atlas provides an offline route atlas implementing both the
// distance and the waypoint oracle from a static YAML document.
package atlas

import (
	"context"
	"excursion-route-planner/internal/domain"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Distance is a known driving distance between two cities.
type Distance struct {
	From string  `yaml:"from"`
	To   string  `yaml:"to"`
	Km   float64 `yaml:"km"`
}

// Corridor lists the places along the From->To route, each measured from From.
// Km is the corridor length; when zero the matching Distance is used.
type Corridor struct {
	From  string  `yaml:"from"`
	To    string  `yaml:"to"`
	Km    float64 `yaml:"km,omitempty"`
	Stops []Place `yaml:"stops"`
}

// Place is a named location on a corridor.
type Place struct {
	City string  `yaml:"city"`
	Km   float64 `yaml:"km"`
}

type document struct {
	Distances []Distance `yaml:"distances"`
	Corridors []Corridor `yaml:"corridors"`
}

// Atlas is read-only after construction and safe for concurrent use.
type Atlas struct {
	distances map[string]float64
	corridors map[string][]domain.Waypoint
	lengths   map[string]float64
}

func key(from, to string) string { return from + "|" + to }

// New builds an atlas from distances and corridors.
func New(distances []Distance, corridors []Corridor) (*Atlas, error) {
	a := &Atlas{
		distances: make(map[string]float64, len(distances)),
		corridors: make(map[string][]domain.Waypoint, len(corridors)),
		lengths:   make(map[string]float64, len(corridors)),
	}

	for i, d := range distances {
		from, to := strings.TrimSpace(d.From), strings.TrimSpace(d.To)
		if from == "" || to == "" || from == to {
			return nil, fmt.Errorf("atlas: distance #%d: endpoints must be distinct and non-empty: %w", i+1, domain.ErrConfig)
		}
		if d.Km <= 0 {
			return nil, fmt.Errorf("atlas: distance %q -> %q: km must be positive: %w", from, to, domain.ErrConfig)
		}
		a.distances[key(from, to)] = d.Km
	}

	for i, c := range corridors {
		from, to := strings.TrimSpace(c.From), strings.TrimSpace(c.To)
		if from == "" || to == "" {
			return nil, fmt.Errorf("atlas: corridor #%d: endpoints must be non-empty: %w", i+1, domain.ErrConfig)
		}

		length := c.Km
		if length == 0 {
			length, _ = a.lookup(from, to)
		}

		stops := make([]domain.Waypoint, 0, len(c.Stops))
		for _, s := range c.Stops {
			if strings.TrimSpace(s.City) == "" || s.Km <= 0 {
				return nil, fmt.Errorf("atlas: corridor %q -> %q: invalid stop %+v: %w", from, to, s, domain.ErrConfig)
			}
			stops = append(stops, domain.Waypoint{City: strings.TrimSpace(s.City), Distance: s.Km})
		}
		slices.SortFunc(stops, func(x, y domain.Waypoint) int {
			switch {
			case x.Distance < y.Distance:
				return -1
			case x.Distance > y.Distance:
				return 1
			}
			return strings.Compare(x.City, y.City)
		})

		a.corridors[key(from, to)] = stops
		a.lengths[key(from, to)] = length
	}

	return a, nil
}

// Parse decodes a YAML atlas document.
func Parse(data []byte) (*Atlas, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("atlas: parse yaml: %v: %w", err, domain.ErrConfig)
	}
	return New(doc.Distances, doc.Corridors)
}

// Load reads and parses the atlas at path.
func Load(path string) (*Atlas, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("atlas: read %q: %w", path, err)
	}
	return Parse(data)
}

func (a *Atlas) lookup(from, to string) (float64, bool) {
	if d, ok := a.distances[key(from, to)]; ok {
		return d, true
	}
	d, ok := a.distances[key(to, from)]
	return d, ok
}

// Distance returns the atlas distance in either orientation.
func (a *Atlas) Distance(ctx context.Context, from, to string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	d, ok := a.lookup(from, to)
	if !ok {
		return 0, fmt.Errorf("atlas: %q -> %q: %w", from, to, domain.ErrUnavailable)
	}
	return d, nil
}

// FarthestReachable walks the corridor between from and to. A corridor known
// only in the opposite orientation is re-measured from `from`.
func (a *Atlas) FarthestReachable(
	ctx context.Context,
	from string,
	to string,
	maxDistance float64,
) (domain.Waypoint, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Waypoint{}, false, err
	}

	stops, ok := a.corridors[key(from, to)]
	if !ok {
		reversed, found := a.corridors[key(to, from)]
		if !found {
			return domain.Waypoint{}, false, nil
		}
		length := a.lengths[key(to, from)]
		if length <= 0 {
			return domain.Waypoint{}, false, nil
		}

		stops = make([]domain.Waypoint, 0, len(reversed))
		for i := len(reversed) - 1; i >= 0; i-- {
			if d := length - reversed[i].Distance; d > 0 {
				stops = append(stops, domain.Waypoint{City: reversed[i].City, Distance: d})
			}
		}
	}

	var (
		best  domain.Waypoint
		found bool
	)
	for _, s := range stops {
		if s.Distance > maxDistance {
			break
		}
		best = s
		found = true
	}

	return best, found, nil
}
