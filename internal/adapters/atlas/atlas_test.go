package atlas

import (
	"context"
	"excursion-route-planner/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `
distances:
  - {from: Berlin, to: Munich, km: 585}
  - {from: Berlin, to: Dresden, km: 193}
corridors:
  - from: Berlin
    to: Munich
    stops:
      - {city: Leipzig, km: 190}
      - {city: Hof, km: 330}
      - {city: Nuremberg, km: 435}
`

func TestParseAndDistance(t *testing.T) {
	a, err := Parse([]byte(doc))
	require.NoError(t, err)

	d, err := a.Distance(context.Background(), "Munich", "Berlin")
	require.NoError(t, err)
	assert.Equal(t, 585.0, d)

	_, err = a.Distance(context.Background(), "Munich", "Dresden")
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestFarthestReachable(t *testing.T) {
	a, err := Parse([]byte(doc))
	require.NoError(t, err)

	wp, ok, err := a.FarthestReachable(context.Background(), "Berlin", "Munich", 400)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.Waypoint{City: "Hof", Distance: 330}, wp)

	_, ok, err = a.FarthestReachable(context.Background(), "Berlin", "Munich", 100)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFarthestReachableReversedCorridor(t *testing.T) {
	a, err := Parse([]byte(doc))
	require.NoError(t, err)

	// Munich -> Berlin: Nuremberg 150, Hof 255, Leipzig 395.
	wp, ok, err := a.FarthestReachable(context.Background(), "Munich", "Berlin", 300)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Hof", wp.City)
	assert.InDelta(t, 255, wp.Distance, 1e-9)
}

func TestFarthestReachableUnknownRoute(t *testing.T) {
	a, err := Parse([]byte(doc))
	require.NoError(t, err)

	_, ok, err := a.FarthestReachable(context.Background(), "Berlin", "Dresden", 500)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseRejectsInvalid(t *testing.T) {
	_, err := Parse([]byte("distances:\n  - {from: A, to: A, km: 3}\n"))
	assert.ErrorIs(t, err, domain.ErrConfig)

	_, err = Parse([]byte("distances: [oops"))
	assert.ErrorIs(t, err, domain.ErrConfig)
}
