package cache

import (
	"context"
	"errors"
	"excursion-route-planner/internal/domain"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingWaypoints struct {
	calls int
	wp    domain.Waypoint
	ok    bool
	err   error
}

func (c *countingWaypoints) FarthestReachable(ctx context.Context, from, to string, maxDistance float64) (domain.Waypoint, bool, error) {
	c.calls++
	return c.wp, c.ok, c.err
}

func newRedisCache(t *testing.T, next *countingWaypoints) (*RedisWaypointCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisWaypointCache(client, next, nil), mr
}

func TestRedisWaypointCacheStoresHits(t *testing.T) {
	next := &countingWaypoints{wp: domain.Waypoint{City: "Hof", Distance: 330}, ok: true}
	c, mr := newRedisCache(t, next)
	ctx := context.Background()

	for range 3 {
		wp, ok, err := c.FarthestReachable(ctx, "Berlin", "Munich", 400)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, domain.Waypoint{City: "Hof", Distance: 330}, wp)
	}
	assert.Equal(t, 1, next.calls)
	assert.True(t, mr.Exists(waypointKey("Berlin", "Munich", 400)))

	// A different budget is a different question.
	_, _, err := c.FarthestReachable(ctx, "Berlin", "Munich", 200)
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestRedisWaypointCacheStoresMisses(t *testing.T) {
	next := &countingWaypoints{}
	c, _ := newRedisCache(t, next)
	ctx := context.Background()

	for range 2 {
		_, ok, err := c.FarthestReachable(ctx, "Berlin", "Munich", 400)
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Equal(t, 1, next.calls)
}

func TestRedisWaypointCacheExpires(t *testing.T) {
	next := &countingWaypoints{wp: domain.Waypoint{City: "Hof", Distance: 330}, ok: true}
	c, mr := newRedisCache(t, next)
	c.TTL = time.Minute
	ctx := context.Background()

	_, _, err := c.FarthestReachable(ctx, "Berlin", "Munich", 400)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, _, err = c.FarthestReachable(ctx, "Berlin", "Munich", 400)
	require.NoError(t, err)

	assert.Equal(t, 2, next.calls)
}

func TestRedisWaypointCacheDoesNotStoreErrors(t *testing.T) {
	next := &countingWaypoints{err: errors.New("upstream down")}
	c, mr := newRedisCache(t, next)

	_, _, err := c.FarthestReachable(context.Background(), "Berlin", "Munich", 400)
	require.Error(t, err)
	assert.False(t, mr.Exists(waypointKey("Berlin", "Munich", 400)))
}

func TestRedisWaypointCacheFallsThroughWhenRedisIsDown(t *testing.T) {
	next := &countingWaypoints{wp: domain.Waypoint{City: "Hof", Distance: 330}, ok: true}
	c, mr := newRedisCache(t, next)
	mr.Close()

	wp, ok, err := c.FarthestReachable(context.Background(), "Berlin", "Munich", 400)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Hof", wp.City)
}
