package cache

import (
	"context"
	"encoding/json"
	"errors"
	"excursion-route-planner/internal/domain"
	"excursion-route-planner/internal/platform/obs"
	"excursion-route-planner/internal/ports"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultWaypointTTL = 24 * time.Hour

// RedisWaypointCache decorates a WaypointOracle, remembering both found
// stopovers and "none" answers per (from, to, maxDistance).
// Redis failures fall through to the wrapped oracle.
type RedisWaypointCache struct {
	Client *redis.Client
	Next   ports.WaypointOracle
	TTL    time.Duration
	Logger *slog.Logger
}

var _ ports.WaypointOracle = (*RedisWaypointCache)(nil)

func NewRedisWaypointCache(client *redis.Client, next ports.WaypointOracle, logger *slog.Logger) *RedisWaypointCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisWaypointCache{Client: client, Next: next, TTL: defaultWaypointTTL, Logger: logger}
}

type cachedWaypoint struct {
	City  string  `json:"city,omitempty"`
	Km    float64 `json:"km,omitempty"`
	Found bool    `json:"found"`
}

func waypointKey(from, to string, maxDistance float64) string {
	return "waypoint:" + from + "|" + to + "|" + strconv.FormatFloat(maxDistance, 'f', 3, 64)
}

func (c *RedisWaypointCache) FarthestReachable(
	ctx context.Context,
	from string,
	to string,
	maxDistance float64,
) (_ domain.Waypoint, _ bool, err error) {
	defer obs.Time(ctx, "redis.waypoint.FarthestReachable")(&err)

	if c.Next == nil {
		return domain.Waypoint{}, false, errors.New("waypoint cache: next oracle is nil")
	}

	key := waypointKey(from, to, maxDistance)

	raw, err := c.Client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var hit cachedWaypoint
		if err := json.Unmarshal(raw, &hit); err == nil {
			return domain.Waypoint{City: hit.City, Distance: hit.Km}, hit.Found, nil
		}
		c.Logger.WarnContext(ctx, "waypoint cache entry corrupt", "key", key)
	case !errors.Is(err, redis.Nil):
		c.Logger.WarnContext(ctx, "waypoint cache read failed", "key", key, "error", err)
	}

	wp, ok, err := c.Next.FarthestReachable(ctx, from, to, maxDistance)
	if err != nil {
		// Errors are not cached; the next query may succeed.
		return domain.Waypoint{}, false, fmt.Errorf("waypoint cache: %w", err)
	}

	payload, _ := json.Marshal(cachedWaypoint{City: wp.City, Km: wp.Distance, Found: ok})
	if err := c.Client.Set(ctx, key, payload, c.TTL).Err(); err != nil {
		c.Logger.WarnContext(ctx, "waypoint cache write failed", "key", key, "error", err)
	}

	return wp, ok, nil
}
