package services

import (
	"context"
	"excursion-route-planner/internal/domain"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// pairOracle is a concurrency-safe distance oracle over directed pairs.
type pairOracle struct {
	m     map[string]float64
	calls atomic.Int64
	delay time.Duration
}

func newPairOracle(symmetric bool, pairs map[[2]string]float64) *pairOracle {
	m := make(map[string]float64, 2*len(pairs))
	for p, d := range pairs {
		m[p[0]+"|"+p[1]] = d
		if symmetric {
			m[p[1]+"|"+p[0]] = d
		}
	}
	return &pairOracle{m: m}
}

func (o *pairOracle) Distance(ctx context.Context, from, to string) (float64, error) {
	o.calls.Add(1)
	if o.delay > 0 {
		time.Sleep(o.delay)
	}
	d, ok := o.m[from+"|"+to]
	if !ok {
		return 0, fmt.Errorf("pair %q -> %q: %w", from, to, domain.ErrUnavailable)
	}
	return d, nil
}

// matrixOracle adds the batched row lookup on top of pairOracle.
type matrixOracle struct {
	*pairOracle
	rows atomic.Int64
}

func (o *matrixOracle) Distances(ctx context.Context, from string, to []string) (map[string]float64, error) {
	o.rows.Add(1)
	out := make(map[string]float64, len(to))
	for _, t := range to {
		if d, ok := o.m[from+"|"+t]; ok {
			out[t] = d
		}
	}
	return out, nil
}

type waypointCall struct {
	from, to    string
	maxDistance float64
}

type waypointReply struct {
	wp  domain.Waypoint
	ok  bool
	err error
}

// scriptedWaypoints replays replies in order and records every query.
// Once the script is exhausted it answers "none".
type scriptedWaypoints struct {
	mu      sync.Mutex
	replies []waypointReply
	calls   []waypointCall
}

func (s *scriptedWaypoints) FarthestReachable(ctx context.Context, from, to string, maxDistance float64) (domain.Waypoint, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, waypointCall{from: from, to: to, maxDistance: maxDistance})
	if len(s.replies) == 0 {
		return domain.Waypoint{}, false, nil
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r.wp, r.ok, r.err
}

var testConfig = domain.ScheduleConfig{
	DailyDrivingHours: 8,
	DayStartHour:      8,
	DayEndHour:        20,
	Velocity:          70,
}

var day1 = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func clockAt(day int, hours, minutes int) time.Time {
	return day1.AddDate(0, 0, day-1).Add(time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute)
}
