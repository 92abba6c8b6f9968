package services

import (
	"context"
	"excursion-route-planner/internal/domain"
	"fmt"
	"math"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// anywhereWaypoints offers a stopover exactly at the budget on every corridor.
type anywhereWaypoints struct{}

func (anywhereWaypoints) FarthestReachable(ctx context.Context, from, to string, maxDistance float64) (domain.Waypoint, bool, error) {
	km := math.Floor(maxDistance)
	if km < 1 {
		return domain.Waypoint{}, false, nil
	}
	return domain.Waypoint{City: fmt.Sprintf("%s>%s@%.0f", from, to, km), Distance: km}, true, nil
}

var tourExcursions = []domain.Excursion{
	{City: "A", Name: "Museum", AdmissionTimes: []float64{10, 16}, Duration: 3},
	{City: "B", Name: "Late tour", AdmissionTimes: []float64{16}, Duration: 4},
	{City: "C", Name: "Sunset", AdmissionTimes: []float64{18}, Duration: 1},
}

func wallClock(t time.Time, hours float64) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, int(math.Round(hours*60)), 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// assertDrivingDays checks every leg against the driving window and every
// calendar day against the daily cap. A leg that arrives on a later day than
// the previous departure started at that day's start.
func assertDrivingDays(t *testing.T, cfg domain.ScheduleConfig, stops []domain.Stop) {
	t.Helper()

	driven := map[string]time.Duration{}
	legs := map[string]int{}
	for i := 1; i < len(stops); i++ {
		prev, s := stops[i-1], stops[i]
		arrive := *s.ArriveAt

		start := *prev.DepartAt
		dayStart := wallClock(arrive, cfg.DayStartHour)
		if !sameDay(start, arrive) {
			start = dayStart
		}
		assert.False(t, start.Before(dayStart), "leg to %s starts %s before the day start", s.Location, start)
		assert.False(t, arrive.After(wallClock(arrive, cfg.DayEndHour).Add(time.Minute)),
			"%s reached at %s after the day end", s.Location, arrive)

		key := arrive.Format(time.DateOnly)
		driven[key] += arrive.Sub(start)
		legs[key]++
	}

	limit := time.Duration(cfg.DailyDrivingHours * float64(time.Hour))
	for day, d := range driven {
		// Each leg may gain up to a minute from rounding.
		assert.LessOrEqual(t, d, limit+time.Duration(legs[day])*time.Minute, "driving on %s", day)
	}
}

// assertExcursionWindows checks that each excursion stop departs exactly its
// duration after one of its admission times, never before arriving.
func assertExcursionWindows(t *testing.T, excursions map[string]domain.Excursion, stops []domain.Stop) {
	t.Helper()

	visited := 0
	for _, s := range stops {
		if !s.IsExcursion() {
			continue
		}
		visited++

		exc, ok := excursions[s.Location]
		require.True(t, ok, "unexpected excursion stop %+v", s)
		assert.Equal(t, exc.Name, s.Label)

		begin := s.DepartAt.Add(-time.Duration(exc.Duration * float64(time.Hour)))
		assert.False(t, begin.Before(*s.ArriveAt), "%s starts %s before arrival %s", exc.Name, begin, s.ArriveAt)

		clock := float64(begin.Hour()) + float64(begin.Minute())/60
		assert.Contains(t, exc.AdmissionTimes, clock, "%s starts off-window at %s", exc.Name, begin)
	}
	assert.Equal(t, len(excursions), visited)
}

func TestPlannedItinerariesRespectDayBudgetAndWindows(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	short := map[[2]string]float64{
		{"O", "A"}: 300, {"O", "B"}: 420, {"O", "C"}: 250,
		{"A", "B"}: 200, {"A", "C"}: 410, {"B", "C"}: 350,
	}
	long := map[[2]string]float64{
		{"O", "A"}: 300, {"O", "B"}: 700, {"O", "C"}: 250,
		{"A", "B"}: 450, {"A", "C"}: 400, {"B", "C"}: 900,
	}

	tests := []struct {
		name      string
		distances map[[2]string]float64
		waypoints bool
		departAt  time.Time
	}{
		{"rollovers only", short, false, clockAt(1, 8, 0)},
		{"rollovers from afternoon", short, false, clockAt(1, 15, 30)},
		{"stopovers", long, true, clockAt(1, 8, 0)},
		{"stopovers from evening", long, true, clockAt(1, 19, 0)},
		{"across DST change", short, false, time.Date(2026, 3, 28, 9, 0, 0, 0, berlin)},
		{"stopovers across DST change", long, true, time.Date(2026, 10, 24, 11, 0, 0, 0, berlin)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlanner(newPairOracle(true, tt.distances), nil, testConfig, nil)
			if tt.waypoints {
				p.Waypoints = anywhereWaypoints{}
			}

			it, err := p.PlanTour(context.Background(), PlanTourRequest{
				Origin:     "O",
				DepartAt:   tt.departAt,
				Excursions: tourExcursions,
			})
			require.NoError(t, err)

			assertDrivingDays(t, testConfig, it.Stops)
			assertExcursionWindows(t, ExcursionsByCity(tourExcursions), it.Stops)
		})
	}
}
