package services

import (
	"context"
	"errors"
	"excursion-route-planner/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(waypoints *scriptedWaypoints, excursions ...domain.Excursion) *Scheduler {
	return &Scheduler{
		Graph:      domain.NewDistanceGraph(),
		Waypoints:  waypoints,
		Config:     testConfig,
		Origin:     "O",
		Excursions: ExcursionsByCity(excursions),
	}
}

var churches = domain.Excursion{
	City:           "A",
	Name:           "Best churches",
	AdmissionTimes: []float64{9, 14, 16},
	Duration:       4,
}

func TestLegSplitInsertsStopover(t *testing.T) {
	wps := &scriptedWaypoints{replies: []waypointReply{
		{wp: domain.Waypoint{City: "Mid", Distance: 130}, ok: true},
	}}
	s := newTestScheduler(wps)
	state := domain.ScheduleState{Date: day1, Clock: 10, DrivenToday: 6}

	outcome, next, err := s.Leg(context.Background(), state, "X", "Y", 280)
	require.NoError(t, err)

	split, ok := outcome.(SplitInserted)
	require.True(t, ok, "expected SplitInserted, got %T", outcome)
	assert.Equal(t, "Mid", split.Stop.Location)
	assert.Equal(t, domain.LabelStoppingPoint, split.Stop.Label)
	assert.InDelta(t, 150, split.Remaining, 1e-9)
	assert.Equal(t, clockAt(1, 11, 51), *split.Stop.ArriveAt)
	assert.Equal(t, clockAt(2, 8, 0), *split.Stop.DepartAt)

	require.Len(t, wps.calls, 1)
	assert.InDelta(t, 140, wps.calls[0].maxDistance, 1e-9)

	assert.Equal(t, day1.AddDate(0, 0, 1), next.Date)
	assert.Equal(t, 8.0, next.Clock)
	assert.Zero(t, next.DrivenToday)
}

func TestLegSplitRequiresReachableContinuation(t *testing.T) {
	wps := &scriptedWaypoints{replies: []waypointReply{
		{wp: domain.Waypoint{City: "Mid", Distance: 130}, ok: true},
		{ok: false},
	}}
	s := newTestScheduler(wps)
	state := domain.ScheduleState{Date: day1, Clock: 10, DrivenToday: 6}

	outcome, next, err := s.Leg(context.Background(), state, "X", "Y", 1000)
	require.NoError(t, err)

	rolled, ok := outcome.(RolledOverToNextDay)
	require.True(t, ok, "expected RolledOverToNextDay, got %T", outcome)
	assert.Equal(t, clockAt(2, 8, 0), rolled.DepartAt)
	assert.True(t, next.Fresh(testConfig))

	require.Len(t, wps.calls, 2)
	assert.Equal(t, waypointCall{from: "Mid", to: "Y", maxDistance: 560}, wps.calls[1])
}

func TestLegSplitCommitsWhenContinuationExists(t *testing.T) {
	wps := &scriptedWaypoints{replies: []waypointReply{
		{wp: domain.Waypoint{City: "Mid", Distance: 130}, ok: true},
		{wp: domain.Waypoint{City: "Far", Distance: 500}, ok: true},
	}}
	s := newTestScheduler(wps)
	state := domain.ScheduleState{Date: day1, Clock: 10, DrivenToday: 6}

	outcome, _, err := s.Leg(context.Background(), state, "X", "Y", 1000)
	require.NoError(t, err)

	split, ok := outcome.(SplitInserted)
	require.True(t, ok, "expected SplitInserted, got %T", outcome)
	assert.Equal(t, "Mid", split.Stop.Location)
	assert.InDelta(t, 870, split.Remaining, 1e-9)
}

func TestLegRollsOverWhenNoWaypoint(t *testing.T) {
	s := newTestScheduler(&scriptedWaypoints{})
	state := domain.ScheduleState{Date: day1, Clock: 18, DrivenToday: 3}

	outcome, next, err := s.Leg(context.Background(), state, "X", "Y", 300)
	require.NoError(t, err)

	_, ok := outcome.(RolledOverToNextDay)
	require.True(t, ok, "expected RolledOverToNextDay, got %T", outcome)

	// A full day now covers the leg.
	outcome, _, err = s.Leg(context.Background(), next, "X", "Y", 300)
	require.NoError(t, err)
	direct, ok := outcome.(Direct)
	require.True(t, ok, "expected Direct, got %T", outcome)
	assert.Equal(t, "Y", direct.Stop.Location)
}

func TestLegWaypointErrorIsTreatedAsNone(t *testing.T) {
	wps := &scriptedWaypoints{replies: []waypointReply{{err: errors.New("timeout")}}}
	s := newTestScheduler(wps)
	state := domain.ScheduleState{Date: day1, Clock: 18, DrivenToday: 3}

	outcome, _, err := s.Leg(context.Background(), state, "X", "Y", 300)
	require.NoError(t, err)
	assert.IsType(t, RolledOverToNextDay{}, outcome)
}

func TestLegInfeasibleOnFreshDayWithoutWaypoint(t *testing.T) {
	s := newTestScheduler(&scriptedWaypoints{})
	state := domain.ScheduleState{Date: day1, Clock: 8}

	_, _, err := s.Leg(context.Background(), state, "X", "Y", 900)
	assert.ErrorIs(t, err, domain.ErrRouteInfeasible)
	assert.ErrorContains(t, err, `"X"`)
}

func TestLegExcursionTakesNextAdmission(t *testing.T) {
	s := newTestScheduler(&scriptedWaypoints{}, churches)
	state := domain.ScheduleState{Date: day1, Clock: 9}

	outcome, next, err := s.Leg(context.Background(), state, "O", "A", 70)
	require.NoError(t, err)

	direct, ok := outcome.(Direct)
	require.True(t, ok, "expected Direct, got %T", outcome)
	assert.Equal(t, "Best churches", direct.Stop.Label)
	assert.Equal(t, clockAt(1, 10, 0), *direct.Stop.ArriveAt)
	assert.Equal(t, clockAt(1, 18, 0), *direct.Stop.DepartAt)
	assert.Equal(t, 18.0, next.Clock)
	assert.InDelta(t, 1, next.DrivenToday, 1e-9)
}

func TestLegExcursionRollsToNextDay(t *testing.T) {
	s := newTestScheduler(&scriptedWaypoints{}, churches)
	state := domain.ScheduleState{Date: day1, Clock: 16}

	outcome, next, err := s.Leg(context.Background(), state, "O", "A", 70)
	require.NoError(t, err)

	direct := outcome.(Direct)
	assert.Equal(t, clockAt(1, 17, 0), *direct.Stop.ArriveAt)
	assert.Equal(t, clockAt(2, 13, 0), *direct.Stop.DepartAt)
	assert.Equal(t, day1.AddDate(0, 0, 1), next.Date)
	assert.Equal(t, 13.0, next.Clock)
	assert.Zero(t, next.DrivenToday)
}

func TestLegOriginIsTerminal(t *testing.T) {
	// Even an excursion held in the origin does not delay the ending point.
	home := domain.Excursion{City: "O", Name: "Home tour", AdmissionTimes: []float64{20}, Duration: 1}
	s := newTestScheduler(&scriptedWaypoints{}, home)
	state := domain.ScheduleState{Date: day1, Clock: 10}

	outcome, _, err := s.Leg(context.Background(), state, "A", "O", 35)
	require.NoError(t, err)

	direct := outcome.(Direct)
	assert.Equal(t, domain.LabelEndingPoint, direct.Stop.Label)
	assert.Nil(t, direct.Stop.DepartAt)
	assert.Equal(t, clockAt(1, 10, 30), *direct.Stop.ArriveAt)
}

func TestScheduleMovesDepartureOnRollover(t *testing.T) {
	wps := &scriptedWaypoints{replies: []waypointReply{
		{ok: false},
		{wp: domain.Waypoint{City: "Mid", Distance: 500}, ok: true},
	}}
	s := newTestScheduler(wps, churches)
	s.Graph.Add("O", "A", 600)

	state := domain.NewScheduleState(clockAt(1, 12, 0))
	stops, state, err := s.Schedule(context.Background(), state, []string{"O", "A"})
	require.NoError(t, err)
	require.Len(t, stops, 3)

	assert.Equal(t, domain.LabelStartingPoint, stops[0].Label)
	assert.Nil(t, stops[0].ArriveAt)
	assert.Equal(t, clockAt(2, 8, 0), *stops[0].DepartAt)

	assert.Equal(t, "Mid", stops[1].Location)
	assert.Equal(t, clockAt(2, 15, 9), *stops[1].ArriveAt)
	assert.Equal(t, clockAt(3, 8, 0), *stops[1].DepartAt)

	assert.Equal(t, "A", stops[2].Location)
	assert.Equal(t, clockAt(3, 9, 26), *stops[2].ArriveAt)
	assert.Equal(t, clockAt(3, 18, 0), *stops[2].DepartAt)
	assert.Equal(t, 18.0, state.Clock)
}

func TestScheduleRolloverKeepsExcursionDeparture(t *testing.T) {
	lateTour := domain.Excursion{City: "A", Name: "Late tour", AdmissionTimes: []float64{16}, Duration: 4}
	s := newTestScheduler(&scriptedWaypoints{}, lateTour)
	s.Graph.Add("O", "A", 70)
	s.Graph.Add("A", "B", 100)

	stops, _, err := s.Schedule(context.Background(), domain.NewScheduleState(clockAt(1, 9, 0)), []string{"O", "A", "B"})
	require.NoError(t, err)
	require.Len(t, stops, 3)

	assert.Equal(t, "Late tour", stops[1].Label)
	assert.Equal(t, clockAt(1, 10, 0), *stops[1].ArriveAt)
	assert.Equal(t, clockAt(1, 20, 0), *stops[1].DepartAt)

	// Driving resumes at the next day start.
	assert.Equal(t, "B", stops[2].Location)
	assert.Equal(t, clockAt(2, 9, 26), *stops[2].ArriveAt)
}

func TestScheduleFallsBackToOracle(t *testing.T) {
	s := newTestScheduler(&scriptedWaypoints{}, churches)
	s.Distances = newPairOracle(true, map[[2]string]float64{{"O", "A"}: 70})

	stops, _, err := s.Schedule(context.Background(), domain.NewScheduleState(clockAt(1, 9, 0)), []string{"O", "A"})
	require.NoError(t, err)
	assert.Equal(t, clockAt(1, 10, 0), *stops[1].ArriveAt)
}

func TestScheduleMissingLegIsInfeasible(t *testing.T) {
	s := newTestScheduler(&scriptedWaypoints{}, churches)
	s.Distances = newPairOracle(true, nil)

	_, _, err := s.Schedule(context.Background(), domain.NewScheduleState(clockAt(1, 9, 0)), []string{"O", "A"})
	assert.ErrorIs(t, err, domain.ErrRouteInfeasible)
	assert.ErrorContains(t, err, `"O"`)
}
