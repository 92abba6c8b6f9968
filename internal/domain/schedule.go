package domain

import (
	"fmt"
	"math"
	"time"
)

// ScheduleConfig holds the driving-day parameters consumed by the scheduler.
// Hours are hours since midnight; Velocity is distance units per hour.
type ScheduleConfig struct {
	DailyDrivingHours float64
	DayStartHour      float64
	DayEndHour        float64
	Velocity          float64
}

func (c ScheduleConfig) Validate() error {
	if c.DailyDrivingHours <= 0 {
		return fmt.Errorf("schedule config: daily driving hours must be positive, got %v: %w", c.DailyDrivingHours, ErrConfig)
	}
	if c.Velocity <= 0 {
		return fmt.Errorf("schedule config: velocity must be positive, got %v: %w", c.Velocity, ErrConfig)
	}
	if c.DayStartHour < 0 || c.DayEndHour > 24 || c.DayStartHour >= c.DayEndHour {
		return fmt.Errorf(
			"schedule config: day window [%v, %v] must satisfy 0 <= start < end <= 24: %w",
			c.DayStartHour, c.DayEndHour, ErrConfig,
		)
	}
	return nil
}

// DailyDistance is the distance coverable in one full driving day.
func (c ScheduleConfig) DailyDistance() float64 { return c.DailyDrivingHours * c.Velocity }

// ScheduleState is the mutable walk state carried from leg to leg.
// Date is midnight of the current calendar day, Clock the wall-clock hour on
// Date (past 24 for instants on later days), and DrivenToday the hours
// already driven on Date.
type ScheduleState struct {
	Date        time.Time
	Clock       float64
	DrivenToday float64
}

// NewScheduleState splits a departure instant into day and wall clock, so
// hours keep their meaning on days with a DST transition.
func NewScheduleState(departAt time.Time) ScheduleState {
	y, m, d := departAt.Date()
	h, mi, sec := departAt.Clock()
	return ScheduleState{
		Date:  time.Date(y, m, d, 0, 0, 0, 0, departAt.Location()),
		Clock: float64(h) + float64(mi)/60 + (float64(sec)+float64(departAt.Nanosecond())/1e9)/3600,
	}
}

// At converts a wall-clock hour on the current day into an instant, rounded
// to the minute.
func (s ScheduleState) At(hours float64) time.Time {
	y, m, d := s.Date.Date()
	minutes := int(math.Round(hours * 60))
	return time.Date(y, m, d, 0, minutes, 0, 0, s.Date.Location())
}

// RemainingBudget is the distance still drivable today.
func (s ScheduleState) RemainingBudget(cfg ScheduleConfig) float64 {
	hours := math.Min(cfg.DailyDrivingHours-s.DrivenToday, cfg.DayEndHour-s.Clock)
	return hours * cfg.Velocity
}

// Fresh reports whether the state sits at the start of an untouched day.
func (s ScheduleState) Fresh(cfg ScheduleConfig) bool {
	return s.DrivenToday == 0 && s.Clock <= cfg.DayStartHour
}

// NextDay rolls over to the start of the next calendar day. A clock already
// past the following day's start (a late, long excursion) skips further.
func (s ScheduleState) NextDay(cfg ScheduleConfig) ScheduleState {
	days := 1
	for s.Clock > float64(24*days)+cfg.DayStartHour {
		days++
	}
	return ScheduleState{
		Date:  s.Date.AddDate(0, 0, days),
		Clock: cfg.DayStartHour,
	}
}
