package dto

import (
	"excursion-route-planner/internal/domain"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ExcursionRequest struct {
	Name       string   `json:"name"`
	City       string   `json:"city"`
	StartTimes []string `json:"start_times"` // "HH:MM"
	Duration   string   `json:"duration"`    // "4h", "90m" or hours
}

type PlanItineraryRequest struct {
	Origin     string             `json:"origin"`
	DepartAt   *time.Time         `json:"depart_at"`
	Excursions []ExcursionRequest `json:"excursions"`
}

// ToDomain validates the excursions; failures wrap domain.ErrConfig.
func (r PlanItineraryRequest) ToDomain() ([]domain.Excursion, error) {
	out := make([]domain.Excursion, 0, len(r.Excursions))
	for i, e := range r.Excursions {
		times := make([]float64, 0, len(e.StartTimes))
		for _, s := range e.StartTimes {
			h, err := domain.ParseClock(s)
			if err != nil {
				return nil, fmt.Errorf("excursion #%d: %w", i+1, err)
			}
			times = append(times, h)
		}
		duration, err := domain.ParseDurationHours(e.Duration)
		if err != nil {
			return nil, fmt.Errorf("excursion #%d: %w", i+1, err)
		}
		exc, err := domain.NewExcursion(e.City, e.Name, times, duration)
		if err != nil {
			return nil, fmt.Errorf("excursion #%d: %w", i+1, err)
		}
		out = append(out, exc)
	}
	return out, nil
}

type StopResponse struct {
	Location string     `json:"location"`
	ArriveAt *time.Time `json:"arrive_at"`
	DepartAt *time.Time `json:"depart_at"`
	Label    string     `json:"label"`
	Waypoint bool       `json:"waypoint"`
}

type ItineraryResponse struct {
	ID       *uuid.UUID     `json:"id,omitempty"`
	Origin   string         `json:"origin"`
	Tour     []string       `json:"tour"`
	Distance float64        `json:"distance"`
	Stops    []StopResponse `json:"stops"`
}

func NewItineraryResponse(it *domain.Itinerary) ItineraryResponse {
	res := ItineraryResponse{
		Origin:   it.Origin,
		Tour:     it.Tour,
		Distance: it.Distance,
		Stops:    make([]StopResponse, 0, len(it.Stops)),
	}
	if it.ID != uuid.Nil {
		id := it.ID
		res.ID = &id
	}
	for _, s := range it.Stops {
		res.Stops = append(res.Stops, StopResponse{
			Location: s.Location,
			ArriveAt: s.ArriveAt,
			DepartAt: s.DepartAt,
			Label:    s.Label,
			Waypoint: s.IsWaypoint(),
		})
	}
	return res
}
