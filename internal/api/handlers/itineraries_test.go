package handlers

import (
	"context"
	"excursion-route-planner/internal/domain"
	"excursion-route-planner/internal/services"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plannerFunc func(ctx context.Context, req services.PlanTourRequest) (*domain.Itinerary, error)

func (f plannerFunc) PlanTour(ctx context.Context, req services.PlanTourRequest) (*domain.Itinerary, error) {
	return f(ctx, req)
}

func TestCreateDefaultsDepartureToNow(t *testing.T) {
	now := time.Date(2026, 6, 1, 7, 30, 0, 0, time.UTC)

	var got time.Time
	h := &ItineraryHandler{
		Planner: plannerFunc(func(ctx context.Context, req services.PlanTourRequest) (*domain.Itinerary, error) {
			got = req.DepartAt
			end := req.DepartAt
			return &domain.Itinerary{
				Origin: req.Origin,
				Tour:   []string{req.Origin},
				Stops: []domain.Stop{
					{Location: req.Origin, DepartAt: &end, Label: domain.LabelStartingPoint},
					{Location: req.Origin, ArriveAt: &end, Label: domain.LabelEndingPoint},
				},
			}, nil
		}),
		Logger: slog.Default(),
		Now:    func() time.Time { return now },
	}

	body := `{"origin":"Berlin","excursions":[{"name":"Zoo","city":"Leipzig","start_times":["10:00"],"duration":"1.5"}]}`
	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/itineraries", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, now, got)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
