package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"excursion-route-planner/internal/api/dto"
	"excursion-route-planner/internal/domain"
	"excursion-route-planner/internal/ports"
	"excursion-route-planner/internal/services"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Planner is the slice of services.Planner the handlers need.
type Planner interface {
	PlanTour(ctx context.Context, req services.PlanTourRequest) (*domain.Itinerary, error)
}

// ItineraryHandler plans itineraries and, when Repo is set, stores them.
type ItineraryHandler struct {
	Planner Planner
	Repo    ports.ItineraryRepository
	Logger  *slog.Logger
	Now     func() time.Time
}

const maxBodyBytes = 1 << 20

// Create plans a tour for the posted excursions. depart_at defaults to now.
func (h *ItineraryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.PlanItineraryRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if req.Origin == "" {
		writeError(w, r, http.StatusBadRequest, "origin is required")
		return
	}
	if len(req.Excursions) == 0 {
		writeError(w, r, http.StatusBadRequest, "at least one excursion is required")
		return
	}

	excursions, err := req.ToDomain()
	if err != nil {
		writeDomainError(w, r, h.Logger, "plan itinerary", err)
		return
	}

	depart := h.Now()
	if req.DepartAt != nil {
		depart = *req.DepartAt
	}

	it, err := h.Planner.PlanTour(r.Context(), services.PlanTourRequest{
		Origin:     req.Origin,
		DepartAt:   depart,
		Excursions: excursions,
	})
	if err != nil {
		writeDomainError(w, r, h.Logger, "plan itinerary", err)
		return
	}

	status := http.StatusOK
	if h.Repo != nil {
		if err := h.Repo.SaveItinerary(r.Context(), it); err != nil {
			writeDomainError(w, r, h.Logger, "save itinerary", err)
			return
		}
		w.Header().Set("Location", "/itineraries/"+it.ID.String())
		status = http.StatusCreated
	}

	writeJSON(w, r, status, dto.NewItineraryResponse(it))
}

// Get returns a stored itinerary by id.
func (h *ItineraryHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Repo == nil {
		writeError(w, r, http.StatusNotFound, "itinerary persistence is disabled")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "id must be a UUID")
		return
	}

	it, err := h.Repo.GetItinerary(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, h.Logger, "get itinerary", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewItineraryResponse(it))
}
