package api

import (
	"excursion-route-planner/internal/api/handlers"
	"excursion-route-planner/internal/ports"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
// repo may be nil, which disables persistence.
func NewRouter(planner handlers.Planner, repo ports.ItineraryRepository, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	itineraries := &handlers.ItineraryHandler{
		Planner: planner,
		Repo:    repo,
		Logger:  logger,
		Now:     time.Now,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", handlers.Health)
	r.Route("/itineraries", func(r chi.Router) {
		r.Post("/", itineraries.Create)
		r.Get("/{id}", itineraries.Get)
	})

	return r
}
