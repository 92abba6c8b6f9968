// Package main is the composition root of the HTTP planning service.
// It wires concrete adapters behind ports and starts the server.
package main

import (
	"context"
	"errors"
	"excursion-route-planner/internal/api"
	"excursion-route-planner/internal/app"
	"excursion-route-planner/internal/config"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	logger := app.NewLogger(cfg.LogLevel, os.Stdout)
	slog.SetDefault(logger)

	deps, err := app.Wire(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to wire adapters", "error", err)
		os.Exit(1)
	}
	defer deps.Close()

	if deps.Itineraries == nil {
		logger.Info("itinerary persistence disabled")
	}

	router := api.NewRouter(app.NewPlanner(cfg, deps, logger), deps.Itineraries, logger)

	// Write timeout is tuned for cold-cache planning against ORS.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "oracle", cfg.Oracle)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		logger.Error("server error", "error", err)
		return
	case <-stop:
	}
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		return
	}
	logger.Info("server stopped")
}
