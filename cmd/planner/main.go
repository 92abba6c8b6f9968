// Command planner reads an excursion list, plans the shortest closed tour
// from the origin and writes the day-by-day itinerary as CSV.
//
// Usage:
//
//	planner [-start 2006-01-02T15:04] <excursions.csv> <output.csv> <origin>
package main

import (
	"context"
	"excursion-route-planner/internal/adapters/repositories"
	"excursion-route-planner/internal/app"
	"excursion-route-planner/internal/config"
	"excursion-route-planner/internal/services"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
)

const startLayout = "2006-01-02T15:04"

func main() {
	start := flag.String("start", "", "departure time "+startLayout+" in local time (default now)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-start %s] <excursions.csv> <output.csv> <origin>\n", os.Args[0], startLayout)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 3 {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	logger := app.NewLogger(cfg.LogLevel, os.Stderr)
	slog.SetDefault(logger)

	departAt := time.Now()
	if *start != "" {
		departAt, err = time.ParseInLocation(startLayout, *start, time.Local)
		if err != nil {
			logger.Error("invalid -start", "value", *start, "error", err)
			os.Exit(2)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, flag.Arg(0), flag.Arg(1), flag.Arg(2), departAt); err != nil {
		logger.Error("planning failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, input, output, origin string, departAt time.Time) error {
	excursions, err := repositories.NewCSVExcursionSource(input).ListExcursions(ctx)
	if err != nil {
		return err
	}

	deps, err := app.Wire(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	it, err := app.NewPlanner(cfg, deps, logger).PlanTour(ctx, services.PlanTourRequest{
		Origin:     origin,
		DepartAt:   departAt,
		Excursions: excursions,
	})
	if err != nil {
		return err
	}

	if err := repositories.NewCSVItinerarySink(output).SaveItinerary(ctx, it); err != nil {
		return err
	}

	attrs := []any{"output", output, "tour", it.Tour, "km", it.Distance, "stops", len(it.Stops)}
	if deps.Itineraries != nil {
		if err := deps.Itineraries.SaveItinerary(ctx, it); err != nil {
			return err
		}
		attrs = append(attrs, "id", it.ID)
	}
	logger.Info("itinerary written", attrs...)

	return nil
}
