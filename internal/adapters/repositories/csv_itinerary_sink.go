package repositories

import (
	"context"
	"encoding/csv"
	"errors"
	"excursion-route-planner/internal/domain"
	"excursion-route-planner/internal/ports"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// StopTimeLayout formats arrival and departure columns.
const StopTimeLayout = "2006-01-02 15:04:05"

var csvHeader = []string{"City", "Arrival", "Departure", "Stop"}

// CSVItinerarySink writes one row per stop to a CSV file, replacing it.
type CSVItinerarySink struct {
	Path string
}

var _ ports.ItinerarySink = (*CSVItinerarySink)(nil)

func NewCSVItinerarySink(path string) *CSVItinerarySink {
	return &CSVItinerarySink{Path: path}
}

// SaveItinerary writes to a temporary file first so a failed write never
// leaves a truncated itinerary behind.
func (s *CSVItinerarySink) SaveItinerary(ctx context.Context, it *domain.Itinerary) error {
	if it == nil {
		return errors.New("save itinerary: itinerary is nil")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".itinerary-*.csv")
	if err != nil {
		return fmt.Errorf("save itinerary: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteItinerary(tmp, it); err != nil {
		tmp.Close()
		return fmt.Errorf("save itinerary %q: %w", s.Path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save itinerary %q: close: %w", s.Path, err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("save itinerary %q: %w", s.Path, err)
	}

	return nil
}

// WriteItinerary encodes the stops with the City,Arrival,Departure,Stop
// header. Missing times are written as empty fields.
func WriteItinerary(w io.Writer, it *domain.Itinerary) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write itinerary header: %w", err)
	}
	for i, s := range it.Stops {
		rec := []string{s.Location, stopTime(s.ArriveAt), stopTime(s.DepartAt), s.Label}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write itinerary stop #%d: %w", i+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write itinerary: flush: %w", err)
	}
	return nil
}

func stopTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(StopTimeLayout)
}
