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
	"strings"
)

// Columns of the excursions file. Header matching ignores case and
// surrounding whitespace; column order is free.
const (
	colName      = "name"
	colCity      = "city"
	colStartTime = "start time"
	colDuration  = "duration"
)

// CSVExcursionSource reads excursions from a CSV file with the header
// Name,City,Start time,Duration.
type CSVExcursionSource struct {
	Path string
}

var _ ports.ExcursionSource = (*CSVExcursionSource)(nil)

func NewCSVExcursionSource(path string) *CSVExcursionSource {
	return &CSVExcursionSource{Path: path}
}

func (s *CSVExcursionSource) ListExcursions(ctx context.Context) ([]domain.Excursion, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("list excursions: open %q: %w", s.Path, err)
	}
	defer f.Close()

	excursions, err := ReadExcursions(f)
	if err != nil {
		return nil, fmt.Errorf("list excursions %q: %w", s.Path, err)
	}
	return excursions, nil
}

// ReadExcursions parses excursion rows in file order. Any malformed row fails
// the whole read with domain.ErrConfig naming the row.
func ReadExcursions(r io.Reader) ([]domain.Excursion, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read excursions: missing header: %w", domain.ErrConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("read excursions: header: %v: %w", err, domain.ErrConfig)
	}

	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range []string{colName, colCity, colStartTime, colDuration} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("read excursions: header lacks column %q: %w", col, domain.ErrConfig)
		}
	}

	var out []domain.Excursion
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read excursions: %v: %w", err, domain.ErrConfig)
		}
		if blank(rec) {
			continue
		}
		row, _ := cr.FieldPos(0)

		field := func(col string) string {
			if i := idx[col]; i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}

		times, err := domain.ParseAdmissionTimes(field(colStartTime))
		if err != nil {
			return nil, fmt.Errorf("read excursions: row %d: %w", row, err)
		}
		duration, err := domain.ParseDurationHours(field(colDuration))
		if err != nil {
			return nil, fmt.Errorf("read excursions: row %d: %w", row, err)
		}
		e, err := domain.NewExcursion(field(colCity), field(colName), times, duration)
		if err != nil {
			return nil, fmt.Errorf("read excursions: row %d: %w", row, err)
		}
		out = append(out, e)
	}

	return out, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
