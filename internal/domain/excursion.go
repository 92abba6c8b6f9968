package domain

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Represents a scheduled excursion held in a city.
// AdmissionTimes are hours since midnight (fractional), sorted ascending.
// Duration is expressed in hours. Excursions are immutable once loaded.
type Excursion struct {
	City           string
	Name           string
	AdmissionTimes []float64
	Duration       float64
}

// NewExcursion validates and normalizes an excursion record.
func NewExcursion(city, name string, admissionTimes []float64, duration float64) (Excursion, error) {
	city = strings.TrimSpace(city)
	name = strings.TrimSpace(name)
	if city == "" {
		return Excursion{}, fmt.Errorf("new excursion %q: city must be non-empty: %w", name, ErrConfig)
	}
	if name == "" {
		return Excursion{}, fmt.Errorf("new excursion in %q: name must be non-empty: %w", city, ErrConfig)
	}
	if len(admissionTimes) == 0 {
		return Excursion{}, fmt.Errorf("new excursion %q: at least one admission time is required: %w", name, ErrConfig)
	}
	for _, t := range admissionTimes {
		if t < 0 || t >= 24 {
			return Excursion{}, fmt.Errorf("new excursion %q: admission time %v outside [0, 24): %w", name, t, ErrConfig)
		}
	}
	if duration <= 0 {
		return Excursion{}, fmt.Errorf("new excursion %q: duration must be positive: %w", name, ErrConfig)
	}

	times := slices.Clone(admissionTimes)
	slices.Sort(times)
	times = slices.Compact(times)

	return Excursion{City: city, Name: name, AdmissionTimes: times, Duration: duration}, nil
}

// NextAdmission returns the smallest admission time at or after arrival.
// ok is false when every admission of the day has already started.
func (e Excursion) NextAdmission(arrival float64) (start float64, ok bool) {
	for _, t := range e.AdmissionTimes {
		if t >= arrival {
			return t, true
		}
	}
	return 0, false
}

// ParseAdmissionTimes parses a comma-separated list of "HH:MM" clock times
// (e.g. "09:00, 14:00, 16:30") into fractional hours.
func ParseAdmissionTimes(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		h, err := ParseClock(p)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("parse admission times %q: no times found: %w", s, ErrConfig)
	}

	return out, nil
}

// ParseClock parses "HH:MM" into hours since midnight.
func ParseClock(s string) (float64, error) {
	hh, mm, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return 0, fmt.Errorf("parse clock %q: expected HH:MM: %w", s, ErrConfig)
	}

	h, err := strconv.Atoi(strings.TrimSpace(hh))
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("parse clock %q: invalid hour: %w", s, ErrConfig)
	}
	m, err := strconv.Atoi(strings.TrimSpace(mm))
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("parse clock %q: invalid minute: %w", s, ErrConfig)
	}

	return float64(h) + float64(m)/60, nil
}

// ParseDurationHours accepts Go durations ("4h", "90m", "1h30m") or a bare
// number of hours ("4", "2.5").
func ParseDurationHours(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("parse duration: empty value: %w", ErrConfig)
	}

	if h, err := strconv.ParseFloat(s, 64); err == nil {
		if h <= 0 {
			return 0, fmt.Errorf("parse duration %q: must be positive: %w", s, ErrConfig)
		}
		return h, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %v: %w", s, err, ErrConfig)
	}
	if d <= 0 {
		return 0, fmt.Errorf("parse duration %q: must be positive: %w", s, ErrConfig)
	}

	return d.Hours(), nil
}
