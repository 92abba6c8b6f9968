// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"excursion-route-planner/internal/domain"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	OracleAtlas = "atlas"
	OracleORS   = "ors"
)

// Config holds all configuration values shared by the binaries.
// Values are populated by Load from environment variables.
type Config struct {
	// Schedule holds the driving-day parameters. All four are required,
	// either as env vars or in the SCHEDULE_CONFIG file.
	Schedule domain.ScheduleConfig

	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// Oracle selects the distance source: "atlas" (default) or "ors".
	Oracle string

	// AtlasPath is the route atlas YAML file. Defaults to "data/atlas.yaml".
	AtlasPath string

	// ORSAPIKey is required when Oracle is "ors".
	ORSAPIKey string

	// ORSCountry restricts geocoding to an ISO country code. Optional.
	ORSCountry string

	// CacheDSN is a Postgres URL or a sqlite file path for the ORS caches. Optional.
	CacheDSN string

	// RedisAddr enables the waypoint cache. Optional.
	RedisAddr string

	// DatabaseURL is the Postgres connection string for itinerary persistence. Optional.
	DatabaseURL string

	// GraphConcurrency bounds in-flight distance queries. Defaults to 8.
	GraphConcurrency int
}

// scheduleFile is the layout of the SCHEDULE_CONFIG file.
type scheduleFile struct {
	DailyDrivingHours *float64 `yaml:"daily_driving_hours"`
	DayStartHour      *float64 `yaml:"day_start_hour"`
	DayEndHour        *float64 `yaml:"day_end_hour"`
	Velocity          *float64 `yaml:"velocity"`
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Oracle:      strings.ToLower(getEnv("ORACLE", OracleAtlas)),
		AtlasPath:   getEnv("ATLAS_PATH", "data/atlas.yaml"),
		ORSAPIKey:   strings.TrimSpace(os.Getenv("ORS_API_KEY")),
		ORSCountry:  strings.TrimSpace(os.Getenv("ORS_COUNTRY")),
		CacheDSN:    strings.TrimSpace(os.Getenv("CACHE_DSN")),
		RedisAddr:   strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
	}

	var errs []error

	concurrency, err := strconv.Atoi(getEnv("GRAPH_CONCURRENCY", "8"))
	if err != nil || concurrency <= 0 {
		errs = append(errs, fmt.Errorf("GRAPH_CONCURRENCY must be a positive integer, got %q", os.Getenv("GRAPH_CONCURRENCY")))
	}
	cfg.GraphConcurrency = concurrency

	var file scheduleFile
	if path := strings.TrimSpace(os.Getenv("SCHEDULE_CONFIG")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read schedule config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return Config{}, fmt.Errorf("parse schedule config %q: %v: %w", path, err, domain.ErrConfig)
		}
	}

	var missing []string
	schedule := []struct {
		key      string
		fallback *float64
		dst      *float64
	}{
		{"DAILY_DRIVING_HOURS", file.DailyDrivingHours, &cfg.Schedule.DailyDrivingHours},
		{"DAY_START_HOUR", file.DayStartHour, &cfg.Schedule.DayStartHour},
		{"DAY_END_HOUR", file.DayEndHour, &cfg.Schedule.DayEndHour},
		{"VELOCITY", file.Velocity, &cfg.Schedule.Velocity},
	}
	for _, s := range schedule {
		raw := strings.TrimSpace(os.Getenv(s.key))
		switch {
		case raw != "":
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s must be a number, got %q", s.key, raw))
				continue
			}
			*s.dst = v
		case s.fallback != nil:
			*s.dst = *s.fallback
		default:
			missing = append(missing, s.key)
		}
	}

	switch cfg.Oracle {
	case OracleAtlas:
	case OracleORS:
		if cfg.ORSAPIKey == "" {
			missing = append(missing, "ORS_API_KEY")
		}
	default:
		errs = append(errs, fmt.Errorf("ORACLE must be %q or %q, got %q", OracleAtlas, OracleORS, cfg.Oracle))
	}

	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", ")))
	}
	if len(errs) > 0 {
		return Config{}, fmt.Errorf("load config: %w: %w", errors.Join(errs...), domain.ErrConfig)
	}

	if err := cfg.Schedule.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

// Get returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func Get(key, fallback string) string {
	return getEnv(key, fallback)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
