package config_test

import (
	"excursion-route-planner/internal/config"
	"excursion-route-planner/internal/domain"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"DAILY_DRIVING_HOURS", "DAY_START_HOUR", "DAY_END_HOUR", "VELOCITY", "SCHEDULE_CONFIG",
	"PORT", "LOG_LEVEL", "ORACLE", "ATLAS_PATH", "ORS_API_KEY", "ORS_COUNTRY",
	"CACHE_DSN", "REDIS_ADDR", "DATABASE_URL", "GRAPH_CONCURRENCY",
}

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func setSchedule(t *testing.T) {
	t.Helper()
	t.Setenv("DAILY_DRIVING_HOURS", "8")
	t.Setenv("DAY_START_HOUR", "8")
	t.Setenv("DAY_END_HOUR", "20")
	t.Setenv("VELOCITY", "70")
}

// TestLoad_defaults verifies that optional env vars fall back to their defaults
// when only the schedule is provided.
func TestLoad_defaults(t *testing.T) {
	clearEnv(t)
	setSchedule(t)

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, domain.ScheduleConfig{DailyDrivingHours: 8, DayStartHour: 8, DayEndHour: 20, Velocity: 70}, cfg.Schedule)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, config.OracleAtlas, cfg.Oracle)
	require.Equal(t, "data/atlas.yaml", cfg.AtlasPath)
	require.Equal(t, 8, cfg.GraphConcurrency)
	require.Empty(t, cfg.DatabaseURL)
}

func TestLoad_overrides(t *testing.T) {
	clearEnv(t)
	setSchedule(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("ORACLE", "ors")
	t.Setenv("ORS_API_KEY", "secret")
	t.Setenv("ORS_COUNTRY", "DE")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("GRAPH_CONCURRENCY", "3")

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, config.OracleORS, cfg.Oracle)
	require.Equal(t, "secret", cfg.ORSAPIKey)
	require.Equal(t, "DE", cfg.ORSCountry)
	require.Equal(t, "localhost:6379", cfg.RedisAddr)
	require.Equal(t, 3, cfg.GraphConcurrency)
}

// TestLoad_missingRequired verifies that every missing schedule variable is named.
func TestLoad_missingRequired(t *testing.T) {
	clearEnv(t)
	t.Setenv("DAILY_DRIVING_HOURS", "8")

	_, err := config.Load()

	require.ErrorIs(t, err, domain.ErrConfig)
	require.ErrorContains(t, err, "DAY_START_HOUR, DAY_END_HOUR, VELOCITY")
}

func TestLoad_orsNeedsKey(t *testing.T) {
	clearEnv(t)
	setSchedule(t)
	t.Setenv("ORACLE", "ors")

	_, err := config.Load()

	require.ErrorContains(t, err, "ORS_API_KEY")
}

func TestLoad_invalidValues(t *testing.T) {
	clearEnv(t)
	setSchedule(t)
	t.Setenv("VELOCITY", "fast")
	t.Setenv("ORACLE", "carrier-pigeon")

	_, err := config.Load()

	require.ErrorIs(t, err, domain.ErrConfig)
	require.ErrorContains(t, err, "VELOCITY")
	require.ErrorContains(t, err, "carrier-pigeon")
}

func TestLoad_invalidSchedule(t *testing.T) {
	clearEnv(t)
	setSchedule(t)
	t.Setenv("DAY_START_HOUR", "21")

	_, err := config.Load()

	require.ErrorIs(t, err, domain.ErrConfig)
}

// TestLoad_scheduleFile verifies the YAML file fills gaps and env vars win.
func TestLoad_scheduleFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	body := "daily_driving_hours: 9\nday_start_hour: 7\nday_end_hour: 21\nvelocity: 80\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("SCHEDULE_CONFIG", path)
	t.Setenv("VELOCITY", "60")

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, domain.ScheduleConfig{DailyDrivingHours: 9, DayStartHour: 7, DayEndHour: 21, Velocity: 60}, cfg.Schedule)
}

func TestLoad_malformedScheduleFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	require.NoError(t, os.WriteFile(path, []byte("velocity: [fast\n"), 0o600))
	t.Setenv("SCHEDULE_CONFIG", path)

	_, err := config.Load()

	require.ErrorIs(t, err, domain.ErrConfig)
}
