package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/anima/internal/slate"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://anima@localhost/anima")
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("MIGRATE_ON_START", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.True(t, cfg.MigrateOnStart)
	assert.Equal(t, "postgres://anima@localhost/anima", cfg.ServiceDatabaseURL, "service pool defaults to the app pool")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins())
	assert.Equal(t, 10*time.Second, cfg.SportsAPITimeout)
	assert.Equal(t, int64(10), cfg.PickWinXP)
	assert.Equal(t, slate.RomeZone, cfg.SchedulerTimezone)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("port: 7070\nlog_level: debug\nscheduler_hours: \"6,18\"\n"), 0o644))
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, "warn", cfg.LogLevel, "environment overrides the file")

	hours, err := cfg.Hours()
	require.NoError(t, err)
	assert.Equal(t, []int{6, 18}, hours)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Environment: "production"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "SUPABASE_JWT_SECRET")

	cfg.DatabaseURL = "postgres://x"
	cfg.SupabaseJWTSecret = "s"
	assert.NoError(t, cfg.Validate())

	cfg.PickWinPoints = -1
	assert.Error(t, cfg.Validate())

	assert.NoError(t, (&Config{Environment: "test"}).Validate())
}

func TestHours_Invalid(t *testing.T) {
	_, err := (&Config{SchedulerHours: "8,25"}).Hours()
	assert.Error(t, err)
	_, err = (&Config{SchedulerHours: "noon"}).Hours()
	assert.Error(t, err)
}
