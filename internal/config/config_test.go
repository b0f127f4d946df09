package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Missing Database URL", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")

		cfg, err := Load()
		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "DATABASE_URL is required")
	})

	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/schoolbus")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "development", cfg.Server.Environment)
		assert.Equal(t, 1000.0, cfg.Scheduling.MaxWalkingDistanceMeters)
		assert.Equal(t, 5*time.Second, cfg.Scheduling.StoreTimeout)
		assert.Equal(t, 300*time.Second, cfg.Database.ConnMaxLifetime)
	})

	t.Run("Environment Overrides", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/schoolbus")
		t.Setenv("MAX_WALKING_DISTANCE_METERS", "750.5")
		t.Setenv("STORE_TIMEOUT", "2s")
		t.Setenv("RECOMPUTE_LEAD_DAYS", "3")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 750.5, cfg.Scheduling.MaxWalkingDistanceMeters)
		assert.Equal(t, 2*time.Second, cfg.Scheduling.StoreTimeout)
		assert.Equal(t, 3, cfg.Scheduling.RecomputeLeadDays)
	})

	t.Run("Invalid Number Falls Back", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/schoolbus")
		t.Setenv("MAX_WALKING_DISTANCE_METERS", "far")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 1000.0, cfg.Scheduling.MaxWalkingDistanceMeters)
	})

	t.Run("Invalid Cron", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/schoolbus")
		t.Setenv("RECOMPUTE_CRON", "every night")

		_, err := Load()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "RECOMPUTE_CRON")
	})

	t.Run("Invalid Log Level", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/schoolbus")
		t.Setenv("LOG_LEVEL", "verbose")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestLoadPolicyFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("Overlay", func(t *testing.T) {
		path := filepath.Join(dir, "policy.yaml")
		require.NoError(t, os.WriteFile(path, []byte("max_walking_distance_meters: 400\nstore_timeout: 750ms\n"), 0o600))

		t.Setenv("DATABASE_URL", "postgres://localhost/schoolbus")
		t.Setenv("SCHEDULER_POLICY_FILE", path)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 400.0, cfg.Scheduling.MaxWalkingDistanceMeters)
		assert.Equal(t, 750*time.Millisecond, cfg.Scheduling.StoreTimeout)
		assert.Equal(t, "0 0 2 * * *", cfg.Scheduling.RecomputeCron)
	})

	t.Run("Rejected By Validation", func(t *testing.T) {
		path := filepath.Join(dir, "negative.yaml")
		require.NoError(t, os.WriteFile(path, []byte("max_walking_distance_meters: -1\n"), 0o600))

		t.Setenv("DATABASE_URL", "postgres://localhost/schoolbus")
		t.Setenv("SCHEDULER_POLICY_FILE", path)

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("Missing File", func(t *testing.T) {
		s := DefaultSchedulingConfig()
		err := s.LoadPolicyFile(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})
}
