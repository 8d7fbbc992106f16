package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/trackable_test")

	cfg := LoadConfig()

	assert.Equal(t, "postgres://localhost/trackable_test", cfg.Database.DSN)
	assert.Equal(t, int32(20), cfg.Database.MaxConns)
	assert.Equal(t, int32(5), cfg.Database.MinConns)
	assert.Equal(t, 0.5, cfg.Ingest.MinConfidence)
	assert.Equal(t, 24*time.Hour, cfg.Refresh.Interval)
	assert.Equal(t, 7, cfg.Refresh.ExpiryScanDays)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/trackable_test")
	t.Setenv("DB_MAX_CONNS", "50")
	t.Setenv("INGEST_MIN_CONFIDENCE", "0.8")
	t.Setenv("POLICY_REFRESH_INTERVAL", "6h")
	t.Setenv("RETURN_WINDOW_SCAN_DAYS", "3")

	cfg := LoadConfig()

	assert.Equal(t, int32(50), cfg.Database.MaxConns)
	assert.Equal(t, 0.8, cfg.Ingest.MinConfidence)
	assert.Equal(t, 6*time.Hour, cfg.Refresh.Interval)
	assert.Equal(t, 3, cfg.Refresh.ExpiryScanDays)
}

func TestLoadConfigIgnoresMalformedValues(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/trackable_test")
	t.Setenv("DB_MAX_CONNS", "lots")
	t.Setenv("INGEST_MIN_CONFIDENCE", "high")

	cfg := LoadConfig()

	assert.Equal(t, int32(20), cfg.Database.MaxConns)
	assert.Equal(t, 0.5, cfg.Ingest.MinConfidence)
}

func TestConfigValidate(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/trackable_test")
	cfg := LoadConfig()
	require.NoError(t, cfg.Validate())

	cfg.Database.DSN = ""
	assert.Error(t, cfg.Validate())

	cfg.Database.DSN = "postgres://localhost/trackable_test"
	cfg.Ingest.MinConfidence = 1.5
	assert.Error(t, cfg.Validate())

	cfg.Ingest.MinConfidence = 0.5
	cfg.Refresh.Interval = 0
	assert.Error(t, cfg.Validate())
}
