package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Ingest   IngestConfig
	Refresh  RefreshConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// IngestConfig holds extraction-ingest configuration
type IngestConfig struct {
	// MinConfidence is the threshold candidates must clear upstream; it is
	// checked again at the boundary as a guard against misconfigured
	// producers.
	MinConfidence float64
}

// RefreshConfig holds the periodic policy refresh configuration
type RefreshConfig struct {
	Interval       time.Duration
	ExpiryScanDays int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Ingest: IngestConfig{
			MinConfidence: getEnvAsFloat64("INGEST_MIN_CONFIDENCE", 0.5),
		},
		Refresh: RefreshConfig{
			Interval:       getEnvAsDuration("POLICY_REFRESH_INTERVAL", 24*time.Hour),
			ExpiryScanDays: getEnvAsInt("RETURN_WINDOW_SCAN_DAYS", 7),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Ingest.MinConfidence < 0 || c.Ingest.MinConfidence > 1 {
		return NewAppError("CONFIG_ERROR", "INGEST_MIN_CONFIDENCE must be within [0,1]", ErrInvalidInput)
	}
	if c.Refresh.Interval <= 0 {
		return NewAppError("CONFIG_ERROR", "POLICY_REFRESH_INTERVAL must be positive", ErrInvalidInput)
	}
	return nil
}
