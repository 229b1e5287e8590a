// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Config holds application configuration
type Config struct {
	Port                string
	DBPath              string
	LogLevel            string
	PolicyFile          string
	DataQualitySchedule string
	CORSOrigins         []string
	ShutdownTimeout     time.Duration

	// raw SHUTDOWN_TIMEOUT, kept so Validate can report a parse error
	shutdownTimeoutRaw string
}

// Load reads configuration from environment variables, falling back to
// defaults suitable for local development.
func Load() Config {
	return Config{
		Port:                getEnv("PORT", "8080"),
		DBPath:              getEnv("DB_PATH", "./data/leave.db"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		PolicyFile:          getEnv("POLICY_FILE", ""),
		DataQualitySchedule: schedule(getEnv("DATA_QUALITY_SCHEDULE", "@daily")),
		CORSOrigins:         getEnvList("CORS_ORIGINS", []string{"*"}),
		ShutdownTimeout:     getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		shutdownTimeoutRaw:  os.Getenv("SHUTDOWN_TIMEOUT"),
	}
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("PORT is required")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	// Empty disables the data-quality job.
	if c.DataQualitySchedule != "" {
		if _, err := cron.ParseStandard(c.DataQualitySchedule); err != nil {
			return fmt.Errorf("DATA_QUALITY_SCHEDULE: %w", err)
		}
	}
	if c.shutdownTimeoutRaw != "" {
		if _, err := time.ParseDuration(c.shutdownTimeoutRaw); err != nil {
			return fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
		}
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// schedule maps "off" to the empty schedule.
func schedule(s string) string {
	if strings.EqualFold(s, "off") {
		return ""
	}
	return s
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnvDuration falls back on a malformed value; Validate reports it.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
