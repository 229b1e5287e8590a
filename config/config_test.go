package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-engine/config"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_PATH", "LOG_LEVEL", "POLICY_FILE", "DATA_QUALITY_SCHEDULE", "CORS_ORIGINS", "SHUTDOWN_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg := config.Load()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./data/leave.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "", cfg.PolicyFile)
	assert.Equal(t, "@daily", cfg.DataQualitySchedule)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_PATH", "/tmp/leave.db")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("POLICY_FILE", "/etc/leave/policy.json")
	t.Setenv("DATA_QUALITY_SCHEDULE", "0 2 * * *")
	t.Setenv("CORS_ORIGINS", "https://hr.example.com, https://admin.example.com")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg := config.Load()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/tmp/leave.db", cfg.DBPath)
	assert.Equal(t, "/etc/leave/policy.json", cfg.PolicyFile)
	assert.Equal(t, []string{"https://hr.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_MalformedShutdownTimeout_FailsValidate(t *testing.T) {
	// GIVEN: a typo in SHUTDOWN_TIMEOUT
	// THEN: Validate names it instead of silently using the default
	t.Setenv("SHUTDOWN_TIMEOUT", "30 seconds")

	err := config.Load().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_ScheduleOff(t *testing.T) {
	t.Setenv("DATA_QUALITY_SCHEDULE", "off")
	assert.Equal(t, "", config.Load().DataQualitySchedule)
}

func TestValidate(t *testing.T) {
	valid := config.Config{
		Port:                "8080",
		DBPath:              ":memory:",
		LogLevel:            "info",
		DataQualitySchedule: "@daily",
		ShutdownTimeout:     time.Second,
	}
	require.NoError(t, valid.Validate())

	noSchedule := valid
	noSchedule.DataQualitySchedule = ""
	assert.NoError(t, noSchedule.Validate(), "empty schedule disables the job")

	cases := map[string]func(c *config.Config){
		"missing port":  func(c *config.Config) { c.Port = "" },
		"missing db":    func(c *config.Config) { c.DBPath = " " },
		"bad log level": func(c *config.Config) { c.LogLevel = "loud" },
		"bad schedule":  func(c *config.Config) { c.DataQualitySchedule = "every day" },
		"zero timeout":  func(c *config.Config) { c.ShutdownTimeout = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
