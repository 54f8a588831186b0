package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Database.URL)
	assert.Equal(t, 5, cfg.Database.Retry.MaxAttempts)
	assert.Equal(t, 10*time.Second, cfg.Database.Retry.AttemptTimeout)
	assert.Equal(t, 1.5, cfg.Database.Retry.BackoffBase)
	assert.Equal(t, 1*time.Second, cfg.Database.Retry.BackoffUnit)
	assert.Equal(t, 30*time.Second, cfg.Database.MonitorInterval)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30, cfg.Server.HealthRequestsPerMinute)
	assert.Equal(t, 10*time.Second, cfg.Server.HealthTimeout)
	assert.Less(t, cfg.Server.HealthTimeout, cfg.Server.WriteTimeout)
}

func TestServerConfig_Timeouts_CustomValues(t *testing.T) {
	t.Setenv("SERVER_READ_TIMEOUT", "30s")
	t.Setenv("SERVER_WRITE_TIMEOUT", "45s")
	t.Setenv("SERVER_IDLE_TIMEOUT", "120s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	tests := []struct {
		name     string
		actual   time.Duration
		expected time.Duration
	}{
		{"ReadTimeout", cfg.Server.ReadTimeout, 30 * time.Second},
		{"WriteTimeout", cfg.Server.WriteTimeout, 45 * time.Second},
		{"IdleTimeout", cfg.Server.IdleTimeout, 120 * time.Second},
	}

	for _, tt := range tests {
		if tt.actual != tt.expected {
			t.Errorf("%s: got %v, want %v", tt.name, tt.actual, tt.expected)
		}
	}
}

func TestLoad_ProductionRequiresDatabaseURL(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoad_ProductionWithDatabaseURL(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://app:secret@db:5432/app")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://app:secret@db:5432/app", cfg.Database.URL)
}

func TestLoad_InvalidRetrySettings(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero attempts", "DB_CONNECT_MAX_ATTEMPTS", "0"},
		{"shrinking backoff", "DB_CONNECT_BACKOFF_BASE", "0.5"},
		{"negative unit", "DB_CONNECT_BACKOFF_UNIT", "-1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestLoad_RetryOverrides(t *testing.T) {
	t.Setenv("DB_CONNECT_MAX_ATTEMPTS", "3")
	t.Setenv("DB_CONNECT_BACKOFF_BASE", "2")
	t.Setenv("DB_CONNECT_TIMEOUT", "2s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Database.Retry.MaxAttempts)
	assert.Equal(t, 2.0, cfg.Database.Retry.BackoffBase)
	assert.Equal(t, 2*time.Second, cfg.Database.Retry.AttemptTimeout)
}

func TestLoad_HealthTimeoutMustFitWriteTimeout(t *testing.T) {
	tests := []struct {
		name   string
		health string
		write  string
	}{
		{"equal", "15s", "15s"},
		{"longer", "30s", "15s"},
		{"zero", "0s", "15s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HEALTH_TIMEOUT", tt.health)
			t.Setenv("SERVER_WRITE_TIMEOUT", tt.write)
			_, err := Load()
			assert.ErrorContains(t, err, "HEALTH_TIMEOUT")
		})
	}
}
