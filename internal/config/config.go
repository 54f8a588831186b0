package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
}

type DatabaseConfig struct {
	URL               string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	MonitorInterval   time.Duration
	Retry             RetryConfig
}

// RetryConfig controls how hard the connection manager tries before giving up
type RetryConfig struct {
	MaxAttempts    int
	AttemptTimeout time.Duration
	BackoffBase    float64
	BackoffUnit    time.Duration
}

type ServerConfig struct {
	Port         string
	Env          string
	LogLevel     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	HealthTimeout           time.Duration
	HealthRequestsPerMinute int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			URL:               getEnv("DATABASE_URL", ""),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 10)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 0)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
			MonitorInterval:   getEnvAsDuration("DB_MONITOR_INTERVAL", 30*time.Second),
			Retry: RetryConfig{
				MaxAttempts:    getEnvAsInt("DB_CONNECT_MAX_ATTEMPTS", 5),
				AttemptTimeout: getEnvAsDuration("DB_CONNECT_TIMEOUT", 10*time.Second),
				BackoffBase:    getEnvAsFloat("DB_CONNECT_BACKOFF_BASE", 1.5),
				BackoffUnit:    getEnvAsDuration("DB_CONNECT_BACKOFF_UNIT", 1*time.Second),
			},
		},
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Env:          env,
			LogLevel:     getEnv("LOG_LEVEL", "info"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),

			HealthTimeout:           getEnvAsDuration("HEALTH_TIMEOUT", 10*time.Second),
			HealthRequestsPerMinute: getEnvAsInt("HEALTH_RATE_LIMIT", 30),
		},
	}

	// Outside production a missing URL is tolerated; the connection manager
	// reports it per call instead.
	if env == "production" && cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required in production")
	}

	if err := cfg.Database.Retry.validate(); err != nil {
		return nil, err
	}

	// A health check running past the write timeout gets its connection reset
	// instead of delivering the 503.
	if cfg.Server.HealthTimeout <= 0 || cfg.Server.HealthTimeout >= cfg.Server.WriteTimeout {
		return nil, fmt.Errorf("HEALTH_TIMEOUT must be positive and below SERVER_WRITE_TIMEOUT (got %s, write timeout %s)",
			cfg.Server.HealthTimeout, cfg.Server.WriteTimeout)
	}

	return cfg, nil
}

func (r RetryConfig) validate() error {
	if r.MaxAttempts < 1 {
		return fmt.Errorf("DB_CONNECT_MAX_ATTEMPTS must be at least 1 (got %d)", r.MaxAttempts)
	}
	if r.AttemptTimeout <= 0 {
		return fmt.Errorf("DB_CONNECT_TIMEOUT must be positive (got %s)", r.AttemptTimeout)
	}
	if r.BackoffBase < 1 {
		return fmt.Errorf("DB_CONNECT_BACKOFF_BASE must be >= 1 (got %g)", r.BackoffBase)
	}
	if r.BackoffUnit < 0 {
		return fmt.Errorf("DB_CONNECT_BACKOFF_UNIT must not be negative (got %s)", r.BackoffUnit)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}
