package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"wavehouse-backend/internal/infrastructure/database"
)

// LoadDatabaseConfig reads the PostgreSQL settings. Unlike the other
// sections, malformed numbers and durations are errors rather than
// silently replaced by defaults.
func LoadDatabaseConfig() (*database.DBConfig, error) {
	var p strictEnv

	cfg := &database.DBConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     p.getInt("DB_PORT", 5432),
		Username: getEnv("DB_USER", "wavehouse"),
		Password: getEnv("DB_PASSWORD", ""),
		DBName:   getEnv("DB_NAME", "wavehouse"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),

		MaxConns:          int32(p.getInt("DB_MAX_CONNECTIONS", 10)),
		MinConns:          int32(p.getInt("DB_MIN_CONNECTIONS", 2)),
		MaxConnLifetime:   p.getDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
		MaxConnIdleTime:   p.getDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
		HealthCheckPeriod: p.getDuration("DB_HEALTH_CHECK_PERIOD", time.Minute),

		MaxRetries:     p.getInt("DB_MAX_RETRIES", 5),
		RetryDelay:     p.getDuration("DB_RETRY_DELAY", time.Second),
		ConnectTimeout: p.getDuration("DB_CONNECT_TIMEOUT", 10*time.Second),
	}
	if err := p.err(); err != nil {
		return nil, err
	}
	if cfg.MinConns > cfg.MaxConns {
		return nil, fmt.Errorf("DB_MIN_CONNECTIONS (%d) exceeds DB_MAX_CONNECTIONS (%d)", cfg.MinConns, cfg.MaxConns)
	}
	return cfg, nil
}

// strictEnv collects every parse failure so one run reports all bad keys.
type strictEnv struct {
	errs []error
}

func (p *strictEnv) getInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return v
}

func (p *strictEnv) getDuration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return v
}

func (p *strictEnv) err() error {
	return errors.Join(p.errs...)
}
