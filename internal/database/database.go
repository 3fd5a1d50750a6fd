// Package database provides the PostgreSQL pool backing the monitoring
// repositories.
package database

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds connection settings for the monitoring store.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// MaxConns caps the pool. The scheduler's jobs write sequentially, so
	// nearly all concurrency comes from API requests; the default stays
	// small.
	MaxConns int32

	// MinConns keeps connections warm for cron firings, which would
	// otherwise pay pool-warmup latency against an idle overnight service.
	MinConns int32

	// MaxConnLifetime bounds connection age.
	MaxConnLifetime time.Duration

	// EnsureSchema applies the idempotent schema on connect. Disable when
	// migrations are managed externally.
	EnsureSchema bool
}

// ConfigFromEnv creates a Config from DB_* environment variables.
func ConfigFromEnv() Config {
	return Config{
		Host:            envString("DB_HOST", "localhost"),
		Port:            envInt("DB_PORT", 5432),
		User:            envString("DB_USER", "roomwatch"),
		Password:        envString("DB_PASSWORD", "localdev"),
		Database:        envString("DB_NAME", "roomwatch"),
		SSLMode:         envString("DB_SSL_MODE", "disable"),
		MaxConns:        int32(envInt("DB_MAX_CONNS", 8)), //nolint:gosec // bounded config value
		MinConns:        int32(envInt("DB_MIN_CONNS", 2)), //nolint:gosec // bounded config value
		MaxConnLifetime: envDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		EnsureSchema:    os.Getenv("DB_SKIP_SCHEMA") == "",
	}
}

// ConnectionString returns the PostgreSQL connection string.
func (c Config) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// Connect creates the connection pool, verifies it with a ping and, unless
// disabled, applies the schema.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if cfg.EnsureSchema {
		if err := EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
	}

	return pool, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
