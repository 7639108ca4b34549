package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB represents a database connection pool
type DB struct {
	*pgxpool.Pool
}

// PoolOptions tunes the connection pool. Zero values keep the pgx defaults.
type PoolOptions struct {
	// MaxConns bounds concurrent transactions from the API, the bot and the workers
	MaxConns int32
	// HealthCheckPeriod is how often idle connections are checked and recycled
	HealthCheckPeriod time.Duration
}

// NewConnection creates a new database connection pool with default options
func NewConnection(ctx context.Context, databaseURL string) (*DB, error) {
	return NewPool(ctx, databaseURL, PoolOptions{})
}

// NewPool creates a connection pool and verifies it with a ping
func NewPool(ctx context.Context, databaseURL string, opts PoolOptions) (*DB, error) {
	config, err := poolConfig(databaseURL, opts)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

func poolConfig(databaseURL string, opts PoolOptions) (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Timestamps for slot rolls, joins and giveaway windows are compared in UTC
	config.ConnConfig.RuntimeParams["timezone"] = "UTC"
	config.ConnConfig.RuntimeParams["application_name"] = "economy"

	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
		if config.MinConns > config.MaxConns {
			config.MinConns = config.MaxConns
		}
	}
	if opts.HealthCheckPeriod > 0 {
		config.HealthCheckPeriod = opts.HealthCheckPeriod
	}
	return config, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	db.Pool.Close()
}
