// Package store persists scenarios in PostgreSQL so several simulation
// hosts can share one catalog of levels instead of shipping YAML around.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps a pgx connection pool for scenario operations.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and returns a Store handle.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close closes the database connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Pool returns the underlying pgx pool (for goose migrations and tests).
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Scenarios returns a scenario repository bound to this store's pool.
func (s *Store) Scenarios() *ScenarioRepository {
	return NewScenarioRepository(s.pool)
}
