package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rezkam/todo/internal/application/todo"
)

// Store provides the PostgreSQL implementation of todo.Repository.
//
// Every mutation is one conditional UPDATE matching both the id and the
// expected current status, so concurrent callers racing on the same id
// cannot both win. The CHECK constraints on the table back the same
// invariants at the storage level.
type Store struct {
	pool             *pgxpool.Pool
	operationTimeout time.Duration
}

// Compile-time verification that Store implements the repository interface.
var _ todo.Repository = (*Store)(nil)

// NewStore creates a new PostgreSQL store with the given connection pool.
// operationTimeout bounds each repository call; zero disables the bound.
func NewStore(pool *pgxpool.Pool, operationTimeout time.Duration) *Store {
	return &Store{
		pool:             pool,
		operationTimeout: operationTimeout,
	}
}

// Pool returns the underlying connection pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// withTimeout derives the per-operation context.
func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.operationTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.operationTimeout)
}
