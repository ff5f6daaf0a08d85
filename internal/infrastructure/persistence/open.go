// Package persistence selects and opens the configured todo store.
package persistence

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rezkam/todo/internal/application/todo"
	"github.com/rezkam/todo/internal/config"
	"github.com/rezkam/todo/internal/infrastructure/persistence/gcs"
	"github.com/rezkam/todo/internal/infrastructure/persistence/mongo"
	"github.com/rezkam/todo/internal/infrastructure/persistence/postgres"
	"github.com/rezkam/todo/internal/infrastructure/persistence/redis"
	"github.com/rezkam/todo/internal/infrastructure/persistence/sqlite"
)

// Store is a todo repository with a lifecycle.
type Store interface {
	todo.Repository

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases connections held by the store.
	Close() error
}

// Open connects to the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		store Store
		err   error
	)
	switch cfg.Driver {
	case config.DriverPostgres:
		store, err = postgres.NewStoreWithConfig(ctx, postgres.DBConfig{
			DSN:              cfg.Postgres.DSN,
			MaxConns:         cfg.Postgres.MaxConns,
			MinConns:         cfg.Postgres.MinConns,
			ConnectTimeout:   cfg.ConnectTimeout,
			SelectionTimeout: cfg.SelectionTimeout,
			OperationTimeout: cfg.OperationTimeout,
		})
	case config.DriverSQLite:
		store, err = sqlite.NewStoreWithConfig(ctx, sqlite.DBConfig{
			Path:             cfg.SQLite.Path,
			BusyTimeout:      cfg.SelectionTimeout,
			OperationTimeout: cfg.OperationTimeout,
		})
	case config.DriverMongo:
		store, err = mongo.NewStoreWithConfig(ctx, mongo.Config{
			URI:              cfg.Mongo.URI,
			Database:         cfg.Mongo.Database,
			ConnectTimeout:   cfg.ConnectTimeout,
			SelectionTimeout: cfg.SelectionTimeout,
			SocketTimeout:    cfg.OperationTimeout,
		})
	case config.DriverRedis:
		store, err = redis.NewStoreWithConfig(ctx, redis.Config{
			Addr:           cfg.Redis.Addr,
			Password:       cfg.Redis.Password,
			DB:             cfg.Redis.DB,
			ConnectTimeout: cfg.ConnectTimeout,
			SocketTimeout:  cfg.OperationTimeout,
		})
	case config.DriverGCS:
		store, err = gcs.NewStore(ctx, gcs.Config{
			Bucket:           cfg.GCS.Bucket,
			Prefix:           cfg.GCS.Prefix,
			Endpoint:         cfg.GCS.Endpoint,
			OperationTimeout: cfg.OperationTimeout,
		})
	default:
		return nil, fmt.Errorf("unsupported store driver: %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Driver, err)
	}

	slog.InfoContext(ctx, "store opened", "driver", cfg.Driver)
	return store, nil
}
