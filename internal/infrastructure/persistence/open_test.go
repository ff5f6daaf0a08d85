package persistence_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/todo/internal/config"
	"github.com/rezkam/todo/internal/infrastructure/persistence"
)

func storeConfig(driver string) config.StoreConfig {
	return config.StoreConfig{
		Driver:           driver,
		ConnectTimeout:   time.Second,
		SelectionTimeout: time.Second,
		OperationTimeout: time.Second,
	}
}

func TestOpen_SQLite(t *testing.T) {
	cfg := storeConfig(config.DriverSQLite)
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "todo.db")

	store, err := persistence.Open(context.Background(), cfg)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Ping(context.Background()))
	created, err := store.Create(context.Background(), "Buy milk", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
}

func TestOpen_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := storeConfig(config.DriverRedis)
	cfg.Redis.Addr = mr.Addr()

	store, err := persistence.Open(context.Background(), cfg)
	require.NoError(t, err)
	defer store.Close()

	assert.NoError(t, store.Ping(context.Background()))
}

func TestOpen_InvalidConfig(t *testing.T) {
	_, err := persistence.Open(context.Background(), storeConfig("mysql"))
	assert.Error(t, err)

	_, err = persistence.Open(context.Background(), storeConfig(config.DriverPostgres))
	assert.ErrorIs(t, err, config.ErrDSNRequired)
}
