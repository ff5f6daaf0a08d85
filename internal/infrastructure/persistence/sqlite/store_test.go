package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/todo/internal/application/todo"
	"github.com/rezkam/todo/internal/infrastructure/persistence/compliance"
	"github.com/rezkam/todo/internal/infrastructure/persistence/sqlite"
)

func TestSQLiteStore_Compliance(t *testing.T) {
	compliance.RunRepositoryComplianceTest(t, func() (todo.Repository, func()) {
		path := filepath.Join(t.TempDir(), "todos.db")
		store, err := sqlite.NewStoreWithConfig(context.Background(), sqlite.DBConfig{Path: path})
		require.NoError(t, err)
		return store, func() {
			_ = store.Close()
		}
	})
}

func TestSQLiteStore_MigrationsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "todos.db")

	first, err := sqlite.NewStoreWithConfig(ctx, sqlite.DBConfig{Path: path})
	require.NoError(t, err)
	created, err := first.Create(ctx, "Buy milk", nil)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := sqlite.NewStoreWithConfig(ctx, sqlite.DBConfig{Path: path})
	require.NoError(t, err)
	defer second.Close()

	fetched, err := second.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", fetched.Title)
	require.NoError(t, second.Ping(ctx))
}

func TestSQLiteStore_RejectsMessageOnPendingRow(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.NewStoreWithConfig(ctx, sqlite.DBConfig{Path: filepath.Join(t.TempDir(), "todos.db")})
	require.NoError(t, err)
	defer store.Close()

	created, err := store.Create(ctx, "Buy milk", nil)
	require.NoError(t, err)

	_, err = store.DB().ExecContext(ctx, `UPDATE todos SET completion_message = 'x' WHERE id = ?`, created.ID)
	assert.Error(t, err, "CHECK constraint keeps the message tied to completed")
}

func TestSQLiteStore_RequiresPath(t *testing.T) {
	_, err := sqlite.NewStoreWithConfig(context.Background(), sqlite.DBConfig{})
	assert.Error(t, err)
}
