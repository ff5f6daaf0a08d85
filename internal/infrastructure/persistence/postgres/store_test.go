package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rezkam/todo/internal/application/todo"
	"github.com/rezkam/todo/internal/infrastructure/persistence/compliance"
	"github.com/rezkam/todo/internal/infrastructure/persistence/postgres"
)

func TestPostgresStore_Compliance(t *testing.T) {
	dsn := os.Getenv("TODO_TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TODO_TEST_DB_DSN not set, skipping PostgreSQL tests")
	}

	compliance.RunRepositoryComplianceTest(t, func() (todo.Repository, func()) {
		ctx := context.Background()
		store, err := postgres.NewStoreWithConfig(ctx, postgres.DBConfig{DSN: dsn})
		require.NoError(t, err)

		_, err = store.Pool().Exec(ctx, "TRUNCATE todos")
		require.NoError(t, err)

		return store, func() {
			_ = store.Close()
		}
	})
}
