package mongo_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rezkam/todo/internal/application/todo"
	"github.com/rezkam/todo/internal/infrastructure/persistence/compliance"
	"github.com/rezkam/todo/internal/infrastructure/persistence/mongo"
)

func TestMongoStore_Compliance(t *testing.T) {
	uri := os.Getenv("TODO_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TODO_TEST_MONGO_URI not set, skipping MongoDB tests")
	}

	compliance.RunRepositoryComplianceTest(t, func() (todo.Repository, func()) {
		ctx := context.Background()
		store, err := mongo.NewStoreWithConfig(ctx, mongo.Config{
			URI:      uri,
			Database: fmt.Sprintf("todo_test_%d", time.Now().UnixNano()),
		})
		require.NoError(t, err)

		return store, func() {
			_ = store.Collection().Database().Drop(context.Background())
			_ = store.Close()
		}
	})
}
