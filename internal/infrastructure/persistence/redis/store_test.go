package redis_test

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/todo/internal/application/todo"
	"github.com/rezkam/todo/internal/domain"
	"github.com/rezkam/todo/internal/infrastructure/persistence/compliance"
	"github.com/rezkam/todo/internal/infrastructure/persistence/redis"
)

func TestRedisStore_Compliance(t *testing.T) {
	compliance.RunRepositoryComplianceTest(t, func() (todo.Repository, func()) {
		mr := miniredis.RunT(t)
		store, err := redis.NewStoreWithConfig(context.Background(), redis.Config{Addr: mr.Addr()})
		require.NoError(t, err)
		return store, func() {
			_ = store.Close()
		}
	})
}

func TestRedisStore_DocumentLayout(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	store, err := redis.NewStoreWithConfig(ctx, redis.Config{Addr: mr.Addr(), KeyPrefix: "app"})
	require.NoError(t, err)
	defer store.Close()

	created, err := store.Create(ctx, "Buy milk", nil)
	require.NoError(t, err)

	raw, err := mr.Get("app:" + created.ID)
	require.NoError(t, err)
	assert.Contains(t, raw, `"schemaVersion":1`)
	assert.Contains(t, raw, `"status":"pending"`)

	members, err := mr.ZMembers("apps:by_created")
	require.NoError(t, err)
	assert.Equal(t, []string{created.ID}, members)
}

func TestRedisStore_SkipsDanglingIndexEntries(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	store, err := redis.NewStoreWithConfig(ctx, redis.Config{Addr: mr.Addr()})
	require.NoError(t, err)
	defer store.Close()

	created, err := store.Create(ctx, "Buy milk", nil)
	require.NoError(t, err)
	mr.Del("todo:" + created.ID)

	todos, err := store.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, todos)
}

func TestRedisStore_CorruptDocumentIsDatabaseError(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	store := redis.NewStore(client, "todo")
	defer store.Close()

	require.NoError(t, mr.Set("todo:broken", "{not json"))

	_, err := store.FindByID(ctx, "broken")
	assert.Equal(t, domain.KindDatabase, domain.KindOf(err))
}

func TestRedisStore_UnreachableServer(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := redis.NewStoreWithConfig(context.Background(), redis.Config{Addr: addr})
	assert.Error(t, err)
}
