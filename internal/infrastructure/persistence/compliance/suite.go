// Package compliance holds the behavioural suite every todo.Repository
// backend must pass.
package compliance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/todo/internal/application/todo"
	"github.com/rezkam/todo/internal/domain"
	"github.com/rezkam/todo/internal/ptr"
)

// RunRepositoryComplianceTest runs the standard set of tests against a Repository implementation.
// setup returns a fresh (empty) repository and a teardown func.
func RunRepositoryComplianceTest(t *testing.T, setup func() (todo.Repository, func())) {
	t.Run("CreateAndFind", func(t *testing.T) {
		repo, teardown := setup()
		defer teardown()
		ctx := context.Background()

		created, err := repo.Create(ctx, "Buy milk", ptr.To("2 litres"))
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "Buy milk", created.Title)
		assert.Equal(t, domain.StatusPending, created.Status)
		assert.Nil(t, created.CompletionMessage)
		assert.False(t, created.CreatedAt.IsZero())
		assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

		fetched, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, fetched.ID)
		assert.Equal(t, "Buy milk", fetched.Title)
		require.NotNil(t, fetched.Description)
		assert.Equal(t, "2 litres", *fetched.Description)
		assert.True(t, created.CreatedAt.Equal(fetched.CreatedAt))
	})

	t.Run("CreateWithoutDescription", func(t *testing.T) {
		repo, teardown := setup()
		defer teardown()
		ctx := context.Background()

		created, err := repo.Create(ctx, "Call mum", nil)
		require.NoError(t, err)

		fetched, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, fetched.Description)
	})

	t.Run("FindByIDUnknown", func(t *testing.T) {
		repo, teardown := setup()
		defer teardown()
		ctx := context.Background()

		_, err := repo.FindByID(ctx, uuid.NewString())
		assertNotFound(t, err)

		_, err = repo.FindByID(ctx, "not-a-uuid")
		assertNotFound(t, err)
	})

	t.Run("FindAllEmpty", func(t *testing.T) {
		repo, teardown := setup()
		defer teardown()

		todos, err := repo.FindAll(context.Background())
		require.NoError(t, err)
		assert.Empty(t, todos)
	})

	t.Run("FindAllNewestFirstExcludesDeleted", func(t *testing.T) {
		repo, teardown := setup()
		defer teardown()
		ctx := context.Background()

		first := mustCreate(t, repo, "first")
		second := mustCreate(t, repo, "second")
		third := mustCreate(t, repo, "third")
		require.NoError(t, repo.Delete(ctx, second.ID))

		todos, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{third.ID, first.ID}, ids(todos))
	})

	t.Run("CompleteAndReopen", func(t *testing.T) {
		repo, teardown := setup()
		defer teardown()
		ctx := context.Background()

		created := mustCreate(t, repo, "Buy milk")

		completed, err := repo.Update(ctx, created.ID, domain.TodoChanges{
			Status:            ptr.To(domain.StatusCompleted),
			CompletionMessage: ptr.To("done"),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, completed.Status)
		require.NotNil(t, completed.CompletionMessage)
		assert.Equal(t, "done", *completed.CompletionMessage)
		assert.False(t, completed.UpdatedAt.Before(created.UpdatedAt))
		assert.True(t, created.CreatedAt.Equal(completed.CreatedAt))

		fetched, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, fetched.CompletionMessage)
		assert.Equal(t, "done", *fetched.CompletionMessage)

		reopened, err := repo.Update(ctx, created.ID, domain.TodoChanges{Status: ptr.To(domain.StatusPending)})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, reopened.Status)
		assert.Nil(t, reopened.CompletionMessage)

		fetched, err = repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, fetched.CompletionMessage)
	})

	t.Run("UpdateEditsFields", func(t *testing.T) {
		repo, teardown := setup()
		defer teardown()
		ctx := context.Background()

		created := mustCreate(t, repo, "Buy milk")

		updated, err := repo.Update(ctx, created.ID, domain.TodoChanges{
			Title:       ptr.To("Buy oat milk"),
			Description: ptr.To("the barista one"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Buy oat milk", updated.Title)
		require.NotNil(t, updated.Description)
		assert.Equal(t, "the barista one", *updated.Description)
		assert.Equal(t, domain.StatusPending, updated.Status)

		// A message without a completion is ignored.
		updated, err = repo.Update(ctx, created.ID, domain.TodoChanges{CompletionMessage: ptr.To("early")})
		require.NoError(t, err)
		assert.Nil(t, updated.CompletionMessage)
	})

	t.Run("UpdateUnknownOrDeleted", func(t *testing.T) {
		repo, teardown := setup()
		defer teardown()
		ctx := context.Background()

		_, err := repo.Update(ctx, uuid.NewString(), domain.TodoChanges{Title: ptr.To("x")})
		assertNotFound(t, err)

		created := mustCreate(t, repo, "Buy milk")
		require.NoError(t, repo.Delete(ctx, created.ID))

		_, err = repo.Update(ctx, created.ID, domain.TodoChanges{Title: ptr.To("x")})
		assertNotFound(t, err)
	})

	t.Run("DeleteTwice", func(t *testing.T) {
		repo, teardown := setup()
		defer teardown()
		ctx := context.Background()

		created := mustCreate(t, repo, "Buy milk")
		_, err := repo.Update(ctx, created.ID, domain.TodoChanges{
			Status:            ptr.To(domain.StatusCompleted),
			CompletionMessage: ptr.To("done"),
		})
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, created.ID))
		assertNotFound(t, repo.Delete(ctx, created.ID))

		_, err = repo.FindByID(ctx, created.ID)
		assertNotFound(t, err)

		trash, err := repo.Filter(ctx, domain.FilterCriteria{Status: ptr.To(domain.StatusDeleted)})
		require.NoError(t, err)
		require.Len(t, trash, 1)
		assert.Equal(t, "Buy milk", trash[0].Title, "soft delete keeps the record")
		assert.Nil(t, trash[0].CompletionMessage)
	})

	t.Run("Restore", func(t *testing.T) {
		repo, teardown := setup()
		defer teardown()
		ctx := context.Background()

		created := mustCreate(t, repo, "Buy milk")
		assertNotFound(t, repo.Restore(ctx, created.ID))
		assertNotFound(t, repo.Restore(ctx, uuid.NewString()))

		require.NoError(t, repo.Delete(ctx, created.ID))
		require.NoError(t, repo.Restore(ctx, created.ID))
		assertNotFound(t, repo.Restore(ctx, created.ID))

		fetched, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, fetched.Status)
		assert.Nil(t, fetched.CompletionMessage)
		assert.True(t, created.CreatedAt.Equal(fetched.CreatedAt))
		assert.False(t, fetched.UpdatedAt.Before(fetched.CreatedAt))
	})

	t.Run("Filter", func(t *testing.T) {
		repo, teardown := setup()
		defer teardown()
		ctx := context.Background()

		milk := mustCreate(t, repo, "Buy milk")
		bread, err := repo.Create(ctx, "Buy bread", ptr.To("and MILK rolls"))
		require.NoError(t, err)
		walk := mustCreate(t, repo, "Walk the dog")
		gone := mustCreate(t, repo, "Milkshake")

		_, err = repo.Update(ctx, walk.ID, domain.TodoChanges{Status: ptr.To(domain.StatusCompleted)})
		require.NoError(t, err)
		_, err = repo.Update(ctx, bread.ID, domain.TodoChanges{Status: ptr.To(domain.StatusCompleted)})
		require.NoError(t, err)
		require.NoError(t, repo.Delete(ctx, gone.ID))

		tests := []struct {
			name     string
			criteria domain.FilterCriteria
			want     []string
		}{
			{"default visible set", domain.FilterCriteria{}, []string{walk.ID, bread.ID, milk.ID}},
			{"blank query", domain.FilterCriteria{Query: "   "}, []string{walk.ID, bread.ID, milk.ID}},
			{"completed", domain.FilterCriteria{Status: ptr.To(domain.StatusCompleted)}, []string{walk.ID, bread.ID}},
			{"pending", domain.FilterCriteria{Status: ptr.To(domain.StatusPending)}, []string{milk.ID}},
			{"text in title or description", domain.FilterCriteria{Query: "Milk"}, []string{bread.ID, milk.ID}},
			{"status and text", domain.FilterCriteria{Status: ptr.To(domain.StatusPending), Query: "milk"}, []string{milk.ID}},
			{"no match", domain.FilterCriteria{Query: "cheese"}, nil},
			{"trash", domain.FilterCriteria{Status: ptr.To(domain.StatusDeleted)}, []string{gone.ID}},
			{"literal metacharacters", domain.FilterCriteria{Query: "b.y"}, nil},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				todos, err := repo.Filter(ctx, tt.criteria)
				require.NoError(t, err)
				if tt.want == nil {
					assert.Empty(t, todos)
					return
				}
				assert.Equal(t, tt.want, ids(todos))
			})
		}
	})

	t.Run("ConcurrentDeleteSingleWinner", func(t *testing.T) {
		repo, teardown := setup()
		defer teardown()
		ctx := context.Background()

		created := mustCreate(t, repo, "Buy milk")
		errs := race(8, func() error { return repo.Delete(ctx, created.ID) })

		assert.Equal(t, 1, countNil(errs), "exactly one delete wins")
		for _, err := range errs {
			if err != nil {
				assertNotFound(t, err)
			}
		}
	})

	t.Run("ConcurrentRestoreSingleWinner", func(t *testing.T) {
		repo, teardown := setup()
		defer teardown()
		ctx := context.Background()

		created := mustCreate(t, repo, "Buy milk")
		require.NoError(t, repo.Delete(ctx, created.ID))

		errs := race(8, func() error { return repo.Restore(ctx, created.ID) })

		assert.Equal(t, 1, countNil(errs), "exactly one restore wins")
	})

	t.Run("ConcurrentUpdateAndDeleteKeepInvariant", func(t *testing.T) {
		repo, teardown := setup()
		defer teardown()
		ctx := context.Background()

		created := mustCreate(t, repo, "Buy milk")

		var wg sync.WaitGroup
		var updateErr, deleteErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, updateErr = repo.Update(ctx, created.ID, domain.TodoChanges{
				Status:            ptr.To(domain.StatusCompleted),
				CompletionMessage: ptr.To("done"),
			})
		}()
		go func() {
			defer wg.Done()
			deleteErr = repo.Delete(ctx, created.ID)
		}()
		wg.Wait()

		// Winner order is nondeterministic. The delete can never lose: it
		// accepts pending and completed alike.
		require.NoError(t, deleteErr)
		if updateErr != nil {
			assertNotFound(t, updateErr)
		}

		trash, err := repo.Filter(ctx, domain.FilterCriteria{Status: ptr.To(domain.StatusDeleted)})
		require.NoError(t, err)
		require.Len(t, trash, 1)
		assert.Nil(t, trash[0].CompletionMessage)
	})

	t.Run("ConcurrentCompleteAndReopenKeepInvariant", func(t *testing.T) {
		repo, teardown := setup()
		defer teardown()
		ctx := context.Background()

		created := mustCreate(t, repo, "Buy milk")

		errs := race(8, func() error {
			_, err := repo.Update(ctx, created.ID, domain.TodoChanges{
				Status:            ptr.To(domain.StatusCompleted),
				CompletionMessage: ptr.To("done"),
			})
			if err != nil {
				return err
			}
			_, err = repo.Update(ctx, created.ID, domain.TodoChanges{Status: ptr.To(domain.StatusPending)})
			return err
		})
		assert.Equal(t, len(errs), countNil(errs))

		fetched, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		switch fetched.Status {
		case domain.StatusCompleted:
			assert.NotNil(t, fetched.CompletionMessage)
		case domain.StatusPending:
			assert.Nil(t, fetched.CompletionMessage)
		default:
			t.Fatalf("unexpected status %q", fetched.Status)
		}
	})

	t.Run("CanceledContext", func(t *testing.T) {
		repo, teardown := setup()
		defer teardown()

		ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()
		<-ctx.Done()

		_, err := repo.FindAll(ctx)
		require.Error(t, err)
		assert.Equal(t, domain.KindDatabase, domain.KindOf(err))
	})
}

func mustCreate(t *testing.T, repo todo.Repository, title string) *domain.Todo {
	t.Helper()
	created, err := repo.Create(context.Background(), title, nil)
	require.NoError(t, err)
	return created
}

func assertNotFound(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "expected not found, got %v", err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func ids(todos []*domain.Todo) []string {
	out := make([]string, len(todos))
	for i, t := range todos {
		out[i] = t.ID
	}
	return out
}

func race(n int, fn func() error) []error {
	errs := make([]error, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs[i] = fn()
		}()
	}
	close(start)
	wg.Wait()
	return errs
}

func countNil(errs []error) int {
	n := 0
	for _, err := range errs {
		if err == nil {
			n++
		}
	}
	return n
}
