package todo

import (
	"context"

	"github.com/rezkam/todo/internal/domain"
)

// Repository defines storage operations for todos.
//
// Every mutating method is a single atomic conditional write keyed on the id
// and the expected current status. When the precondition does not hold the
// method returns a *domain.NotFoundError, so a caller cannot tell a deleted
// record from one that never existed.
//
// Any failure of the store itself is returned as a *domain.DatabaseError.
type Repository interface {
	// FindAll returns all non-deleted todos, newest first.
	// An empty store yields an empty slice, not an error.
	FindAll(ctx context.Context) ([]*domain.Todo, error)

	// FindByID returns the todo if it exists and is not deleted.
	FindByID(ctx context.Context, id string) (*domain.Todo, error)

	// Create stores a new pending todo with a fresh id and returns it as persisted.
	Create(ctx context.Context, title string, description *string) (*domain.Todo, error)

	// Update applies the set fields of changes to a non-deleted todo and
	// returns the result. Moving to pending clears the completion message in
	// the same write.
	Update(ctx context.Context, id string, changes domain.TodoChanges) (*domain.Todo, error)

	// Delete soft-deletes a non-deleted todo. Deleting twice fails with not found.
	Delete(ctx context.Context, id string) error

	// Restore moves a deleted todo back to pending.
	Restore(ctx context.Context, id string) error

	// Filter returns todos matching criteria, newest first.
	Filter(ctx context.Context, criteria domain.FilterCriteria) ([]*domain.Todo, error)
}
