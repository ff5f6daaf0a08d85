package document

import (
	"errors"
	"time"

	"github.com/rezkam/todo/internal/domain"
)

// Mutation changes a todo in memory. Backends without server-side
// conditional updates read the document, run a Mutation, and write the
// result back guarded by a compare-and-set on the version they read.
type Mutation func(t *domain.Todo, now time.Time) error

// Update returns a Mutation applying changes.
func Update(changes domain.TodoChanges) Mutation {
	return func(t *domain.Todo, now time.Time) error {
		return t.Apply(changes, now)
	}
}

// Delete is the soft-delete Mutation.
func Delete(t *domain.Todo, now time.Time) error {
	return t.Delete(now)
}

// Restore is the restore Mutation.
func Restore(t *domain.Todo, now time.Time) error {
	return t.Restore(now)
}

// Transition decodes doc, applies m and returns the document to write.
// A status precondition failure is reported as a not-found error for id.
func Transition(id string, doc Document, m Mutation) (Document, *domain.Todo, error) {
	t, err := doc.ToTodo()
	if err != nil {
		return Document{}, nil, err
	}
	if err := m(t, Now()); err != nil {
		if errors.Is(err, domain.ErrTransitionNotAllowed) {
			return Document{}, nil, domain.NewNotFoundError(domain.ResourceTodo, id)
		}
		return Document{}, nil, err
	}
	return FromTodo(t), t, nil
}
