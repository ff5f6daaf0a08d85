// Package document holds the storage representation shared by the
// document-oriented backends (mongo, redis, gcs) and the write helpers every
// backend uses to mint new records.
package document

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rezkam/todo/internal/domain"
)

// SchemaVersion tags every stored document. Readers reject versions they do not know.
const SchemaVersion = 1

// ErrUnsupportedSchema is returned when a stored document carries an unknown schema version.
var ErrUnsupportedSchema = errors.New("unsupported document schema version")

// Document is the stored shape of a todo. It is never exposed above the
// persistence layer.
type Document struct {
	SchemaVersion     int       `json:"schemaVersion" bson:"schemaVersion"`
	ID                string    `json:"id" bson:"id"`
	Title             string    `json:"title" bson:"title"`
	Description       *string   `json:"description,omitempty" bson:"description,omitempty"`
	Status            string    `json:"status" bson:"status"`
	CompletionMessage *string   `json:"completionMessage,omitempty" bson:"completionMessage,omitempty"`
	CreatedAt         time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt" bson:"updatedAt"`
}

// FromTodo converts a domain todo into its stored form.
func FromTodo(t *domain.Todo) Document {
	return Document{
		SchemaVersion:     SchemaVersion,
		ID:                t.ID,
		Title:             t.Title,
		Description:       t.Description,
		Status:            string(t.Status),
		CompletionMessage: t.CompletionMessage,
		CreatedAt:         t.CreatedAt.UTC(),
		UpdatedAt:         t.UpdatedAt.UTC(),
	}
}

// ToTodo converts a stored document into a domain todo. A completion message
// stored next to a non-completed status is dropped.
func (d Document) ToTodo() (*domain.Todo, error) {
	if d.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSchema, d.SchemaVersion)
	}
	status, err := domain.NewStatus(d.Status)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", d.ID, err)
	}

	t := &domain.Todo{
		ID:                d.ID,
		Title:             d.Title,
		Description:       d.Description,
		Status:            status,
		CompletionMessage: d.CompletionMessage,
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}
	t.Normalize()
	return t, nil
}

// Now returns the current UTC time at millisecond precision, the finest
// resolution every backend stores losslessly.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// NewTodo mints a pending todo with a time-ordered UUIDv7 id.
func NewTodo(title string, description *string) (*domain.Todo, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}
	return domain.NewTodo(id.String(), title, description, Now())
}
