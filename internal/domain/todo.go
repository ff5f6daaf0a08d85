package domain

import (
	"fmt"
	"time"
)

// Todo is the aggregate root: a short text item with a status lifecycle.
//
// CompletionMessage accompanies StatusCompleted only. It is nil for pending
// and deleted records; a completed record may still have no message when the
// caller chose not to provide one.
type Todo struct {
	ID                string
	Title             string
	Description       *string
	Status            Status
	CompletionMessage *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewTodo creates a pending todo with both timestamps set to now.
func NewTodo(id, title string, description *string, now time.Time) (*Todo, error) {
	t, err := NewTitle(title)
	if err != nil {
		return nil, err
	}

	todo := &Todo{
		ID:        id,
		Title:     t.String(),
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if description != nil {
		d, err := NewDescription(*description)
		if err != nil {
			return nil, err
		}
		desc := d.String()
		todo.Description = &desc
	}

	return todo, nil
}

// IsCompleted reports whether the todo is in the completed state.
func (t *Todo) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// Message returns the completion message if the todo is completed and has one.
func (t *Todo) Message() (string, bool) {
	if t.Status != StatusCompleted || t.CompletionMessage == nil {
		return "", false
	}
	return *t.CompletionMessage, true
}

// Apply performs a partial update. The todo must be visible and the status
// change, if any, must be a legal transition.
func (t *Todo) Apply(c TodoChanges, now time.Time) error {
	if !t.Status.IsVisible() {
		return fmt.Errorf("%w: update on %s record", ErrTransitionNotAllowed, t.Status)
	}
	if c.Status != nil && !t.Status.CanTransitionTo(*c.Status) {
		return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, t.Status, *c.Status)
	}

	if c.Title != nil {
		t.Title = *c.Title
	}
	if c.Description != nil {
		desc := *c.Description
		t.Description = &desc
	}
	if c.Status != nil {
		t.Status = *c.Status
	}
	if msg, replace := c.AppliedMessage(); replace {
		t.CompletionMessage = copyString(msg)
	}

	t.Normalize()
	t.touch(now)
	return nil
}

// Delete soft-deletes the todo.
func (t *Todo) Delete(now time.Time) error {
	if !t.Status.IsVisible() || !t.Status.CanTransitionTo(StatusDeleted) {
		return fmt.Errorf("%w: delete on %s record", ErrTransitionNotAllowed, t.Status)
	}
	t.Status = StatusDeleted
	t.CompletionMessage = nil
	t.touch(now)
	return nil
}

// Restore returns a deleted todo to pending.
func (t *Todo) Restore(now time.Time) error {
	if t.Status.IsVisible() || !t.Status.CanTransitionTo(StatusPending) {
		return fmt.Errorf("%w: restore on %s record", ErrTransitionNotAllowed, t.Status)
	}
	t.Status = StatusPending
	t.CompletionMessage = nil
	t.touch(now)
	return nil
}

// Normalize drops a completion message that does not belong to the status.
func (t *Todo) Normalize() {
	if t.Status != StatusCompleted {
		t.CompletionMessage = nil
	}
}

// touch refreshes UpdatedAt, never letting it fall before CreatedAt.
func (t *Todo) touch(now time.Time) {
	if now.Before(t.CreatedAt) {
		now = t.CreatedAt
	}
	t.UpdatedAt = now
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
