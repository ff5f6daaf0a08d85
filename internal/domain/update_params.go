package domain

// TodoChanges is a partial update. Nil fields are left untouched.
//
// CompletionMessage is only applied together with Status == StatusCompleted.
// Moving to StatusPending always clears any stored message.
type TodoChanges struct {
	Title             *string
	Description       *string
	Status            *Status
	CompletionMessage *string
}

// IsEmpty reports whether no field is set.
func (c TodoChanges) IsEmpty() bool {
	return c.Title == nil && c.Description == nil && c.Status == nil && c.CompletionMessage == nil
}

// SetsStatus reports whether the change set moves the record to status.
func (c TodoChanges) SetsStatus(status Status) bool {
	return c.Status != nil && *c.Status == status
}

// Validate checks field values. Status may only target pending or completed;
// deletion and restoration have their own operations.
func (c TodoChanges) Validate() error {
	if c.Title != nil {
		if _, err := NewTitle(*c.Title); err != nil {
			return err
		}
	}
	if c.Description != nil {
		if _, err := NewDescription(*c.Description); err != nil {
			return err
		}
	}
	if c.Status != nil && !c.Status.IsVisible() {
		return NewValidationError("status", ErrInvalidStatus)
	}
	return nil
}

// Normalized returns a copy with the title trimmed.
// Callers should Validate first.
func (c TodoChanges) Normalized() TodoChanges {
	if c.Title != nil {
		if t, err := NewTitle(*c.Title); err == nil {
			s := t.String()
			c.Title = &s
		}
	}
	return c
}

// AppliedMessage returns the completion message that should be written, and
// whether the stored message should be replaced at all.
//
//   - status -> pending: (nil, true), the message is cleared
//   - status -> completed with a message: (msg, true)
//   - anything else: (nil, false), the stored message is kept
func (c TodoChanges) AppliedMessage() (*string, bool) {
	switch {
	case c.SetsStatus(StatusPending):
		return nil, true
	case c.SetsStatus(StatusCompleted) && c.CompletionMessage != nil:
		return c.CompletionMessage, true
	default:
		return nil, false
	}
}
