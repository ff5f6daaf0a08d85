package domain

import (
	"cmp"
	"slices"
	"strings"
)

// FilterCriteria selects todos for Filter.
//
// Common use cases:
//   - default visible set: FilterCriteria{}
//   - "completed todos mentioning milk": Status=completed, Query="milk"
//   - trash view: Status=deleted
type FilterCriteria struct {
	// Status restricts results to one status (nil = any visible status).
	// StatusDeleted must be asked for explicitly; it is never part of the default set.
	Status *Status

	// Query is a case-insensitive substring matched against title or description.
	// Blank means no text constraint.
	Query string
}

// Statuses returns the statuses the criteria match.
func (f FilterCriteria) Statuses() []Status {
	if f.Status == nil {
		return VisibleStatuses()
	}
	return []Status{*f.Status}
}

// TextQuery returns the trimmed query and whether a text constraint applies.
func (f FilterCriteria) TextQuery() (string, bool) {
	q := strings.TrimSpace(f.Query)
	return q, q != ""
}

// Validate rejects unknown statuses.
func (f FilterCriteria) Validate() error {
	if f.Status != nil && !f.Status.IsValid() {
		return NewValidationError("status", ErrInvalidStatus)
	}
	return nil
}

// Matches evaluates the criteria against a single todo. Stores that cannot
// push predicates down use it to filter in process.
func (f FilterCriteria) Matches(t *Todo) bool {
	if !slices.Contains(f.Statuses(), t.Status) {
		return false
	}

	q, ok := f.TextQuery()
	if !ok {
		return true
	}
	q = strings.ToLower(q)
	if strings.Contains(strings.ToLower(t.Title), q) {
		return true
	}
	return t.Description != nil && strings.Contains(strings.ToLower(*t.Description), q)
}

// SortNewestFirst orders todos by CreatedAt descending, ties broken by ID
// descending (IDs are time-ordered UUIDv7).
func SortNewestFirst(todos []*Todo) {
	slices.SortStableFunc(todos, func(a, b *Todo) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
}
