package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Status represents the lifecycle state of a todo.
// Value object - immutable string enum.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusDeleted   Status = "deleted"
)

// transitions lists the legal target states for each state.
// Same-state entries allow updates that keep the status (edits, message changes).
var transitions = map[Status][]Status{
	StatusPending:   {StatusPending, StatusCompleted, StatusDeleted},
	StatusCompleted: {StatusCompleted, StatusPending, StatusDeleted},
	StatusDeleted:   {StatusPending},
}

// NewStatus validates and creates a Status.
func NewStatus(s string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))

	switch status {
	case StatusPending, StatusCompleted, StatusDeleted:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidStatus, s)
	}
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsVisible reports whether records in this status appear in default reads.
func (s Status) IsVisible() bool {
	return s.IsValid() && s != StatusDeleted
}

// CanTransitionTo reports whether moving from s to target is legal.
func (s Status) CanTransitionTo(target Status) bool {
	return slices.Contains(transitions[s], target)
}

// VisibleStatuses returns the statuses matched by the base filter.
func VisibleStatuses() []Status {
	return []Status{StatusPending, StatusCompleted}
}

// UpdatableStatuses returns the statuses a record must be in for Update to match it.
func UpdatableStatuses() []Status {
	return statusesAllowing(StatusCompleted, StatusPending)
}

// DeletableStatuses returns the statuses a record must be in for Delete to match it.
func DeletableStatuses() []Status {
	return statusesAllowing(StatusDeleted)
}

// RestorableStatuses returns the statuses a record must be in for Restore to match it.
func RestorableStatuses() []Status {
	var out []Status
	for _, s := range []Status{StatusPending, StatusCompleted, StatusDeleted} {
		if !s.IsVisible() && s.CanTransitionTo(StatusPending) {
			out = append(out, s)
		}
	}
	return out
}

// statusesAllowing returns the visible statuses that may move to every target.
func statusesAllowing(targets ...Status) []Status {
	var out []Status
	for _, s := range VisibleStatuses() {
		ok := true
		for _, t := range targets {
			if !s.CanTransitionTo(t) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, s)
		}
	}
	return out
}

// StatusStrings converts statuses to their string form for storage queries.
func StatusStrings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
