package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func statusPtr(s Status) *Status { return &s }

func newPending(t *testing.T) *Todo {
	t.Helper()
	todo, err := NewTodo("id-1", " Buy milk ", strPtr("2 litres"), epoch)
	require.NoError(t, err)
	return todo
}

func TestNewTodo(t *testing.T) {
	todo := newPending(t)

	assert.Equal(t, "Buy milk", todo.Title)
	assert.Equal(t, StatusPending, todo.Status)
	assert.Nil(t, todo.CompletionMessage)
	assert.Equal(t, epoch, todo.CreatedAt)
	assert.Equal(t, epoch, todo.UpdatedAt)

	_, err := NewTodo("id-2", "", nil, epoch)
	assert.ErrorIs(t, err, ErrTitleRequired)
}

func TestTodo_CompleteWithMessage(t *testing.T) {
	todo := newPending(t)
	later := epoch.Add(time.Minute)

	err := todo.Apply(TodoChanges{Status: statusPtr(StatusCompleted), CompletionMessage: strPtr("bought")}, later)
	require.NoError(t, err)

	assert.True(t, todo.IsCompleted())
	msg, ok := todo.Message()
	assert.True(t, ok)
	assert.Equal(t, "bought", msg)
	assert.Equal(t, later, todo.UpdatedAt)
}

func TestTodo_ReopenClearsMessage(t *testing.T) {
	todo := newPending(t)
	require.NoError(t, todo.Apply(TodoChanges{Status: statusPtr(StatusCompleted), CompletionMessage: strPtr("bought")}, epoch))

	require.NoError(t, todo.Apply(TodoChanges{Status: statusPtr(StatusPending)}, epoch.Add(time.Second)))

	assert.Equal(t, StatusPending, todo.Status)
	assert.Nil(t, todo.CompletionMessage)
}

func TestTodo_MessageIgnoredWithoutCompletion(t *testing.T) {
	todo := newPending(t)

	require.NoError(t, todo.Apply(TodoChanges{CompletionMessage: strPtr("early")}, epoch))

	assert.Nil(t, todo.CompletionMessage)
	_, ok := todo.Message()
	assert.False(t, ok)
}

func TestTodo_EditKeepsCompletionMessage(t *testing.T) {
	todo := newPending(t)
	require.NoError(t, todo.Apply(TodoChanges{Status: statusPtr(StatusCompleted), CompletionMessage: strPtr("bought")}, epoch))

	require.NoError(t, todo.Apply(TodoChanges{Title: strPtr("Buy oat milk")}, epoch))

	assert.Equal(t, "Buy oat milk", todo.Title)
	require.NotNil(t, todo.CompletionMessage)
	assert.Equal(t, "bought", *todo.CompletionMessage)
}

func TestTodo_DeleteAndRestore(t *testing.T) {
	todo := newPending(t)
	require.NoError(t, todo.Apply(TodoChanges{Status: statusPtr(StatusCompleted), CompletionMessage: strPtr("bought")}, epoch))

	require.NoError(t, todo.Delete(epoch.Add(time.Minute)))
	assert.Equal(t, StatusDeleted, todo.Status)
	assert.Nil(t, todo.CompletionMessage)
	assert.Equal(t, "Buy milk", todo.Title)

	// Deleted records reject edits and a second delete.
	assert.ErrorIs(t, todo.Apply(TodoChanges{Title: strPtr("x")}, epoch), ErrTransitionNotAllowed)
	assert.ErrorIs(t, todo.Delete(epoch), ErrTransitionNotAllowed)

	require.NoError(t, todo.Restore(epoch.Add(2*time.Minute)))
	assert.Equal(t, StatusPending, todo.Status)
	assert.Equal(t, epoch.Add(2*time.Minute), todo.UpdatedAt)

	assert.ErrorIs(t, todo.Restore(epoch), ErrTransitionNotAllowed)
}

func TestTodo_UpdatedAtNeverBeforeCreatedAt(t *testing.T) {
	todo := newPending(t)

	require.NoError(t, todo.Apply(TodoChanges{}, epoch.Add(-time.Hour)))

	assert.Equal(t, epoch, todo.UpdatedAt)
}

func TestTodo_Normalize(t *testing.T) {
	todo := &Todo{Status: StatusPending, CompletionMessage: strPtr("stale")}
	todo.Normalize()
	assert.Nil(t, todo.CompletionMessage)
}

func TestTodoChanges_Validate(t *testing.T) {
	assert.NoError(t, TodoChanges{}.Validate())
	assert.NoError(t, TodoChanges{Status: statusPtr(StatusCompleted)}.Validate())

	err := TodoChanges{Status: statusPtr(StatusDeleted)}.Validate()
	assert.ErrorIs(t, err, ErrValidation)

	err = TodoChanges{Title: strPtr(" ")}.Validate()
	assert.ErrorIs(t, err, ErrTitleRequired)

	assert.Equal(t, "trim me", *TodoChanges{Title: strPtr(" trim me ")}.Normalized().Title)
}

func TestTodoChanges_AppliedMessage(t *testing.T) {
	msg, replace := TodoChanges{Status: statusPtr(StatusPending), CompletionMessage: strPtr("x")}.AppliedMessage()
	assert.True(t, replace)
	assert.Nil(t, msg)

	msg, replace = TodoChanges{Status: statusPtr(StatusCompleted), CompletionMessage: strPtr("x")}.AppliedMessage()
	assert.True(t, replace)
	assert.Equal(t, "x", *msg)

	_, replace = TodoChanges{Status: statusPtr(StatusCompleted)}.AppliedMessage()
	assert.False(t, replace)

	_, replace = TodoChanges{CompletionMessage: strPtr("x")}.AppliedMessage()
	assert.False(t, replace)
}

func TestFilterCriteria_Matches(t *testing.T) {
	milk := &Todo{ID: "1", Title: "Buy MILK", Status: StatusPending}
	bread := &Todo{ID: "2", Title: "Bread", Description: strPtr("ask for Milk rolls"), Status: StatusCompleted}
	gone := &Todo{ID: "3", Title: "milk again", Status: StatusDeleted}

	all := FilterCriteria{}
	assert.True(t, all.Matches(milk))
	assert.True(t, all.Matches(bread))
	assert.False(t, all.Matches(gone))

	text := FilterCriteria{Query: "  milk "}
	assert.True(t, text.Matches(milk))
	assert.True(t, text.Matches(bread))
	assert.False(t, text.Matches(gone))

	completed := FilterCriteria{Status: statusPtr(StatusCompleted), Query: "milk"}
	assert.False(t, completed.Matches(milk))
	assert.True(t, completed.Matches(bread))

	trash := FilterCriteria{Status: statusPtr(StatusDeleted)}
	assert.True(t, trash.Matches(gone))
	assert.False(t, trash.Matches(milk))

	assert.Error(t, FilterCriteria{Status: statusPtr("bogus")}.Validate())
}

func TestSortNewestFirst(t *testing.T) {
	a := &Todo{ID: "a", CreatedAt: epoch}
	b := &Todo{ID: "b", CreatedAt: epoch}
	c := &Todo{ID: "c", CreatedAt: epoch.Add(time.Second)}
	todos := []*Todo{a, b, c}

	SortNewestFirst(todos)

	assert.Equal(t, []*Todo{c, b, a}, todos)
}
