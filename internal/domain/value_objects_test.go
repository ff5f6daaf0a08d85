package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"pending", StatusPending, false},
		{"  Completed ", StatusCompleted, false},
		{"DELETED", StatusDeleted, false},
		{"done", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NewStatus(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatus_Transitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusCompleted))
	assert.True(t, StatusCompleted.CanTransitionTo(StatusPending))
	assert.True(t, StatusPending.CanTransitionTo(StatusDeleted))
	assert.True(t, StatusCompleted.CanTransitionTo(StatusDeleted))
	assert.True(t, StatusDeleted.CanTransitionTo(StatusPending))

	assert.False(t, StatusDeleted.CanTransitionTo(StatusCompleted))
	assert.False(t, StatusDeleted.CanTransitionTo(StatusDeleted))
	assert.False(t, Status("archived").CanTransitionTo(StatusPending))
}

func TestStatus_PreconditionSets(t *testing.T) {
	assert.ElementsMatch(t, []Status{StatusPending, StatusCompleted}, VisibleStatuses())
	assert.ElementsMatch(t, []Status{StatusPending, StatusCompleted}, UpdatableStatuses())
	assert.ElementsMatch(t, []Status{StatusPending, StatusCompleted}, DeletableStatuses())
	assert.Equal(t, []Status{StatusDeleted}, RestorableStatuses())
	assert.Equal(t, []string{"pending", "deleted"}, StatusStrings([]Status{StatusPending, StatusDeleted}))
}

func TestNewTitle(t *testing.T) {
	title, err := NewTitle("  Buy milk  ")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", title.String())

	_, err = NewTitle("   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTitleRequired)
	assert.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "title", verr.Field)

	_, err = NewTitle(strings.Repeat("a", MaxTitleLength))
	assert.NoError(t, err)

	_, err = NewTitle(strings.Repeat("a", MaxTitleLength+1))
	assert.ErrorIs(t, err, ErrTitleTooLong)

	// Limit counts characters, not bytes.
	_, err = NewTitle(strings.Repeat("é", MaxTitleLength))
	assert.NoError(t, err)
}

func TestNewDescription(t *testing.T) {
	d, err := NewDescription("")
	require.NoError(t, err)
	assert.Empty(t, d.String())

	_, err = NewDescription(strings.Repeat("x", MaxDescriptionLength+1))
	assert.ErrorIs(t, err, ErrDescriptionTooLong)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestIsBlankMessage(t *testing.T) {
	blank := "  "
	text := "done"
	assert.True(t, IsBlankMessage(nil))
	assert.True(t, IsBlankMessage(&blank))
	assert.False(t, IsBlankMessage(&text))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NewNotFoundError(ResourceTodo, "42")))
	assert.Equal(t, KindValidation, KindOf(NewValidationError("", ErrCompletionMessageRequired)))
	assert.Equal(t, KindDatabase, KindOf(NewDatabaseError("update todo", errors.New("conn reset"))))
	assert.Equal(t, KindDatabase, KindOf(errors.New("unexpected")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestNotFoundError_Message(t *testing.T) {
	err := NewNotFoundError(ResourceTodo, "abc")
	assert.Equal(t, "Todo with id abc not found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrValidation)
}
