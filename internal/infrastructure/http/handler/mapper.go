package handler

import (
	"github.com/rezkam/todo/internal/domain"
	"github.com/rezkam/todo/internal/infrastructure/http/openapi"
	"github.com/rezkam/todo/internal/ptr"
)

// MapTodoToDTO converts a domain todo to its API representation.
// The completion message is only ever exposed for completed todos.
func MapTodoToDTO(t *domain.Todo) openapi.Todo {
	dto := openapi.Todo{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.IsCompleted(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if msg, ok := t.Message(); ok {
		dto.CompletionMessage = ptr.To(msg)
	}
	return dto
}

// MapTodosToDTO converts a list, returning an empty (never nil) slice.
func MapTodosToDTO(todos []*domain.Todo) []openapi.Todo {
	out := make([]openapi.Todo, 0, len(todos))
	for _, t := range todos {
		out = append(out, MapTodoToDTO(t))
	}
	return out
}

// MapUpdateRequest translates a PUT body into a change set.
// completed=true targets completed, completed=false targets pending.
func MapUpdateRequest(req openapi.UpdateTodoRequest) domain.TodoChanges {
	changes := domain.TodoChanges{
		Title:             req.Title,
		Description:       req.Description,
		CompletionMessage: req.CompletionMessage,
	}
	if req.Completed != nil {
		status := domain.StatusPending
		if *req.Completed {
			status = domain.StatusCompleted
		}
		changes.Status = &status
	}
	return changes
}

// MapFilterRequest translates a filter body into criteria.
func MapFilterRequest(req openapi.FilterTodosRequest) (domain.FilterCriteria, error) {
	criteria := domain.FilterCriteria{Query: ptr.Deref(req.Query, "")}
	if req.Status != nil {
		status, err := domain.NewStatus(*req.Status)
		if err != nil {
			return domain.FilterCriteria{}, domain.NewValidationError("status", err)
		}
		criteria.Status = &status
	}
	return criteria, nil
}
