package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/todo/internal/infrastructure/http/openapi"
	"github.com/rezkam/todo/internal/infrastructure/http/response"
)

// ListTodos handles GET /todos.
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := h.todoService.GetAllTodos(r.Context())
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, MapTodosToDTO(todos))
}

// ListCompletedTodos handles GET /todos/completed.
func (h *TodoHandler) ListCompletedTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := h.todoService.GetCompletedTodos(r.Context())
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, MapTodosToDTO(todos))
}

// ListPendingTodos handles GET /todos/pending.
func (h *TodoHandler) ListPendingTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := h.todoService.GetPendingTodos(r.Context())
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, MapTodosToDTO(todos))
}

// CreateTodo handles POST /todos.
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	var req openapi.CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	created, err := h.todoService.CreateTodo(r.Context(), req.Title, req.Description)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to create todo via HTTP",
			"title", req.Title,
			"error", err)
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "todo created via HTTP", "todo_id", created.ID)
	response.Created(w, MapTodoToDTO(created))
}

// GetTodo handles GET /todos/{id}.
func (h *TodoHandler) GetTodo(w http.ResponseWriter, r *http.Request) {
	found, err := h.todoService.GetTodoByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, MapTodoToDTO(found))
}

// UpdateTodo handles PUT /todos/{id}.
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req openapi.UpdateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	updated, err := h.todoService.UpdateTodo(r.Context(), id, MapUpdateRequest(req))
	if err != nil {
		slog.WarnContext(r.Context(), "failed to update todo via HTTP",
			"todo_id", id,
			"error", err)
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, MapTodoToDTO(updated))
}

// DeleteTodo handles DELETE /todos/{id}.
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.todoService.DeleteTodo(r.Context(), id); err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "todo deleted via HTTP", "todo_id", id)
	response.NoContent(w)
}

// RestoreTodo handles POST /todos/{id}/restore.
func (h *TodoHandler) RestoreTodo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.todoService.RestoreTodo(r.Context(), id); err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "todo restored via HTTP", "todo_id", id)
	response.NoContent(w)
}

// FilterTodos handles POST /todos/filter.
func (h *TodoHandler) FilterTodos(w http.ResponseWriter, r *http.Request) {
	var req openapi.FilterTodosRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	criteria, err := MapFilterRequest(req)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	todos, err := h.todoService.FilterTodos(r.Context(), criteria)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, MapTodosToDTO(todos))
}
