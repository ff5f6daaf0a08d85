package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/todo/internal/application/todo"
	mw "github.com/rezkam/todo/internal/infrastructure/http/middleware"
	"github.com/rezkam/todo/internal/infrastructure/http/openapi"
)

// TodoHandler adapts HTTP requests to todo service calls.
type TodoHandler struct {
	todoService *todo.Service
}

// NewTodoHandler creates a new HTTP API handler.
func NewTodoHandler(todoService *todo.Service) *TodoHandler {
	return &TodoHandler{todoService: todoService}
}

// NewOpenAPIRouter builds the /api handler: request validation against the
// embedded OpenAPI document followed by the todo routes.
// Production code and tests both use it so they see the same behavior.
func NewOpenAPIRouter(todoService *todo.Service) (http.Handler, error) {
	h := NewTodoHandler(todoService)

	spec, err := openapi.GetSwagger()
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}
	validator, err := mw.NewValidator(spec, mw.ValidationConfig{MultiError: true})
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(validator)
	h.Routes(r)
	return r, nil
}

// Routes registers the todo endpoints on r.
func (h *TodoHandler) Routes(r chi.Router) {
	r.Route("/todos", func(r chi.Router) {
		r.Get("/", h.ListTodos)
		r.Post("/", h.CreateTodo)
		r.Post("/filter", h.FilterTodos)
		r.Get("/completed", h.ListCompletedTodos)
		r.Get("/pending", h.ListPendingTodos)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetTodo)
			r.Put("/", h.UpdateTodo)
			r.Delete("/", h.DeleteTodo)
			r.Post("/restore", h.RestoreTodo)
		})
	})
}
