// Package openapi holds the HTTP API contract and its request/response types.
package openapi

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var specYAML []byte

// GetSwagger parses and validates the embedded OpenAPI document.
// Each call returns a fresh copy that callers may modify.
func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	spec, err := loader.LoadFromData(specYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI spec: %w", err)
	}
	if err := spec.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI spec: %w", err)
	}
	return spec, nil
}

// Todo is the API representation of a todo.
type Todo struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       *string   `json:"description,omitempty"`
	Completed         bool      `json:"completed"`
	CompletionMessage *string   `json:"completionMessage,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// CreateTodoRequest is the body of POST /todos.
type CreateTodoRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// UpdateTodoRequest is the body of PUT /todos/{id}. Absent fields are left untouched.
type UpdateTodoRequest struct {
	Title             *string `json:"title,omitempty"`
	Description       *string `json:"description,omitempty"`
	Completed         *bool   `json:"completed,omitempty"`
	CompletionMessage *string `json:"completionMessage,omitempty"`
}

// FilterTodosRequest is the body of POST /todos/filter.
type FilterTodosRequest struct {
	Status *string `json:"status,omitempty"`
	Query  *string `json:"query,omitempty"`
}
