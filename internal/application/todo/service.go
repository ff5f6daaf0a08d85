package todo

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/rezkam/todo/internal/domain"
	"github.com/rezkam/todo/internal/ptr"
)

const instrumentationName = "github.com/rezkam/todo/internal/application/todo"

// Config holds configuration for the Service.
type Config struct {
	// RequireCompletionMessage rejects requests that mark a todo completed
	// without a non-blank completion message.
	RequireCompletionMessage bool
}

// Service provides business logic for todo management.
// It orchestrates operations using the Repository interface.
type Service struct {
	repo        Repository
	config      Config
	transitions metric.Int64Counter
}

// NewService creates a new todo service.
func NewService(repo Repository, config Config) *Service {
	transitions, err := otel.Meter(instrumentationName).Int64Counter(
		"todo.transitions",
		metric.WithDescription("Todo status transitions committed by the service"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		slog.Warn("failed to create transitions counter", "error", err)
	}

	return &Service{
		repo:        repo,
		config:      config,
		transitions: transitions,
	}
}

// GetAllTodos returns all visible todos, newest first.
func (s *Service) GetAllTodos(ctx context.Context) ([]*domain.Todo, error) {
	return s.repo.FindAll(ctx)
}

// GetTodoByID returns a single visible todo.
func (s *Service) GetTodoByID(ctx context.Context, id string) (*domain.Todo, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewNotFoundError(domain.ResourceTodo, id)
	}
	return s.repo.FindByID(ctx, id)
}

// CreateTodo creates a pending todo.
func (s *Service) CreateTodo(ctx context.Context, title string, description *string) (*domain.Todo, error) {
	t, err := domain.NewTitle(title)
	if err != nil {
		return nil, err
	}
	if description != nil {
		if _, err := domain.NewDescription(*description); err != nil {
			return nil, err
		}
	}

	return s.repo.Create(ctx, t.String(), description)
}

// UpdateTodo applies a partial update. When the completion-message policy is
// enabled, a request that marks the todo completed must carry a non-blank
// message; this is checked before the repository is called.
func (s *Service) UpdateTodo(ctx context.Context, id string, changes domain.TodoChanges) (*domain.Todo, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewNotFoundError(domain.ResourceTodo, id)
	}
	if err := changes.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCompletionPolicy(changes); err != nil {
		return nil, err
	}

	todo, err := s.repo.Update(ctx, id, changes.Normalized())
	if err != nil {
		return nil, err
	}

	if changes.Status != nil {
		s.recordTransition(ctx, "update", *changes.Status)
	}
	return todo, nil
}

// CompleteTodo marks a todo completed with an optional message.
func (s *Service) CompleteTodo(ctx context.Context, id string, message *string) (*domain.Todo, error) {
	return s.UpdateTodo(ctx, id, domain.TodoChanges{
		Status:            ptr.To(domain.StatusCompleted),
		CompletionMessage: message,
	})
}

// ReopenTodo moves a completed todo back to pending, clearing its message.
func (s *Service) ReopenTodo(ctx context.Context, id string) (*domain.Todo, error) {
	return s.UpdateTodo(ctx, id, domain.TodoChanges{Status: ptr.To(domain.StatusPending)})
}

// DeleteTodo soft-deletes a todo.
func (s *Service) DeleteTodo(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.NewNotFoundError(domain.ResourceTodo, id)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordTransition(ctx, "delete", domain.StatusDeleted)
	return nil
}

// RestoreTodo returns a deleted todo to pending.
func (s *Service) RestoreTodo(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.NewNotFoundError(domain.ResourceTodo, id)
	}
	if err := s.repo.Restore(ctx, id); err != nil {
		return err
	}
	s.recordTransition(ctx, "restore", domain.StatusPending)
	return nil
}

// FilterTodos returns todos matching criteria, newest first.
func (s *Service) FilterTodos(ctx context.Context, criteria domain.FilterCriteria) ([]*domain.Todo, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Filter(ctx, criteria)
}

// GetCompletedTodos returns the completed subset of the visible todos.
func (s *Service) GetCompletedTodos(ctx context.Context) ([]*domain.Todo, error) {
	return s.subset(ctx, domain.StatusCompleted)
}

// GetPendingTodos returns the pending subset of the visible todos.
func (s *Service) GetPendingTodos(ctx context.Context) ([]*domain.Todo, error) {
	return s.subset(ctx, domain.StatusPending)
}

// subset filters the visible list in process.
func (s *Service) subset(ctx context.Context, status domain.Status) ([]*domain.Todo, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Todo, 0, len(all))
	for _, t := range all {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Service) checkCompletionPolicy(changes domain.TodoChanges) error {
	if !s.config.RequireCompletionMessage || !changes.SetsStatus(domain.StatusCompleted) {
		return nil
	}
	if domain.IsBlankMessage(changes.CompletionMessage) {
		return domain.NewValidationError("completionMessage", domain.ErrCompletionMessageRequired)
	}
	return nil
}

func (s *Service) recordTransition(ctx context.Context, op string, to domain.Status) {
	if s.transitions == nil {
		return
	}
	s.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("status", string(to)),
	))
}
