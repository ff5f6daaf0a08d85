package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rezkam/todo/internal/domain"
	"github.com/rezkam/todo/internal/infrastructure/persistence/document"
)

const (
	insertTodoSQL = `
INSERT INTO todos (id, title, description, status, schema_version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + todoColumns

	findTodoSQL = `
SELECT ` + todoColumns + ` FROM todos
WHERE id = $1 AND status = ANY($2)`

	filterTodosSQL = `
SELECT ` + todoColumns + ` FROM todos
WHERE status = ANY($1)
  AND ($2 = '' OR strpos(lower(title), lower($2)) > 0 OR strpos(lower(coalesce(description, '')), lower($2)) > 0)
ORDER BY created_at DESC, id DESC`

	// updateTodoSQL applies a partial update in one statement. A resulting
	// status other than completed always nulls the message; otherwise the
	// message is replaced only when $6 says so.
	updateTodoSQL = `
UPDATE todos SET
    title = COALESCE($2, title),
    description = COALESCE($3, description),
    status = COALESCE($4, status),
    completion_message = CASE
        WHEN COALESCE($4, status) <> 'completed' THEN NULL
        WHEN $6::boolean THEN $5
        ELSE completion_message
    END,
    updated_at = GREATEST($7, created_at)
WHERE id = $1 AND status = ANY($8)
RETURNING ` + todoColumns

	transitionTodoSQL = `
UPDATE todos SET
    status = $2,
    completion_message = NULL,
    updated_at = GREATEST($3, created_at)
WHERE id = $1 AND status = ANY($4)`
)

// checkRowsAffected validates that a conditional UPDATE matched exactly one row.
// Zero rows means the id is unknown or the record is not in the expected status.
func checkRowsAffected(rowsAffected int64, id string) error {
	if rowsAffected == 0 {
		return domain.NewNotFoundError(domain.ResourceTodo, id)
	}
	return nil
}

// parseID validates the id. A malformed id can never match, so it is reported as not found.
func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("%w: %w", domain.NewNotFoundError(domain.ResourceTodo, id), err)
	}
	return parsed, nil
}

// FindAll returns all non-deleted todos, newest first.
func (s *Store) FindAll(ctx context.Context) ([]*domain.Todo, error) {
	return s.Filter(ctx, domain.FilterCriteria{})
}

// FindByID returns a non-deleted todo.
func (s *Store) FindByID(ctx context.Context, id string) (*domain.Todo, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, findTodoSQL, uuidToPgtype(parsed), domain.StatusStrings(domain.VisibleStatuses()))
	if err != nil {
		return nil, domain.NewDatabaseError("find todo", err)
	}

	t, err := collectTodo(rows)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError(domain.ResourceTodo, id)
		}
		return nil, domain.NewDatabaseError("find todo", err)
	}
	return t, nil
}

// Create inserts a new pending todo.
func (s *Store) Create(ctx context.Context, title string, description *string) (*domain.Todo, error) {
	t, err := document.NewTodo(title, description)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(t.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidID, err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, insertTodoSQL,
		uuidToPgtype(id),
		t.Title,
		stringPtrToPgtype(t.Description),
		string(t.Status),
		document.SchemaVersion,
		timeToPgtype(t.CreatedAt),
		timeToPgtype(t.UpdatedAt),
	)
	if err != nil {
		return nil, domain.NewDatabaseError("create todo", err)
	}

	created, err := collectTodo(rows)
	if err != nil {
		return nil, domain.NewDatabaseError("create todo", err)
	}
	return created, nil
}

// Update applies changes to a non-deleted todo in a single conditional UPDATE.
func (s *Store) Update(ctx context.Context, id string, changes domain.TodoChanges) (*domain.Todo, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var status *string
	if changes.Status != nil {
		st := string(*changes.Status)
		status = &st
	}
	message, replaceMessage := changes.AppliedMessage()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, updateTodoSQL,
		uuidToPgtype(parsed),
		stringPtrToPgtype(changes.Title),
		stringPtrToPgtype(changes.Description),
		stringPtrToPgtype(status),
		stringPtrToPgtype(message),
		replaceMessage,
		timeToPgtype(document.Now()),
		domain.StatusStrings(domain.UpdatableStatuses()),
	)
	if err != nil {
		return nil, domain.NewDatabaseError("update todo", err)
	}

	t, err := collectTodo(rows)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError(domain.ResourceTodo, id)
		}
		return nil, domain.NewDatabaseError("update todo", err)
	}
	return t, nil
}

// Delete soft-deletes a non-deleted todo.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.transition(ctx, "delete todo", id, domain.StatusDeleted, domain.DeletableStatuses())
}

// Restore moves a deleted todo back to pending.
func (s *Store) Restore(ctx context.Context, id string) error {
	return s.transition(ctx, "restore todo", id, domain.StatusPending, domain.RestorableStatuses())
}

func (s *Store) transition(ctx context.Context, op, id string, to domain.Status, from []domain.Status) error {
	parsed, err := parseID(id)
	if err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tag, err := s.pool.Exec(ctx, transitionTodoSQL,
		uuidToPgtype(parsed),
		string(to),
		timeToPgtype(document.Now()),
		domain.StatusStrings(from),
	)
	if err != nil {
		return domain.NewDatabaseError(op, err)
	}
	return checkRowsAffected(tag.RowsAffected(), id)
}

// Filter returns todos matching criteria, newest first.
func (s *Store) Filter(ctx context.Context, criteria domain.FilterCriteria) ([]*domain.Todo, error) {
	query, _ := criteria.TextQuery()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, filterTodosSQL, domain.StatusStrings(criteria.Statuses()), query)
	if err != nil {
		return nil, domain.NewDatabaseError("filter todos", err)
	}

	todos, err := collectTodos(rows)
	if err != nil {
		return nil, domain.NewDatabaseError("filter todos", err)
	}
	return todos, nil
}
