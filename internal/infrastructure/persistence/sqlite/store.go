package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rezkam/todo/internal/application/todo"
	"github.com/rezkam/todo/internal/domain"
	"github.com/rezkam/todo/internal/infrastructure/persistence/document"
)

const todoColumns = `id, title, description, status, completion_message, created_at, updated_at`

const (
	insertTodoSQL = `
INSERT INTO todos (id, title, description, status, schema_version, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

	findTodoSQL = `SELECT ` + todoColumns + ` FROM todos WHERE id = ? AND status IN (?, ?)`

	listByStatusSQL = `SELECT ` + todoColumns + ` FROM todos WHERE status = ? ORDER BY created_at DESC, id DESC`

	listVisibleSQL = `SELECT ` + todoColumns + ` FROM todos WHERE status IN (?, ?) ORDER BY created_at DESC, id DESC`

	// updateTodoSQL mirrors the postgres statement: one conditional write
	// that nulls the message whenever the resulting status is not completed.
	updateTodoSQL = `
UPDATE todos SET
    title = coalesce(?1, title),
    description = coalesce(?2, description),
    status = coalesce(?3, status),
    completion_message = CASE
        WHEN coalesce(?3, status) <> 'completed' THEN NULL
        WHEN ?5 THEN ?4
        ELSE completion_message
    END,
    updated_at = max(?6, created_at)
WHERE id = ?7 AND status IN (?8, ?9)
RETURNING ` + todoColumns

	transitionTodoSQL = `
UPDATE todos SET status = ?, completion_message = NULL, updated_at = max(?, created_at)
WHERE id = ? AND status = ?`

	transitionFromVisibleSQL = `
UPDATE todos SET status = ?, completion_message = NULL, updated_at = max(?, created_at)
WHERE id = ? AND status IN (?, ?)`
)

// Store provides the SQLite implementation of todo.Repository.
type Store struct {
	db               *sql.DB
	operationTimeout time.Duration
}

// Compile-time verification that Store implements the repository interface.
var _ todo.Repository = (*Store)(nil)

// NewStore wraps an open database. operationTimeout bounds each call; zero disables it.
func NewStore(db *sql.DB, operationTimeout time.Duration) *Store {
	return &Store{db: db, operationTimeout: operationTimeout}
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.operationTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.operationTimeout)
}

// FindAll returns all non-deleted todos, newest first.
func (s *Store) FindAll(ctx context.Context) ([]*domain.Todo, error) {
	return s.Filter(ctx, domain.FilterCriteria{})
}

// FindByID returns a non-deleted todo.
func (s *Store) FindByID(ctx context.Context, id string) (*domain.Todo, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	visible := visibleArgs()
	row := s.db.QueryRowContext(ctx, findTodoSQL, id, visible[0], visible[1])
	t, err := scanTodo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err = s.db.ExecContext(ctx, insertTodoSQL,
		t.ID,
		t.Title,
		nullString(t.Description),
		string(t.Status),
		document.SchemaVersion,
		t.CreatedAt.UnixNano(),
		t.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return nil, domain.NewDatabaseError("create todo", err)
	}
	return t, nil
}

// Update applies changes to a non-deleted todo in one conditional UPDATE.
func (s *Store) Update(ctx context.Context, id string, changes domain.TodoChanges) (*domain.Todo, error) {
	var status sql.NullString
	if changes.Status != nil {
		status = sql.NullString{String: string(*changes.Status), Valid: true}
	}
	message, replaceMessage := changes.AppliedMessage()
	updatable := domain.StatusStrings(domain.UpdatableStatuses())

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, updateTodoSQL,
		nullString(changes.Title),
		nullString(changes.Description),
		status,
		nullString(message),
		replaceMessage,
		document.Now().UnixNano(),
		id,
		updatable[0], updatable[1],
	)
	t, err := scanTodo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError(domain.ResourceTodo, id)
		}
		return nil, domain.NewDatabaseError("update todo", err)
	}
	return t, nil
}

// Delete soft-deletes a non-deleted todo.
func (s *Store) Delete(ctx context.Context, id string) error {
	from := domain.StatusStrings(domain.DeletableStatuses())
	return s.exec(ctx, "delete todo", id, transitionFromVisibleSQL,
		string(domain.StatusDeleted), document.Now().UnixNano(), id, from[0], from[1])
}

// Restore moves a deleted todo back to pending.
func (s *Store) Restore(ctx context.Context, id string) error {
	from := domain.StatusStrings(domain.RestorableStatuses())
	return s.exec(ctx, "restore todo", id, transitionTodoSQL,
		string(domain.StatusPending), document.Now().UnixNano(), id, from[0])
}

func (s *Store) exec(ctx context.Context, op, id, query string, args ...any) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return domain.NewDatabaseError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.NewDatabaseError(op, err)
	}
	if n == 0 {
		return domain.NewNotFoundError(domain.ResourceTodo, id)
	}
	return nil
}

// Filter returns todos matching criteria, newest first. Status is pushed
// down to SQL; the text match runs in process because SQLite's lower()
// only folds ASCII.
func (s *Store) Filter(ctx context.Context, criteria domain.FilterCriteria) ([]*domain.Todo, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		rows *sql.Rows
		err  error
	)
	if criteria.Status == nil {
		visible := visibleArgs()
		rows, err = s.db.QueryContext(ctx, listVisibleSQL, visible[0], visible[1])
	} else {
		rows, err = s.db.QueryContext(ctx, listByStatusSQL, string(*criteria.Status))
	}
	if err != nil {
		return nil, domain.NewDatabaseError("filter todos", err)
	}
	defer rows.Close()

	todos := make([]*domain.Todo, 0)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, domain.NewDatabaseError("filter todos", err)
		}
		if criteria.Matches(t) {
			todos = append(todos, t)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewDatabaseError("filter todos", err)
	}
	return todos, nil
}

func visibleArgs() []string {
	return domain.StatusStrings(domain.VisibleStatuses())
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(row scanner) (*domain.Todo, error) {
	var (
		t                    domain.Todo
		status               string
		description, message sql.NullString
		createdAt, updatedAt int64
	)
	if err := row.Scan(&t.ID, &t.Title, &description, &status, &message, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	st, err := domain.NewStatus(status)
	if err != nil {
		return nil, err
	}
	t.Status = st
	t.Description = stringPtr(description)
	t.CompletionMessage = stringPtr(message)
	t.CreatedAt = time.Unix(0, createdAt).UTC()
	t.UpdatedAt = time.Unix(0, updatedAt).UTC()
	t.Normalize()
	return &t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
