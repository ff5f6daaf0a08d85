package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rezkam/todo/internal/domain"
)

// todoColumns is the projection every query returns, in todoRow order.
const todoColumns = `id, title, description, status, completion_message, created_at, updated_at`

// todoRow mirrors a row of the todos table.
type todoRow struct {
	ID                pgtype.UUID        `db:"id"`
	Title             string             `db:"title"`
	Description       pgtype.Text        `db:"description"`
	Status            string             `db:"status"`
	CompletionMessage pgtype.Text        `db:"completion_message"`
	CreatedAt         pgtype.Timestamptz `db:"created_at"`
	UpdatedAt         pgtype.Timestamptz `db:"updated_at"`
}

// === pgtype Conversion Helpers ===

// uuidToPgtype converts google/uuid.UUID to pgtype.UUID.
func uuidToPgtype(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

// pgtypeToUUIDString converts pgtype.UUID to string (empty if invalid).
func pgtypeToUUIDString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}

// timeToPgtype converts time.Time to pgtype.Timestamptz.
func timeToPgtype(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

// pgtypeToTime converts pgtype.Timestamptz to time.Time (zero if invalid).
// Always returns time in UTC location for consistent timezone handling.
func pgtypeToTime(t pgtype.Timestamptz) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time.UTC()
}

// stringPtrToPgtype converts *string to pgtype.Text (NULL for nil).
func stringPtrToPgtype(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

// pgtypeToStringPtr converts pgtype.Text to *string (nil for NULL).
func pgtypeToStringPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

// === Todo Conversions ===

func dbTodoToDomain(row todoRow) (*domain.Todo, error) {
	status, err := domain.NewStatus(row.Status)
	if err != nil {
		return nil, err
	}

	t := &domain.Todo{
		ID:                pgtypeToUUIDString(row.ID),
		Title:             row.Title,
		Description:       pgtypeToStringPtr(row.Description),
		Status:            status,
		CompletionMessage: pgtypeToStringPtr(row.CompletionMessage),
		CreatedAt:         pgtypeToTime(row.CreatedAt),
		UpdatedAt:         pgtypeToTime(row.UpdatedAt),
	}
	t.Normalize()
	return t, nil
}

// collectTodos drains rows into domain todos.
func collectTodos(rows pgx.Rows) ([]*domain.Todo, error) {
	dbRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[todoRow])
	if err != nil {
		return nil, err
	}

	todos := make([]*domain.Todo, 0, len(dbRows))
	for _, row := range dbRows {
		t, err := dbTodoToDomain(row)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, nil
}

// collectTodo reads exactly one row. pgx.ErrNoRows is returned unchanged.
func collectTodo(rows pgx.Rows) (*domain.Todo, error) {
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[todoRow])
	if err != nil {
		return nil, err
	}
	return dbTodoToDomain(row)
}
