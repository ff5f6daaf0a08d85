package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/rezkam/todo/internal/domain"
)

const maxTitleCell = 48

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle      = lipgloss.NewStyle().Padding(0, 1)
	labelStyle     = lipgloss.NewStyle().Bold(true)
	valueMuted     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	deletedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func printTodoTable(w io.Writer, todos []*domain.Todo) {
	if len(todos) == 0 {
		fmt.Fprintln(w, "No todos found.")
		return
	}
	fmt.Fprintln(w, formatTodoTable(todos))
}

func formatTodoTable(todos []*domain.Todo) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "STATUS", "CREATED", "TITLE").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, todo := range todos {
		t.Row(todo.ID, statusLabel(todo.Status), todo.CreatedAt.Local().Format(time.DateTime), truncate(todo.Title, maxTitleCell))
	}
	return t.Render()
}

func printTodoDetail(w io.Writer, t *domain.Todo) {
	row := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-12s", label)), value)
	}

	row("id", t.ID)
	row("title", t.Title)
	row("status", statusLabel(t.Status))
	if t.Description != nil {
		row("description", *t.Description)
	}
	if msg, ok := t.Message(); ok {
		row("message", msg)
	}
	row("created", valueMuted.Render(t.CreatedAt.Local().Format(time.DateTime)))
	row("updated", valueMuted.Render(t.UpdatedAt.Local().Format(time.DateTime)))
}

func statusLabel(s domain.Status) string {
	switch s {
	case domain.StatusCompleted:
		return completedStyle.Render(string(s))
	case domain.StatusDeleted:
		return deletedStyle.Render(string(s))
	default:
		return string(s)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
