package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rezkam/todo/internal/application/todo"
	"github.com/rezkam/todo/internal/domain"
	"github.com/rezkam/todo/internal/infrastructure/http/handler"
	"github.com/rezkam/todo/internal/ptr"
)

func newListCmd(a *app) *cobra.Command {
	var (
		status string
		query  string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List todos, newest first",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string, svc *todo.Service) error {
			criteria := domain.FilterCriteria{Query: query}
			if status != "" {
				s, err := domain.NewStatus(status)
				if err != nil {
					return err
				}
				criteria.Status = &s
			}

			todos, err := svc.FilterTodos(cmd.Context(), criteria)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(handler.MapTodosToDTO(todos))
			}
			printTodoTable(a.out, todos)
			return nil
		}),
	}

	cmd.Flags().StringVar(&status, "status", "", "pending, completed or deleted (the trash)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "case-insensitive text in title or description")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one todo",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string, svc *todo.Service) error {
			t, err := svc.GetTodoByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printTodoDetail(a.out, t)
			return nil
		}),
	}
}

func newAddCmd(a *app) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a pending todo",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string, svc *todo.Service) error {
			t, err := svc.CreateTodo(cmd.Context(), args[0], ptr.NonBlank(description))
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, t.ID)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "optional description")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the title or description of a todo",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string, svc *todo.Service) error {
			var changes domain.TodoChanges
			if cmd.Flags().Changed("title") {
				changes.Title = &title
			}
			if cmd.Flags().Changed("description") {
				changes.Description = &description
			}
			if changes.IsEmpty() {
				return fmt.Errorf("nothing to change: pass --title or --description")
			}

			t, err := svc.UpdateTodo(cmd.Context(), args[0], changes)
			if err != nil {
				return err
			}
			printTodoDetail(a.out, t)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	return cmd
}

func newDoneCmd(a *app) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:     "done <id>",
		Short:   "Mark a todo completed",
		Aliases: []string{"complete"},
		Args:    cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string, svc *todo.Service) error {
			t, err := svc.CompleteTodo(cmd.Context(), args[0], ptr.NonBlank(message))
			if err != nil {
				return err
			}
			printTodoDetail(a.out, t)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "completion message")
	return cmd
}

func newUndoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "undo <id>",
		Short:   "Move a completed todo back to pending",
		Aliases: []string{"reopen"},
		Args:    cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string, svc *todo.Service) error {
			t, err := svc.ReopenTodo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printTodoDetail(a.out, t)
			return nil
		}),
	}
}

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Short:   "Move todos to the trash",
		Aliases: []string{"delete"},
		Args:    cobra.MinimumNArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string, svc *todo.Service) error {
			for _, id := range args {
				if err := svc.DeleteTodo(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "deleted %s\n", id)
			}
			return nil
		}),
	}
}

func newRestoreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>...",
		Short: "Bring todos back from the trash as pending",
		Args:  cobra.MinimumNArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string, svc *todo.Service) error {
			for _, id := range args {
				if err := svc.RestoreTodo(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "restored %s\n", id)
			}
			return nil
		}),
	}
}
