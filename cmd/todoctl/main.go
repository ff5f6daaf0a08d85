// Command todoctl manages todos directly against the configured store.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezkam/todo/internal/application/todo"
	"github.com/rezkam/todo/internal/config"
	"github.com/rezkam/todo/internal/infrastructure/persistence"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds the flags shared by every subcommand.
type app struct {
	out     io.Writer
	profile string
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:          "todoctl",
		Short:        "Manage todos in the configured store",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&a.profile, "config", "", "TOML profile overriding the store settings")

	root.AddCommand(
		newListCmd(a),
		newShowCmd(a),
		newAddCmd(a),
		newEditCmd(a),
		newDoneCmd(a),
		newUndoCmd(a),
		newRmCmd(a),
		newRestoreCmd(a),
	)
	return root
}

// run opens the store for the duration of one command.
func (a *app) run(fn func(*cobra.Command, []string, *todo.Service) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
			cmd.SetContext(ctx)
		}

		cfg, err := config.LoadCLIConfig(a.profile)
		if err != nil {
			return err
		}

		store, err := persistence.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := store.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close store: %w", cerr)
			}
		}()

		svc := todo.NewService(store, todo.Config{
			RequireCompletionMessage: cfg.Todo.RequireCompletionMessage,
		})
		return fn(cmd, args, svc)
	}
}
