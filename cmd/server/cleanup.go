package main

import (
	"context"
	"io"
	"log/slog"
)

// shutdowner is anything drained with a deadline: the HTTP server, telemetry.
type shutdowner interface {
	Shutdown(context.Context) error
}

// newCleanup returns the shutdown sequence: stop accepting requests, close
// the store once no handler can reach it, then flush telemetry so the
// previous steps are still logged. Nil steps are skipped.
func newCleanup(ctx context.Context, server shutdowner, store io.Closer, telemetry shutdowner) func() {
	return func() {
		if server != nil {
			if err := server.Shutdown(ctx); err != nil {
				slog.ErrorContext(ctx, "failed to shut down HTTP server", "error", err)
			}
		}

		if store != nil {
			if err := store.Close(); err != nil {
				slog.ErrorContext(ctx, "failed to close store", "error", err)
			} else {
				slog.InfoContext(ctx, "store closed")
			}
		}

		if telemetry != nil {
			if err := telemetry.Shutdown(ctx); err != nil {
				slog.ErrorContext(ctx, "failed to shut down telemetry", "error", err)
			}
		}
	}
}
