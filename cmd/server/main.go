// Command server runs the todo HTTP API and the gRPC health endpoint.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"github.com/rezkam/todo/internal/application/todo"
	"github.com/rezkam/todo/internal/config"
	"github.com/rezkam/todo/internal/infrastructure/health"
	httpserver "github.com/rezkam/todo/internal/infrastructure/http"
	"github.com/rezkam/todo/internal/infrastructure/http/handler"
	"github.com/rezkam/todo/internal/infrastructure/observability"
	"github.com/rezkam/todo/internal/infrastructure/persistence"
)

func main() {
	if err := run(); err != nil {
		// slog may not be configured yet.
		fmt.Fprintf(os.Stderr, "failed to run: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	telemetry, err := observability.Setup(ctx, observability.Config{
		Enabled:     cfg.Observability.OTelEnabled,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		return err
	}
	slog.SetDefault(telemetry.Logger)

	slog.InfoContext(ctx, "starting todo service",
		"store_driver", cfg.Store.Driver,
		"require_completion_message", cfg.Todo.RequireCompletionMessage)

	store, err := persistence.Open(ctx, cfg.Store)
	if err != nil {
		_ = telemetry.Shutdown(context.Background())
		return err
	}

	svc := todo.NewService(store, todo.Config{
		RequireCompletionMessage: cfg.Todo.RequireCompletionMessage,
	})

	apiHandler, err := handler.NewOpenAPIRouter(svc)
	if err != nil {
		_ = store.Close()
		_ = telemetry.Shutdown(context.Background())
		return fmt.Errorf("failed to build API router: %w", err)
	}

	checker := health.NewChecker(store, cfg.Store.OperationTimeout)
	apiServer := httpserver.NewAPIServer(apiHandler, checker.Handler(), httpserver.ServerConfig{
		Host:              cfg.HTTP.Host,
		Port:              cfg.HTTP.Port,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MaxBodyBytes:      cfg.HTTP.MaxBodyBytes,
	})

	errResult := make(chan error, 2)
	go func() {
		if err := apiServer.Start(); err != nil {
			errResult <- fmt.Errorf("failed to serve HTTP: %w", err)
		}
	}()

	var grpcServer *grpc.Server
	if cfg.GRPC.Enabled {
		s, lis, healthSvc, err := createGRPCServer(ctx, cfg.GRPC, checker)
		if err != nil {
			cancel()
			shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer stop()
			newCleanup(shutdownCtx, apiServer, store, telemetry)()
			return fmt.Errorf("failed to create gRPC server: %w", err)
		}
		grpcServer = s

		go healthSvc.Run(ctx)
		go func() {
			if err := s.Serve(lis); err != nil {
				errResult <- fmt.Errorf("failed to serve gRPC: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		slog.InfoContext(ctx, "shutting down")
	case runErr = <-errResult:
		slog.ErrorContext(ctx, "server failed, shutting down", "error", runErr)
		cancel()
	}

	// The signal context is already done; drain on a fresh deadline.
	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer stop()

	if grpcServer != nil {
		stopGRPC(shutdownCtx, grpcServer)
	}
	newCleanup(shutdownCtx, apiServer, store, telemetry)()

	return runErr
}
