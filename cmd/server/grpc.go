package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	"github.com/rezkam/todo/internal/config"
	"github.com/rezkam/todo/internal/infrastructure/health"
)

// createGRPCServer builds the gRPC server that carries the health protocol.
// The returned service must be Run for the status to track the store.
func createGRPCServer(ctx context.Context, cfg config.GRPCConfig, checker *health.Checker) (*grpc.Server, net.Listener, *health.GRPCService, error) {
	lis, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to listen: %w", err)
	}

	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ConnectionTimeout(5*time.Second),
	)

	healthSvc := health.NewGRPCService(checker, cfg.HealthInterval)
	healthSvc.Register(s)

	slog.InfoContext(ctx, "gRPC server listening", "address", lis.Addr())
	return s, lis, healthSvc, nil
}

// stopGRPC drains in-flight RPCs, forcing a stop when ctx expires first.
func stopGRPC(ctx context.Context, s *grpc.Server) {
	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		slog.InfoContext(ctx, "gRPC server shutdown complete")
	case <-ctx.Done():
		slog.WarnContext(ctx, "gRPC server shutdown timed out, forcing stop")
		s.Stop()
	}
}
