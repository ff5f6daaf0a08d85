// Package health reports whether the todo store is reachable, over HTTP and
// the standard gRPC health protocol.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rezkam/todo/internal/infrastructure/http/response"
)

// ServiceName is the gRPC health service name reported next to the
// server-wide "" entry.
const ServiceName = "todo.TodoService"

// DefaultTimeout bounds a single store ping.
const DefaultTimeout = 2 * time.Second

// Pinger is implemented by every store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker pings the store with a bounded timeout.
type Checker struct {
	pinger  Pinger
	timeout time.Duration
}

// NewChecker creates a Checker. A non-positive timeout uses DefaultTimeout.
func NewChecker(pinger Pinger, timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Checker{pinger: pinger, timeout: timeout}
}

// Check returns nil when the store answered a ping in time.
func (c *Checker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.pinger.Ping(ctx)
}

type statusBody struct {
	Status string `json:"status"`
}

// Handler serves GET /health: 200 when the store is reachable, 503 otherwise.
// The ping error is logged, never returned.
func (c *Checker) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := c.Check(r.Context()); err != nil {
			slog.WarnContext(r.Context(), "health check failed", "error", err)
			response.JSON(w, http.StatusServiceUnavailable, statusBody{Status: "unavailable"})
			return
		}
		response.JSON(w, http.StatusOK, statusBody{Status: "ok"})
	})
}

// GRPCService publishes the checker's result through grpc.health.v1.
type GRPCService struct {
	checker  *Checker
	server   *health.Server
	interval time.Duration
}

// NewGRPCService creates the gRPC health service. Both entries start
// NOT_SERVING until the first check completes.
func NewGRPCService(checker *Checker, interval time.Duration) *GRPCService {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &GRPCService{checker: checker, server: hs, interval: interval}
}

// Register attaches the health service to s.
func (g *GRPCService) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, g.server)
}

// Server exposes the underlying health server.
func (g *GRPCService) Server() *health.Server {
	return g.server
}

// Refresh runs one check and publishes the result.
func (g *GRPCService) Refresh(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if err := g.checker.Check(ctx); err != nil {
		slog.WarnContext(ctx, "store health check failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	g.server.SetServingStatus("", status)
	g.server.SetServingStatus(ServiceName, status)
}

// Run refreshes the status every interval until ctx is done, then marks
// every service NOT_SERVING so clients drain before the server stops.
func (g *GRPCService) Run(ctx context.Context) {
	g.Refresh(ctx)

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			g.server.Shutdown()
			return
		case <-ticker.C:
			g.Refresh(ctx)
		}
	}
}
