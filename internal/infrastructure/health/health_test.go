package health_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rezkam/todo/internal/infrastructure/health"
)

type fakePinger struct {
	failing atomic.Bool
}

func (p *fakePinger) Ping(ctx context.Context) error {
	if p.failing.Load() {
		return errors.New("connection refused")
	}
	return ctx.Err()
}

type slowPinger struct{}

func (slowPinger) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestChecker_Timeout(t *testing.T) {
	checker := health.NewChecker(slowPinger{}, 10*time.Millisecond)
	err := checker.Check(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHandler(t *testing.T) {
	pinger := &fakePinger{}
	handler := health.NewChecker(pinger, time.Second).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	pinger.failing.Store(true)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "refused")
}

func servingStatus(t *testing.T, svc *health.GRPCService, name string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := svc.Server().Check(context.Background(), &healthpb.HealthCheckRequest{Service: name})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestGRPCService_Refresh(t *testing.T) {
	pinger := &fakePinger{}
	svc := health.NewGRPCService(health.NewChecker(pinger, time.Second), time.Hour)

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, svc, ""))

	svc.Refresh(context.Background())
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, svc, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, svc, health.ServiceName))

	pinger.failing.Store(true)
	svc.Refresh(context.Background())
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, svc, health.ServiceName))
}

func TestGRPCService_RunStopsServingOnCancel(t *testing.T) {
	svc := health.NewGRPCService(health.NewChecker(&fakePinger{}, time.Second), 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return servingStatus(t, svc, "") == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, svc, ""))
}
