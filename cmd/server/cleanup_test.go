package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type ctxKey string

type fakeShutdowner struct {
	name        string
	calls       *[]string
	receivedCtx context.Context
	err         error
}

func (f *fakeShutdowner) Shutdown(ctx context.Context) error {
	f.receivedCtx = ctx
	*f.calls = append(*f.calls, f.name)
	return f.err
}

type fakeStore struct {
	calls *[]string
}

func (s *fakeStore) Close() error {
	*s.calls = append(*s.calls, "storeClose")
	return nil
}

func TestNewCleanup_Order(t *testing.T) {
	ctx := context.WithValue(context.Background(), ctxKey("test"), "marker")
	var callOrder []string

	server := &fakeShutdowner{name: "httpShutdown", calls: &callOrder}
	telemetry := &fakeShutdowner{name: "telemetryShutdown", calls: &callOrder}

	newCleanup(ctx, server, &fakeStore{calls: &callOrder}, telemetry)()

	require.Equal(t, []string{"httpShutdown", "storeClose", "telemetryShutdown"}, callOrder)
	require.Equal(t, "marker", server.receivedCtx.Value(ctxKey("test")))
}

func TestNewCleanup_ContinuesAfterFailure(t *testing.T) {
	var callOrder []string
	server := &fakeShutdowner{name: "httpShutdown", calls: &callOrder, err: errors.New("deadline exceeded")}

	newCleanup(context.Background(), server, &fakeStore{calls: &callOrder}, nil)()

	require.Equal(t, []string{"httpShutdown", "storeClose"}, callOrder)
}
