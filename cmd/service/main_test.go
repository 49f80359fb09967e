package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	errs        chan error
	shutdownErr error
	deadline    time.Time
	shutdown    bool
}

func (f *fakeServer) Start() <-chan error { return f.errs }

func (f *fakeServer) Shutdown(ctx context.Context) error {
	f.shutdown = true
	f.deadline, _ = ctx.Deadline()

	return f.shutdownErr
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServe_ShutsDownOnSignal(t *testing.T) {
	srv := &fakeServer{errs: make(chan error)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := serve(ctx, quietLogger(), srv, 3*time.Second)

	require.NoError(t, err)
	assert.True(t, srv.shutdown)
	assert.WithinDuration(t, start.Add(3*time.Second), srv.deadline, time.Second,
		"shutdown gets its own deadline even though ctx is cancelled")
}

func TestServe_ReturnsListenerError(t *testing.T) {
	srv := &fakeServer{errs: make(chan error, 1)}
	srv.errs <- errors.New("address already in use")

	err := serve(context.Background(), quietLogger(), srv, time.Second)

	require.ErrorContains(t, err, "address already in use")
	assert.False(t, srv.shutdown)
}

func TestServe_ServerExitsOnItsOwn(t *testing.T) {
	srv := &fakeServer{errs: make(chan error)}
	close(srv.errs)

	err := serve(context.Background(), quietLogger(), srv, time.Second)

	require.EqualError(t, err, "server stopped unexpectedly")
}

func TestServe_ShutdownFailure(t *testing.T) {
	srv := &fakeServer{errs: make(chan error), shutdownErr: context.DeadlineExceeded}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := serve(ctx, quietLogger(), srv, time.Second)

	require.ErrorIs(t, err, context.DeadlineExceeded)
}
