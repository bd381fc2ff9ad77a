// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package services

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// fakeServer blocks in ListenAndServe until Shutdown unless startErr is set.
type fakeServer struct {
	startErr    error
	shutdownErr error

	started   chan struct{}
	stopped   chan struct{}
	listens   atomic.Int32
	shutdowns atomic.Int32
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		started: make(chan struct{}, 8),
		stopped: make(chan struct{}),
	}
}

func (f *fakeServer) ListenAndServe() error {
	f.listens.Add(1)
	f.started <- struct{}{}
	if f.startErr != nil {
		return f.startErr
	}
	<-f.stopped
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	f.shutdowns.Add(1)
	close(f.stopped)
	return f.shutdownErr
}

func waitStarted(t *testing.T, f *fakeServer) {
	t.Helper()
	select {
	case <-f.started:
	case <-time.After(time.Second):
		t.Fatal("server was not started")
	}
}

func TestNewHTTPServerService_ShutdownTimeout(t *testing.T) {
	t.Parallel()
	var _ suture.Service = (*HTTPServerService)(nil)

	for _, tc := range []struct {
		in, want time.Duration
	}{
		{3 * time.Second, 3 * time.Second},
		{0, 10 * time.Second},
		{-time.Second, 10 * time.Second},
	} {
		svc := NewHTTPServerService(newFakeServer(), tc.in)
		if svc.shutdownTimeout != tc.want {
			t.Errorf("timeout(%v) = %v, want %v", tc.in, svc.shutdownTimeout, tc.want)
		}
	}
	if got := NewHTTPServerService(newFakeServer(), 0).String(); got != "http-server" {
		t.Errorf("String() = %q", got)
	}
}

func TestHTTPServerService_Serve(t *testing.T) {
	t.Parallel()

	bindErr := errors.New("bind: address already in use")
	drainErr := errors.New("drain timed out")

	tests := []struct {
		name        string
		startErr    error
		shutdownErr error
		cancel      bool
		want        error
	}{
		{"cancellation stops the server", nil, nil, true, context.Canceled},
		{"startup failure is returned", bindErr, nil, false, bindErr},
		{"shutdown failure is returned", nil, drainErr, true, drainErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFakeServer()
			f.startErr = tt.startErr
			f.shutdownErr = tt.shutdownErr
			svc := NewHTTPServerService(f, time.Second)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			errCh := make(chan error, 1)
			go func() { errCh <- svc.Serve(ctx) }()

			waitStarted(t, f)
			if tt.cancel {
				cancel()
			}

			select {
			case err := <-errCh:
				if !errors.Is(err, tt.want) {
					t.Errorf("Serve() = %v, want %v", err, tt.want)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("Serve did not return")
			}
			if tt.cancel && f.shutdowns.Load() != 1 {
				t.Errorf("shutdowns = %d, want 1", f.shutdowns.Load())
			}
		})
	}
}

func TestHTTPServerService_ServesRequests(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	if err := ln.Close(); err != nil {
		t.Fatal(err)
	}

	srv := &http.Server{
		Addr: addr,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "ok")
		}),
		ReadHeaderTimeout: time.Second,
	}
	svc := NewHTTPServerService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	var body string
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get("http://" + addr + "/")
		if err == nil {
			b, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			body = string(b)
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if body != "ok" {
		t.Errorf("body = %q, want ok", body)
	}

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
}

func TestHTTPServerService_UnderSupervisor(t *testing.T) {
	t.Parallel()
	f := newFakeServer()

	sup := suture.New("api-test", suture.Spec{
		FailureThreshold: 3,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          2 * time.Second,
	})
	sup.Add(NewHTTPServerService(f, time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	done := sup.ServeBackground(ctx)
	waitStarted(t, f)

	cancel()
	<-done
	if f.shutdowns.Load() != 1 {
		t.Errorf("shutdowns = %d, want 1", f.shutdowns.Load())
	}
}
