// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/salesboard/internal/logging"
)

const defaultDrainTimeout = 10 * time.Second

// HTTPServer is what the service needs from *http.Server.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService adapts an HTTPServer to suture.Service. Cancelling the
// serve context drains in-flight dashboard requests for up to
// shutdownTimeout before Serve returns.
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
}

// NewHTTPServerService wraps server. A non-positive shutdownTimeout means 10s.
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultDrainTimeout
	}
	return &HTTPServerService{server: server, shutdownTimeout: shutdownTimeout}
}

func (h *HTTPServerService) addr() string {
	if srv, ok := h.server.(*http.Server); ok {
		return srv.Addr
	}
	return ""
}

// Serve implements suture.Service.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	exited := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", h.addr()).Msg("Dashboard API listening")
		err := h.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		exited <- err
	}()

	select {
	case err := <-exited:
		if err != nil {
			return fmt.Errorf("dashboard API listener failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	started := time.Now()
	drainCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
	defer cancel()
	if err := h.server.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("dashboard API drain failed: %w", err)
	}
	<-exited
	logging.Info().
		Str("addr", h.addr()).
		Dur("drained_in", time.Since(started)).
		Msg("Dashboard API stopped")
	return ctx.Err()
}

// String names the service in supervisor events.
func (h *HTTPServerService) String() string {
	return "http-server"
}
