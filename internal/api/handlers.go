// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/salesboard/internal/analytics"
	"github.com/tomtom215/salesboard/internal/config"
)

// Handler serves the API endpoints.
type Handler struct {
	svc       *analytics.Service
	config    *config.Config
	startTime time.Time
	version   string
}

// NewHandler creates a Handler over svc.
func NewHandler(svc *analytics.Service, cfg *config.Config, version string) *Handler {
	if version == "" {
		version = "dev"
	}
	return &Handler{
		svc:       svc,
		config:    cfg,
		startTime: time.Now(),
		version:   version,
	}
}

// NotFound answers unknown routes with the JSON envelope.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, CodeNotFound, "Resource not found", nil)
}

// MethodNotAllowed answers known routes called with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Method not allowed", nil)
}
