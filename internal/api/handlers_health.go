// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/salesboard/internal/models"
)

const enginePingTimeout = 2 * time.Second

// Health reports service health. It always answers 200; status is
// "degraded" while no dataset is loaded or the engine is unreachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	st := h.svc.Status()
	engineHealthy := h.pingEngine(r.Context()) == nil

	health := models.HealthStatus{
		Status:        "healthy",
		Version:       h.version,
		DatasetLoaded: st.Loaded,
		Engine:        h.svc.Engine().Name(),
		EngineHealthy: engineHealthy,
		Uptime:        time.Since(h.startTime).Seconds(),
		LastLoad:      st.LastLoad,
	}
	if !st.Loaded || !engineHealthy || st.LastError != nil {
		health.Status = "degraded"
	}

	respondSuccess(w, health, models.Metadata{})
}

// HealthLive is the liveness probe: the process is serving requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, http.StatusOK, &models.APIResponse{
		Status: "alive",
		Data: map[string]interface{}{
			"uptime": time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthReady is the readiness probe. Ready means a dataset can be served
// (loading it if needed) and the engine answers a ping.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ds, loadErr := h.svc.Dataset(r.Context())
	engineErr := h.pingEngine(r.Context())
	ready := loadErr == nil && engineErr == nil

	data := map[string]interface{}{
		"dataset_loaded": loadErr == nil,
		"engine":         h.svc.Engine().Name(),
		"engine_healthy": engineErr == nil,
		"ready_to_serve": ready,
	}
	if loadErr != nil {
		data["dataset_error"] = loadErr.Error()
	}

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	meta := models.Metadata{Timestamp: time.Now()}
	if ds != nil {
		meta.DatasetVersion = ds.Fingerprint
	}
	writeEnvelope(w, statusCode, &models.APIResponse{
		Status:   status,
		Data:     data,
		Metadata: meta,
	})
}

func (h *Handler) pingEngine(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, enginePingTimeout)
	defer cancel()
	return h.svc.Engine().Ping(ctx)
}
