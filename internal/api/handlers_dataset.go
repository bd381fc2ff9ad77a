// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/salesboard/internal/dataset"
	"github.com/tomtom215/salesboard/internal/logging"
	"github.com/tomtom215/salesboard/internal/models"
)

// DatasetInfo describes the loaded dataset.
type DatasetInfo struct {
	*dataset.Dataset
	Channels  []string `json:"channels"`
	Engine    string   `json:"engine"`
	LastError string   `json:"last_error,omitempty"`
}

func (h *Handler) datasetInfo(ds *dataset.Dataset) DatasetInfo {
	info := DatasetInfo{
		Dataset:  ds,
		Channels: ds.Channels(),
		Engine:   h.svc.Engine().Name(),
	}
	if err := h.svc.Status().LastError; err != nil {
		info.LastError = err.Error()
	}
	return info
}

// DatasetInfo returns the source path, fingerprint, load time and summary
// of the dataset in service.
func (h *Handler) DatasetInfo(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.executor().resolveDataset(w, r)
	if !ok {
		return
	}
	respondSuccess(w, h.datasetInfo(ds), models.Metadata{DatasetVersion: ds.Fingerprint})
}

// ReloadDataset drops the cached dataset and responses and loads the source
// again. A failed reload answers 503 while the previous dataset, if any,
// stays in service.
func (h *Handler) ReloadDataset(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ds, err := h.svc.Reload(r.Context())
	if err != nil {
		respondDatasetError(w, err, h.svc.Status().Source)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("fingerprint", ds.Fingerprint).
		Int("records", len(ds.Records)).
		Msg("Dataset reloaded on request")

	respondSuccess(w, h.datasetInfo(ds), models.Metadata{
		QueryTimeMS:    time.Since(start).Milliseconds(),
		DatasetVersion: ds.Fingerprint,
	})
}

// Filters returns the values offered by the filter widgets.
func (h *Handler) Filters(w http.ResponseWriter, r *http.Request) {
	h.executor().Execute(w, r, "filters", nil, func(_ context.Context, ds *dataset.Dataset) (interface{}, error) {
		return h.svc.Options(ds), nil
	})
}
