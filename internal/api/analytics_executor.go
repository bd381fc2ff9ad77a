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
	"github.com/tomtom215/salesboard/internal/filter"
	"github.com/tomtom215/salesboard/internal/models"
)

// DatasetQueryFunc computes a response from the current dataset.
type DatasetQueryFunc func(ctx context.Context, ds *dataset.Dataset) (interface{}, error)

// FilteredQueryFunc computes a response from the filtered dataset.
type FilteredQueryFunc func(ctx context.Context, ds *dataset.Dataset, c filter.Criteria) (interface{}, error)

// QueryExecutor runs the common request flow: resolve the dataset, parse the
// filter, consult the response cache, compute and respond.
type QueryExecutor struct {
	handler *Handler
}

// NewQueryExecutor creates an executor bound to h.
func NewQueryExecutor(h *Handler) *QueryExecutor {
	return &QueryExecutor{handler: h}
}

func (h *Handler) executor() *QueryExecutor {
	return NewQueryExecutor(h)
}

// resolveDataset returns the dataset or writes the 503 response.
func (e *QueryExecutor) resolveDataset(w http.ResponseWriter, r *http.Request) (*dataset.Dataset, bool) {
	ds, err := e.handler.svc.Dataset(r.Context())
	if err != nil {
		respondDatasetError(w, err, e.handler.svc.Status().Source)
		return nil, false
	}
	return ds, true
}

// Execute runs queryFunc against the dataset. params must identify the
// response for caching; pass nil for responses that depend on the dataset
// only.
func (e *QueryExecutor) Execute(w http.ResponseWriter, r *http.Request, endpoint string, params interface{}, queryFunc DatasetQueryFunc) {
	start := time.Now()
	ds, ok := e.resolveDataset(w, r)
	if !ok {
		return
	}
	e.respond(w, r, start, ds, endpoint, params, func() (interface{}, error) {
		return queryFunc(r.Context(), ds)
	})
}

// ExecuteFiltered parses the common filter parameters and runs queryFunc on
// the resulting criteria.
func (e *QueryExecutor) ExecuteFiltered(w http.ResponseWriter, r *http.Request, endpoint string, params interface{}, queryFunc FilteredQueryFunc) {
	start := time.Now()
	ds, ok := e.resolveDataset(w, r)
	if !ok {
		return
	}

	req := parseFilterRequest(r)
	c, apiErr := req.Criteria(ds)
	if apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	key := struct {
		Filter string      `json:"filter"`
		Params interface{} `json:"params,omitempty"`
	}{c.Key(), params}

	e.respond(w, r, start, ds, endpoint, key, func() (interface{}, error) {
		return queryFunc(r.Context(), ds, c)
	})
}

func (e *QueryExecutor) respond(w http.ResponseWriter, r *http.Request, start time.Time, ds *dataset.Dataset, endpoint string, key interface{}, compute func() (interface{}, error)) {
	data, cached, err := e.handler.svc.Cached(r.Context(), ds, endpoint, key, compute)
	if err != nil {
		respondQueryError(w, err)
		return
	}

	meta := models.Metadata{
		Timestamp:      time.Now(),
		Cached:         cached,
		DatasetVersion: ds.Fingerprint,
	}
	if !cached {
		meta.QueryTimeMS = time.Since(start).Milliseconds()
	}
	respondSuccess(w, data, meta)
}
