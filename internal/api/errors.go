// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/salesboard/internal/analytics"
	"github.com/tomtom215/salesboard/internal/dataset"
	"github.com/tomtom215/salesboard/internal/kpi"
	"github.com/tomtom215/salesboard/internal/validation"
)

// Error codes returned in APIError.Code.
const (
	CodeValidation         = validation.CodeValidation
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeDatasetUnavailable = "DATASET_UNAVAILABLE"
	CodeEngineUnavailable  = "ENGINE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
	CodeRateLimited        = "RATE_LIMIT_EXCEEDED"
)

// respondDatasetError answers a failed dataset load. Every load failure is a
// 503: the service is up but has nothing to aggregate.
func respondDatasetError(w http.ResponseWriter, err error, source string) {
	message := "Dataset could not be loaded"
	if errors.Is(err, dataset.ErrSourceNotFound) {
		message = "Dataset source not found"
	}
	respondErrorDetails(w, http.StatusServiceUnavailable, CodeDatasetUnavailable, message, err,
		map[string]interface{}{
			"kind":   dataset.ErrorKind(err),
			"source": source,
			"reason": err.Error(),
		})
}

// respondQueryError maps an aggregation or rendering failure to a status.
func respondQueryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, kpi.ErrUnknownDimension):
		respondErrorDetails(w, http.StatusBadRequest, CodeValidation, "Unknown dimension", nil,
			map[string]interface{}{"dimensions": kpi.DimensionNames()})
	case errors.Is(err, analytics.ErrEngineUnavailable):
		respondError(w, http.StatusServiceUnavailable, CodeEngineUnavailable, "Analytics engine unavailable", err)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusServiceUnavailable, CodeInternal, "Query timed out", err)
	default:
		respondError(w, http.StatusInternalServerError, CodeInternal, "Failed to compute KPIs", err)
	}
}
