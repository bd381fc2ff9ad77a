// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package models

import (
	"time"
)

// APIResponse is the envelope returned by every JSON endpoint.
//
// Status is "success" (see Data) or "error" (see Error).
//
//	{
//	  "status": "success",
//	  "data": {"dimension": "channel", "rows": [...]},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z", "query_time_ms": 4}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata describes how a response was produced.
//
// DatasetVersion is the content fingerprint of the dataset the numbers were
// computed from, so clients can tell when a reload changed the data under them.
type Metadata struct {
	Timestamp      time.Time `json:"timestamp"`
	QueryTimeMS    int64     `json:"query_time_ms,omitempty"`
	Cached         bool      `json:"cached,omitempty"`
	DatasetVersion string    `json:"dataset_version,omitempty"`
}

// APIError carries a machine-readable code and a human message.
//
// Codes: VALIDATION_ERROR, NOT_FOUND, DATASET_UNAVAILABLE, INTERNAL_ERROR,
// RATE_LIMIT_EXCEEDED.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// PaginationInfo describes an offset page of a listing.
type PaginationInfo struct {
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	TotalCount int  `json:"total_count"`
	HasMore    bool `json:"has_more"`
}

// HealthStatus is returned by the health endpoints.
type HealthStatus struct {
	Status        string    `json:"status"`
	Version       string    `json:"version"`
	DatasetLoaded bool      `json:"dataset_loaded"`
	Engine        string    `json:"engine"`
	EngineHealthy bool      `json:"engine_healthy"`
	Uptime        float64   `json:"uptime"`
	LastLoad      time.Time `json:"last_load,omitempty"`
}
