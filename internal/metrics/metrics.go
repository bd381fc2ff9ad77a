// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

// Package metrics exposes Prometheus instrumentation for dataset loading,
// KPI aggregation, the response cache and the HTTP API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Dataset loading
	DatasetLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "salesboard_dataset_load_duration_seconds",
			Help:    "Duration of dataset read, parse and enrichment",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	DatasetLoadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesboard_dataset_load_errors_total",
			Help: "Total number of failed dataset loads",
		},
		[]string{"kind"}, // "not_found", "malformed_date", "malformed_value", "missing_column", "other"
	)

	DatasetRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "salesboard_dataset_records",
			Help: "Number of records in the currently loaded dataset",
		},
	)

	DatasetLastLoad = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "salesboard_dataset_last_load_timestamp_seconds",
			Help: "Unix timestamp of the last successful dataset load",
		},
	)

	LoaderCacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesboard_loader_cache_total",
			Help: "Dataset loader cache lookups by result",
		},
		[]string{"result"}, // "hit_stat", "hit_content", "miss"
	)

	// Aggregation
	AggregationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "salesboard_aggregation_duration_seconds",
			Help:    "Duration of KPI table computation",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"dimension", "engine"},
	)

	AggregationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesboard_aggregation_errors_total",
			Help: "Total number of failed KPI computations",
		},
		[]string{"dimension", "engine"},
	)

	UndefinedRatios = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesboard_undefined_ratios_total",
			Help: "KPI ratios left undefined because of a zero denominator",
		},
		[]string{"dimension"},
	)

	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesboard_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "salesboard_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "salesboard_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Response cache
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesboard_cache_hits_total",
			Help: "Total number of response cache hits",
		},
		[]string{"backend"}, // "memory", "redis"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesboard_cache_misses_total",
			Help: "Total number of response cache misses",
		},
		[]string{"backend"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesboard_cache_errors_total",
			Help: "Total number of response cache backend errors",
		},
		[]string{"backend", "operation"},
	)

	CacheBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "salesboard_cache_breaker_state",
			Help: "Circuit breaker state for the cache backend (0=closed, 1=half-open, 2=open)",
		},
		[]string{"backend"},
	)

	// Report export
	ReportsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesboard_reports_generated_total",
			Help: "Total number of PDF reports generated",
		},
		[]string{"status"},
	)

	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "salesboard_app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordDatasetLoad records a completed load attempt. errKind is empty on
// success, otherwise one of the DatasetLoadErrors kind labels.
func RecordDatasetLoad(duration time.Duration, records int, errKind string) {
	DatasetLoadDuration.Observe(duration.Seconds())
	if errKind != "" {
		DatasetLoadErrors.WithLabelValues(errKind).Inc()
		return
	}
	DatasetRecords.Set(float64(records))
	DatasetLastLoad.Set(float64(time.Now().Unix()))
}

// RecordLoaderCache records a loader cache lookup.
func RecordLoaderCache(result string) {
	LoaderCacheResults.WithLabelValues(result).Inc()
}

// RecordAggregation records one KPI table computation.
func RecordAggregation(dimension, engine string, duration time.Duration, undefined int, err error) {
	AggregationDuration.WithLabelValues(dimension, engine).Observe(duration.Seconds())
	if err != nil {
		AggregationErrors.WithLabelValues(dimension, engine).Inc()
		return
	}
	if undefined > 0 {
		UndefinedRatios.WithLabelValues(dimension).Add(float64(undefined))
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCacheLookup records a response cache hit or miss.
func RecordCacheLookup(backend string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(backend).Inc()
	} else {
		CacheMisses.WithLabelValues(backend).Inc()
	}
}

// RecordCacheError records a failed cache backend call.
func RecordCacheError(backend, operation string, err error) {
	if err == nil {
		return
	}
	CacheErrors.WithLabelValues(backend, operation).Inc()
}

// RecordReport records a PDF export attempt.
func RecordReport(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ReportsGenerated.WithLabelValues(status).Inc()
}
