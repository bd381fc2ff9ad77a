// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

/*
Package middleware provides chi-compatible HTTP middleware.

  - RequestID: propagates or generates X-Request-ID and seeds the logging
    context with request and correlation IDs
  - PrometheusMetrics: request count, latency and in-flight gauges labelled
    by chi route pattern, plus a debug access log line

Both are func(http.Handler) http.Handler and are installed with router.Use
in internal/api, after chi's RealIP and Recoverer:

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
