// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

/*
Package api provides the HTTP interface of Salesboard.

All endpoints live under /api/v1 and answer with the models.APIResponse
envelope:

	{
	  "status": "success",
	  "data": {...},
	  "metadata": {"timestamp": "...", "query_time_ms": 3, "cached": true, "dataset_version": "..."},
	  "error": {"code": "VALIDATION_ERROR", "message": "...", "details": {...}}
	}

Endpoints:

	GET  /api/v1/health                    service health
	GET  /api/v1/health/live               liveness probe
	GET  /api/v1/health/ready              readiness probe (dataset loaded, engine reachable)
	GET  /api/v1/dataset                   dataset info
	POST /api/v1/dataset/reload            reload the source and clear caches
	GET  /api/v1/filters                   filter widget options
	GET  /api/v1/overview                  metric cards
	GET  /api/v1/trend                     daily orders and net revenue
	GET  /api/v1/records                   filtered records (limit, offset)
	GET  /api/v1/kpi                       every dimension's KPI table
	GET  /api/v1/kpi/channel-performance   revenue per marketing spend by channel
	GET  /api/v1/kpi/{dimension}           one dimension (sort, limit)
	GET  /api/v1/reports/kpi.pdf           PDF export
	GET  /metrics                          Prometheus

Filtered endpoints accept start and end (YYYY-MM-DD, inclusive) and channels
(comma separated). Without channels every channel is selected; an explicit
empty channels parameter selects nothing and yields empty tables.

Middleware order: request ID, real IP (trusted proxies only), panic recovery,
compression, CORS, then per-group rate limiting, security headers and
Prometheus metrics.
*/
package api
