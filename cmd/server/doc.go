// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

/*
Package main is the entry point for the Salesboard server.

Salesboard serves sales KPIs computed from a CSV export: per-dimension
tables (category, campaign, channel, segment, region, month, quarter,
season), overview cards, a daily trend, channel performance and a PDF
report, all filtered by date range and marketing channel.

# Application Architecture

	RootSupervisor ("salesboard")
	├── DataSupervisor ("data-layer")
	│   └── Dataset watcher (cron schedule, optional)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Initialization order:

 1. Configuration: koanf v2 (defaults, config.yaml, environment, .env)
 2. Logging: zerolog with JSON/console output
 3. Analytics engine: in-process Go or DuckDB
 4. Response cache: memory or Redis
 5. Analytics service and initial dataset load
 6. Supervisor tree with the watcher and the HTTP server

A missing or malformed dataset does not stop the server: endpoints answer
503 DATASET_UNAVAILABLE until a load succeeds.

# Signals

SIGINT and SIGTERM cancel the root context; the supervisor stops the HTTP
server gracefully and the watcher finishes its current check.
*/
package main
