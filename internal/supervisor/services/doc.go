// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

/*
Package services provides suture.Service wrappers for Salesboard components.

Each wrapper translates a component's own lifecycle into suture's
context-aware Serve pattern and implements fmt.Stringer so supervisor events
name the service.

HTTP Server (HTTPServerService):
  - Wraps *http.Server, converting ListenAndServe to Serve
  - Drains connections on shutdown with a configurable timeout

Dataset Watcher (DatasetWatcherService):
  - Polls the dataset source on a robfig/cron schedule
  - Reloads and invalidates caches when the file content changes
  - Logs load failures and retries on the next tick
*/
package services
