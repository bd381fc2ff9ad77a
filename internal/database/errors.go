// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package database

import (
	"database/sql"
	"errors"
	"io"

	"github.com/tomtom215/salesboard/internal/logging"
)

// closeWithLog closes c, logging a failure against what.
func closeWithLog(c io.Closer, what string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.Warn().Err(err).Str("resource", what).Msg("DuckDB resource close failed")
	}
}

// closeQuietly is for error paths where the close result cannot change the
// outcome.
func closeQuietly(c io.Closer) {
	if c == nil {
		return
	}
	_ = c.Close()
}

// rollback aborts tx; it is a no-op after Commit.
func rollback(tx *sql.Tx) {
	err := tx.Rollback()
	if err == nil || errors.Is(err, sql.ErrTxDone) {
		return
	}
	logging.Warn().Err(err).Msg("DuckDB rollback failed")
}
