// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/salesboard/internal/dataset"
	"github.com/tomtom215/salesboard/internal/logging"
)

var insertSale = fmt.Sprintf(`INSERT INTO sales VALUES (
	CAST(? AS DATE), ?, CAST(? AS %[1]s), CAST(? AS %[1]s), CAST(? AS %[1]s),
	?, ?, ?, ?, ?, ?, CAST(? AS %[1]s), CAST(? AS %[1]s),
	?, ?, ?, CAST(? AS %[1]s), CAST(? AS %[1]s), CAST(? AS %[1]s)
)`, moneyType)

// Sync replaces the sales table with ds unless ds is already loaded.
func (db *DB) Sync(ctx context.Context, ds *dataset.Dataset) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.syncLocked(ctx, ds)
}

func (db *DB) syncLocked(ctx context.Context, ds *dataset.Dataset) error {
	if ds.Fingerprint != "" && ds.Fingerprint == db.fingerprint {
		return nil
	}

	start := time.Now()
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	if _, err := tx.ExecContext(ctx, "DELETE FROM sales"); err != nil {
		return fmt.Errorf("failed to clear sales: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSale)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer closeWithLog(stmt, "prepared statement")

	for i := range ds.Records {
		r := &ds.Records[i]
		if _, err := stmt.ExecContext(ctx,
			dataset.Day(r.Date).Format("2006-01-02"),
			r.Quantity,
			r.Price.String(),
			r.DiscountPercent.String(),
			r.FinalAmount.String(),
			r.CustomerID,
			r.Category,
			r.MarketingChannel,
			r.MarketingCampaign,
			r.Region,
			r.CustomerSegment,
			r.CustomerLifetimeValue.String(),
			r.RetentionScore.String(),
			r.Month,
			r.Quarter,
			r.Season,
			r.GrossRevenue.String(),
			r.DiscountAmount.String(),
			r.NetRevenue.String(),
		); err != nil {
			return fmt.Errorf("failed to insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sales: %w", err)
	}

	db.fingerprint = ds.Fingerprint
	db.rows = len(ds.Records)
	logging.Info().
		Str("fingerprint", ds.Fingerprint).
		Int("records", len(ds.Records)).
		Dur("duration", time.Since(start)).
		Msg("DuckDB dataset synchronised")
	return nil
}

// withDataset runs fn once ds is the loaded dataset. The common case (already
// loaded) shares the lock with other queries; a sync runs fn under the
// exclusive lock it already holds.
func (db *DB) withDataset(ctx context.Context, ds *dataset.Dataset, fn func() error) error {
	db.mu.RLock()
	if ds.Fingerprint != "" && db.fingerprint == ds.Fingerprint {
		defer db.mu.RUnlock()
		return fn()
	}
	db.mu.RUnlock()

	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.syncLocked(ctx, ds); err != nil {
		return err
	}
	return fn()
}
