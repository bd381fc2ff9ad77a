// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package database

import (
	"context"
	"fmt"
)

// moneyType holds every decimal column. Twelve fractional digits keep sums
// exact for currency and percentage inputs.
const moneyType = "DECIMAL(38,12)"

var createSales = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS sales (
	day DATE NOT NULL,
	quantity BIGINT NOT NULL,
	price %[1]s NOT NULL,
	discount_percent %[1]s NOT NULL,
	final_amount %[1]s NOT NULL,
	customer_id VARCHAR NOT NULL,
	category VARCHAR NOT NULL,
	marketing_channel VARCHAR NOT NULL,
	marketing_campaign VARCHAR NOT NULL,
	region VARCHAR NOT NULL,
	customer_segment VARCHAR NOT NULL,
	customer_lifetime_value %[1]s NOT NULL,
	retention_score %[1]s NOT NULL,
	month VARCHAR NOT NULL,
	quarter VARCHAR NOT NULL,
	season VARCHAR NOT NULL,
	gross_revenue %[1]s NOT NULL,
	discount_amount %[1]s NOT NULL,
	net_revenue %[1]s NOT NULL
)`, moneyType)

func (db *DB) createTables(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, createSales); err != nil {
		return fmt.Errorf("failed to create sales table: %w", err)
	}
	return nil
}
