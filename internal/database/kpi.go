// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tomtom215/salesboard/internal/database/query"
	"github.com/tomtom215/salesboard/internal/dataset"
	"github.com/tomtom215/salesboard/internal/filter"
	"github.com/tomtom215/salesboard/internal/kpi"
)

// Rows returns the number of records in the sales table.
func (db *DB) Rows() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.rows
}

func whereFor(c filter.Criteria) (string, []interface{}) {
	return query.NewWhereBuilder().
		AddDayRange("day", c.Start, c.End).
		AddIn("marketing_channel", c.Channels).
		Build()
}

// sumExpr renders a decimal sum as text so it scans losslessly into
// decimal.Decimal.
func sumExpr(column string) string {
	return fmt.Sprintf("CAST(COALESCE(SUM(%s), 0) AS VARCHAR)", column)
}

// Aggregate computes the KPI table for dim over the records of ds matching c.
// The dimension column comes from kpi.SpecFor, never from user input.
func (db *DB) Aggregate(ctx context.Context, ds *dataset.Dataset, c filter.Criteria, dim kpi.Dimension) (kpi.Table, error) {
	spec, ok := kpi.SpecFor(dim)
	if !ok {
		_, err := kpi.ParseDimension(string(dim))
		return kpi.Table{}, err
	}

	where, args := whereFor(c)
	q := fmt.Sprintf(`SELECT
		%[1]s AS group_key,
		GROUPING(%[1]s) AS is_total,
		COUNT(*),
		CAST(COALESCE(SUM(quantity), 0) AS BIGINT),
		%[2]s, %[3]s, %[4]s, %[5]s, %[6]s,
		COUNT(DISTINCT customer_id)
	FROM sales
	WHERE %[7]s
	GROUP BY GROUPING SETS ((%[1]s), ())`,
		spec.Column,
		sumExpr("gross_revenue"), sumExpr("net_revenue"), sumExpr("discount_amount"),
		sumExpr("customer_lifetime_value"), sumExpr("retention_score"),
		where)

	var table kpi.Table
	err := db.withDataset(ctx, ds, func() error {
		qctx, cancel := ensureContext(ctx)
		defer cancel()

		rows, err := db.conn.QueryContext(qctx, q, args...)
		if err != nil {
			return fmt.Errorf("kpi query for %s: %w", dim, err)
		}
		defer closeWithLog(rows, "rows")

		groups := make(map[string]kpi.Sums)
		total := kpi.Sums{Gross: decimal.Zero, Net: decimal.Zero, Discount: decimal.Zero, CLV: decimal.Zero, Retention: decimal.Zero}
		for rows.Next() {
			var (
				key                              sql.NullString
				isTotal                          int64
				s                                kpi.Sums
				orders, customers                int64
				gross, net, disc, clv, retention string
			)
			if err := rows.Scan(&key, &isTotal, &orders, &s.Quantity, &gross, &net, &disc, &clv, &retention, &customers); err != nil {
				return fmt.Errorf("scan kpi row: %w", err)
			}
			s.Orders = int(orders)
			s.Customers = int(customers)
			if err := parseDecimals(map[*decimal.Decimal]string{
				&s.Gross: gross, &s.Net: net, &s.Discount: disc, &s.CLV: clv, &s.Retention: retention,
			}); err != nil {
				return err
			}
			if isTotal != 0 {
				total = s
				continue
			}
			groups[key.String] = s
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate kpi rows: %w", err)
		}

		table = kpi.FromSums(&spec, groups, total)
		return nil
	})
	return table, err
}

// ChannelPerformance computes the channel performance table over the records
// of ds matching c.
func (db *DB) ChannelPerformance(ctx context.Context, ds *dataset.Dataset, c filter.Criteria) (kpi.ChannelTable, error) {
	where, args := whereFor(c)
	q := fmt.Sprintf(`SELECT marketing_channel, COUNT(*), %s, %s
	FROM sales
	WHERE %s
	GROUP BY marketing_channel`,
		sumExpr("discount_percent"), sumExpr("final_amount"), where)

	var table kpi.ChannelTable
	err := db.withDataset(ctx, ds, func() error {
		qctx, cancel := ensureContext(ctx)
		defer cancel()

		rows, err := db.conn.QueryContext(qctx, q, args...)
		if err != nil {
			return fmt.Errorf("channel performance query: %w", err)
		}
		defer closeWithLog(rows, "rows")

		perf := make(map[string]kpi.ChannelPerformance)
		for rows.Next() {
			var (
				p              kpi.ChannelPerformance
				orders         int64
				spend, revenue string
			)
			if err := rows.Scan(&p.Channel, &orders, &spend, &revenue); err != nil {
				return fmt.Errorf("scan channel row: %w", err)
			}
			p.Orders = int(orders)
			if err := parseDecimals(map[*decimal.Decimal]string{&p.TotalSpend: spend, &p.TotalRevenue: revenue}); err != nil {
				return err
			}
			perf[p.Channel] = p
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate channel rows: %w", err)
		}

		table = kpi.NewChannelTable(perf)
		return nil
	})
	return table, err
}

func parseDecimals(targets map[*decimal.Decimal]string) error {
	for dst, text := range targets {
		d, err := decimal.NewFromString(text)
		if err != nil {
			return fmt.Errorf("parse decimal %q: %w", text, err)
		}
		*dst = d
	}
	return nil
}
