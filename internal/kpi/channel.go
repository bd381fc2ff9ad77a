// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package kpi

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tomtom215/salesboard/internal/dataset"
	"github.com/tomtom215/salesboard/internal/models"
)

// ChannelPerformance is one row of the channel performance table.
//
// TotalSpend is the sum of discount_percent over the channel's records: a sum
// of percentages, not a currency amount. The name is kept because dashboards
// already label it "spend".
type ChannelPerformance struct {
	Channel         string          `json:"channel"`
	Orders          int             `json:"orders"`
	TotalSpend      decimal.Decimal `json:"total_spend"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	RevenuePerSpend models.Ratio    `json:"revenue_per_spend"`
}

// ChannelTable is the channel performance table keyed by channel.
type ChannelTable struct {
	Rows            map[string]ChannelPerformance `json:"-"`
	UndefinedRatios int                           `json:"undefined_ratios"`
}

// AggregateChannelPerformance groups records by marketing channel.
func AggregateChannelPerformance(records []dataset.Record) ChannelTable {
	rows := make(map[string]ChannelPerformance)
	for i := range records {
		r := &records[i]
		row, ok := rows[r.MarketingChannel]
		if !ok {
			row = ChannelPerformance{Channel: r.MarketingChannel, TotalSpend: decimal.Zero, TotalRevenue: decimal.Zero}
		}
		row.Orders++
		row.TotalSpend = row.TotalSpend.Add(r.DiscountPercent)
		row.TotalRevenue = row.TotalRevenue.Add(r.FinalAmount)
		rows[r.MarketingChannel] = row
	}

	return NewChannelTable(rows)
}

// NewChannelTable derives RevenuePerSpend for rows whose sums are filled in.
func NewChannelTable(rows map[string]ChannelPerformance) ChannelTable {
	t := ChannelTable{Rows: rows}
	for ch, row := range rows {
		row.RevenuePerSpend = models.Div(row.TotalRevenue, row.TotalSpend)
		if row.RevenuePerSpend.IsUndefined() {
			t.UndefinedRatios++
		}
		rows[ch] = row
	}
	return t
}

// Sorted returns rows by total revenue descending, then channel.
func (t *ChannelTable) Sorted() []ChannelPerformance {
	out := make([]ChannelPerformance, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].TotalRevenue.Cmp(out[j].TotalRevenue); c != 0 {
			return c > 0
		}
		return out[i].Channel < out[j].Channel
	})
	return out
}
