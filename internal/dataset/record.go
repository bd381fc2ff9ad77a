// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

// Package dataset reads the sales CSV, derives per-record metrics and caches
// the enriched result by source content.
//
// Loading runs in two passes over the parsed rows. The first builds a Summary
// (total revenue, distinct customers, orders per customer); the second
// attaches per-record derived fields and broadcasts the summary values onto
// every record. Records are never mutated after a Dataset is returned.
package dataset

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tomtom215/salesboard/internal/models"
)

// Record is one sales row plus its derived fields.
type Record struct {
	Date                  time.Time       `json:"date"`
	Price                 decimal.Decimal `json:"price"`
	Quantity              int64           `json:"quantity"`
	DiscountPercent       decimal.Decimal `json:"discount_percent"`
	FinalAmount           decimal.Decimal `json:"final_amount"`
	CustomerID            string          `json:"customer_id"`
	Category              string          `json:"category"`
	MarketingChannel      string          `json:"marketing_channel"`
	MarketingCampaign     string          `json:"marketing_campaign"`
	Region                string          `json:"region"`
	CustomerSegment       string          `json:"customer_segment"`
	CustomerLifetimeValue decimal.Decimal `json:"customer_lifetime_value"`
	RetentionScore        decimal.Decimal `json:"retention_score"`
	Month                 string          `json:"month"`
	Quarter               string          `json:"quarter"`
	Season                string          `json:"season"`

	// Derived at load.
	GrossRevenue      decimal.Decimal `json:"gross_revenue"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	NetRevenue        decimal.Decimal `json:"net_revenue"`
	AverageOrderValue models.Ratio    `json:"average_order_value"`
	ROI               models.Ratio    `json:"roi"`

	// Broadcast from the dataset Summary.
	RevenuePerCustomer models.Ratio `json:"revenue_per_customer"`
	ConversionRate     int          `json:"conversion_rate"`
}

// Summary holds the dataset-wide values computed by the first enrichment pass.
type Summary struct {
	Records            int             `json:"records"`
	TotalFinalAmount   decimal.Decimal `json:"total_final_amount"`
	DistinctCustomers  int             `json:"distinct_customers"`
	OrdersByCustomer   map[string]int  `json:"-"`
	RevenuePerCustomer models.Ratio    `json:"revenue_per_customer"`
	Start              time.Time       `json:"start"`
	End                time.Time       `json:"end"`
}

// Dataset is an immutable, enriched snapshot of one source file.
type Dataset struct {
	Source      string    `json:"source"`
	Fingerprint string    `json:"fingerprint"`
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"mod_time"`
	LoadedAt    time.Time `json:"loaded_at"`
	Summary     Summary   `json:"summary"`
	Records     []Record  `json:"-"`
}

// Channels returns the distinct marketing channels in first-seen order.
func (d *Dataset) Channels() []string {
	return distinct(d.Records, func(r *Record) string { return r.MarketingChannel })
}

func distinct(records []Record, key func(*Record) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for i := range records {
		k := key(&records[i])
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
