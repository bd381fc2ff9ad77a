// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package kpi

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tomtom215/salesboard/internal/dataset"
	"github.com/tomtom215/salesboard/internal/models"
)

// Overview holds the headline metric cards for a filtered record set.
type Overview struct {
	Orders                   int             `json:"orders"`
	Units                    int64           `json:"units"`
	Customers                int             `json:"customers"`
	GrossRevenue             decimal.Decimal `json:"gross_revenue"`
	NetRevenue               decimal.Decimal `json:"net_revenue"`
	DiscountAmount           decimal.Decimal `json:"discount_amount"`
	AvgOrderValue            models.Ratio    `json:"avg_order_value"`
	ROI                      models.Ratio    `json:"roi"`
	RevenuePerCustomer       models.Ratio    `json:"revenue_per_customer"`
	AvgCustomerLifetimeValue models.Ratio    `json:"avg_customer_lifetime_value"`
	AvgRetentionScore        models.Ratio    `json:"avg_retention_score"`
	AvgOrderFrequency        models.Ratio    `json:"avg_order_frequency"`
	Start                    *time.Time      `json:"start,omitempty"`
	End                      *time.Time      `json:"end,omitempty"`
}

// Summarize computes the overview cards. The ratios follow the same
// sum-then-divide rule as table rows.
func Summarize(records []dataset.Record) Overview {
	spec := Spec{CountCustomers: true, CustomerMeans: true}
	acc := newAccumulator(&spec)

	var start, end time.Time
	for i := range records {
		r := &records[i]
		acc.add(&spec, r)
		day := dataset.Day(r.Date)
		if start.IsZero() || day.Before(start) {
			start = day
		}
		if day.After(end) {
			end = day
		}
	}
	row, _ := acc.result().Row(&spec, "")

	o := Overview{
		Orders:                   row.Orders,
		Units:                    row.Quantity,
		Customers:                row.Customers,
		GrossRevenue:             row.GrossRevenue,
		NetRevenue:               row.NetRevenue,
		DiscountAmount:           row.DiscountAmount,
		AvgOrderValue:            row.AvgOrderValue,
		ROI:                      row.ROI,
		RevenuePerCustomer:       *row.RevenuePerCustomer,
		AvgCustomerLifetimeValue: *row.AvgCustomerLifetimeValue,
		AvgRetentionScore:        *row.AvgRetentionScore,
		AvgOrderFrequency:        models.Div(decimal.NewFromInt(int64(row.Orders)), decimal.NewFromInt(int64(row.Customers))),
	}
	if !start.IsZero() {
		o.Start, o.End = &start, &end
	}
	return o
}

// TrendPoint is one day of the revenue trend.
type TrendPoint struct {
	Date       time.Time       `json:"date"`
	Orders     int             `json:"orders"`
	NetRevenue decimal.Decimal `json:"net_revenue"`
}

// DailyTrend returns net revenue per calendar day, oldest first. Days without
// orders are omitted.
func DailyTrend(records []dataset.Record) []TrendPoint {
	byDay := make(map[time.Time]*TrendPoint)
	for i := range records {
		r := &records[i]
		day := dataset.Day(r.Date)
		p, ok := byDay[day]
		if !ok {
			p = &TrendPoint{Date: day, NetRevenue: decimal.Zero}
			byDay[day] = p
		}
		p.Orders++
		p.NetRevenue = p.NetRevenue.Add(r.NetRevenue)
	}

	out := make([]TrendPoint, 0, len(byDay))
	for _, p := range byDay {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
