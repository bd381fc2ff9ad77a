// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package dataset

import (
	"github.com/shopspring/decimal"

	"github.com/tomtom215/salesboard/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Summarize is the first enrichment pass.
func Summarize(records []Record) Summary {
	s := Summary{
		Records:          len(records),
		TotalFinalAmount: decimal.Zero,
		OrdersByCustomer: make(map[string]int),
	}
	for i := range records {
		r := &records[i]
		s.TotalFinalAmount = s.TotalFinalAmount.Add(r.FinalAmount)
		s.OrdersByCustomer[r.CustomerID]++

		day := Day(r.Date)
		if s.Start.IsZero() || day.Before(s.Start) {
			s.Start = day
		}
		if day.After(s.End) {
			s.End = day
		}
	}
	s.DistinctCustomers = len(s.OrdersByCustomer)
	s.RevenuePerCustomer = models.DivInt(s.TotalFinalAmount, int64(s.DistinctCustomers))
	return s
}

// Enrich runs both passes and returns a new slice; the input is not modified.
func Enrich(records []Record) ([]Record, Summary) {
	summary := Summarize(records)

	out := make([]Record, len(records))
	for i := range records {
		r := records[i]
		derive(&r)
		r.RevenuePerCustomer = summary.RevenuePerCustomer
		r.ConversionRate = summary.OrdersByCustomer[r.CustomerID]
		out[i] = r
	}
	return out, summary
}

// derive fills the per-record metrics.
func derive(r *Record) {
	r.GrossRevenue = r.Price.Mul(decimal.NewFromInt(r.Quantity))
	r.DiscountAmount = r.Price.Mul(r.DiscountPercent).Div(hundred)
	r.NetRevenue = r.FinalAmount
	r.AverageOrderValue = models.DivInt(r.FinalAmount, r.Quantity)
	r.ROI = models.Div(r.NetRevenue.Sub(r.DiscountAmount), r.DiscountAmount)
}
