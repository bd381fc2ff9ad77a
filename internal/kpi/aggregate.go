// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

// Package kpi groups enriched sales records by a dimension and computes the
// KPI table for each group.
//
// Every ratio is derived from the group's sums (sum, then divide); per-record
// ratios are never averaged. Sums use decimal arithmetic so results do not
// depend on record order. A zero denominator leaves the ratio undefined
// (models.Ratio sentinel) and is counted in Table.UndefinedRatios.
package kpi

import (
	"github.com/shopspring/decimal"

	"github.com/tomtom215/salesboard/internal/dataset"
	"github.com/tomtom215/salesboard/internal/models"
)

// Row is one group of a KPI table.
type Row struct {
	Key            string          `json:"key"`
	Orders         int             `json:"orders"`
	Quantity       int64           `json:"quantity"`
	GrossRevenue   decimal.Decimal `json:"gross_revenue"`
	NetRevenue     decimal.Decimal `json:"net_revenue"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	AvgOrderValue  models.Ratio    `json:"avg_order_value"`
	ROI            models.Ratio    `json:"roi"`

	// Set when the dimension counts customers.
	Customers          int           `json:"customers,omitempty"`
	RevenuePerCustomer *models.Ratio `json:"revenue_per_customer,omitempty"`

	// Set when the dimension computes customer means.
	AvgCustomerLifetimeValue *models.Ratio `json:"avg_customer_lifetime_value,omitempty"`
	AvgRetentionScore        *models.Ratio `json:"avg_retention_score,omitempty"`
}

// Table is the KPI table for one dimension. Rows is keyed by group value.
type Table struct {
	Dimension       Dimension      `json:"dimension"`
	Rows            map[string]Row `json:"-"`
	Total           Row            `json:"total"`
	UndefinedRatios int            `json:"undefined_ratios"`
}

// Len returns the number of groups.
func (t *Table) Len() int { return len(t.Rows) }

// Sums holds the additive reductions of one group. Ratios are derived from
// it by Row, so every engine shares the same sum-then-divide rule.
type Sums struct {
	Orders    int
	Quantity  int64
	Gross     decimal.Decimal
	Net       decimal.Decimal
	Discount  decimal.Decimal
	CLV       decimal.Decimal
	Retention decimal.Decimal
	Customers int
}

// Row derives the KPI row for key and reports how many ratios are undefined.
func (s Sums) Row(spec *Spec, key string) (Row, int) {
	row := Row{
		Key:            key,
		Orders:         s.Orders,
		Quantity:       s.Quantity,
		GrossRevenue:   s.Gross,
		NetRevenue:     s.Net,
		DiscountAmount: s.Discount,
		AvgOrderValue:  models.DivInt(s.Net, s.Quantity),
		ROI:            models.Div(s.Net.Sub(s.Discount), s.Discount),
	}
	undefined := countUndefined(row.AvgOrderValue, row.ROI)

	if spec.CountCustomers {
		row.Customers = s.Customers
		rpc := models.DivInt(s.Net, int64(s.Customers))
		row.RevenuePerCustomer = &rpc
		undefined += countUndefined(rpc)
	}
	if spec.CustomerMeans {
		clv := models.DivInt(s.CLV, int64(s.Orders))
		ret := models.DivInt(s.Retention, int64(s.Orders))
		row.AvgCustomerLifetimeValue = &clv
		row.AvgRetentionScore = &ret
	}
	return row, undefined
}

// FromSums assembles a Table from per-group sums.
func FromSums(spec *Spec, groups map[string]Sums, total Sums) Table {
	t := Table{Dimension: spec.Dimension, Rows: make(map[string]Row, len(groups))}
	for key, s := range groups {
		row, undefined := s.Row(spec, key)
		t.Rows[key] = row
		t.UndefinedRatios += undefined
	}
	t.Total, _ = total.Row(spec, "total")
	return t
}

type accumulator struct {
	sums      Sums
	customers map[string]struct{}
}

func newAccumulator(spec *Spec) *accumulator {
	a := &accumulator{sums: Sums{
		Gross: decimal.Zero, Net: decimal.Zero, Discount: decimal.Zero,
		CLV: decimal.Zero, Retention: decimal.Zero,
	}}
	if spec.CountCustomers {
		a.customers = make(map[string]struct{})
	}
	return a
}

func (a *accumulator) add(spec *Spec, r *dataset.Record) {
	s := &a.sums
	s.Orders++
	s.Quantity += r.Quantity
	s.Gross = s.Gross.Add(r.GrossRevenue)
	s.Net = s.Net.Add(r.NetRevenue)
	s.Discount = s.Discount.Add(r.DiscountAmount)
	if spec.CustomerMeans {
		s.CLV = s.CLV.Add(r.CustomerLifetimeValue)
		s.Retention = s.Retention.Add(r.RetentionScore)
	}
	if a.customers != nil {
		a.customers[r.CustomerID] = struct{}{}
	}
}

func (a *accumulator) result() Sums {
	s := a.sums
	s.Customers = len(a.customers)
	return s
}

func countUndefined(rs ...models.Ratio) int {
	n := 0
	for _, r := range rs {
		if r.IsUndefined() {
			n++
		}
	}
	return n
}

// Aggregate computes the KPI table for dim. An empty input yields a table
// with no rows and a zero total.
func Aggregate(records []dataset.Record, dim Dimension) (Table, error) {
	spec, ok := SpecFor(dim)
	if !ok {
		_, err := ParseDimension(string(dim))
		return Table{}, err
	}
	return AggregateSpec(records, &spec), nil
}

// AggregateSpec is Aggregate driven directly by a Spec.
func AggregateSpec(records []dataset.Record, spec *Spec) Table {
	groups := make(map[string]*accumulator)
	total := newAccumulator(spec)

	for i := range records {
		r := &records[i]
		key := spec.Key(r)
		acc, ok := groups[key]
		if !ok {
			acc = newAccumulator(spec)
			groups[key] = acc
		}
		acc.add(spec, r)
		total.add(spec, r)
	}

	sums := make(map[string]Sums, len(groups))
	for key, acc := range groups {
		sums[key] = acc.result()
	}
	return FromSums(spec, sums, total.result())
}

// AggregateAll computes every dimension's table.
func AggregateAll(records []dataset.Record) map[Dimension]Table {
	out := make(map[Dimension]Table, len(dimensionOrder))
	for _, d := range dimensionOrder {
		spec := specs[d]
		out[d] = AggregateSpec(records, &spec)
	}
	return out
}
