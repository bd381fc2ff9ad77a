// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

// Package report renders the KPI overview and per-dimension tables as a PDF
// with maroto.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/tomtom215/salesboard/internal/dataset"
	"github.com/tomtom215/salesboard/internal/filter"
	"github.com/tomtom215/salesboard/internal/kpi"
	"github.com/tomtom215/salesboard/internal/metrics"
)

// Source computes the report inputs. Satisfied by *analytics.Service.
type Source interface {
	Overview(ds *dataset.Dataset, c filter.Criteria) kpi.Overview
	AllKPI(ctx context.Context, ds *dataset.Dataset, c filter.Criteria) (map[kpi.Dimension]kpi.Table, error)
	ChannelPerformance(ctx context.Context, ds *dataset.Dataset, c filter.Criteria) (kpi.ChannelTable, error)
}

// Options controls rendering.
type Options struct {
	Title string
	// TopN limits rows per dimension table; 0 renders all rows.
	TopN        int
	GeneratedAt time.Time
}

// Input is everything a report shows.
type Input struct {
	Source      string
	Fingerprint string
	Criteria    filter.Criteria
	Overview    kpi.Overview
	Tables      map[kpi.Dimension]kpi.Table
	Channels    kpi.ChannelTable
}

// Collect gathers the report input for ds filtered by c.
func Collect(ctx context.Context, src Source, ds *dataset.Dataset, c filter.Criteria) (Input, error) {
	tables, err := src.AllKPI(ctx, ds, c)
	if err != nil {
		return Input{}, fmt.Errorf("failed to aggregate KPI tables: %w", err)
	}
	channels, err := src.ChannelPerformance(ctx, ds, c)
	if err != nil {
		return Input{}, fmt.Errorf("failed to aggregate channel performance: %w", err)
	}
	return Input{
		Source:      ds.Source,
		Fingerprint: ds.Fingerprint,
		Criteria:    c,
		Overview:    src.Overview(ds, c),
		Tables:      tables,
		Channels:    channels,
	}, nil
}

// Generate collects and renders in one step.
func Generate(ctx context.Context, src Source, ds *dataset.Dataset, c filter.Criteria, opts Options) ([]byte, error) {
	in, err := Collect(ctx, src, ds, c)
	if err != nil {
		metrics.RecordReport(err)
		return nil, err
	}
	out, err := Render(in, opts)
	metrics.RecordReport(err)
	return out, err
}

var (
	darkGray   = color.Color{Red: 38, Green: 38, Blue: 34}
	mediumGray = color.Color{Red: 121, Green: 119, Blue: 109}
)

// Render builds the PDF document.
func Render(in Input, opts Options) ([]byte, error) {
	if opts.Title == "" {
		opts.Title = "Sales KPI Report"
	}
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}

	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(15, 15, 15)

	m.Row(14, func() {
		m.Col(12, func() {
			m.Text(opts.Title, props.Text{Size: 20, Style: consts.Bold, Color: darkGray})
		})
	})
	for _, line := range []string{
		"Source: " + in.Source,
		"Filter: " + describeCriteria(in.Criteria),
		"Generated: " + opts.GeneratedAt.UTC().Format(time.RFC3339),
	} {
		m.Row(5, func() {
			m.Col(12, func() {
				m.Text(line, props.Text{Size: 8, Color: mediumGray})
			})
		})
	}
	m.Row(6, func() {})

	renderOverview(m, &in.Overview)
	renderChannels(m, &in.Channels)

	for _, dim := range kpi.Dimensions() {
		table, ok := in.Tables[dim]
		if !ok {
			continue
		}
		renderTable(m, &table, opts.TopN)
	}

	buf, err := m.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func heading(m pdf.Maroto, title string) {
	m.Row(10, func() {
		m.Col(12, func() {
			m.Text(title, props.Text{Top: 3, Size: 12, Style: consts.Bold, Color: darkGray})
		})
	})
}

// tableRow writes one row; the first cell takes the remaining width and the
// rest are right aligned.
func tableRow(m pdf.Maroto, cells []string, bold bool) {
	style := consts.Normal
	if bold {
		style = consts.Bold
	}
	rest := uint(len(cells) - 1)
	first := 12 - rest*2
	m.Row(5, func() {
		for i, cell := range cells {
			width, align := uint(2), consts.Right
			if i == 0 {
				width, align = first, consts.Left
			}
			cell := cell
			m.Col(width, func() {
				m.Text(cell, props.Text{Size: 7, Style: style, Align: align, Color: darkGray})
			})
		}
	})
}

func renderOverview(m pdf.Maroto, o *kpi.Overview) {
	heading(m, "Overview")
	cards := [][2]string{
		{"Orders", fmt.Sprintf("%d", o.Orders)},
		{"Units", fmt.Sprintf("%d", o.Units)},
		{"Customers", fmt.Sprintf("%d", o.Customers)},
		{"Gross revenue", money(o.GrossRevenue)},
		{"Net revenue", money(o.NetRevenue)},
		{"Discounts", money(o.DiscountAmount)},
		{"Avg order value", o.AvgOrderValue.String()},
		{"ROI", o.ROI.String()},
		{"Revenue per customer", o.RevenuePerCustomer.String()},
		{"Avg lifetime value", o.AvgCustomerLifetimeValue.String()},
		{"Avg retention score", o.AvgRetentionScore.String()},
		{"Avg order frequency", o.AvgOrderFrequency.String()},
	}
	for i := 0; i < len(cards); i += 2 {
		pair := cards[i:min(i+2, len(cards))]
		m.Row(5, func() {
			for _, card := range pair {
				card := card
				m.Col(3, func() {
					m.Text(card[0], props.Text{Size: 8, Color: mediumGray})
				})
				m.Col(3, func() {
					m.Text(card[1], props.Text{Size: 8, Style: consts.Bold, Align: consts.Right, Color: darkGray})
				})
			}
		})
	}
}

func renderChannels(m pdf.Maroto, t *kpi.ChannelTable) {
	heading(m, "Channel Performance")
	tableRow(m, []string{"Channel", "Orders", "Spend", "Revenue", "Revenue/Spend"}, true)
	for _, r := range t.Sorted() {
		tableRow(m, []string{r.Channel, fmt.Sprintf("%d", r.Orders), r.TotalSpend.StringFixed(2), money(r.TotalRevenue), r.RevenuePerSpend.String()}, false)
	}
}

func renderTable(m pdf.Maroto, t *kpi.Table, topN int) {
	spec, _ := kpi.SpecFor(t.Dimension)
	title := "KPIs by " + spec.Label
	rows := t.Sorted(kpi.OrderDefault, topN)
	if topN > 0 && t.Len() > topN {
		title = fmt.Sprintf("%s (top %d of %d)", title, topN, t.Len())
	}
	heading(m, title)

	tableRow(m, []string{spec.Label, "Orders", "Net revenue", "AOV", "ROI"}, true)
	for i := range rows {
		r := &rows[i]
		tableRow(m, rowCells(r), false)
	}
	total := t.Total
	total.Key = "Total"
	tableRow(m, rowCells(&total), true)
}

func rowCells(r *kpi.Row) []string {
	return []string{r.Key, fmt.Sprintf("%d", r.Orders), money(r.NetRevenue), r.AvgOrderValue.String(), r.ROI.String()}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func describeCriteria(c filter.Criteria) string {
	var b strings.Builder
	switch {
	case c.Start.IsZero() && c.End.IsZero():
		b.WriteString("all dates")
	default:
		b.WriteString(dateOrOpen(c.Start))
		b.WriteString(" to ")
		b.WriteString(dateOrOpen(c.End))
	}
	b.WriteString("; channels: ")
	if len(c.Channels) == 0 {
		b.WriteString("none")
	} else {
		b.WriteString(strings.Join(c.Channels, ", "))
	}
	return b.String()
}

func dateOrOpen(t time.Time) string {
	if t.IsZero() {
		return "open"
	}
	return t.Format("2006-01-02")
}
