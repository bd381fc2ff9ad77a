// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Column names after header normalisation.
const (
	ColDate                  = "date"
	ColPrice                 = "price"
	ColQuantity              = "quantity"
	ColDiscountPercent       = "discount_percent"
	ColFinalAmount           = "final_amount"
	ColCustomerID            = "customer_id"
	ColCategory              = "category"
	ColMarketingChannel      = "marketing_channel"
	ColMarketingCampaign     = "marketing_campaign"
	ColRegion                = "region"
	ColCustomerSegment       = "customer_segment"
	ColCustomerLifetimeValue = "customer_lifetime_value"
	ColRetentionScore        = "retention_score"
	ColMonth                 = "month"
	ColQuarter               = "quarter"
	ColSeason                = "season"
)

// RequiredColumns must all be present in the header.
var RequiredColumns = []string{
	ColDate, ColPrice, ColQuantity, ColDiscountPercent, ColFinalAmount,
	ColCustomerID, ColCategory, ColMarketingChannel, ColMarketingCampaign,
	ColRegion, ColCustomerSegment, ColCustomerLifetimeValue, ColRetentionScore,
}

// headerAliases maps common export spellings onto canonical names.
var headerAliases = map[string]string{
	"order_date":       ColDate,
	"discount":         ColDiscountPercent,
	"discount_pct":     ColDiscountPercent,
	"final_price":      ColFinalAmount,
	"customer":         ColCustomerID,
	"channel":          ColMarketingChannel,
	"campaign":         ColMarketingCampaign,
	"segment":          ColCustomerSegment,
	"clv":              ColCustomerLifetimeValue,
	"lifetime_value":   ColCustomerLifetimeValue,
	"retention":        ColRetentionScore,
	"product_category": ColCategory,
}

const ctxCheckEvery = 4096

// Parse reads CSV rows into Records with month, quarter and season filled in
// but derived metrics left zero; see Enrich. Line numbers in errors are
// 1-based file lines (the header is line 1).
func Parse(ctx context.Context, r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptySource
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records := make([]Record, 0, 1024)
	for line := 2; ; line++ {
		if line%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		if isBlank(row) {
			continue
		}

		rec, err := cols.record(row, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// normalizeHeader lowercases h and folds runs of non-alphanumerics into "_".
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	key := b.String()
	if alias, ok := headerAliases[key]; ok {
		return alias
	}
	return key
}

type columns map[string]int

func mapColumns(header []string) (columns, error) {
	cols := make(columns, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}

	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnError{Columns: missing}
	}
	return cols, nil
}

func (c columns) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (c columns) decimal(row []string, name string, line int) (decimal.Decimal, error) {
	raw := c.get(row, name)
	v, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return decimal.Zero, &MalformedValueError{Line: line, Column: name, Value: raw, Err: err}
	}
	return v, nil
}

func (c columns) record(row []string, line int) (Record, error) {
	rawDate := c.get(row, ColDate)
	date, ok := ParseDate(rawDate)
	if !ok {
		return Record{}, &MalformedDateError{Line: line, Column: ColDate, Value: rawDate}
	}

	rec := Record{
		Date:              date,
		CustomerID:        c.get(row, ColCustomerID),
		Category:          c.get(row, ColCategory),
		MarketingChannel:  c.get(row, ColMarketingChannel),
		MarketingCampaign: c.get(row, ColMarketingCampaign),
		Region:            c.get(row, ColRegion),
		CustomerSegment:   c.get(row, ColCustomerSegment),
		Month:             c.get(row, ColMonth),
		Quarter:           c.get(row, ColQuarter),
		Season:            c.get(row, ColSeason),
	}

	var err error
	if rec.Price, err = c.decimal(row, ColPrice, line); err != nil {
		return Record{}, err
	}
	if rec.DiscountPercent, err = c.decimal(row, ColDiscountPercent, line); err != nil {
		return Record{}, err
	}
	if rec.FinalAmount, err = c.decimal(row, ColFinalAmount, line); err != nil {
		return Record{}, err
	}
	if rec.CustomerLifetimeValue, err = c.decimal(row, ColCustomerLifetimeValue, line); err != nil {
		return Record{}, err
	}
	if rec.RetentionScore, err = c.decimal(row, ColRetentionScore, line); err != nil {
		return Record{}, err
	}

	qty, err := c.decimal(row, ColQuantity, line)
	if err != nil {
		return Record{}, err
	}
	if !qty.IsInteger() {
		return Record{}, &MalformedValueError{
			Line: line, Column: ColQuantity, Value: c.get(row, ColQuantity),
			Err: errors.New("quantity must be a whole number"),
		}
	}
	if !decimal.NewFromInt(qty.IntPart()).Equal(qty) {
		return Record{}, &MalformedValueError{
			Line: line, Column: ColQuantity, Value: c.get(row, ColQuantity),
			Err: errors.New("quantity out of range"),
		}
	}
	rec.Quantity = qty.IntPart()

	if rec.Month == "" {
		rec.Month = MonthKey(date)
	}
	if rec.Quarter == "" {
		rec.Quarter = QuarterKey(date)
	}
	if rec.Season == "" {
		rec.Season = SeasonOf(date)
	}
	return rec, nil
}

func isBlank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
