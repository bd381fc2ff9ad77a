// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package models

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Ratio is a derived quotient such as ROI or average order value.
//
// A zero denominator yields the undefined Ratio (NaN). It is never an
// infinity, it encodes as JSON null, and IsUndefined reports it so callers can
// skip it instead of plotting or summing it.
type Ratio float64

// UndefinedRatio is the sentinel for a quotient with a zero denominator.
func UndefinedRatio() Ratio {
	return Ratio(math.NaN())
}

// Div returns num/den, or UndefinedRatio when den is zero.
func Div(num, den decimal.Decimal) Ratio {
	if den.IsZero() {
		return UndefinedRatio()
	}
	return Ratio(num.DivRound(den, 12).InexactFloat64())
}

// DivInt is Div with an integer denominator.
func DivInt(num decimal.Decimal, den int64) Ratio {
	return Div(num, decimal.NewFromInt(den))
}

// IsUndefined reports whether r is the undefined sentinel.
func (r Ratio) IsUndefined() bool {
	f := float64(r)
	return math.IsNaN(f) || math.IsInf(f, 0)
}

// Float64 returns the value and whether it is defined.
func (r Ratio) Float64() (float64, bool) {
	if r.IsUndefined() {
		return 0, false
	}
	return float64(r), true
}

// String formats r with two decimals, or "n/a".
func (r Ratio) String() string {
	if r.IsUndefined() {
		return "n/a"
	}
	return strconv.FormatFloat(float64(r), 'f', 2, 64)
}

// MarshalJSON implements json.Marshaler.
func (r Ratio) MarshalJSON() ([]byte, error) {
	if r.IsUndefined() {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(r), 'g', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler; null decodes to UndefinedRatio.
func (r *Ratio) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*r = UndefinedRatio()
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*r = Ratio(f)
	return nil
}
