// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package models

import (
	"math"
	"testing"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

func TestDiv(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		num, den  string
		want      float64
		undefined bool
	}{
		{"roi example", "290", "10", 29.0, false},
		{"fraction", "1", "3", 0.333333333333, false},
		{"negative", "-50", "25", -2, false},
		{"zero numerator", "0", "7", 0, false},
		{"zero denominator", "100", "0", 0, true},
		{"zero over zero", "0", "0", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := Div(decimal.RequireFromString(tt.num), decimal.RequireFromString(tt.den))
			if r.IsUndefined() != tt.undefined {
				t.Fatalf("IsUndefined = %v, want %v", r.IsUndefined(), tt.undefined)
			}
			if tt.undefined {
				if _, ok := r.Float64(); ok {
					t.Error("Float64 should report not ok for undefined")
				}
				return
			}
			if got, _ := r.Float64(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Div = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRatio_Infinity(t *testing.T) {
	t.Parallel()

	if !Ratio(math.Inf(1)).IsUndefined() {
		t.Error("+Inf must be treated as undefined")
	}
}

func TestRatio_JSON(t *testing.T) {
	t.Parallel()

	type row struct {
		ROI Ratio `json:"roi"`
		AOV Ratio `json:"aov"`
	}
	b, err := json.Marshal(row{ROI: UndefinedRatio(), AOV: 12.5})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != `{"roi":null,"aov":12.5}` {
		t.Errorf("json = %s", b)
	}

	var r Ratio
	if err := r.UnmarshalJSON([]byte("null")); err != nil || !r.IsUndefined() {
		t.Errorf("UnmarshalJSON(null) = %v, %v", r, err)
	}
	if err := r.UnmarshalJSON([]byte("2.5")); err != nil || r != 2.5 {
		t.Errorf("UnmarshalJSON(2.5) = %v, %v", r, err)
	}
}

func TestRatio_String(t *testing.T) {
	t.Parallel()

	if s := UndefinedRatio().String(); s != "n/a" {
		t.Errorf("String = %q", s)
	}
	if s := Ratio(29).String(); s != "29.00" {
		t.Errorf("String = %q", s)
	}
}

func TestDecimalEncodesAsNumber(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(map[string]decimal.Decimal{"v": decimal.RequireFromString("10.50")})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"v":10.5}` {
		t.Errorf("json = %s", b)
	}
}
