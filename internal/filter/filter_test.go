// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package filter

import (
	"testing"
	"time"

	"github.com/tomtom215/salesboard/internal/dataset"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func records() []dataset.Record {
	return []dataset.Record{
		{Date: day(2023, 12, 31), MarketingChannel: "email", CustomerID: "a"},
		{Date: day(2024, 1, 1), MarketingChannel: "email", CustomerID: "b"},
		{Date: time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC), MarketingChannel: "email", CustomerID: "c"},
		{Date: day(2024, 1, 15), MarketingChannel: "social", CustomerID: "d"},
		{Date: day(2024, 2, 1), MarketingChannel: "email", CustomerID: "e"},
	}
}

func ids(rs []dataset.Record) string {
	s := ""
	for _, r := range rs {
		s += r.CustomerID
	}
	return s
}

func TestApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		c    Criteria
		want string
	}{
		{
			name: "january email, bounds inclusive",
			c:    Criteria{Start: day(2024, 1, 1), End: day(2024, 1, 31), Channels: []string{"email"}},
			want: "bc",
		},
		{
			name: "two channels",
			c:    Criteria{Start: day(2024, 1, 1), End: day(2024, 1, 31), Channels: []string{"email", "social"}},
			want: "bcd",
		},
		{
			name: "open start",
			c:    Criteria{End: day(2024, 1, 1), Channels: []string{"email"}},
			want: "ab",
		},
		{
			name: "open end",
			c:    Criteria{Start: day(2024, 1, 31), Channels: []string{"email"}},
			want: "ce",
		},
		{
			name: "nil channel set",
			c:    Criteria{Start: day(2024, 1, 1), End: day(2024, 1, 31)},
			want: "",
		},
		{
			name: "empty channel set",
			c:    Criteria{Channels: []string{}},
			want: "",
		},
		{
			name: "unknown channel",
			c:    Criteria{Channels: []string{"tv"}},
			want: "",
		},
		{
			name: "inverted range",
			c:    Criteria{Start: day(2024, 2, 1), End: day(2024, 1, 1), Channels: []string{"email"}},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Apply(records(), tt.c)
			if ids(got) != tt.want {
				t.Errorf("Apply = %q, want %q", ids(got), tt.want)
			}
			if got == nil {
				t.Error("result must be non-nil")
			}
		})
	}
}

func TestApply_DoesNotAlias(t *testing.T) {
	t.Parallel()

	in := records()
	out := Apply(in, Criteria{Channels: []string{"email"}})
	out[0].CustomerID = "changed"
	if in[0].CustomerID != "a" {
		t.Error("Apply result aliases input")
	}
}

func TestCriteria_Key(t *testing.T) {
	t.Parallel()

	a := Criteria{Start: day(2024, 1, 1), End: day(2024, 1, 31), Channels: []string{"social", "email"}}
	b := Criteria{Start: day(2024, 1, 1), End: day(2024, 1, 31), Channels: []string{"email", "social"}}
	if a.Key() != b.Key() {
		t.Errorf("keys differ: %q vs %q", a.Key(), b.Key())
	}
	if a.Key() != "2024-01-01..2024-01-31|email,social" {
		t.Errorf("Key = %q", a.Key())
	}
	if (Criteria{}).Key() == a.Key() {
		t.Error("different criteria share a key")
	}
	if a.Channels[0] != "social" {
		t.Error("Key must not reorder the caller's slice")
	}
}
