// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

// Package filter narrows a dataset to a date range and a set of marketing
// channels before KPI aggregation.
package filter

import (
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/salesboard/internal/dataset"
)

// Criteria selects records whose day lies in [Start, End] (inclusive) and
// whose marketing channel is in Channels.
//
// A zero Start or End leaves that side open. Channels is always applied: an
// empty set matches nothing. Use AllChannels to select every channel.
type Criteria struct {
	Start    time.Time
	End      time.Time
	Channels []string
}

// AllChannels returns Criteria over every channel of ds with open dates.
func AllChannels(ds *dataset.Dataset) Criteria {
	return Criteria{Channels: ds.Channels()}
}

// Apply returns the matching records in input order. The input is not modified
// and the result never aliases it.
func Apply(records []dataset.Record, c Criteria) []dataset.Record {
	out := make([]dataset.Record, 0)
	if len(c.Channels) == 0 {
		return out
	}

	channels := make(map[string]struct{}, len(c.Channels))
	for _, ch := range c.Channels {
		channels[ch] = struct{}{}
	}
	start, end := dayBounds(c)

	for i := range records {
		r := &records[i]
		if _, ok := channels[r.MarketingChannel]; !ok {
			continue
		}
		day := dataset.Day(r.Date)
		if !start.IsZero() && day.Before(start) {
			continue
		}
		if !end.IsZero() && day.After(end) {
			continue
		}
		out = append(out, *r)
	}
	return out
}

func dayBounds(c Criteria) (time.Time, time.Time) {
	var start, end time.Time
	if !c.Start.IsZero() {
		start = dataset.Day(c.Start)
	}
	if !c.End.IsZero() {
		end = dataset.Day(c.End)
	}
	return start, end
}

// Key is a canonical string for c, used in cache keys. Channel order does not
// matter.
func (c Criteria) Key() string {
	chs := append([]string(nil), c.Channels...)
	sort.Strings(chs)

	var b strings.Builder
	if !c.Start.IsZero() {
		b.WriteString(c.Start.Format("2006-01-02"))
	}
	b.WriteString("..")
	if !c.End.IsZero() {
		b.WriteString(c.End.Format("2006-01-02"))
	}
	b.WriteString("|")
	b.WriteString(strings.Join(chs, ","))
	return b.String()
}
