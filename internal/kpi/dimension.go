// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package kpi

import (
	"errors"
	"fmt"

	"github.com/tomtom215/salesboard/internal/dataset"
)

// Dimension names a grouping column.
type Dimension string

// Supported dimensions.
const (
	Category Dimension = "category"
	Campaign Dimension = "campaign"
	Channel  Dimension = "channel"
	Segment  Dimension = "segment"
	Region   Dimension = "region"
	Month    Dimension = "month"
	Quarter  Dimension = "quarter"
	Season   Dimension = "season"
)

// ErrUnknownDimension is returned by ParseDimension.
var ErrUnknownDimension = errors.New("unknown dimension")

// Spec configures the reductions computed for one dimension.
type Spec struct {
	Dimension Dimension
	Label     string
	// Column is the dataset column the dimension groups on.
	Column string
	Key    func(*dataset.Record) string

	// CountCustomers adds distinct customers and revenue per customer.
	CountCustomers bool

	// CustomerMeans adds mean lifetime value and mean retention score.
	CustomerMeans bool

	// Temporal dimensions default to chronological ordering.
	Temporal bool
}

var dimensionOrder = []Dimension{Category, Campaign, Channel, Segment, Region, Month, Quarter, Season}

var specs = map[Dimension]Spec{
	Category: {
		Label: "Category", Column: dataset.ColCategory, CountCustomers: true,
		Key: func(r *dataset.Record) string { return r.Category },
	},
	Campaign: {
		Label: "Marketing Campaign", Column: dataset.ColMarketingCampaign, CountCustomers: true,
		Key: func(r *dataset.Record) string { return r.MarketingCampaign },
	},
	Channel: {
		Label: "Marketing Channel", Column: dataset.ColMarketingChannel, CountCustomers: true,
		Key: func(r *dataset.Record) string { return r.MarketingChannel },
	},
	Segment: {
		Label: "Customer Segment", Column: dataset.ColCustomerSegment, CountCustomers: true, CustomerMeans: true,
		Key: func(r *dataset.Record) string { return r.CustomerSegment },
	},
	Region: {
		Label: "Region", Column: dataset.ColRegion, CountCustomers: true,
		Key: func(r *dataset.Record) string { return r.Region },
	},
	Month: {
		Label: "Month", Column: dataset.ColMonth, Temporal: true,
		Key: func(r *dataset.Record) string { return r.Month },
	},
	Quarter: {
		Label: "Quarter", Column: dataset.ColQuarter, Temporal: true,
		Key: func(r *dataset.Record) string { return r.Quarter },
	},
	Season: {
		Label: "Season", Column: dataset.ColSeason, Temporal: true,
		Key: func(r *dataset.Record) string { return r.Season },
	},
}

//nolint:gochecknoinits // fills Spec.Dimension from the map key
func init() {
	for d, s := range specs {
		s.Dimension = d
		specs[d] = s
	}
}

// Dimensions returns every supported dimension in display order.
func Dimensions() []Dimension {
	return append([]Dimension(nil), dimensionOrder...)
}

// SpecFor returns the Spec for d.
func SpecFor(d Dimension) (Spec, bool) {
	s, ok := specs[d]
	return s, ok
}

// ParseDimension validates s.
func ParseDimension(s string) (Dimension, error) {
	d := Dimension(s)
	if _, ok := specs[d]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDimension, s)
	}
	return d, nil
}

// DimensionNames returns the dimension names as strings.
func DimensionNames() []string {
	out := make([]string, len(dimensionOrder))
	for i, d := range dimensionOrder {
		out[i] = string(d)
	}
	return out
}
