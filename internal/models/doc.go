// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

// Package models holds types shared across layers: the API envelope and the
// Ratio sentinel used by every derived KPI.
//
// Decimal values (shopspring/decimal) are encoded as JSON numbers rather than
// quoted strings.
package models

import "github.com/shopspring/decimal"

//nolint:gochecknoinits // package-wide decimal encoding must be set before any response is written
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}
