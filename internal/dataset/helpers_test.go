// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

const testHeader = "Date,Price,Quantity,Discount Percent,Final Amount,Customer ID,Category," +
	"Marketing Channel,Marketing Campaign,Region,Customer Segment,Customer Lifetime Value,Retention Score"

// csvOf joins the standard header and rows.
func csvOf(rows ...string) string {
	return testHeader + "\n" + strings.Join(rows, "\n") + "\n"
}

func sampleCSV() string {
	return csvOf(
		"2024-01-05,50,2,10,90,C1,Electronics,email,Winter Sale,North,Premium,1200,0.8",
		"2024-01-20,20,5,0,100,C2,Books,social,Launch,South,Regular,300,0.4",
		"2024-02-03,100,1,20,80,C1,Electronics,email,Winter Sale,North,Premium,1200,0.8",
		"2024-04-11,10,0,0,0,C3,Toys,search,Spring Push,East,New,50,0.1",
	)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}
