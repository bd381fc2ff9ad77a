// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package kpi

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/salesboard/internal/dataset"
)

// Order selects how Sorted arranges rows. Ties always fall back to key order.
type Order string

// Supported orders. OrderDefault is chronological for temporal dimensions and
// OrderNetRevenueDesc otherwise.
const (
	OrderDefault        Order = ""
	OrderNetRevenueDesc Order = "net_revenue_desc"
	OrderNetRevenueAsc  Order = "net_revenue_asc"
	OrderOrdersDesc     Order = "orders_desc"
	OrderKeyAsc         Order = "key_asc"
	OrderChronological  Order = "chronological"
)

var validOrders = map[Order]bool{
	OrderDefault: true, OrderNetRevenueDesc: true, OrderNetRevenueAsc: true,
	OrderOrdersDesc: true, OrderKeyAsc: true, OrderChronological: true,
}

// ParseOrder validates s.
func ParseOrder(s string) (Order, error) {
	o := Order(s)
	if !validOrders[o] {
		return "", fmt.Errorf("unknown sort order %q", s)
	}
	return o, nil
}

// Sorted returns the rows in the requested order, truncated to limit when
// limit > 0.
func (t *Table) Sorted(order Order, limit int) []Row {
	rows := make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, r)
	}

	if order == OrderDefault {
		order = OrderNetRevenueDesc
		if spec, ok := SpecFor(t.Dimension); ok && spec.Temporal {
			order = OrderChronological
		}
	}

	var less func(a, b *Row) int
	switch order {
	case OrderNetRevenueAsc:
		less = func(a, b *Row) int { return a.NetRevenue.Cmp(b.NetRevenue) }
	case OrderOrdersDesc:
		less = func(a, b *Row) int { return b.Orders - a.Orders }
	case OrderKeyAsc:
		less = func(a, b *Row) int { return 0 }
	case OrderChronological:
		less = func(a, b *Row) int { return compareChrono(t.Dimension, a.Key, b.Key) }
	default:
		less = func(a, b *Row) int { return b.NetRevenue.Cmp(a.NetRevenue) }
	}

	sort.Slice(rows, func(i, j int) bool {
		if c := less(&rows[i], &rows[j]); c != 0 {
			return c < 0
		}
		return rows[i].Key < rows[j].Key
	})

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// compareChrono orders season and month names by calendar, integer keys
// numerically and everything else (YYYY-MM, YYYY-Qn) lexically.
func compareChrono(dim Dimension, a, b string) int {
	if dim == Month {
		ra, rb := monthRank(a), monthRank(b)
		if ra != rb {
			return ra - rb
		}
	}
	if dim == Season {
		ra, rb := seasonRank(a), seasonRank(b)
		if ra != rb {
			return ra - rb
		}
	}
	if ia, errA := strconv.Atoi(a); errA == nil {
		if ib, errB := strconv.Atoi(b); errB == nil {
			return ia - ib
		}
	}
	return strings.Compare(a, b)
}

func seasonRank(s string) int {
	for i, name := range dataset.Seasons {
		if strings.EqualFold(s, name) {
			return i
		}
	}
	if strings.EqualFold(s, "fall") {
		return 3
	}
	return len(dataset.Seasons)
}

// monthRank places full and three-letter English month names (any case) in
// calendar order; other keys sort after them.
func monthRank(s string) int {
	s = strings.TrimSpace(s)
	for m := time.January; m <= time.December; m++ {
		name := m.String()
		if strings.EqualFold(s, name) || strings.EqualFold(s, name[:3]) {
			return int(m)
		}
	}
	return int(time.December) + 1
}
