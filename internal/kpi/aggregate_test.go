// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package kpi

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/tomtom215/salesboard/internal/dataset"
	"github.com/tomtom215/salesboard/internal/models"
)

type raw struct {
	date     string
	category string
	channel  string
	segment  string
	customer string
	price    string
	qty      int64
	discount string
	final    string
	clv      string
}

func build(t *testing.T, rows ...raw) []dataset.Record {
	t.Helper()
	in := make([]dataset.Record, len(rows))
	for i, r := range rows {
		d, ok := dataset.ParseDate(r.date)
		if !ok {
			t.Fatalf("bad date %q", r.date)
		}
		clv := r.clv
		if clv == "" {
			clv = "0"
		}
		in[i] = dataset.Record{
			Date:                  d,
			Price:                 decimal.RequireFromString(r.price),
			Quantity:              r.qty,
			DiscountPercent:       decimal.RequireFromString(r.discount),
			FinalAmount:           decimal.RequireFromString(r.final),
			CustomerID:            r.customer,
			Category:              r.category,
			MarketingChannel:      r.channel,
			MarketingCampaign:     "c-" + r.channel,
			Region:                "North",
			CustomerSegment:       r.segment,
			CustomerLifetimeValue: decimal.RequireFromString(clv),
			RetentionScore:        decimal.RequireFromString("0.5"),
			Month:                 dataset.MonthKey(d),
			Quarter:               dataset.QuarterKey(d),
			Season:                dataset.SeasonOf(d),
		}
	}
	out, _ := dataset.Enrich(in)
	return out
}

func fixture(t *testing.T) []dataset.Record {
	return build(t,
		raw{"2024-01-05", "Electronics", "email", "Premium", "C1", "100", 1, "10", "100", "1000"},
		raw{"2024-01-06", "Electronics", "email", "Premium", "C2", "50", 4, "0", "200", "3000"},
		raw{"2024-02-10", "Books", "social", "Regular", "C1", "20", 2, "5", "38", "1000"},
		raw{"2024-03-15", "Books", "search", "Regular", "C3", "15", 3, "0", "45", "200"},
		raw{"2024-07-01", "Toys", "email", "New", "C4", "30", 0, "0", "0", "50"},
		raw{"2024-12-24", "Toys", "social", "New", "C5", "40", 2, "25", "60", "80"},
	)
}

func ratio(t *testing.T, name string, r models.Ratio, want float64) {
	t.Helper()
	got, ok := r.Float64()
	if !ok {
		t.Errorf("%s is undefined, want %v", name, want)
		return
	}
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestAggregate_RatioAfterSum(t *testing.T) {
	t.Parallel()

	table, err := Aggregate(fixture(t), Category)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	row := table.Rows["Electronics"]
	if !row.NetRevenue.Equal(decimal.NewFromInt(300)) || !row.DiscountAmount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("sums = net %s, discount %s", row.NetRevenue, row.DiscountAmount)
	}
	// (300-10)/10, not the mean of 9 and undefined.
	ratio(t, "roi", row.ROI, 29.0)
	ratio(t, "avg_order_value", row.AvgOrderValue, 60) // 300 / 5 units
	if row.Customers != 2 {
		t.Errorf("customers = %d, want 2", row.Customers)
	}
	ratio(t, "revenue_per_customer", *row.RevenuePerCustomer, 150)
}

func TestAggregate_ZeroDenominators(t *testing.T) {
	t.Parallel()

	records := build(t,
		raw{"2024-01-01", "Gift", "email", "New", "C1", "10", 0, "0", "0", ""},
	)
	table, err := Aggregate(records, Category)
	if err != nil {
		t.Fatal(err)
	}

	row := table.Rows["Gift"]
	if !row.ROI.IsUndefined() {
		t.Errorf("roi = %v, want undefined", row.ROI)
	}
	if !row.AvgOrderValue.IsUndefined() {
		t.Errorf("avg_order_value = %v, want undefined", row.AvgOrderValue)
	}
	if math.IsInf(float64(row.ROI), 0) {
		t.Error("roi must not be infinite")
	}
	if table.UndefinedRatios != 2 {
		t.Errorf("UndefinedRatios = %d, want 2", table.UndefinedRatios)
	}

	b, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["roi"] != nil {
		t.Errorf("roi encodes as %v, want null", decoded["roi"])
	}
}

func TestAggregate_OtherGroupsUnaffectedByUndefined(t *testing.T) {
	t.Parallel()

	table, _ := Aggregate(fixture(t), Category)
	toys := table.Rows["Toys"]
	ratio(t, "toys roi", toys.ROI, 5) // (60-10)/10
	ratio(t, "toys aov", toys.AvgOrderValue, 30)
	ratio(t, "books aov", table.Rows["Books"].AvgOrderValue, 83.0/5)
}

func TestAggregate_SumInvariant(t *testing.T) {
	t.Parallel()

	records := fixture(t)
	want := decimal.Zero
	for _, r := range records {
		want = want.Add(r.NetRevenue)
	}

	for _, dim := range Dimensions() {
		table, err := Aggregate(records, dim)
		if err != nil {
			t.Fatalf("%s: %v", dim, err)
		}
		got := decimal.Zero
		orders := 0
		for _, row := range table.Rows {
			got = got.Add(row.NetRevenue)
			orders += row.Orders
		}
		if !got.Equal(want) {
			t.Errorf("%s: sum of groups = %s, want %s", dim, got, want)
		}
		if !table.Total.NetRevenue.Equal(want) || orders != len(records) {
			t.Errorf("%s: total = %s, orders = %d", dim, table.Total.NetRevenue, orders)
		}
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	t.Parallel()

	records := fixture(t)
	rng := rand.New(rand.NewSource(42))

	for _, dim := range Dimensions() {
		base, _ := Aggregate(records, dim)
		want, _ := json.Marshal(base.Sorted(OrderKeyAsc, 0))

		for i := 0; i < 5; i++ {
			shuffled := append([]dataset.Record(nil), records...)
			rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
			table, _ := Aggregate(shuffled, dim)
			got, _ := json.Marshal(table.Sorted(OrderKeyAsc, 0))
			if string(got) != string(want) {
				t.Fatalf("%s: result depends on input order\n got %s\nwant %s", dim, got, want)
			}
		}
	}
}

func TestAggregate_Empty(t *testing.T) {
	t.Parallel()

	for _, dim := range Dimensions() {
		table, err := Aggregate([]dataset.Record{}, dim)
		if err != nil {
			t.Fatalf("%s: %v", dim, err)
		}
		if table.Len() != 0 || len(table.Sorted(OrderDefault, 0)) != 0 {
			t.Errorf("%s: expected empty table", dim)
		}
		if table.Total.Orders != 0 || table.UndefinedRatios != 0 {
			t.Errorf("%s: total = %+v", dim, table.Total)
		}
	}
}

func TestAggregate_UnknownDimension(t *testing.T) {
	t.Parallel()

	_, err := Aggregate(fixture(t), Dimension("product"))
	if !errors.Is(err, ErrUnknownDimension) {
		t.Errorf("err = %v, want ErrUnknownDimension", err)
	}
}

func TestAggregate_SegmentMeans(t *testing.T) {
	t.Parallel()

	table, _ := Aggregate(fixture(t), Segment)
	premium := table.Rows["Premium"]
	if premium.AvgCustomerLifetimeValue == nil || premium.AvgRetentionScore == nil {
		t.Fatal("segment rows must carry customer means")
	}
	ratio(t, "clv", *premium.AvgCustomerLifetimeValue, 2000)
	ratio(t, "retention", *premium.AvgRetentionScore, 0.5)

	cat, _ := Aggregate(fixture(t), Category)
	if cat.Rows["Books"].AvgCustomerLifetimeValue != nil {
		t.Error("only the segment dimension computes customer means")
	}
}

func TestAggregate_TemporalOmitsCustomers(t *testing.T) {
	t.Parallel()

	table, _ := Aggregate(fixture(t), Month)
	if row := table.Rows["2024-01"]; row.RevenuePerCustomer != nil || row.Customers != 0 {
		t.Errorf("month rows should not count customers: %+v", row)
	}
}

func TestTable_Sorted(t *testing.T) {
	t.Parallel()

	records := fixture(t)

	cat, _ := Aggregate(records, Category)
	keys := func(rows []Row) []string {
		out := make([]string, len(rows))
		for i, r := range rows {
			out[i] = r.Key
		}
		return out
	}
	assertKeys := func(name string, got []string, want ...string) {
		t.Helper()
		if len(got) != len(want) {
			t.Fatalf("%s: %v, want %v", name, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%s: %v, want %v", name, got, want)
			}
		}
	}

	assertKeys("default", keys(cat.Sorted(OrderDefault, 0)), "Electronics", "Books", "Toys")
	assertKeys("asc", keys(cat.Sorted(OrderNetRevenueAsc, 0)), "Toys", "Books", "Electronics")
	assertKeys("key", keys(cat.Sorted(OrderKeyAsc, 0)), "Books", "Electronics", "Toys")
	assertKeys("limit", keys(cat.Sorted(OrderDefault, 1)), "Electronics")

	season, _ := Aggregate(records, Season)
	assertKeys("season", keys(season.Sorted(OrderDefault, 0)), "Winter", "Spring", "Summer")

	month, _ := Aggregate(records, Month)
	assertKeys("month", keys(month.Sorted(OrderDefault, 0)), "2024-01", "2024-02", "2024-03", "2024-07", "2024-12")
}

func TestCompareChrono_NumericMonths(t *testing.T) {
	t.Parallel()

	if compareChrono(Month, "2", "10") >= 0 {
		t.Error("numeric month keys should sort numerically")
	}
	if compareChrono(Season, "Fall", "Summer") <= 0 {
		t.Error("Fall should sort after Summer")
	}
}

func TestTable_Sorted_MonthNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		keys []string
		want string
	}{
		{"full names", []string{"March", "January", "February"}, "January,February,March"},
		{"short names any case", []string{"dec", "JAN", "Jun"}, "JAN,Jun,dec"},
		{"unknown after months", []string{"Unknown", "April"}, "April,Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			table := Table{Dimension: Month, Rows: map[string]Row{}}
			for _, k := range tt.keys {
				table.Rows[k] = Row{Key: k}
			}
			var got []string
			for _, r := range table.Sorted(OrderDefault, 0) {
				got = append(got, r.Key)
			}
			if strings.Join(got, ",") != tt.want {
				t.Errorf("Sorted = %v, want %s", got, tt.want)
			}
		})
	}
}

func TestParseOrder(t *testing.T) {
	t.Parallel()

	if _, err := ParseOrder("net_revenue_desc"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := ParseOrder("random"); err == nil {
		t.Error("expected error for unknown order")
	}
}

func TestParseDimension(t *testing.T) {
	t.Parallel()

	for _, name := range DimensionNames() {
		if _, err := ParseDimension(name); err != nil {
			t.Errorf("ParseDimension(%q): %v", name, err)
		}
	}
	spec, ok := SpecFor(Channel)
	if !ok || spec.Dimension != Channel || spec.Column != dataset.ColMarketingChannel {
		t.Errorf("SpecFor(Channel) = %+v", spec)
	}
}

func TestAggregateChannelPerformance(t *testing.T) {
	t.Parallel()

	table := AggregateChannelPerformance(fixture(t))

	email := table.Rows["email"]
	if email.Orders != 3 {
		t.Errorf("orders = %d", email.Orders)
	}
	// Sum of discount percentages, preserved as-is.
	if !email.TotalSpend.Equal(decimal.NewFromInt(10)) {
		t.Errorf("total_spend = %s, want 10", email.TotalSpend)
	}
	if !email.TotalRevenue.Equal(decimal.NewFromInt(300)) {
		t.Errorf("total_revenue = %s, want 300", email.TotalRevenue)
	}
	ratio(t, "revenue_per_spend", email.RevenuePerSpend, 30)

	search := table.Rows["search"]
	if !search.RevenuePerSpend.IsUndefined() {
		t.Errorf("search has zero spend, revenue_per_spend = %v", search.RevenuePerSpend)
	}
	if table.UndefinedRatios != 1 {
		t.Errorf("UndefinedRatios = %d, want 1", table.UndefinedRatios)
	}

	sorted := table.Sorted()
	if len(sorted) != 3 || sorted[0].Channel != "email" {
		t.Errorf("sorted = %+v", sorted)
	}

	if empty := AggregateChannelPerformance(nil); len(empty.Sorted()) != 0 {
		t.Error("expected empty channel table")
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	o := Summarize(fixture(t))
	if o.Orders != 6 || o.Units != 12 || o.Customers != 5 {
		t.Errorf("counts = %d orders, %d units, %d customers", o.Orders, o.Units, o.Customers)
	}
	if !o.NetRevenue.Equal(decimal.NewFromInt(443)) {
		t.Errorf("net = %s", o.NetRevenue)
	}
	ratio(t, "revenue_per_customer", o.RevenuePerCustomer, 443.0/5)
	ratio(t, "avg_order_frequency", o.AvgOrderFrequency, 6.0/5)
	if o.Start == nil || !o.Start.Equal(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", o.Start)
	}

	empty := Summarize(nil)
	if empty.Orders != 0 || !empty.ROI.IsUndefined() || empty.Start != nil {
		t.Errorf("empty overview = %+v", empty)
	}
}

func TestDailyTrend(t *testing.T) {
	t.Parallel()

	records := build(t,
		raw{"2024-01-02", "A", "email", "N", "C1", "10", 1, "0", "10", ""},
		raw{"2024-01-01 09:30:00", "A", "email", "N", "C1", "10", 1, "0", "5", ""},
		raw{"2024-01-01", "A", "email", "N", "C2", "10", 1, "0", "7", ""},
	)
	trend := DailyTrend(records)
	if len(trend) != 2 {
		t.Fatalf("len = %d, want 2", len(trend))
	}
	if trend[0].Orders != 2 || !trend[0].NetRevenue.Equal(decimal.NewFromInt(12)) {
		t.Errorf("first point = %+v", trend[0])
	}
	if !trend[1].Date.After(trend[0].Date) {
		t.Error("trend must be oldest first")
	}
}
