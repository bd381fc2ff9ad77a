// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package analytics

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/salesboard/internal/cache"
	"github.com/tomtom215/salesboard/internal/config"
	"github.com/tomtom215/salesboard/internal/dataset"
	"github.com/tomtom215/salesboard/internal/filter"
	"github.com/tomtom215/salesboard/internal/kpi"
	"github.com/tomtom215/salesboard/internal/logging"
)

const testHeader = "Date,Price,Quantity,Discount Percent,Final Amount,Customer ID,Category," +
	"Marketing Channel,Marketing Campaign,Region,Customer Segment,Customer Lifetime Value,Retention Score"

var testRows = []string{
	"2024-01-05,100,1,10,100,C1,Electronics,email,Winter Sale,North,Premium,1000,0.8",
	"2024-01-06,50,4,0,200,C2,Electronics,email,Winter Sale,North,Premium,3000,0.6",
	"2024-02-10,20,2,5,38,C1,Books,social,Launch,South,Regular,1000,0.8",
	"2024-03-15,15.5,3,0,46.5,C3,Books,search,Spring Push,East,Regular,200,0.3",
	"2024-12-24,40,2,25,60,C5,Toys,social,Holiday,North,New,80,0.2",
}

// writeCSV writes rows to path and moves its mtime forward so the loader sees
// a change even within the filesystem's timestamp resolution.
func writeCSV(t *testing.T, path string, rows ...string) {
	t.Helper()
	content := testHeader + "\n" + strings.Join(rows, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	mtime := time.Now().Add(time.Duration(len(content)) * time.Second)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func newTestService(t *testing.T, store cache.Store) (*Service, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	writeCSV(t, path, testRows...)
	svc := NewService(&config.DatasetConfig{Path: path, LoadTimeout: 10 * time.Second},
		dataset.NewLoader(), NewMemoryEngine(), store)
	t.Cleanup(func() {
		if err := svc.Close(); err != nil {
			t.Logf("close: %v", err)
		}
	})
	return svc, path
}

// Not parallel: swaps the global logger.
func TestService_LogsEachLoadOnce(t *testing.T) {
	var buf bytes.Buffer
	logging.SetLogger(logging.NewTestLogger(&buf))
	defer logging.Init(logging.DefaultConfig())

	svc, _ := newTestService(t, nil)
	if _, err := svc.Dataset(context.Background()); err != nil {
		t.Fatalf("Dataset: %v", err)
	}

	out := buf.String()
	if n := strings.Count(out, `"message":"Dataset loaded"`); n != 1 {
		t.Errorf("Dataset loaded logged %d times, want 1:\n%s", n, out)
	}
	if n := strings.Count(out, `"message":"Dataset swapped"`); n != 1 {
		t.Errorf("Dataset swapped logged %d times, want 1:\n%s", n, out)
	}
}

func TestService_Dataset(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	ds, err := svc.Dataset(ctx)
	if err != nil {
		t.Fatalf("Dataset: %v", err)
	}
	if len(ds.Records) != len(testRows) {
		t.Errorf("records = %d, want %d", len(ds.Records), len(testRows))
	}

	again, err := svc.Dataset(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if again != ds {
		t.Error("unchanged source should return the same dataset")
	}
	if st := svc.Status(); !st.Loaded || st.LastError != nil {
		t.Errorf("status = %+v", st)
	}
}

func TestService_MissingSource(t *testing.T) {
	t.Parallel()
	svc := NewService(&config.DatasetConfig{Path: filepath.Join(t.TempDir(), "missing.csv")},
		dataset.NewLoader(), NewMemoryEngine(), nil)

	_, err := svc.Dataset(context.Background())
	if !errors.Is(err, dataset.ErrSourceNotFound) {
		t.Fatalf("err = %v, want ErrSourceNotFound", err)
	}
	st := svc.Status()
	if st.Loaded || st.LastError == nil {
		t.Errorf("status = %+v", st)
	}
}

func TestService_FailedReloadKeepsLastGood(t *testing.T) {
	t.Parallel()
	svc, path := newTestService(t, nil)
	ctx := context.Background()

	good, err := svc.Dataset(ctx)
	if err != nil {
		t.Fatal(err)
	}

	writeCSV(t, path, append([]string{"31/31/2024,1,1,0,1,C9,Toys,email,X,North,New,1,0.1"}, testRows...)...)

	_, err = svc.Reload(ctx)
	var dateErr *dataset.MalformedDateError
	if !errors.As(err, &dateErr) {
		t.Fatalf("Reload err = %v, want MalformedDateError", err)
	}

	served, err := svc.Dataset(ctx)
	if err != nil {
		t.Fatalf("Dataset after failed reload: %v", err)
	}
	if served.Fingerprint != good.Fingerprint {
		t.Error("failed reload should keep serving the last good dataset")
	}
	if svc.Status().LastError == nil {
		t.Error("failed reload should be reported in status")
	}

	writeCSV(t, path, testRows[:2]...)
	fixed, err := svc.Reload(ctx)
	if err != nil {
		t.Fatalf("Reload after fix: %v", err)
	}
	if len(fixed.Records) != 2 || svc.Status().LastError != nil {
		t.Errorf("records = %d, last error = %v", len(fixed.Records), svc.Status().LastError)
	}
}

func TestService_Refresh(t *testing.T) {
	t.Parallel()
	svc, path := newTestService(t, nil)
	ctx := context.Background()

	steps := []struct {
		name  string
		write []string
		want  bool
	}{
		{"first load", nil, true},
		{"unchanged", nil, false},
		{"rewritten", testRows[:3], true},
		{"same content again", testRows[:3], false},
	}
	for _, step := range steps {
		if step.write != nil {
			writeCSV(t, path, step.write...)
		}
		changed, err := svc.Refresh(ctx)
		if err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		if changed != step.want {
			t.Errorf("%s: changed = %v, want %v", step.name, changed, step.want)
		}
	}
}

func TestService_EmptyChannelSet(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	ds, err := svc.Dataset(ctx)
	if err != nil {
		t.Fatal(err)
	}

	none := filter.Criteria{Channels: []string{}}
	tables, err := svc.AllKPI(ctx, ds, none)
	if err != nil {
		t.Fatal(err)
	}
	for dim, table := range tables {
		if table.Len() != 0 || table.Total.Orders != 0 {
			t.Errorf("%s: %d rows, %d orders; want empty", dim, table.Len(), table.Total.Orders)
		}
	}
	if o := svc.Overview(ds, none); o.Orders != 0 {
		t.Errorf("overview orders = %d, want 0", o.Orders)
	}
	cp, err := svc.ChannelPerformance(ctx, ds, none)
	if err != nil || len(cp.Rows) != 0 {
		t.Errorf("channel performance = %+v, %v", cp, err)
	}
}

func TestService_KPI(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	ds, err := svc.Dataset(ctx)
	if err != nil {
		t.Fatal(err)
	}

	table, err := svc.KPI(ctx, ds, filter.Criteria{Channels: []string{"email"}}, kpi.Category)
	if err != nil {
		t.Fatal(err)
	}
	row, ok := table.Rows["Electronics"]
	if !ok || table.Len() != 1 {
		t.Fatalf("rows = %v", table.Rows)
	}
	if roi, _ := row.ROI.Float64(); roi != 29 {
		t.Errorf("roi = %v, want 29", roi)
	}

	if _, err := svc.KPI(ctx, ds, filter.AllChannels(ds), kpi.Dimension("weekday")); !errors.Is(err, kpi.ErrUnknownDimension) {
		t.Errorf("err = %v, want ErrUnknownDimension", err)
	}
}

func TestService_Cached(t *testing.T) {
	t.Parallel()
	store := cache.NewMemoryStore(time.Minute)
	svc, path := newTestService(t, store)
	ctx := context.Background()

	calls := 0
	compute := func() (interface{}, error) {
		calls++
		return map[string]int{"calls": calls}, nil
	}

	ds, err := svc.Dataset(ctx)
	if err != nil {
		t.Fatal(err)
	}
	first, cached, err := svc.Cached(ctx, ds, "overview", "all", compute)
	if err != nil || cached {
		t.Fatalf("first call: cached=%v err=%v", cached, err)
	}
	second, cached, err := svc.Cached(ctx, ds, "overview", "all", compute)
	if err != nil || !cached {
		t.Fatalf("second call: cached=%v err=%v", cached, err)
	}
	if string(first) != string(second) || calls != 1 {
		t.Errorf("first=%s second=%s calls=%d", first, second, calls)
	}

	writeCSV(t, path, testRows[:1]...)
	ds, err = svc.Dataset(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if store.Len() != 0 {
		t.Errorf("cache entries after dataset change = %d, want 0", store.Len())
	}
	if _, cached, _ := svc.Cached(ctx, ds, "overview", "all", compute); cached || calls != 2 {
		t.Errorf("after change: cached=%v calls=%d", cached, calls)
	}

	boom := errors.New("boom")
	if _, _, err := svc.Cached(ctx, ds, "kpi", "x", func() (interface{}, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestService_Records(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t, nil)
	ds, err := svc.Dataset(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	all := filter.AllChannels(ds)

	tests := []struct {
		name          string
		limit, offset int
		wantLen       int
	}{
		{"first page", 2, 0, 2},
		{"last page", 2, 4, 1},
		{"past end", 2, 10, 0},
		{"no limit", 0, 1, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, total := svc.Records(ds, all, tt.limit, tt.offset)
			if len(page) != tt.wantLen || total != len(testRows) {
				t.Errorf("len = %d total = %d, want %d/%d", len(page), total, tt.wantLen, len(testRows))
			}
		})
	}
}

func TestService_Options(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t, nil)
	ds, err := svc.Dataset(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	opts := svc.Options(ds)
	if got := strings.Join(opts.Channels, ","); got != "email,search,social" {
		t.Errorf("channels = %s", got)
	}
	if got := strings.Join(opts.Categories, ","); got != "Books,Electronics,Toys" {
		t.Errorf("categories = %s", got)
	}
	if opts.Start == nil || opts.Start.Format("2006-01-02") != "2024-01-05" ||
		opts.End == nil || opts.End.Format("2006-01-02") != "2024-12-24" {
		t.Errorf("bounds = %v..%v", opts.Start, opts.End)
	}
}

func TestMemoryEngine_CanceledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewMemoryEngine()
	if _, err := e.Aggregate(ctx, &dataset.Dataset{}, filter.Criteria{}, kpi.Channel); !errors.Is(err, context.Canceled) {
		t.Errorf("Aggregate err = %v", err)
	}
	if _, err := e.ChannelPerformance(ctx, &dataset.Dataset{}, filter.Criteria{}); !errors.Is(err, context.Canceled) {
		t.Errorf("ChannelPerformance err = %v", err)
	}
}

func TestNewEngine(t *testing.T) {
	t.Parallel()
	e, err := NewEngine(&config.Config{Analytics: config.AnalyticsConfig{Engine: config.EngineMemory}})
	if err != nil || e.Name() != config.EngineMemory {
		t.Errorf("memory engine = %v, %v", e, err)
	}
	if _, err := NewEngine(&config.Config{Analytics: config.AnalyticsConfig{Engine: "spark"}}); err == nil {
		t.Error("unknown engine should fail")
	}
}
