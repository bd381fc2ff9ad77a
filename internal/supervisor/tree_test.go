// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/tomtom215/salesboard/internal/logging"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSupervisorTreeConstruction(t *testing.T) {
	t.Run("applies default values for zero config", func(t *testing.T) {
		tree, err := NewSupervisorTree(testLogger(), TreeConfig{})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}
		if tree.Root() == nil {
			t.Fatal("root supervisor should not be nil")
		}
		if tree.config != DefaultTreeConfig() {
			t.Errorf("config = %+v, want defaults %+v", tree.config, DefaultTreeConfig())
		}
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		tree, err := NewSupervisorTree(testLogger(), TreeConfig{FailureBackoff: time.Second})
		if err != nil {
			t.Fatal(err)
		}
		if tree.config.FailureBackoff != time.Second || tree.config.FailureThreshold != 5 {
			t.Errorf("config = %+v", tree.config)
		}
	})

	t.Run("accepts the zerolog slog adapter", func(t *testing.T) {
		if _, err := NewSupervisorTree(logging.NewSlogLogger(), DefaultTreeConfig()); err != nil {
			t.Fatal(err)
		}
	})
}

func TestSupervisorTreeLifecycle(t *testing.T) {
	tree, err := NewSupervisorTree(testLogger(), TreeConfig{
		FailureBackoff:  100 * time.Millisecond,
		ShutdownTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}

	data := newMockService("mock-data")
	api := newMockService("mock-api")
	tree.AddDataService(data)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not shut down in time")
	}

	if data.startCount.Load() < 1 || api.startCount.Load() < 1 {
		t.Errorf("starts: data=%d api=%d", data.startCount.Load(), api.startCount.Load())
	}
	if report, err := tree.UnstoppedServiceReport(); err != nil || len(report) != 0 {
		t.Errorf("unstopped = %v, err = %v", report, err)
	}
}

func TestSupervisorTreeRestartsFailedService(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	flaky := newMockService("flaky-watcher")
	flaky.maxFails = 2
	tree.AddDataService(flaky)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	deadline := time.After(400 * time.Millisecond)
	for flaky.startCount.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("service started %d times, want 3", flaky.startCount.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	<-errCh
}

func TestSupervisorTreeRemoveDataService(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})
	svc := newMockService("removable")
	token := tree.AddDataService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	time.Sleep(50 * time.Millisecond)
	if err := tree.RemoveDataService(token); err != nil {
		t.Errorf("RemoveDataService: %v", err)
	}
	cancel()
	<-errCh
}
