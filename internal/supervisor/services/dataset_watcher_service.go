// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tomtom215/salesboard/internal/logging"
)

// DatasetRefresher reloads the dataset when its source changed.
//
// Satisfied by *analytics.Service.
type DatasetRefresher interface {
	Refresh(ctx context.Context) (bool, error)
}

// DatasetWatcherService polls the dataset source on a cron schedule as a
// supervised service.
//
// It adapts cron's Start/Stop lifecycle to suture's Serve pattern:
//  1. Refreshes once immediately so the first request finds a loaded dataset
//  2. Starts the cron scheduler and waits for context cancellation
//  3. Stops the scheduler and waits for a running check to finish
//
// Load failures are logged and retried on the next tick; they never stop the
// service.
type DatasetWatcherService struct {
	refresher   DatasetRefresher
	schedule    string
	stopTimeout time.Duration
	name        string

	checks  atomic.Int64
	changes atomic.Int64
}

// NewDatasetWatcherService creates a watcher. schedule uses the standard
// five-field cron syntax or a descriptor such as "@every 1m".
//
// Example usage:
//
//	svc, err := services.NewDatasetWatcherService(analyticsService, cfg.Dataset.WatchSchedule)
//	tree.AddDataService(svc)
func NewDatasetWatcherService(refresher DatasetRefresher, schedule string) (*DatasetWatcherService, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid watch schedule %q: %w", schedule, err)
	}
	return &DatasetWatcherService{
		refresher:   refresher,
		schedule:    schedule,
		stopTimeout: 30 * time.Second,
		name:        "dataset-watcher",
	}, nil
}

// Serve implements suture.Service.
func (s *DatasetWatcherService) Serve(ctx context.Context) error {
	s.check(ctx)

	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() { s.check(ctx) }); err != nil {
		return fmt.Errorf("dataset watcher schedule failed: %w", err)
	}
	c.Start()

	<-ctx.Done()

	select {
	case <-c.Stop().Done():
	case <-time.After(s.stopTimeout):
		logging.Warn().Str("service", s.name).Msg("Dataset check still running at shutdown")
	}
	return ctx.Err()
}

func (s *DatasetWatcherService) check(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s.checks.Add(1)

	changed, err := s.refresher.Refresh(ctx)
	if err != nil {
		logging.Debug().Err(err).Str("service", s.name).Msg("Dataset check failed")
		return
	}
	if changed {
		s.changes.Add(1)
		logging.Info().Str("service", s.name).Msg("Dataset change detected")
	}
}

// Checks returns how many refreshes have run.
func (s *DatasetWatcherService) Checks() int64 { return s.checks.Load() }

// Changes returns how many refreshes found a changed dataset.
func (s *DatasetWatcherService) Changes() int64 { return s.changes.Load() }

// String implements fmt.Stringer for suture log messages.
func (s *DatasetWatcherService) String() string {
	return s.name
}
