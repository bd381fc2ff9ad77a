// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package analytics

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/salesboard/internal/config"
	"github.com/tomtom215/salesboard/internal/database"
	"github.com/tomtom215/salesboard/internal/dataset"
	"github.com/tomtom215/salesboard/internal/filter"
	"github.com/tomtom215/salesboard/internal/kpi"
)

// ErrEngineUnavailable is returned when the KPI engine cannot serve a query.
var ErrEngineUnavailable = errors.New("analytics engine unavailable")

// Engine computes KPI tables for a filtered dataset.
//
// Implementations must return identical tables for the same input; the
// memory engine is the reference.
type Engine interface {
	Name() string
	Aggregate(ctx context.Context, ds *dataset.Dataset, c filter.Criteria, dim kpi.Dimension) (kpi.Table, error)
	ChannelPerformance(ctx context.Context, ds *dataset.Dataset, c filter.Criteria) (kpi.ChannelTable, error)
	Ping(ctx context.Context) error
	Close() error
}

// syncer is implemented by engines that keep their own copy of the dataset.
type syncer interface {
	Sync(ctx context.Context, ds *dataset.Dataset) error
}

// MemoryEngine aggregates the in-memory records directly.
type MemoryEngine struct{}

// NewMemoryEngine returns the in-process Go engine.
func NewMemoryEngine() *MemoryEngine { return &MemoryEngine{} }

// Name implements Engine.
func (MemoryEngine) Name() string { return config.EngineMemory }

// Aggregate implements Engine.
func (MemoryEngine) Aggregate(ctx context.Context, ds *dataset.Dataset, c filter.Criteria, dim kpi.Dimension) (kpi.Table, error) {
	if err := ctx.Err(); err != nil {
		return kpi.Table{}, err
	}
	return kpi.Aggregate(filter.Apply(ds.Records, c), dim)
}

// ChannelPerformance implements Engine.
func (MemoryEngine) ChannelPerformance(ctx context.Context, ds *dataset.Dataset, c filter.Criteria) (kpi.ChannelTable, error) {
	if err := ctx.Err(); err != nil {
		return kpi.ChannelTable{}, err
	}
	return kpi.AggregateChannelPerformance(filter.Apply(ds.Records, c)), nil
}

// Ping implements Engine.
func (MemoryEngine) Ping(context.Context) error { return nil }

// Close implements Engine.
func (MemoryEngine) Close() error { return nil }

// NewEngine builds the engine selected by cfg.Analytics.Engine.
func NewEngine(cfg *config.Config) (Engine, error) {
	switch cfg.Analytics.Engine {
	case config.EngineMemory, "":
		return NewMemoryEngine(), nil
	case config.EngineDuckDB:
		db, err := database.New(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown analytics engine %q", cfg.Analytics.Engine)
	}
}
