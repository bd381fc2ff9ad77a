// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

// Package analytics composes the dataset loader, filtering and a KPI engine
// into the operations served by the API and the report exporter.
//
// The Service owns the current dataset. Every query first asks the loader for
// the source file, which is a stat call while the file is unchanged. When the
// loader returns a new fingerprint the dataset is swapped, the response cache
// is cleared and engines holding their own copy are re-synchronised. A failed
// load keeps the last good dataset in service and is reported through Status.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/salesboard/internal/cache"
	"github.com/tomtom215/salesboard/internal/config"
	"github.com/tomtom215/salesboard/internal/dataset"
	"github.com/tomtom215/salesboard/internal/filter"
	"github.com/tomtom215/salesboard/internal/kpi"
	"github.com/tomtom215/salesboard/internal/logging"
	"github.com/tomtom215/salesboard/internal/metrics"
)

// Service serves KPI queries over the configured dataset.
type Service struct {
	path        string
	loadTimeout time.Duration
	loader      *dataset.Loader
	engine      Engine
	store       cache.Store // nil disables response caching

	mu        sync.RWMutex
	current   *dataset.Dataset
	lastErr   error
	lastLoad  time.Time
	startedAt time.Time
}

// NewService creates a Service. store may be nil.
func NewService(cfg *config.DatasetConfig, loader *dataset.Loader, engine Engine, store cache.Store) *Service {
	timeout := cfg.LoadTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{
		path:        cfg.Path,
		loadTimeout: timeout,
		loader:      loader,
		engine:      engine,
		store:       store,
		startedAt:   time.Now(),
	}
}

// Engine returns the active KPI engine.
func (s *Service) Engine() Engine { return s.engine }

// Dataset returns the current dataset, loading or refreshing it when the
// source changed. When the load fails and an earlier dataset exists, that
// dataset is returned and the failure is recorded for Status.
func (s *Service) Dataset(ctx context.Context) (*dataset.Dataset, error) {
	ds, _, err := s.load(ctx)
	if err != nil {
		if prev := s.Current(); prev != nil {
			return prev, nil
		}
		return nil, err
	}
	return ds, nil
}

// Current returns the last successfully loaded dataset without touching the
// source, or nil.
func (s *Service) Current() *dataset.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Reload drops the loader entry and the response cache and loads the source
// again. The error is returned even when an earlier dataset stays in service.
func (s *Service) Reload(ctx context.Context) (*dataset.Dataset, error) {
	s.loader.Invalidate(s.path)
	s.clearCache(ctx)
	ds, _, err := s.load(ctx)
	return ds, err
}

// Refresh loads the source and reports whether the dataset changed. Used by
// the background watcher.
func (s *Service) Refresh(ctx context.Context) (bool, error) {
	_, changed, err := s.load(ctx)
	return changed, err
}

func (s *Service) load(ctx context.Context) (*dataset.Dataset, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.loadTimeout)
	defer cancel()

	ds, err := s.loader.Load(ctx, s.path)
	if err != nil {
		s.recordFailure(ctx, err)
		return nil, false, err
	}

	s.mu.Lock()
	prev := s.current
	changed := prev == nil || prev.Fingerprint != ds.Fingerprint
	s.current = ds
	s.lastErr = nil
	s.lastLoad = ds.LoadedAt
	s.mu.Unlock()

	if !changed {
		return ds, false, nil
	}

	event := logging.Ctx(ctx).Info().Str("fingerprint", ds.Fingerprint)
	if prev != nil {
		event = event.Str("previous_fingerprint", prev.Fingerprint)
	}
	event.Msg("Dataset swapped")

	s.clearCache(ctx)
	if sy, ok := s.engine.(syncer); ok {
		if err := sy.Sync(ctx, ds); err != nil {
			// The engine syncs lazily on the next query as well.
			logging.Ctx(ctx).Warn().Err(err).Str("engine", s.engine.Name()).Msg("Failed to sync analytics engine")
		}
	}
	return ds, true, nil
}

func (s *Service) recordFailure(ctx context.Context, err error) {
	s.mu.Lock()
	repeated := s.lastErr != nil && s.lastErr.Error() == err.Error()
	s.lastErr = err
	s.mu.Unlock()

	if repeated {
		return
	}
	event := logging.Ctx(ctx).Error()
	if errors.Is(err, dataset.ErrSourceNotFound) {
		event = logging.Ctx(ctx).Warn()
	}
	event.Err(err).Str("source", s.path).Str("kind", dataset.ErrorKind(err)).Msg("Dataset load failed")
}

func (s *Service) clearCache(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.Clear(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("backend", s.store.Backend()).Msg("Failed to clear response cache")
	}
}

// Status describes the dataset state for health and info endpoints.
type Status struct {
	Source    string
	Loaded    bool
	LastLoad  time.Time
	LastError error
	StartedAt time.Time
}

// Status returns the current dataset state without loading.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		Source:    s.path,
		Loaded:    s.current != nil,
		LastLoad:  s.lastLoad,
		LastError: s.lastErr,
		StartedAt: s.startedAt,
	}
}

// KPI returns the table for one dimension.
func (s *Service) KPI(ctx context.Context, ds *dataset.Dataset, c filter.Criteria, dim kpi.Dimension) (kpi.Table, error) {
	start := time.Now()
	table, err := s.engine.Aggregate(ctx, ds, c, dim)
	metrics.RecordAggregation(string(dim), s.engine.Name(), time.Since(start), table.UndefinedRatios, err)
	if err != nil {
		return kpi.Table{}, err
	}
	if table.UndefinedRatios > 0 {
		logging.Ctx(ctx).Warn().
			Str("dimension", string(dim)).
			Int("undefined_ratios", table.UndefinedRatios).
			Msg("KPI ratios undefined due to zero denominators")
	}
	return table, nil
}

// AllKPI returns every dimension's table.
func (s *Service) AllKPI(ctx context.Context, ds *dataset.Dataset, c filter.Criteria) (map[kpi.Dimension]kpi.Table, error) {
	out := make(map[kpi.Dimension]kpi.Table, len(kpi.Dimensions()))
	for _, dim := range kpi.Dimensions() {
		table, err := s.KPI(ctx, ds, c, dim)
		if err != nil {
			return nil, fmt.Errorf("dimension %s: %w", dim, err)
		}
		out[dim] = table
	}
	return out, nil
}

// ChannelPerformance returns the channel performance table.
func (s *Service) ChannelPerformance(ctx context.Context, ds *dataset.Dataset, c filter.Criteria) (kpi.ChannelTable, error) {
	const dim = "channel_performance"
	start := time.Now()
	table, err := s.engine.ChannelPerformance(ctx, ds, c)
	metrics.RecordAggregation(dim, s.engine.Name(), time.Since(start), table.UndefinedRatios, err)
	if err != nil {
		return kpi.ChannelTable{}, err
	}
	if table.UndefinedRatios > 0 {
		logging.Ctx(ctx).Warn().
			Str("dimension", dim).
			Int("undefined_ratios", table.UndefinedRatios).
			Msg("KPI ratios undefined due to zero denominators")
	}
	return table, nil
}

// Overview returns the metric cards for the filtered records.
func (s *Service) Overview(ds *dataset.Dataset, c filter.Criteria) kpi.Overview {
	return kpi.Summarize(filter.Apply(ds.Records, c))
}

// Trend returns the daily revenue trend for the filtered records.
func (s *Service) Trend(ds *dataset.Dataset, c filter.Criteria) []kpi.TrendPoint {
	return kpi.DailyTrend(filter.Apply(ds.Records, c))
}

// Records returns one page of the filtered records and the total match count.
func (s *Service) Records(ds *dataset.Dataset, c filter.Criteria, limit, offset int) ([]dataset.Record, int) {
	matched := filter.Apply(ds.Records, c)
	total := len(matched)
	if offset >= total {
		return []dataset.Record{}, total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return matched[offset:end], total
}

// FilterOptions lists the values the dashboard filter widgets offer.
type FilterOptions struct {
	Channels   []string   `json:"channels"`
	Categories []string   `json:"categories"`
	Regions    []string   `json:"regions"`
	Segments   []string   `json:"segments"`
	Campaigns  []string   `json:"campaigns"`
	Start      *time.Time `json:"start,omitempty"`
	End        *time.Time `json:"end,omitempty"`
}

// Options returns the filter options for ds. Values are sorted.
func (s *Service) Options(ds *dataset.Dataset) FilterOptions {
	sets := [5]map[string]struct{}{}
	for i := range sets {
		sets[i] = make(map[string]struct{})
	}
	for i := range ds.Records {
		r := &ds.Records[i]
		sets[0][r.MarketingChannel] = struct{}{}
		sets[1][r.Category] = struct{}{}
		sets[2][r.Region] = struct{}{}
		sets[3][r.CustomerSegment] = struct{}{}
		sets[4][r.MarketingCampaign] = struct{}{}
	}

	opts := FilterOptions{
		Channels:   sortedKeys(sets[0]),
		Categories: sortedKeys(sets[1]),
		Regions:    sortedKeys(sets[2]),
		Segments:   sortedKeys(sets[3]),
		Campaigns:  sortedKeys(sets[4]),
	}
	if len(ds.Records) > 0 {
		start, end := ds.Summary.Start, ds.Summary.End
		opts.Start, opts.End = &start, &end
	}
	return opts
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Cached returns the JSON encoding of compute(), consulting the response
// cache first. The key covers the endpoint, params and the dataset
// fingerprint, so entries never outlive the data they were computed from.
// Cache backend failures are treated as misses.
func (s *Service) Cached(ctx context.Context, ds *dataset.Dataset, endpoint string, params interface{}, compute func() (interface{}, error)) (json.RawMessage, bool, error) {
	var key string
	if s.store != nil {
		key = cache.GenerateKey(endpoint, struct {
			Dataset string      `json:"dataset"`
			Params  interface{} `json:"params"`
		}{ds.Fingerprint, params})

		data, ok, err := s.store.Get(ctx, key)
		if err != nil {
			logging.Ctx(ctx).Debug().Err(err).Str("backend", s.store.Backend()).Msg("Response cache read failed")
		} else if ok {
			return data, true, nil
		}
	}

	v, err := compute()
	if err != nil {
		return nil, false, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode %s response: %w", endpoint, err)
	}

	if s.store != nil {
		if err := s.store.Set(ctx, key, data); err != nil {
			logging.Ctx(ctx).Debug().Err(err).Str("backend", s.store.Backend()).Msg("Response cache write failed")
		}
	}
	return data, false, nil
}

// Close releases the engine and the cache store.
func (s *Service) Close() error {
	var errs []error
	if err := s.engine.Close(); err != nil {
		errs = append(errs, fmt.Errorf("engine: %w", err))
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cache: %w", err))
		}
	}
	return errors.Join(errs...)
}
