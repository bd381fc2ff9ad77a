// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/salesboard/internal/config"
	"github.com/tomtom215/salesboard/internal/metrics"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Store is a response cache. A backend failure is reported as an error; the
// caller decides whether to treat it as a miss.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context) error
	Backend() string
	Close() error
}

// MemoryStore adapts Cache to Store.
type MemoryStore struct {
	*Cache
}

// NewMemoryStore returns an in-process Store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{Cache: New(ttl)}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, ok := m.Cache.Get(key)
	metrics.RecordCacheLookup(BackendMemory, ok)
	return b, ok, nil
}

// Set implements Store.
func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.Cache.Set(key, value)
	return nil
}

// Clear implements Store.
func (m *MemoryStore) Clear(context.Context) error {
	m.Cache.Clear()
	return nil
}

// Backend implements Store.
func (m *MemoryStore) Backend() string { return BackendMemory }

// NewStore builds the configured Store. It returns nil, nil when caching is
// disabled.
func NewStore(ctx context.Context, cfg *config.CacheConfig) (Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemoryStore(cfg.TTL), nil
	case BackendRedis:
		rs, err := NewRedisStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return rs, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)
