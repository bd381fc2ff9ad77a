// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

// Package cache stores encoded API responses keyed by endpoint and filter.
//
// Two backends implement Store: an in-process TTL map (Cache) and Redis
// (RedisStore), the latter guarded by a circuit breaker so an unreachable
// Redis degrades to cache misses instead of failed requests.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
)

const sweepInterval = 5 * time.Minute

type entry struct {
	payload []byte
	expires time.Time
}

func (e entry) expired(now time.Time) bool { return !now.Before(e.expires) }

// Cache is an in-process TTL map of encoded responses. A background sweep
// drops expired entries; Get also drops them lazily.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration

	hits, misses, evictions atomic.Int64
	lastSweep               atomic.Int64 // unix nanos

	done      chan struct{}
	closeOnce sync.Once
}

// Stats is a point-in-time view of cache counters.
type Stats struct {
	Hits, Misses, Evictions int64
	Entries                 int
	LastSweep               time.Time
}

// HitRate is hits over lookups as a percentage; 0 before any lookup.
func (s Stats) HitRate() float64 {
	if n := s.Hits + s.Misses; n > 0 {
		return 100 * float64(s.Hits) / float64(n)
	}
	return 0
}

// New returns a cache with the given entry lifetime and starts its sweeper.
// Close stops the sweeper.
func New(ttl time.Duration) *Cache {
	c := &Cache{entries: make(map[string]entry), ttl: ttl, done: make(chan struct{})}
	c.lastSweep.Store(time.Now().UnixNano())
	go c.sweepLoop()
	return c
}

// Get returns the live payload for key.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	switch {
	case !ok:
		c.misses.Add(1)
		return nil, false
	case e.expired(time.Now()):
		c.mu.Lock()
		if cur, still := c.entries[key]; still && cur.expires.Equal(e.expires) {
			delete(c.entries, key)
			c.evictions.Add(1)
		}
		c.mu.Unlock()
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return e.payload, true
}

// Set stores payload for the cache's default lifetime.
func (c *Cache) Set(key string, payload []byte) { c.SetWithTTL(key, payload, c.ttl) }

// SetWithTTL stores payload for ttl.
func (c *Cache) SetWithTTL(key string, payload []byte, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry{payload: payload, expires: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// Delete drops key if present.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	if _, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.evictions.Add(1)
	}
	c.mu.Unlock()
}

// Clear drops every entry. Used when the dataset changes.
func (c *Cache) Clear() {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[string]entry)
	c.mu.Unlock()
	c.evictions.Add(int64(n))
}

// Len counts stored entries, including expired ones not yet swept.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats snapshots the counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Entries:   c.Len(),
		LastSweep: time.Unix(0, c.lastSweep.Load()),
	}
}

// Close stops the sweeper. Repeated calls are no-ops.
func (c *Cache) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

func (c *Cache) sweepLoop() {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-t.C:
			c.sweep()
		}
	}
}

func (c *Cache) sweep() {
	now := time.Now()
	c.mu.Lock()
	var dropped int64
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
			dropped++
		}
	}
	c.mu.Unlock()
	c.evictions.Add(dropped)
	c.lastSweep.Store(now.UnixNano())
}

// GenerateKey derives a stable key from an endpoint name and its parameters,
// e.g. "kpi:3f2a...". Parameters that encode to the same JSON share a key.
func GenerateKey(endpoint string, params interface{}) string {
	raw, err := json.Marshal(params)
	if err != nil {
		raw = []byte(fmt.Sprintf("%#v", params))
	}
	sum := sha256.Sum256(append([]byte(endpoint+"\x00"), raw...))
	return endpoint + ":" + hex.EncodeToString(sum[:16])
}
