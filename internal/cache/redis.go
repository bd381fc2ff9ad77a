// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/salesboard/internal/config"
	"github.com/tomtom215/salesboard/internal/logging"
	"github.com/tomtom215/salesboard/internal/metrics"
)

const (
	redisPingTimeout = 3 * time.Second
	redisScanCount   = 500
)

// RedisStore is a Store shared between instances through Redis. Every call
// goes through a circuit breaker; while it is open calls fail fast with
// gobreaker.ErrOpenState.
type RedisStore struct {
	client *redis.Client
	cb     *gobreaker.CircuitBreaker[[]byte]
	ttl    time.Duration
	prefix string
}

// NewRedisStore connects to cfg.RedisAddr. An unreachable server is logged
// but not fatal; the breaker takes over from there.
func NewRedisStore(ctx context.Context, cfg *config.CacheConfig) (*RedisStore, error) {
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: redisPingTimeout,
		MaxRetries:  1,
	})

	s := &RedisStore{
		client: client,
		cb:     newBreaker(cfg.BreakerMaxFailures, cfg.BreakerTimeout),
		ttl:    cfg.TTL,
		prefix: cfg.KeyPrefix,
	}

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logging.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis not reachable, response cache will miss until it is")
	} else {
		logging.Info().Str("addr", cfg.RedisAddr).Msg("Connected to Redis response cache")
	}
	return s, nil
}

func newBreaker(maxFailures uint32, timeout time.Duration) *gobreaker.CircuitBreaker[[]byte] {
	if maxFailures == 0 {
		maxFailures = 5
	}
	metrics.CacheBreakerState.WithLabelValues(BackendRedis).Set(0)

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "redis-cache",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Cache circuit breaker state change")
			metrics.CacheBreakerState.WithLabelValues(BackendRedis).Set(breakerStateValue(to))
		},
	})
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// Get implements Store. A missing key is a miss, not an error.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.cb.Execute(func() ([]byte, error) {
		v, err := s.client.Get(ctx, s.prefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return v, err
	})
	if err != nil {
		metrics.RecordCacheError(BackendRedis, "get", err)
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	hit := b != nil
	metrics.RecordCacheLookup(BackendRedis, hit)
	return b, hit, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.cb.Execute(func() ([]byte, error) {
		return nil, s.client.Set(ctx, s.prefix+key, value, s.ttl).Err()
	})
	if err != nil {
		metrics.RecordCacheError(BackendRedis, "set", err)
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Clear removes every key under the configured prefix.
func (s *RedisStore) Clear(ctx context.Context) error {
	_, err := s.cb.Execute(func() ([]byte, error) {
		iter := s.client.Scan(ctx, 0, s.prefix+"*", redisScanCount).Iterator()
		batch := make([]string, 0, redisScanCount)
		for iter.Next(ctx) {
			batch = append(batch, iter.Val())
			if len(batch) == redisScanCount {
				if err := s.client.Unlink(ctx, batch...).Err(); err != nil {
					return nil, err
				}
				batch = batch[:0]
			}
		}
		if err := iter.Err(); err != nil {
			return nil, err
		}
		if len(batch) > 0 {
			return nil, s.client.Unlink(ctx, batch...).Err()
		}
		return nil, nil
	})
	if err != nil {
		metrics.RecordCacheError(BackendRedis, "clear", err)
		return fmt.Errorf("redis clear: %w", err)
	}
	return nil
}

// Ping checks the Redis connection, bypassing the breaker.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// State returns the breaker state.
func (s *RedisStore) State() gobreaker.State {
	return s.cb.State()
}

// Backend implements Store.
func (s *RedisStore) Backend() string { return BackendRedis }

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
