// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

package config

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

var (
	validEngines       = map[string]bool{EngineMemory: true, EngineDuckDB: true}
	validCacheBackends = map[string]bool{"memory": true, "redis": true}
	validLogLevels     = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	validLogFormats    = map[string]bool{"json": true, "console": true}
)

const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateDataset,
		c.validateAnalytics,
		c.validateCache,
		c.validateServer,
		c.validateAPI,
		c.validateRateLimits,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateDataset() error {
	if c.Dataset.Path == "" {
		return fmt.Errorf("DATASET_PATH is required")
	}
	if c.Dataset.LoadTimeout <= 0 {
		return fmt.Errorf("DATASET_LOAD_TIMEOUT must be positive")
	}
	if !c.Dataset.WatchEnabled {
		return nil
	}
	if _, err := cron.ParseStandard(c.Dataset.WatchSchedule); err != nil {
		return fmt.Errorf("DATASET_WATCH_SCHEDULE %q is invalid: %w", c.Dataset.WatchSchedule, err)
	}
	return nil
}

func (c *Config) validateAnalytics() error {
	if !validEngines[c.Analytics.Engine] {
		return fmt.Errorf("ANALYTICS_ENGINE must be one of: memory, duckdb")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	return nil
}

func (c *Config) validateCache() error {
	if !c.Cache.Enabled {
		return nil
	}
	if !validCacheBackends[c.Cache.Backend] {
		return fmt.Errorf("CACHE_BACKEND must be one of: memory, redis")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required when CACHE_BACKEND=redis")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize < 1 || c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be >= 1 and <= API_MAX_PAGE_SIZE")
	}
	return nil
}

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
