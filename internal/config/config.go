// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

// Package config loads Salesboard configuration.
//
// Values are layered: struct defaults, then an optional YAML file
// (CONFIG_PATH or config.yaml), then environment variables. A .env file in
// the working directory (or DOTENV_PATH) is applied to the environment first
// and never overrides variables that are already set.
package config

import (
	"time"
)

// Config is the root configuration.
type Config struct {
	Dataset   DatasetConfig   `koanf:"dataset"`
	Analytics AnalyticsConfig `koanf:"analytics"`
	Database  DatabaseConfig  `koanf:"database"`
	Cache     CacheConfig     `koanf:"cache"`
	Report    ReportConfig    `koanf:"report"`
	Server    ServerConfig    `koanf:"server"`
	API       APIConfig       `koanf:"api"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// DatasetConfig points at the sales CSV and controls change detection.
type DatasetConfig struct {
	// Path to the CSV file.
	Path string `koanf:"path"`

	// WatchEnabled turns on the background watcher that reloads the dataset
	// when the file changes on disk.
	WatchEnabled bool `koanf:"watch_enabled"`

	// WatchSchedule is a cron spec (robfig/cron syntax, descriptors allowed).
	WatchSchedule string `koanf:"watch_schedule"`

	// LoadTimeout bounds a single load (read + parse + enrich).
	LoadTimeout time.Duration `koanf:"load_timeout"`
}

// Analytics engine names.
const (
	EngineMemory = "memory"
	EngineDuckDB = "duckdb"
)

// AnalyticsConfig selects the KPI engine.
type AnalyticsConfig struct {
	// Engine is "memory" (Go aggregation) or "duckdb" (SQL aggregation over an
	// in-process DuckDB copy of the dataset).
	Engine string `koanf:"engine"`
}

// DatabaseConfig configures the DuckDB engine.
type DatabaseConfig struct {
	// Path of the DuckDB file. Empty means in-memory.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = DuckDB default
}

// CacheConfig configures the API response cache.
type CacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	Backend string        `koanf:"backend"` // memory or redis
	TTL     time.Duration `koanf:"ttl"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	KeyPrefix     string `koanf:"key_prefix"`

	// BreakerMaxFailures consecutive Redis failures open the circuit for BreakerTimeout.
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// ReportConfig configures the PDF export.
type ReportConfig struct {
	Title string `koanf:"title"`
	// TopN limits the rows rendered per dimension table; 0 renders all rows.
	TopN int `koanf:"top_n"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// APIConfig holds pagination limits for record listing.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	TrustedProxies    []string      `koanf:"trusted_proxies"`
}

// LoggingConfig holds logging settings; see logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from defaults, file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// IsProduction reports whether ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
