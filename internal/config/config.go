// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package config

import (
	"time"

	"github.com/tomtom215/clusterrec/internal/recommend"
)

// Config holds all application configuration.
type Config struct {
	Logging    LoggingConfig    `koanf:"logging"`
	Database   DatabaseConfig   `koanf:"database"`
	Recommend  recommend.Config `koanf:"recommend"`
	Generation GenerationConfig `koanf:"generation"`
	Store      StoreConfig      `koanf:"store"`
	Cache      CacheConfig      `koanf:"cache"`
	Events     EventsConfig     `koanf:"events"`
	Server     ServerConfig     `koanf:"server"`
	Security   SecurityConfig   `koanf:"security"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string       `koanf:"path"`
	MaxMemory string       `koanf:"max_memory"`
	Threads   int          `koanf:"threads"` // 0 = use NumCPU
	Import    ImportConfig `koanf:"import"`
}

// ImportConfig lists optional CSV or Parquet files loaded into the input
// tables at startup. Empty paths are skipped.
type ImportConfig struct {
	Catalog      string `koanf:"catalog"`
	Interactions string `koanf:"interactions"`
	Users        string `koanf:"users"`
}

// Enabled reports whether any import file is configured.
func (c ImportConfig) Enabled() bool {
	return c.Catalog != "" || c.Interactions != "" || c.Users != ""
}

// GenerationConfig controls when generation runs.
type GenerationConfig struct {
	// Interval between scheduled runs. Zero disables scheduling.
	Interval time.Duration `koanf:"interval"`

	// RunOnStart runs once as soon as the service starts.
	RunOnStart bool `koanf:"run_on_start"`

	// Timeout bounds a single run including output writes.
	Timeout time.Duration `koanf:"timeout"`

	// TriggerCooldown is the minimum spacing between manually triggered runs.
	TriggerCooldown time.Duration `koanf:"trigger_cooldown"`
}

// StoreConfig holds the BadgerDB result store settings.
type StoreConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// CacheConfig holds the read cache settings.
type CacheConfig struct {
	// Size is the number of users kept in the LRU. Zero disables the cache.
	Size int `koanf:"size"`
}

// Event backends.
const (
	EventsBackendChannel = "gochannel"
	EventsBackendNATS    = "nats"
)

// EventsConfig holds run-completion event publishing settings.
type EventsConfig struct {
	Enabled bool       `koanf:"enabled"`
	Backend string     `koanf:"backend"`
	Topic   string     `koanf:"topic"`
	NATS    NATSConfig `koanf:"nats"`
}

// NATSConfig holds NATS JetStream settings used when Backend is "nats".
type NATSConfig struct {
	// URL is the NATS server connection URL.
	URL string `koanf:"url"`

	// EmbeddedServer starts an in-process NATS server.
	EmbeddedServer bool `koanf:"embedded_server"`

	// StoreDir is the JetStream storage directory for the embedded server.
	StoreDir string `koanf:"store_dir"`

	// MaxMemory and MaxStore bound the embedded JetStream in bytes.
	MaxMemory int64 `koanf:"max_memory"`
	MaxStore  int64 `koanf:"max_store"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port    int           `koanf:"port"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// SupervisorConfig mirrors the suture failure parameters.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}
