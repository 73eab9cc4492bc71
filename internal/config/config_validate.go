// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package config

import (
	"fmt"
	"net/url"
	"time"
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateLogging,
		c.validateDatabase,
		c.validateRecommend,
		c.validateGeneration,
		c.validateStore,
		c.validateEvents,
		c.validateServer,
		c.validateSecurity,
	}
	for _, validator := range validators {
		if err := validator(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error (got %q)", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console (got %q)", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be non-negative")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}

const minGenerationInterval = time.Minute

func (c *Config) validateGeneration() error {
	g := c.Generation
	if g.Interval != 0 && g.Interval < minGenerationInterval {
		return fmt.Errorf("GENERATION_INTERVAL must be 0 or at least %s", minGenerationInterval)
	}
	if g.Timeout <= 0 {
		return fmt.Errorf("GENERATION_TIMEOUT must be positive")
	}
	if g.TriggerCooldown < 0 {
		return fmt.Errorf("GENERATION_TRIGGER_COOLDOWN must be non-negative")
	}
	return nil
}

func (c *Config) validateStore() error {
	if !c.Store.InMemory && c.Store.Path == "" {
		return fmt.Errorf("STORE_PATH is required unless STORE_IN_MEMORY=true")
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("CACHE_SIZE must be non-negative")
	}
	return nil
}

// NATS limit constants
const (
	natsMinMemory = 16 * 1024 * 1024
	natsMinStore  = 64 * 1024 * 1024
)

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	if c.Events.Topic == "" {
		return fmt.Errorf("EVENTS_TOPIC is required when events are enabled")
	}
	switch c.Events.Backend {
	case EventsBackendChannel:
		return nil
	case EventsBackendNATS:
	default:
		return fmt.Errorf("EVENTS_BACKEND must be %q or %q (got %q)",
			EventsBackendChannel, EventsBackendNATS, c.Events.Backend)
	}

	n := c.Events.NATS
	if err := validateNATSURL(n.URL); err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}
	if n.EmbeddedServer {
		if n.MaxMemory < natsMinMemory {
			return fmt.Errorf("NATS_MAX_MEMORY must be at least 16MB")
		}
		if n.MaxStore < natsMinStore {
			return fmt.Errorf("NATS_MAX_STORE must be at least 64MB")
		}
	}
	return nil
}

func validateNATSURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "nats", "tls", "ws", "wss":
	default:
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	s := c.Security
	if s.RateLimitDisabled {
		return nil
	}
	if s.RateLimitReqs < 1 || s.RateLimitReqs > 100000 {
		return fmt.Errorf("RATE_LIMIT_REQS must be between 1 and 100000")
	}
	if s.RateLimitWindow < time.Second || s.RateLimitWindow > time.Hour {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between 1s and 1h")
	}
	return nil
}
