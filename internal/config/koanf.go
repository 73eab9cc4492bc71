// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/clusterrec/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/clusterrec/config.yaml",
	"/etc/clusterrec/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Database: DatabaseConfig{
			Path:      "/data/clusterrec.duckdb",
			MaxMemory: "2GB",
		},
		Recommend: *recommend.DefaultConfig(),
		Generation: GenerationConfig{
			Interval:        6 * time.Hour,
			RunOnStart:      true,
			Timeout:         time.Hour,
			TriggerCooldown: time.Minute,
		},
		Store: StoreConfig{
			Path: "/data/results",
		},
		Cache: CacheConfig{
			Size: 10000,
		},
		Events: EventsConfig{
			Enabled: true,
			Backend: EventsBackendChannel,
			Topic:   "recommendations.generated",
			NATS: NATSConfig{
				URL:       "nats://127.0.0.1:4222",
				StoreDir:  "/data/nats/jetstream",
				MaxMemory: 64 * 1024 * 1024,
				MaxStore:  1024 * 1024 * 1024,
			},
		},
		Server: ServerConfig{
			Port:    3857,
			Host:    "0.0.0.0",
			Timeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureDecay:     30,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// Load loads configuration using the layered approach:
//
//  1. Defaults
//  2. Config file (if one exists)
//  3. Environment variables
func Load() (*Config, error) {
	return load(findConfigFile())
}

// LoadFile loads configuration from an explicit file path, still applying
// environment overrides.
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// RECOMMEND_TOTAL -> recommend.total_recommendations
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first config file found, or "" if none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated environment values.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"duckdb_path":              "database.path",
	"duckdb_max_memory":        "database.max_memory",
	"duckdb_threads":           "database.threads",
	"import_catalog_path":      "database.import.catalog",
	"import_interactions_path": "database.import.interactions",
	"import_users_path":        "database.import.users",

	"recommend_total":                "recommend.total_recommendations",
	"recommend_fallback_pool_size":   "recommend.fallback_pool_size",
	"recommend_min_good_items":       "recommend.min_good_items_for_clustering",
	"recommend_min_cluster_size":     "recommend.clustering.min_cluster_size",
	"recommend_min_samples":          "recommend.clustering.min_samples",
	"recommend_selection_method":     "recommend.clustering.selection_method",
	"recommend_batch_size":           "recommend.batch_size",
	"recommend_workers":              "recommend.workers",
	"recommend_dedupe_by_content_id": "recommend.dedupe_by_content_id",
	"recommend_module_source":        "recommend.module_source",

	"generation_interval":         "generation.interval",
	"generation_run_on_start":     "generation.run_on_start",
	"generation_timeout":          "generation.timeout",
	"generation_trigger_cooldown": "generation.trigger_cooldown",

	"store_path":      "store.path",
	"store_in_memory": "store.in_memory",
	"cache_size":      "cache.size",

	"events_enabled":  "events.enabled",
	"events_backend":  "events.backend",
	"events_topic":    "events.topic",
	"nats_url":        "events.nats.url",
	"nats_embedded":   "events.nats.embedded_server",
	"nats_store_dir":  "events.nats.store_dir",
	"nats_max_memory": "events.nats.max_memory",
	"nats_max_store":  "events.nats.max_store",

	"http_host":           "server.host",
	"http_port":           "server.port",
	"http_timeout":        "server.timeout",
	"cors_origins":        "security.cors_origins",
	"rate_limit_reqs":     "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"rate_limit_disabled": "security.rate_limit_disabled",

	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
}

// envTransformFunc maps an environment variable name to a koanf path.
// Unmapped variables return "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
