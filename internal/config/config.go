// Eventgraph - Multi-Platform Event Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventgraph

// Package config defines the engine's configuration model and loads it with
// koanf: struct defaults first, then a YAML file, then EVENTGRAPH_ prefixed
// environment variables.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the synchronization engine.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Platforms  PlatformsConfig  `koanf:"platforms"`
	Resilience ResilienceConfig `koanf:"resilience"`
	Store      StoreConfig      `koanf:"store"`
	Cache      CacheConfig      `koanf:"cache"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig configures the HTTP surface exposing the orchestrator.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// RateLimitReqs/RateLimitWindow bound inbound requests per client IP.
	RateLimitReqs   int           `koanf:"rate_limit_requests"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// PlatformConfig configures one partner API integration. The bearer token is
// supplied by deployment configuration; the engine never provisions
// credentials.
type PlatformConfig struct {
	Enabled bool          `koanf:"enabled"`
	BaseURL string        `koanf:"base_url"`
	Token   string        `koanf:"token"`
	Timeout time.Duration `koanf:"timeout"`
}

// PlatformsConfig groups the partner integrations.
type PlatformsConfig struct {
	Luma       PlatformConfig `koanf:"luma"`
	Eventbrite PlatformConfig `koanf:"eventbrite"`
	Partiful   PlatformConfig `koanf:"partiful"`
}

// ResilienceConfig tunes the per-platform guard: circuit breaker, bounded
// retry, and sliding-window rate limiter.
type ResilienceConfig struct {
	// BreakerFailureRate is the rolling-window failure ratio that trips the
	// breaker (0-1].
	BreakerFailureRate float64 `koanf:"breaker_failure_rate"`

	// BreakerMinRequests is the minimum sample size before the failure rate
	// is evaluated.
	BreakerMinRequests uint32 `koanf:"breaker_min_requests"`

	// BreakerInterval is the rolling window over which counts accumulate
	// while the breaker is closed.
	BreakerInterval time.Duration `koanf:"breaker_interval"`

	// BreakerOpenTimeout is how long an open breaker rejects calls before
	// allowing one half-open trial.
	BreakerOpenTimeout time.Duration `koanf:"breaker_open_timeout"`

	// RetryAttempts bounds total attempts per outbound call.
	RetryAttempts int `koanf:"retry_attempts"`

	// RetryBaseDelay is the backoff unit; delays double per attempt.
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`

	// RateLimitRequests/RateLimitWindow define the per-platform sliding
	// window. Calls exceeding the window are rejected, not queued.
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// StoreConfig configures the BadgerDB-backed persistence gateway.
type StoreConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// CacheConfig configures the read cache.
type CacheConfig struct {
	TTL time.Duration `koanf:"ttl"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8460,
			Timeout:         30 * time.Second,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Platforms: PlatformsConfig{
			Luma: PlatformConfig{
				Enabled: false,
				BaseURL: "https://api.lu.ma",
				Timeout: 10 * time.Second,
			},
			Eventbrite: PlatformConfig{
				Enabled: false,
				BaseURL: "https://www.eventbriteapi.com",
				Timeout: 10 * time.Second,
			},
			Partiful: PlatformConfig{
				Enabled: false,
				BaseURL: "https://api.partiful.com",
				Timeout: 10 * time.Second,
			},
		},
		Resilience: ResilienceConfig{
			BreakerFailureRate: 0.5,
			BreakerMinRequests: 10,
			BreakerInterval:    time.Minute,
			BreakerOpenTimeout: 30 * time.Second,
			RetryAttempts:      3,
			RetryBaseDelay:     time.Second,
			RateLimitRequests:  100,
			RateLimitWindow:    time.Minute,
		},
		Store: StoreConfig{
			Path:     "/data/eventgraph",
			InMemory: false,
		},
		Cache: CacheConfig{
			TTL: time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the loaded configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Resilience.BreakerFailureRate <= 0 || c.Resilience.BreakerFailureRate > 1 {
		return fmt.Errorf("resilience.breaker_failure_rate %.2f must be in (0, 1]", c.Resilience.BreakerFailureRate)
	}
	if c.Resilience.RetryAttempts < 1 {
		return fmt.Errorf("resilience.retry_attempts must be at least 1")
	}
	if c.Resilience.RateLimitRequests < 1 {
		return fmt.Errorf("resilience.rate_limit_requests must be at least 1")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}
	for name, p := range map[string]PlatformConfig{
		"luma":       c.Platforms.Luma,
		"eventbrite": c.Platforms.Eventbrite,
		"partiful":   c.Platforms.Partiful,
	} {
		if p.Enabled && p.BaseURL == "" {
			return fmt.Errorf("platforms.%s.base_url required when enabled", name)
		}
		if p.Enabled && p.Token == "" {
			return fmt.Errorf("platforms.%s.token required when enabled", name)
		}
	}
	return nil
}
