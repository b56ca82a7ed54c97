// Eventgraph - Multi-Platform Event Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventgraph

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8460 {
		t.Errorf("Server.Port = %d, want 8460", cfg.Server.Port)
	}
	if cfg.Resilience.BreakerFailureRate != 0.5 {
		t.Errorf("BreakerFailureRate = %v, want 0.5", cfg.Resilience.BreakerFailureRate)
	}
	if cfg.Resilience.BreakerMinRequests != 10 {
		t.Errorf("BreakerMinRequests = %d, want 10", cfg.Resilience.BreakerMinRequests)
	}
	if cfg.Resilience.BreakerOpenTimeout != 30*time.Second {
		t.Errorf("BreakerOpenTimeout = %v, want 30s", cfg.Resilience.BreakerOpenTimeout)
	}
	if cfg.Cache.TTL != time.Hour {
		t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
	}
	if cfg.Platforms.Luma.Enabled {
		t.Error("platforms must be disabled by default")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9000
platforms:
  luma:
    enabled: true
    base_url: https://api.lu.ma
    token: secret
cache:
  ttl: 10m
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if !cfg.Platforms.Luma.Enabled {
		t.Error("Platforms.Luma.Enabled = false, want true")
	}
	if cfg.Platforms.Luma.Token != "secret" {
		t.Errorf("Platforms.Luma.Token = %q", cfg.Platforms.Luma.Token)
	}
	if cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("Cache.TTL = %v, want 10m", cfg.Cache.TTL)
	}
	// Unset keys keep their defaults.
	if cfg.Resilience.RetryAttempts != 3 {
		t.Errorf("RetryAttempts = %d, want default 3", cfg.Resilience.RetryAttempts)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("EVENTGRAPH_SERVER_PORT", "7777")
	t.Setenv("EVENTGRAPH_PLATFORMS_PARTIFUL_TOKEN", "env-token")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want env override 7777", cfg.Server.Port)
	}
	if cfg.Platforms.Partiful.Token != "env-token" {
		t.Errorf("Platforms.Partiful.Token = %q, want env-token", cfg.Platforms.Partiful.Token)
	}
}

func TestEnvKeyToPath(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"EVENTGRAPH_SERVER_PORT", "server.port"},
		{"EVENTGRAPH_SERVER_RATE_LIMIT_REQUESTS", "server.rate_limit_requests"},
		{"EVENTGRAPH_PLATFORMS_LUMA_TOKEN", "platforms.luma.token"},
		{"EVENTGRAPH_PLATFORMS_EVENTBRITE_BASE_URL", "platforms.eventbrite.base_url"},
		{"EVENTGRAPH_CACHE_TTL", "cache.ttl"},
	}

	for _, tt := range tests {
		if got := envKeyToPath(tt.key); got != tt.want {
			t.Errorf("envKeyToPath(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"failure rate above one", func(c *Config) { c.Resilience.BreakerFailureRate = 1.5 }},
		{"zero retries", func(c *Config) { c.Resilience.RetryAttempts = 0 }},
		{"zero ttl", func(c *Config) { c.Cache.TTL = 0 }},
		{"enabled platform without token", func(c *Config) {
			c.Platforms.Luma.Enabled = true
			c.Platforms.Luma.Token = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}
