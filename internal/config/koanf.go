// Eventgraph - Multi-Platform Event Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventgraph

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/eventgraph/config.yaml",
	"/etc/eventgraph/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config
// file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// envPrefix namespaces environment overrides, e.g.
// EVENTGRAPH_PLATFORMS_LUMA_TOKEN -> platforms.luma.token.
const envPrefix = "EVENTGRAPH_"

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, in increasing order of precedence. An empty path
// triggers the default search order.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: struct defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	// Layer 2: YAML file, if one exists
	if path == "" {
		path = os.Getenv(ConfigPathEnvVar)
	}
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// Layer 3: environment overrides
	if err := k.Load(env.Provider(envPrefix, ".", envKeyToPath), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// findConfigFile returns the first existing default config path, or "".
func findConfigFile() string {
	for _, candidate := range DefaultConfigPaths {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// envKeyToPath maps EVENTGRAPH_SECTION_KEY to section.key. The platforms
// section nests one level deeper (platforms.<name>.<key>); everywhere else
// only the first underscore separates path segments so multi-word leaf keys
// like rate_limit_requests survive.
func envKeyToPath(key string) string {
	trimmed := strings.ToLower(strings.TrimPrefix(key, envPrefix))
	if strings.HasPrefix(trimmed, "platforms_") {
		return strings.Replace(trimmed, "_", ".", 2)
	}
	return strings.Replace(trimmed, "_", ".", 1)
}
