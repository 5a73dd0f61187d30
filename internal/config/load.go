// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where a config file is searched, first hit
// wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/sentinel/config.yaml",
	"/etc/sentinel/config.yml",
}

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "SENTINEL_CONFIG"

// envPrefix scopes the environment variable layer. SENTINEL_NATS_URL
// maps to nats.url, SENTINEL_RANKER_HALF_LIFE_HOURS to
// ranker.half_life_hours.
const envPrefix = "SENTINEL_"

// Load builds the configuration from defaults, an optional YAML file,
// and environment variables, in ascending precedence, then validates
// it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration against its struct tags plus the
// cross-field rules tags cannot express.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return err
	}

	if c.Ranker.ImportanceWeight < 0 || c.Ranker.RecencyWeight < 0 {
		return fmt.Errorf("ranker weights must be non-negative")
	}
	if c.Ranker.ImportanceWeight+c.Ranker.RecencyWeight == 0 {
		return fmt.Errorf("at least one ranker weight must be positive")
	}
	for i, d := range c.Inspector.Detectors {
		if d.Type == "content_length" && d.MaxLength > 0 && d.MinLength > d.MaxLength {
			return fmt.Errorf("detector %d: min_length %d exceeds max_length %d", i, d.MinLength, d.MaxLength)
		}
		if d.Type == "keyword_match" && len(d.Keywords) == 0 {
			return fmt.Errorf("detector %d: keyword_match requires keywords", i)
		}
		if d.Type == "missing_fields" && len(d.RequiredFields) == 0 {
			return fmt.Errorf("detector %d: missing_fields requires required_fields", i)
		}
	}
	for i, n := range c.Guardian.Notifiers {
		if n.Type == "webhook" && n.URL == "" {
			return fmt.Errorf("notifier %d: webhook requires url", i)
		}
	}
	return nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envTransform maps SENTINEL_<SECTION>_<KEY> to <section>.<key>. Only
// the first underscore becomes a separator, so multi-word keys survive
// (SENTINEL_NATS_ACK_WAIT -> nats.ack_wait).
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	parts := strings.SplitN(key, "_", 2)
	return strings.Join(parts, ".")
}
