// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

// Package sources keeps the registry of news sources in PostgreSQL.
// The gateway writes it, the scheduler reads it; the event log carries
// lifecycle notifications between them.
package sources

import (
	"errors"
	"time"

	"github.com/goccy/go-json"
)

// ErrSourceNotFound is returned for lookups of unknown source ids.
var ErrSourceNotFound = errors.New("source not found")

// Source is one registered news source.
type Source struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Config    json.RawMessage `json:"config,omitempty"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
}

// sourceConfig is the subset of the per-source config the pipeline
// itself understands. Everything else in Config belongs to the
// fetcher for that source type.
type sourceConfig struct {
	PollIntervalSeconds int `json:"poll_interval_seconds"`
}

// PollInterval returns the source's polling interval, or fallback when
// the config carries none or cannot be parsed.
func (s *Source) PollInterval(fallback time.Duration) time.Duration {
	if len(s.Config) == 0 {
		return fallback
	}
	var cfg sourceConfig
	if err := json.Unmarshal(s.Config, &cfg); err != nil {
		return fallback
	}
	if cfg.PollIntervalSeconds <= 0 {
		return fallback
	}
	return time.Duration(cfg.PollIntervalSeconds) * time.Second
}
