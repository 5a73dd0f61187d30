// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

package sources

import (
	"testing"
	"time"
)

func TestPollInterval(t *testing.T) {
	fallback := 5 * time.Minute

	tests := []struct {
		name   string
		config string
		want   time.Duration
	}{
		{"explicit interval", `{"poll_interval_seconds": 60}`, time.Minute},
		{"missing key", `{"url": "https://example.com/feed"}`, fallback},
		{"empty config", ``, fallback},
		{"zero interval", `{"poll_interval_seconds": 0}`, fallback},
		{"negative interval", `{"poll_interval_seconds": -5}`, fallback},
		{"malformed json", `{not json`, fallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &Source{Config: []byte(tt.config)}
			if got := src.PollInterval(fallback); got != tt.want {
				t.Fatalf("PollInterval() = %v, want %v", got, tt.want)
			}
		})
	}
}
