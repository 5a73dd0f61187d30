// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

// Package store persists enriched news items in BadgerDB. The filter
// stage creates items; the ranker and inspector stages update disjoint
// field groups of the same item, so the store exposes field-scoped
// partial updates that run inside one transaction instead of a full
// read-modify-write at the call site.
package store

import (
	"time"
)

// Item is the durable record for one news event after enrichment.
type Item struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`

	// Written by the filter stage.
	Relevance  string    `json:"relevance"`
	Categories []string  `json:"categories"`
	Embedding  []float32 `json:"embedding,omitempty"`

	// Written by the ranker stage via ApplyScores.
	ImportanceScore float64 `json:"importance_score"`
	RecencyScore    float64 `json:"recency_score"`
	FinalScore      float64 `json:"final_score"`
	Ranked          bool    `json:"ranked"`

	// Written by the inspector stage via FlagAnomaly.
	Anomalous     bool   `json:"anomalous"`
	AnomalyReason string `json:"anomaly_reason,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}
