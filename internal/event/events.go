// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

// Package event defines the payload contracts flowing through the durable
// event log, one Go struct per subject. Payload schemas are versioned by
// contract per subject, not by envelope metadata; the wire format is JSON.
package event

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// RawEvent is the entry-subject payload: one externally supplied item
// before any classification or enrichment.
type RawEvent struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

// NewRawEvent creates a raw event with a fresh id and UTC timestamp.
func NewRawEvent(title, content, source string) *RawEvent {
	return &RawEvent{
		ID:        uuid.New().String(),
		Title:     title,
		Content:   content,
		Timestamp: time.Now().UTC(),
		Source:    source,
	}
}

// Validate checks required fields.
func (e *RawEvent) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("raw event: id is required")
	}
	if e.Title == "" {
		return fmt.Errorf("raw event %s: title is required", e.ID)
	}
	if e.Timestamp.IsZero() {
		return fmt.Errorf("raw event %s: timestamp is required", e.ID)
	}
	return nil
}

// FilteredEvent is the enriched-subject payload: an item that passed the
// relevance filter, carrying the classification the filter produced.
// The item record itself is already durable by the time this is published.
type FilteredEvent struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Timestamp  time.Time `json:"timestamp"`
	Source     string    `json:"source"`
	Categories []string  `json:"categories"`
	IsRelevant bool      `json:"is_relevant"`
}

// Validate checks required fields. An empty category list is valid.
func (e *FilteredEvent) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("filtered event: id is required")
	}
	if e.Timestamp.IsZero() {
		return fmt.Errorf("filtered event %s: timestamp is required", e.ID)
	}
	return nil
}

// RankedEvent is the scored-subject payload consumed by the external
// API/UI layer.
type RankedEvent struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Timestamp       time.Time `json:"timestamp"`
	Source          string    `json:"source"`
	Categories      []string  `json:"categories"`
	IsRelevant      bool      `json:"is_relevant"`
	ImportanceScore float64   `json:"importance_score"`
	RecencyScore    float64   `json:"recency_score"`
	FinalScore      float64   `json:"final_score"`
}

// Validate checks required fields.
func (e *RankedEvent) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("ranked event: id is required")
	}
	return nil
}

// SourceEvent is the payload for new.source and removed.source: the
// source-management API announces descriptor lifecycle changes keyed by
// source id. Config carries the source-type specific fetch settings.
type SourceEvent struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	Config   json.RawMessage `json:"config,omitempty"`
	IsActive bool            `json:"is_active"`
}

// Validate checks required fields.
func (e *SourceEvent) Validate() error {
	if e.ID <= 0 {
		return fmt.Errorf("source event: id is required")
	}
	if e.Name == "" {
		return fmt.Errorf("source event %d: name is required", e.ID)
	}
	return nil
}

// PollSource is the poll-instruction payload: the scheduler telling the
// connector to fetch one source now.
type PollSource struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	Config   json.RawMessage `json:"config,omitempty"`
	IsActive bool            `json:"is_active"`
}

// Validate checks required fields.
func (e *PollSource) Validate() error {
	if e.ID <= 0 {
		return fmt.Errorf("poll source: id is required")
	}
	if e.Name == "" {
		return fmt.Errorf("poll source %d: name is required", e.ID)
	}
	return nil
}
