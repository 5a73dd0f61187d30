// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

package inspector

import (
	"context"
	"fmt"

	"github.com/gsantopaolo/sentinel-AI/internal/event"
	"github.com/gsantopaolo/sentinel-AI/internal/logging"
	"github.com/gsantopaolo/sentinel-AI/internal/metrics"
	"github.com/gsantopaolo/sentinel-AI/internal/stage"
	"github.com/gsantopaolo/sentinel-AI/internal/store"
)

// ItemStore is the slice of the item store the inspector needs.
type ItemStore interface {
	Get(ctx context.Context, id string) (*store.Item, error)
	FlagAnomaly(ctx context.Context, id, reason string) error
}

// Handler consumes filtered.events and flags anomalous items in the
// store. It publishes nothing downstream.
type Handler struct {
	detectors []Detector
	store     ItemStore
}

// NewHandler wires the anomaly stage.
func NewHandler(detectors []Detector, s ItemStore) *Handler {
	return &Handler{detectors: detectors, store: s}
}

// Handle processes one filtered event payload.
//
// A store miss is retryable: this consumer races the filter's upsert
// the same way the ranker does, and acking a miss would silently skip
// inspection for that item forever.
func (h *Handler) Handle(ctx context.Context, data []byte) error {
	var filtered event.FilteredEvent
	if err := event.Unmarshal(data, &filtered); err != nil {
		return stage.Terminal(fmt.Errorf("decode filtered event: %w", err))
	}

	item, err := h.store.Get(ctx, filtered.ID)
	if err != nil {
		return fmt.Errorf("load item %s for inspection: %w", filtered.ID, err)
	}

	for _, d := range h.detectors {
		hit, reason, err := d.Detect(ctx, item)
		if err != nil {
			return fmt.Errorf("detector %s on %s: %w", d.Name(), filtered.ID, err)
		}
		if !hit {
			continue
		}

		if err := h.store.FlagAnomaly(ctx, filtered.ID, reason); err != nil {
			return fmt.Errorf("flag anomaly on %s: %w", filtered.ID, err)
		}
		metrics.AnomaliesFlagged.WithLabelValues(d.Name()).Inc()
		logging.Warn().
			Str("id", filtered.ID).
			Str("detector", d.Name()).
			Str("reason", reason).
			Msg("anomaly flagged")
		return nil
	}

	return nil
}
