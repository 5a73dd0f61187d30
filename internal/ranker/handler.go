// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

package ranker

import (
	"context"
	"fmt"

	"github.com/gsantopaolo/sentinel-AI/internal/event"
	"github.com/gsantopaolo/sentinel-AI/internal/logging"
	"github.com/gsantopaolo/sentinel-AI/internal/stage"
	"github.com/gsantopaolo/sentinel-AI/internal/store"
)

// ItemStore is the slice of the item store the ranker needs: an
// existence check and a field-scoped score update.
type ItemStore interface {
	Get(ctx context.Context, id string) (*store.Item, error)
	ApplyScores(ctx context.Context, id string, importance, recency, final float64) error
}

// Publisher publishes derived events downstream.
type Publisher interface {
	Publish(ctx context.Context, subject, msgID string, e event.Validatable) error
}

// Handler consumes filtered.events, scores each item, persists the
// scores, and publishes a RankedEvent.
type Handler struct {
	scorer    *Scorer
	store     ItemStore
	publisher Publisher
}

// NewHandler wires the scoring stage.
func NewHandler(scorer *Scorer, s ItemStore, p Publisher) *Handler {
	return &Handler{scorer: scorer, store: s, publisher: p}
}

// Handle processes one filtered event payload.
//
// A store miss is retryable, not terminal: the filter's upsert and
// this stage race through independent consumers, so the item may
// simply not be visible yet. Redelivery picks it up once it lands.
func (h *Handler) Handle(ctx context.Context, data []byte) error {
	var filtered event.FilteredEvent
	if err := event.Unmarshal(data, &filtered); err != nil {
		return stage.Terminal(fmt.Errorf("decode filtered event: %w", err))
	}

	importance := h.scorer.Importance(filtered.Categories)
	recency := h.scorer.Recency(filtered.Timestamp)
	final := h.scorer.Final(importance, recency)

	if _, err := h.store.Get(ctx, filtered.ID); err != nil {
		return fmt.Errorf("load item %s for scoring: %w", filtered.ID, err)
	}
	if err := h.store.ApplyScores(ctx, filtered.ID, importance, recency, final); err != nil {
		return fmt.Errorf("persist scores for %s: %w", filtered.ID, err)
	}

	ranked := &event.RankedEvent{
		ID:              filtered.ID,
		Title:           filtered.Title,
		Timestamp:       filtered.Timestamp,
		Source:          filtered.Source,
		Categories:      filtered.Categories,
		IsRelevant:      filtered.IsRelevant,
		ImportanceScore: importance,
		RecencyScore:    recency,
		FinalScore:      final,
	}
	if err := h.publisher.Publish(ctx, event.SubjectRankedEvents, filtered.ID, ranked); err != nil {
		return fmt.Errorf("publish ranked event %s: %w", filtered.ID, err)
	}

	logging.Debug().
		Str("id", filtered.ID).
		Float64("importance", importance).
		Float64("recency", recency).
		Float64("final", final).
		Msg("event scored")
	return nil
}
