// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

package filter

import (
	"context"
	"fmt"

	"github.com/gsantopaolo/sentinel-AI/internal/classifier"
	"github.com/gsantopaolo/sentinel-AI/internal/event"
	"github.com/gsantopaolo/sentinel-AI/internal/logging"
	"github.com/gsantopaolo/sentinel-AI/internal/metrics"
	"github.com/gsantopaolo/sentinel-AI/internal/stage"
	"github.com/gsantopaolo/sentinel-AI/internal/store"
)

// ItemStore is the slice of the item store the filter writes to.
type ItemStore interface {
	Upsert(ctx context.Context, item *store.Item) error
}

// Publisher publishes derived events downstream.
type Publisher interface {
	Publish(ctx context.Context, subject, msgID string, e event.Validatable) error
}

// Handler consumes raw.events and republishes accepted articles on
// filtered.events after classification, embedding, and the item's
// first durable write.
type Handler struct {
	classifier classifier.Classifier
	store      ItemStore
	publisher  Publisher
	vectorizer *Vectorizer
}

// NewHandler wires the relevance stage.
func NewHandler(c classifier.Classifier, s ItemStore, p Publisher, v *Vectorizer) *Handler {
	return &Handler{classifier: c, store: s, publisher: p, vectorizer: v}
}

// Handle processes one raw event payload.
//
// Ordering is deliberate: the store upsert happens before the publish,
// so a FilteredEvent on the wire implies its item record exists. The
// upsert is keyed by id, making redelivery replay the identical write.
func (h *Handler) Handle(ctx context.Context, data []byte) error {
	var raw event.RawEvent
	if err := event.Unmarshal(data, &raw); err != nil {
		return stage.Terminal(fmt.Errorf("decode raw event: %w", err))
	}

	verdict, rationale, err := h.classifier.Relevance(ctx, raw.Content)
	if err != nil {
		return fmt.Errorf("classify relevance for %s: %w", raw.ID, err)
	}

	if verdict == classifier.Irrelevant {
		logging.Info().
			Str("id", raw.ID).
			Str("title", raw.Title).
			Str("rationale", rationale).
			Msg("dropping irrelevant event")
		metrics.ItemsDropped.Inc()
		return nil
	}

	categories, err := h.classifier.Categories(ctx, raw.Content)
	if err != nil {
		return fmt.Errorf("categorize %s: %w", raw.ID, err)
	}

	item := &store.Item{
		ID:         raw.ID,
		Title:      raw.Title,
		Content:    raw.Content,
		Timestamp:  raw.Timestamp,
		Source:     raw.Source,
		Relevance:  string(verdict),
		Categories: categories,
		Embedding:  h.vectorizer.Vectorize(raw.Content),
	}
	if err := h.store.Upsert(ctx, item); err != nil {
		return fmt.Errorf("persist item %s: %w", raw.ID, err)
	}

	filtered := &event.FilteredEvent{
		ID:         raw.ID,
		Title:      raw.Title,
		Timestamp:  raw.Timestamp,
		Source:     raw.Source,
		Categories: categories,
		IsRelevant: true,
	}
	if err := h.publisher.Publish(ctx, event.SubjectFilteredEvents, raw.ID, filtered); err != nil {
		return fmt.Errorf("publish filtered event %s: %w", raw.ID, err)
	}

	logging.Debug().
		Str("id", raw.ID).
		Str("relevance", string(verdict)).
		Strs("categories", categories).
		Msg("event accepted")
	return nil
}
