// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

package connector

import (
	"context"
	"fmt"

	"github.com/gsantopaolo/sentinel-AI/internal/event"
	"github.com/gsantopaolo/sentinel-AI/internal/logging"
	"github.com/gsantopaolo/sentinel-AI/internal/sources"
	"github.com/gsantopaolo/sentinel-AI/internal/stage"
)

// Publisher publishes fetched articles to the event log.
type Publisher interface {
	Publish(ctx context.Context, subject, msgID string, e event.Validatable) error
}

// Handler consumes poll.source instructions and turns them into raw
// events on the entry subject.
type Handler struct {
	fetchCfg  FetchConfig
	publisher Publisher

	// newFetcher is swappable in tests.
	newFetcher func(sourceType string, cfg FetchConfig) (Fetcher, error)
}

// NewHandler builds the connector handler.
func NewHandler(fetchCfg FetchConfig, publisher Publisher) *Handler {
	return &Handler{
		fetchCfg:   fetchCfg,
		publisher:  publisher,
		newFetcher: NewFetcher,
	}
}

// Handle fetches one source and publishes every article it yielded.
// Fetch failures are retryable; an unknown source type or undecodable
// instruction is dead-lettered. Publishing uses the article id as the
// message id; http fetchers derive that id from the feed item, so a
// redelivered poll or an unchanged feed republishes under the same ids
// and the stream's duplicate window absorbs them. Synthetic articles
// are new content each poll and carry fresh ids.
func (h *Handler) Handle(ctx context.Context, data []byte) error {
	var poll event.PollSource
	if err := event.Unmarshal(data, &poll); err != nil {
		return stage.Terminalf("decoding poll instruction: %v", err)
	}
	if !poll.IsActive {
		logging.Debug().Int64("source_id", poll.ID).Msg("skipping poll for inactive source")
		return nil
	}

	src := &sources.Source{
		ID:       poll.ID,
		Name:     poll.Name,
		Type:     poll.Type,
		Config:   poll.Config,
		IsActive: poll.IsActive,
	}
	fetcher, err := h.newFetcher(src.Type, h.fetchCfg)
	if err != nil {
		return stage.Terminal(err)
	}

	articles, err := fetcher.Fetch(ctx, src)
	if err != nil {
		return fmt.Errorf("fetching source %d (%s): %w", src.ID, src.Name, err)
	}

	for _, article := range articles {
		if err := h.publisher.Publish(ctx, event.SubjectRawEvents, article.ID, article); err != nil {
			return fmt.Errorf("publishing article %s: %w", article.ID, err)
		}
	}
	logging.Info().
		Int64("source_id", src.ID).
		Str("source", src.Name).
		Int("articles", len(articles)).
		Msg("source polled")
	return nil
}
