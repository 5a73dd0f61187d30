// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

package scheduler

import (
	"context"

	"github.com/gsantopaolo/sentinel-AI/internal/event"
	"github.com/gsantopaolo/sentinel-AI/internal/logging"
	"github.com/gsantopaolo/sentinel-AI/internal/stage"
)

// NewSourceHandler reacts to new.source events by scheduling the
// announced source on the poller.
type NewSourceHandler struct {
	poller *Poller
}

// NewNewSourceHandler wires the poller into the new.source consumer.
func NewNewSourceHandler(p *Poller) *NewSourceHandler {
	return &NewSourceHandler{poller: p}
}

// Handle schedules the source described by the event. A payload that
// cannot be decoded can never succeed and is dead-lettered.
func (h *NewSourceHandler) Handle(ctx context.Context, data []byte) error {
	var ev event.SourceEvent
	if err := event.Unmarshal(data, &ev); err != nil {
		return stage.Terminalf("decoding source event: %v", err)
	}
	h.poller.Schedule(sourceFromEvent(&ev))
	return nil
}

// RemovedSourceHandler reacts to removed.source events by stopping the
// poll job for that source.
type RemovedSourceHandler struct {
	poller *Poller
}

// NewRemovedSourceHandler wires the poller into the removed.source consumer.
func NewRemovedSourceHandler(p *Poller) *RemovedSourceHandler {
	return &RemovedSourceHandler{poller: p}
}

// Handle unschedules the source named by the event. Unknown ids are a
// no-op; the job may already be gone.
func (h *RemovedSourceHandler) Handle(ctx context.Context, data []byte) error {
	var ev event.SourceEvent
	if err := event.Unmarshal(data, &ev); err != nil {
		return stage.Terminalf("decoding source event: %v", err)
	}
	h.poller.Unschedule(ev.ID)
	logging.Debug().Int64("source_id", ev.ID).Msg("source removal processed")
	return nil
}
