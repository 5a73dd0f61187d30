// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

package stage

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/gsantopaolo/sentinel-AI/internal/event"
	"github.com/gsantopaolo/sentinel-AI/internal/metrics"
)

// Publisher writes validated events to the durable log. Every publish
// carries a Nats-Msg-Id so republishing the same event after a crash
// or redelivery is absorbed by the stream's deduplication window.
type Publisher struct {
	js jetstream.JetStream
}

// NewPublisher creates a publisher on the given JetStream context.
func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js}
}

// Publish validates, serializes, and synchronously publishes e to
// subject, waiting for the stream's ack. msgID should be the event's
// stable identity so retries deduplicate.
func (p *Publisher) Publish(ctx context.Context, subject, msgID string, e event.Validatable) error {
	data, err := event.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event for %s: %w", subject, err)
	}

	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header:  nats.Header{},
	}
	if msgID != "" {
		msg.Header.Set("Nats-Msg-Id", msgID)
	}

	if _, err := p.js.PublishMsg(ctx, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	metrics.EventsPublished.WithLabelValues(subject).Inc()
	return nil
}
