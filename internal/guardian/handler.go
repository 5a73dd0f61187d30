// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

package guardian

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/gsantopaolo/sentinel-AI/internal/logging"
	"github.com/gsantopaolo/sentinel-AI/internal/metrics"
)

// advisory covers both dead-letter advisory payloads. MAX_DELIVERIES
// and MSG_TERMINATED share the stream/consumer/stream_seq/deliveries
// shape and differ only in type.
type advisory struct {
	Type       string `json:"type"`
	Stream     string `json:"stream"`
	Consumer   string `json:"consumer"`
	StreamSeq  uint64 `json:"stream_seq"`
	Deliveries int    `json:"deliveries"`
}

const terminatedAdvisoryType = "io.nats.jetstream.advisory.v1.terminated"

func (a *advisory) reason() string {
	if a.Type == terminatedAdvisoryType {
		return ReasonTerminated
	}
	return ReasonMaxDeliveries
}

// MessageResolver fetches the original message behind an advisory.
// Implemented by the JetStream direct-get client.
type MessageResolver interface {
	Resolve(ctx context.Context, stream string, seq uint64) (subject string, payload []byte, err error)
}

// Handler processes dead-letter advisories. It never returns an
// error: the advisory is acked regardless of notifier or resolution
// failures, because redelivering it would only duplicate alerts
// without fixing anything. Duplicate alerts under advisory redelivery
// are accepted.
type Handler struct {
	resolver  MessageResolver
	notifiers []Notifier
}

// NewHandler wires the watchdog.
func NewHandler(resolver MessageResolver, notifiers []Notifier) *Handler {
	return &Handler{resolver: resolver, notifiers: notifiers}
}

// Handle processes one advisory payload.
func (h *Handler) Handle(ctx context.Context, data []byte) error {
	var adv advisory
	if err := json.Unmarshal(data, &adv); err != nil {
		logging.Error().Err(err).Msg("unparsable dead-letter advisory")
		return nil
	}
	if adv.Stream == "" {
		logging.Error().Str("type", adv.Type).Msg("advisory missing stream, ignoring")
		return nil
	}

	alert := &Alert{
		Reason:     adv.reason(),
		Stream:     adv.Stream,
		Consumer:   adv.Consumer,
		StreamSeq:  adv.StreamSeq,
		Deliveries: adv.Deliveries,
		OccurredAt: time.Now().UTC(),
	}

	subject, payload, err := h.resolver.Resolve(ctx, adv.Stream, adv.StreamSeq)
	if err != nil {
		logging.Warn().Err(err).
			Str("stream", adv.Stream).
			Uint64("stream_seq", adv.StreamSeq).
			Msg("could not resolve dead-lettered message, alerting without payload")
	} else {
		alert.Subject = subject
		alert.Payload = payload
	}

	for _, n := range h.notifiers {
		if err := n.Notify(ctx, alert); err != nil {
			metrics.NotifierErrors.WithLabelValues(n.Name()).Inc()
			logging.Error().Err(err).
				Str("notifier", n.Name()).
				Str("stream", adv.Stream).
				Msg("notifier failed")
		}
	}

	metrics.DeadLetterAlerts.WithLabelValues(adv.Stream).Inc()
	return nil
}
