// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

// Package guardian implements the dead-letter watchdog. One consumer
// captures the server's MAX_DELIVERIES and MSG_TERMINATED advisories
// for every stage, resolves the dead message from its origin stream,
// and fans the alert out to the configured notifiers.
package guardian

import (
	"context"
	"time"
)

// Dead-letter reasons carried on alerts.
const (
	ReasonMaxDeliveries = "max_deliveries"
	ReasonTerminated    = "terminated"
)

// Alert describes one dead-lettered message.
type Alert struct {
	// Reason says how the message died: retries exhausted
	// (max_deliveries) or terminated outright by its handler.
	Reason string `json:"reason"`

	// Stream and Consumer identify where the message failed.
	Stream   string `json:"stream"`
	Consumer string `json:"consumer"`

	// StreamSeq is the sequence of the poisoned message in Stream.
	StreamSeq uint64 `json:"stream_seq"`

	// Deliveries is how many times the message was delivered before
	// the ceiling tripped.
	Deliveries int `json:"deliveries"`

	// Subject and Payload are filled when the original message could
	// be resolved; Payload is empty when resolution failed.
	Subject string `json:"subject,omitempty"`
	Payload []byte `json:"payload,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}

// Notifier delivers one alert to one sink. Errors are logged and
// counted by the caller, never propagated into the ack decision.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, alert *Alert) error
}
