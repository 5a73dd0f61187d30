// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

package guardian

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/gsantopaolo/sentinel-AI/internal/config"
	"github.com/gsantopaolo/sentinel-AI/internal/logging"
)

// NewNotifiers builds the notifier fan-out list from config.
func NewNotifiers(cfgs []config.NotifierConfig) ([]Notifier, error) {
	notifiers := make([]Notifier, 0, len(cfgs))
	for _, nc := range cfgs {
		switch nc.Type {
		case "logging":
			notifiers = append(notifiers, &LoggingNotifier{})
		case "webhook":
			notifiers = append(notifiers, NewWebhookNotifier(nc.URL, nc.Timeout))
		default:
			return nil, fmt.Errorf("unknown notifier type: %s", nc.Type)
		}
	}
	return notifiers, nil
}

// LoggingNotifier writes the alert to the structured log. Always
// configured in practice so dead letters are visible even with no
// external sink.
type LoggingNotifier struct{}

func (n *LoggingNotifier) Name() string { return "logging" }

func (n *LoggingNotifier) Notify(_ context.Context, alert *Alert) error {
	logging.Error().
		Str("stream", alert.Stream).
		Str("consumer", alert.Consumer).
		Uint64("stream_seq", alert.StreamSeq).
		Int("deliveries", alert.Deliveries).
		Str("subject", alert.Subject).
		Bytes("payload", alert.Payload).
		Msg("dead-lettered message")
	return nil
}

// webhookPayload is the JSON body posted to the webhook endpoint.
type webhookPayload struct {
	EventType string    `json:"event_type"`
	Alert     *Alert    `json:"alert"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

// WebhookNotifier posts alerts to an HTTP endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a webhook notifier. A zero timeout
// defaults to ten seconds.
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (n *WebhookNotifier) Name() string { return "webhook" }

func (n *WebhookNotifier) Notify(ctx context.Context, alert *Alert) error {
	body, err := json.Marshal(webhookPayload{
		EventType: "dead_letter_alert",
		Alert:     alert,
		Timestamp: time.Now().UTC(),
		Source:    "sentinel-guardian",
	})
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post alert: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook status %d", resp.StatusCode)
	}
	return nil
}
