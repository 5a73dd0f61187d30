// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

// The guardian watches delivery-exhaustion advisories across the whole
// pipeline, resolves the dead-lettered message, and fans alerts out to
// the configured notifiers.
package main

import (
	"github.com/gsantopaolo/sentinel-AI/internal/app"
	"github.com/gsantopaolo/sentinel-AI/internal/event"
	"github.com/gsantopaolo/sentinel-AI/internal/guardian"
	"github.com/gsantopaolo/sentinel-AI/internal/logging"
	"github.com/gsantopaolo/sentinel-AI/internal/stage"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("guardian failed")
	}
}

func run() error {
	a, err := app.Bootstrap("guardian")
	if err != nil {
		return err
	}

	notifiers, err := guardian.NewNotifiers(a.Cfg.Guardian.Notifiers)
	if err != nil {
		return err
	}
	resolver := guardian.NewStreamResolver(a.Client.JetStream())

	h := guardian.NewHandler(resolver, notifiers)
	a.AddRuntime("guardian",
		stage.DefaultStreamConfig(event.DLQStream, event.SubjectDLQAdvisories, event.SubjectDLQTerminated),
		stage.ConsumerConfig{
			Durable: event.DurableGuardian,
			// No filter: the DLQ stream carries only the two
			// dead-letter advisory subjects.
			FilterSubject: "",
			AckWait:       a.Cfg.NATS.SourceAckWait,
			// Alerts are fire-and-forget; the handler acks every
			// advisory, so a single delivery attempt is enough.
			MaxDeliver: 1,
		},
		h.Handle)

	return a.Run()
}
