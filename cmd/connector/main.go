// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

// The connector consumes poll instructions, fetches source content,
// and publishes the articles as raw events at the pipeline entry.
package main

import (
	"github.com/gsantopaolo/sentinel-AI/internal/app"
	"github.com/gsantopaolo/sentinel-AI/internal/connector"
	"github.com/gsantopaolo/sentinel-AI/internal/event"
	"github.com/gsantopaolo/sentinel-AI/internal/logging"
	"github.com/gsantopaolo/sentinel-AI/internal/stage"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("connector failed")
	}
}

func run() error {
	a, err := app.Bootstrap("connector")
	if err != nil {
		return err
	}

	if err := a.EnsureStream(stage.DefaultStreamConfig(event.RawEventsStream, event.SubjectRawEvents)); err != nil {
		return err
	}

	h := connector.NewHandler(connector.FetchConfig{
		Timeout:   a.Cfg.Connector.FetchTimeout,
		UserAgent: a.Cfg.Connector.UserAgent,
	}, a.Publisher())

	a.AddRuntime("connector",
		stage.DefaultStreamConfig(event.PollSourceStream, event.SubjectPollSource),
		stage.ConsumerConfig{
			Durable:       event.DurableConnector,
			FilterSubject: event.SubjectPollSource,
			AckWait:       a.Cfg.NATS.SourceAckWait,
			MaxDeliver:    a.Cfg.NATS.SchedulerMaxDeliver,
		},
		h.Handle)

	return a.Run()
}
