// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

// The scheduler owns one poll job per active source and emits poll
// instructions for the connector. Source lifecycle events adjust the
// job set at runtime; the registry seeds it at startup.
package main

import (
	"context"
	"time"

	"github.com/gsantopaolo/sentinel-AI/internal/app"
	"github.com/gsantopaolo/sentinel-AI/internal/event"
	"github.com/gsantopaolo/sentinel-AI/internal/logging"
	"github.com/gsantopaolo/sentinel-AI/internal/scheduler"
	"github.com/gsantopaolo/sentinel-AI/internal/sources"
	"github.com/gsantopaolo/sentinel-AI/internal/stage"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("scheduler failed")
	}
}

func run() error {
	a, err := app.Bootstrap("scheduler")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := sources.NewRepository(ctx, a.Cfg.Postgres.DSN)
	if err != nil {
		return err
	}
	defer repo.Close()
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	if err := a.EnsureStream(stage.DefaultStreamConfig(event.PollSourceStream, event.SubjectPollSource)); err != nil {
		return err
	}

	poller := scheduler.NewPoller(a.Cfg.Scheduler.DefaultInterval, repo, a.Publisher())
	defer poller.Stop()
	if err := poller.Bootstrap(ctx); err != nil {
		return err
	}

	a.AddRuntime("scheduler-new-source",
		stage.DefaultStreamConfig(event.NewSourceStream, event.SubjectNewSource),
		stage.ConsumerConfig{
			Durable:       event.DurableSchedulerNew,
			FilterSubject: event.SubjectNewSource,
			AckWait:       a.Cfg.NATS.SourceAckWait,
			MaxDeliver:    a.Cfg.NATS.SchedulerMaxDeliver,
		},
		scheduler.NewNewSourceHandler(poller).Handle)

	a.AddRuntime("scheduler-removed-source",
		stage.DefaultStreamConfig(event.RemovedSourceStream, event.SubjectRemovedSource),
		stage.ConsumerConfig{
			Durable:       event.DurableSchedulerRemoved,
			FilterSubject: event.SubjectRemovedSource,
			AckWait:       a.Cfg.NATS.SourceAckWait,
			MaxDeliver:    a.Cfg.NATS.SchedulerMaxDeliver,
		},
		scheduler.NewRemovedSourceHandler(poller).Handle)

	return a.Run()
}
