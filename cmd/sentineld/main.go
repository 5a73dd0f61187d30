// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

// sentineld runs the whole pipeline in one process: gateway, scheduler,
// connector, and every processing stage under a single supervisor,
// sharing one item store and one log connection. The item store is an
// embedded database with an exclusive file lock, so this is the
// supported way to run stages that share item records on one node;
// pair it with nats.embedded for a zero-dependency deployment.
package main

import (
	"context"
	"time"

	"github.com/gsantopaolo/sentinel-AI/internal/app"
	"github.com/gsantopaolo/sentinel-AI/internal/classifier"
	"github.com/gsantopaolo/sentinel-AI/internal/connector"
	"github.com/gsantopaolo/sentinel-AI/internal/event"
	"github.com/gsantopaolo/sentinel-AI/internal/filter"
	"github.com/gsantopaolo/sentinel-AI/internal/gateway"
	"github.com/gsantopaolo/sentinel-AI/internal/guardian"
	"github.com/gsantopaolo/sentinel-AI/internal/inspector"
	"github.com/gsantopaolo/sentinel-AI/internal/logging"
	"github.com/gsantopaolo/sentinel-AI/internal/ranker"
	"github.com/gsantopaolo/sentinel-AI/internal/scheduler"
	"github.com/gsantopaolo/sentinel-AI/internal/sources"
	"github.com/gsantopaolo/sentinel-AI/internal/stage"
	"github.com/gsantopaolo/sentinel-AI/internal/store"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("sentineld failed")
	}
}

func run() error {
	a, err := app.Bootstrap("sentineld")
	if err != nil {
		return err
	}
	cfg := a.Cfg

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := sources.NewRepository(ctx, cfg.Postgres.DSN)
	if err != nil {
		return err
	}
	defer repo.Close()
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	cls, err := classifier.New(cfg.Classifier)
	if err != nil {
		return err
	}
	battery, err := inspector.NewBattery(cfg.Inspector.Detectors, cls)
	if err != nil {
		return err
	}
	notifiers, err := guardian.NewNotifiers(cfg.Guardian.Notifiers)
	if err != nil {
		return err
	}

	pub := a.Publisher()

	for _, sc := range []stage.StreamConfig{
		stage.DefaultStreamConfig(event.RawEventsStream, event.SubjectRawEvents),
		stage.DefaultStreamConfig(event.FilteredEventsStream, event.SubjectFilteredEvents),
		stage.DefaultStreamConfig(event.RankedEventsStream, event.SubjectRankedEvents),
		stage.DefaultStreamConfig(event.NewSourceStream, event.SubjectNewSource),
		stage.DefaultStreamConfig(event.RemovedSourceStream, event.SubjectRemovedSource),
		stage.DefaultStreamConfig(event.PollSourceStream, event.SubjectPollSource),
	} {
		if err := a.EnsureStream(sc); err != nil {
			return err
		}
	}

	poller := scheduler.NewPoller(cfg.Scheduler.DefaultInterval, repo, pub)
	defer poller.Stop()
	if err := poller.Bootstrap(ctx); err != nil {
		return err
	}

	stageConsumer := func(durable, subject string) stage.ConsumerConfig {
		return stage.ConsumerConfig{
			Durable:       durable,
			FilterSubject: subject,
			AckWait:       cfg.NATS.AckWait,
			MaxDeliver:    cfg.NATS.MaxDeliver,
		}
	}
	sourceConsumer := func(durable, subject string) stage.ConsumerConfig {
		return stage.ConsumerConfig{
			Durable:       durable,
			FilterSubject: subject,
			AckWait:       cfg.NATS.SourceAckWait,
			MaxDeliver:    cfg.NATS.SchedulerMaxDeliver,
		}
	}

	a.AddRuntime("filter",
		stage.DefaultStreamConfig(event.RawEventsStream, event.SubjectRawEvents),
		stageConsumer(event.DurableFilter, event.SubjectRawEvents),
		filter.NewHandler(cls, st, pub, filter.NewVectorizer(cfg.Filter.EmbeddingDim)).Handle)

	a.AddRuntime("ranker",
		stage.DefaultStreamConfig(event.FilteredEventsStream, event.SubjectFilteredEvents),
		stageConsumer(event.DurableRanker, event.SubjectFilteredEvents),
		ranker.NewHandler(ranker.NewScorer(cfg.Ranker), st, pub).Handle)

	a.AddRuntime("inspector",
		stage.DefaultStreamConfig(event.FilteredEventsStream, event.SubjectFilteredEvents),
		stageConsumer(event.DurableInspector, event.SubjectFilteredEvents),
		inspector.NewHandler(battery, st).Handle)

	a.AddRuntime("connector",
		stage.DefaultStreamConfig(event.PollSourceStream, event.SubjectPollSource),
		sourceConsumer(event.DurableConnector, event.SubjectPollSource),
		connector.NewHandler(connector.FetchConfig{
			Timeout:   cfg.Connector.FetchTimeout,
			UserAgent: cfg.Connector.UserAgent,
		}, pub).Handle)

	a.AddRuntime("scheduler-new-source",
		stage.DefaultStreamConfig(event.NewSourceStream, event.SubjectNewSource),
		sourceConsumer(event.DurableSchedulerNew, event.SubjectNewSource),
		scheduler.NewNewSourceHandler(poller).Handle)

	a.AddRuntime("scheduler-removed-source",
		stage.DefaultStreamConfig(event.RemovedSourceStream, event.SubjectRemovedSource),
		sourceConsumer(event.DurableSchedulerRemoved, event.SubjectRemovedSource),
		scheduler.NewRemovedSourceHandler(poller).Handle)

	a.AddRuntime("guardian",
		stage.DefaultStreamConfig(event.DLQStream, event.SubjectDLQAdvisories, event.SubjectDLQTerminated),
		stage.ConsumerConfig{
			Durable: event.DurableGuardian,
			// No filter: the DLQ stream carries only the two
			// dead-letter advisory subjects.
			FilterSubject: "",
			AckWait:       cfg.NATS.SourceAckWait,
			MaxDeliver:    1,
		},
		guardian.NewHandler(guardian.NewStreamResolver(a.Client.JetStream()), notifiers).Handle)

	a.Tree.Add(gateway.NewServer(cfg.Gateway, st, repo, pub))

	return a.Run()
}
