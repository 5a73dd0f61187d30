// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

// The ranker stage consumes filtered events, computes importance,
// recency, and final scores, persists them on the item record, and
// publishes ranked events.
package main

import (
	"github.com/gsantopaolo/sentinel-AI/internal/app"
	"github.com/gsantopaolo/sentinel-AI/internal/event"
	"github.com/gsantopaolo/sentinel-AI/internal/logging"
	"github.com/gsantopaolo/sentinel-AI/internal/ranker"
	"github.com/gsantopaolo/sentinel-AI/internal/stage"
	"github.com/gsantopaolo/sentinel-AI/internal/store"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("ranker failed")
	}
}

func run() error {
	a, err := app.Bootstrap("ranker")
	if err != nil {
		return err
	}

	st, err := store.Open(a.Cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := a.EnsureStream(stage.DefaultStreamConfig(event.RankedEventsStream, event.SubjectRankedEvents)); err != nil {
		return err
	}

	h := ranker.NewHandler(ranker.NewScorer(a.Cfg.Ranker), st, a.Publisher())
	a.AddRuntime("ranker",
		stage.DefaultStreamConfig(event.FilteredEventsStream, event.SubjectFilteredEvents),
		stage.ConsumerConfig{
			Durable:       event.DurableRanker,
			FilterSubject: event.SubjectFilteredEvents,
			AckWait:       a.Cfg.NATS.AckWait,
			MaxDeliver:    a.Cfg.NATS.MaxDeliver,
		},
		h.Handle)

	return a.Run()
}
