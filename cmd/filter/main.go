// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

// The filter stage consumes raw events, classifies relevance and
// categories through the LLM, persists accepted items, and publishes
// them as filtered events.
package main

import (
	"github.com/gsantopaolo/sentinel-AI/internal/app"
	"github.com/gsantopaolo/sentinel-AI/internal/classifier"
	"github.com/gsantopaolo/sentinel-AI/internal/event"
	"github.com/gsantopaolo/sentinel-AI/internal/filter"
	"github.com/gsantopaolo/sentinel-AI/internal/logging"
	"github.com/gsantopaolo/sentinel-AI/internal/stage"
	"github.com/gsantopaolo/sentinel-AI/internal/store"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("filter failed")
	}
}

func run() error {
	a, err := app.Bootstrap("filter")
	if err != nil {
		return err
	}

	cls, err := classifier.New(a.Cfg.Classifier)
	if err != nil {
		return err
	}
	st, err := store.Open(a.Cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := a.EnsureStream(stage.DefaultStreamConfig(event.FilteredEventsStream, event.SubjectFilteredEvents)); err != nil {
		return err
	}

	h := filter.NewHandler(cls, st, a.Publisher(), filter.NewVectorizer(a.Cfg.Filter.EmbeddingDim))
	a.AddRuntime("filter",
		stage.DefaultStreamConfig(event.RawEventsStream, event.SubjectRawEvents),
		stage.ConsumerConfig{
			Durable:       event.DurableFilter,
			FilterSubject: event.SubjectRawEvents,
			AckWait:       a.Cfg.NATS.AckWait,
			MaxDeliver:    a.Cfg.NATS.MaxDeliver,
		},
		h.Handle)

	return a.Run()
}
