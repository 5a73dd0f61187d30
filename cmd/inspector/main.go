// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

// The inspector stage consumes filtered events and runs the anomaly
// detector battery over the stored item, flagging the first hit.
package main

import (
	"github.com/gsantopaolo/sentinel-AI/internal/app"
	"github.com/gsantopaolo/sentinel-AI/internal/classifier"
	"github.com/gsantopaolo/sentinel-AI/internal/event"
	"github.com/gsantopaolo/sentinel-AI/internal/inspector"
	"github.com/gsantopaolo/sentinel-AI/internal/logging"
	"github.com/gsantopaolo/sentinel-AI/internal/stage"
	"github.com/gsantopaolo/sentinel-AI/internal/store"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("inspector failed")
	}
}

func run() error {
	a, err := app.Bootstrap("inspector")
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

	battery, err := inspector.NewBattery(a.Cfg.Inspector.Detectors, cls)
	if err != nil {
		return err
	}

	h := inspector.NewHandler(battery, st)
	a.AddRuntime("inspector",
		stage.DefaultStreamConfig(event.FilteredEventsStream, event.SubjectFilteredEvents),
		stage.ConsumerConfig{
			Durable:       event.DurableInspector,
			FilterSubject: event.SubjectFilteredEvents,
			AckWait:       a.Cfg.NATS.AckWait,
			MaxDeliver:    a.Cfg.NATS.MaxDeliver,
		},
		h.Handle)

	return a.Run()
}
