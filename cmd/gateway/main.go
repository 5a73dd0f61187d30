// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

// The gateway is the HTTP edge: article ingestion, the ranked feed,
// and source management. Writes become events on the durable log.
package main

import (
	"context"
	"time"

	"github.com/gsantopaolo/sentinel-AI/internal/app"
	"github.com/gsantopaolo/sentinel-AI/internal/event"
	"github.com/gsantopaolo/sentinel-AI/internal/gateway"
	"github.com/gsantopaolo/sentinel-AI/internal/logging"
	"github.com/gsantopaolo/sentinel-AI/internal/sources"
	"github.com/gsantopaolo/sentinel-AI/internal/stage"
	"github.com/gsantopaolo/sentinel-AI/internal/store"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("gateway failed")
	}
}

func run() error {
	a, err := app.Bootstrap("gateway")
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

	st, err := store.Open(a.Cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	for _, sc := range []stage.StreamConfig{
		stage.DefaultStreamConfig(event.RawEventsStream, event.SubjectRawEvents),
		stage.DefaultStreamConfig(event.NewSourceStream, event.SubjectNewSource),
		stage.DefaultStreamConfig(event.RemovedSourceStream, event.SubjectRemovedSource),
	} {
		if err := a.EnsureStream(sc); err != nil {
			return err
		}
	}

	a.Tree.Add(gateway.NewServer(a.Cfg.Gateway, st, repo, a.Publisher()))

	// No pull loop in this process, so readiness has no heartbeat.
	a.Probe.StaleAfter = 0
	a.Probe.MarkReady()

	return a.Run()
}
