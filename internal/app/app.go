// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

// Package app holds the bootstrap shared by every pipeline binary:
// configuration, logging, the event-log connection, the health
// endpoint, and the supervisor tree the process's services run under.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/gsantopaolo/sentinel-AI/internal/config"
	"github.com/gsantopaolo/sentinel-AI/internal/health"
	"github.com/gsantopaolo/sentinel-AI/internal/logging"
	"github.com/gsantopaolo/sentinel-AI/internal/stage"
	"github.com/gsantopaolo/sentinel-AI/internal/supervisor"
)

// App is one bootstrapped pipeline process.
type App struct {
	Name   string
	Cfg    *config.Config
	Client *stage.Client
	Probe  *health.Probe
	Tree   *supervisor.Tree

	embedded *stage.EmbeddedServer
}

// Bootstrap loads configuration, initializes logging, connects to the
// event log (starting an embedded server first when configured), and
// prepares the supervisor tree with the health server already added.
func Bootstrap(name string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().Str("service", name).Msg("starting")

	url := cfg.NATS.URL
	var embedded *stage.EmbeddedServer
	if cfg.NATS.Embedded {
		embedded, err = stage.StartEmbeddedServer(stage.EmbeddedServerConfig{
			Host:     "127.0.0.1",
			Port:     -1,
			StoreDir: filepath.Join(cfg.NATS.StoreDir, name),
		})
		if err != nil {
			return nil, fmt.Errorf("starting embedded event log: %w", err)
		}
		url = embedded.ClientURL()
		logging.Info().Str("url", url).Msg("embedded event log started")
	}

	client, err := stage.Connect(stage.ConnectConfig{
		URL:            url,
		Name:           name,
		ConnectTimeout: cfg.NATS.ConnectTimeout,
		ReconnectWait:  cfg.NATS.ReconnectWait,
		MaxReconnects:  cfg.NATS.MaxReconnects,
	})
	if err != nil {
		if embedded != nil {
			embedded.Shutdown()
		}
		return nil, err
	}

	probe := health.NewProbe(cfg.Probe.StaleAfter)
	probe.ConnCheck = client.Connected
	tree := supervisor.New(name, supervisor.Config{})
	tree.Add(health.NewServer(cfg.Probe.Addr, probe))

	return &App{
		Name:     name,
		Cfg:      cfg,
		Client:   client,
		Probe:    probe,
		Tree:     tree,
		embedded: embedded,
	}, nil
}

// Publisher returns a publisher bound to the process's log connection.
func (a *App) Publisher() *stage.Publisher {
	return stage.NewPublisher(a.Client.JetStream())
}

// AddRuntime builds a stage runtime from the shared consumer tuning and
// registers it with the tree. Handlers receive the raw payload; ack
// disposition is derived from the returned error.
func (a *App) AddRuntime(name string, stream stage.StreamConfig, consumer stage.ConsumerConfig, handle func(ctx context.Context, data []byte) error) {
	rt := stage.NewRuntime(stage.RuntimeConfig{
		Name:           name,
		Stream:         stream,
		Consumer:       consumer,
		NakDelay:       a.Cfg.NATS.NakDelay,
		HandlerTimeout: a.Cfg.NATS.HandlerTimeout,
		FetchMaxWait:   a.Cfg.NATS.FetchMaxWait,
	}, a.Client, a.Probe, func(ctx context.Context, msg jetstream.Msg) error {
		return handle(ctx, msg.Data())
	})
	a.Tree.Add(rt)
}

// EnsureStream provisions a stream this process publishes to. Input
// streams are ensured by their runtimes; output streams must exist
// before the first publish.
func (a *App) EnsureStream(cfg stage.StreamConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_, err := stage.EnsureStream(ctx, a.Client.JetStream(), cfg)
	return err
}

// Run serves the tree until SIGINT or SIGTERM, then tears down the log
// connection and any embedded server. The exit error is nil on a clean
// signal-driven shutdown.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := a.Tree.Serve(ctx)

	a.Client.Close()
	if a.embedded != nil {
		a.embedded.Shutdown()
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Str("service", a.Name).Msg("stopped")
	return nil
}
