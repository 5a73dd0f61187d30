// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

package stage

import (
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

// EmbeddedServerConfig configures the in-process NATS server used for
// single-binary deployments and integration tests.
type EmbeddedServerConfig struct {
	Host     string
	Port     int // -1 picks a random free port
	StoreDir string
}

// EmbeddedServer is a self-contained JetStream instance. Production
// deployments point the stages at an external cluster; development and
// tests run this instead.
type EmbeddedServer struct {
	srv *server.Server
}

// StartEmbeddedServer starts an embedded JetStream server and waits
// until it accepts connections.
func StartEmbeddedServer(cfg EmbeddedServerConfig) (*EmbeddedServer, error) {
	opts := &server.Options{
		ServerName: "sentinel-events",
		Host:       cfg.Host,
		Port:       cfg.Port,
		JetStream:  true,
		StoreDir:   cfg.StoreDir,
		NoLog:      true,
		NoSigs:     true,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create embedded NATS server: %w", err)
	}

	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("embedded NATS server not ready within timeout")
	}

	return &EmbeddedServer{srv: ns}, nil
}

// ClientURL returns the address clients should connect to.
func (s *EmbeddedServer) ClientURL() string { return s.srv.ClientURL() }

// Shutdown stops the server and waits for it to exit.
func (s *EmbeddedServer) Shutdown() {
	s.srv.Shutdown()
	s.srv.WaitForShutdown()
}
