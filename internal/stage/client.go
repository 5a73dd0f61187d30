// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

package stage

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/gsantopaolo/sentinel-AI/internal/logging"
)

// ConnectConfig controls how a stage process connects to the event log.
type ConnectConfig struct {
	// URL is the NATS server address.
	URL string

	// Name identifies the client connection in server monitoring.
	Name string

	// ConnectTimeout bounds the initial TCP/handshake attempt.
	ConnectTimeout time.Duration

	// ReconnectWait is the delay between reconnection attempts.
	ReconnectWait time.Duration

	// MaxReconnects bounds reconnection attempts. When the ceiling is
	// exceeded the connection closes permanently and the stage exits
	// with an error rather than running disconnected forever.
	MaxReconnects int
}

// Client bundles the NATS connection and its JetStream context. One
// client is shared by a process's consumer runtime and publishers.
type Client struct {
	nc *nats.Conn
	js jetstream.JetStream

	// closed receives exactly one value when the connection closes
	// permanently (reconnect ceiling exceeded or explicit Close).
	closed chan error
}

// Connect establishes the NATS connection. With RetryOnFailedConnect
// the initial dial may happen in the background, so a stage can start
// before the server does.
func Connect(cfg ConnectConfig) (*Client, error) {
	c := &Client{closed: make(chan error, 1)}

	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.RetryOnFailedConnect(true),
		nats.Timeout(cfg.ConnectTimeout),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logging.Warn().Err(err).Str("client", cfg.Name).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logging.Info().Str("client", cfg.Name).Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			err := nc.LastError()
			if err == nil {
				err = nats.ErrConnectionClosed
			}
			select {
			case c.closed <- fmt.Errorf("nats connection closed: %w", err):
			default:
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", cfg.URL, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	c.nc = nc
	c.js = js
	return c, nil
}

// Conn returns the underlying NATS connection.
func (c *Client) Conn() *nats.Conn { return c.nc }

// JetStream returns the JetStream context.
func (c *Client) JetStream() jetstream.JetStream { return c.js }

// Connected reports whether the connection is currently live.
func (c *Client) Connected() bool { return c.nc.IsConnected() }

// Closed delivers the terminal connection error once the client can no
// longer reconnect.
func (c *Client) Closed() <-chan error { return c.closed }

// Close drains the connection, letting in-flight acks complete.
func (c *Client) Close() {
	if err := c.nc.Drain(); err != nil {
		c.nc.Close()
	}
}
