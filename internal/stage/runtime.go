// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

package stage

import (
	"context"
	"errors"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"

	"github.com/gsantopaolo/sentinel-AI/internal/health"
	"github.com/gsantopaolo/sentinel-AI/internal/logging"
	"github.com/gsantopaolo/sentinel-AI/internal/metrics"
)

// Handler processes one delivered message. See the package doc for the
// acknowledgement contract carried by the returned error.
type Handler func(ctx context.Context, msg jetstream.Msg) error

// Outcome labels used in logs and metrics.
const (
	OutcomeSuccess  = "success"
	OutcomeRetry    = "retry"
	OutcomeTerminal = "terminal"
)

// RuntimeConfig wires one stage worker to its stream and consumer.
type RuntimeConfig struct {
	// Name is the stage name, used for logging and metric labels.
	Name string

	Stream   StreamConfig
	Consumer ConsumerConfig

	// NakDelay spaces out redeliveries of retryable failures.
	NakDelay time.Duration

	// HandlerTimeout bounds one handler invocation. Expiry surfaces as
	// a retryable failure through the handler's context.
	HandlerTimeout time.Duration

	// FetchMaxWait bounds one empty fetch cycle. Short so shutdown and
	// readiness heartbeats stay responsive.
	FetchMaxWait time.Duration
}

func (c *RuntimeConfig) setDefaults() {
	if c.NakDelay <= 0 {
		c.NakDelay = 5 * time.Second
	}
	if c.HandlerTimeout <= 0 {
		c.HandlerTimeout = 30 * time.Second
	}
	if c.FetchMaxWait <= 0 {
		c.FetchMaxWait = 2 * time.Second
	}
}

// Runtime is the durable pull-consumer loop every stage runs on. It
// provisions its stream and consumer, fetches messages one at a time,
// and maps handler results onto Ack, NakWithDelay, or Term. It
// implements suture.Service.
type Runtime struct {
	cfg     RuntimeConfig
	client  *Client
	handler Handler
	probe   *health.Probe
	log     zerolog.Logger
}

// NewRuntime creates a stage runtime. The probe may be shared with a
// health server so /readyz reflects subscription state.
func NewRuntime(cfg RuntimeConfig, client *Client, probe *health.Probe, handler Handler) *Runtime {
	cfg.setDefaults()
	return &Runtime{
		cfg:     cfg,
		client:  client,
		handler: handler,
		probe:   probe,
		log:     logging.With().Str("stage", cfg.Name).Logger(),
	}
}

func (r *Runtime) String() string { return r.cfg.Name + "-runtime" }

// Serve provisions the stream and durable consumer, then pulls until
// ctx is cancelled. A permanently closed connection returns an error so
// the supervisor can restart or, past its failure budget, end the
// process.
func (r *Runtime) Serve(ctx context.Context) error {
	js := r.client.JetStream()

	stream, err := EnsureStream(ctx, js, r.cfg.Stream)
	if err != nil {
		return err
	}
	cons, err := EnsureConsumer(ctx, stream, r.cfg.Consumer)
	if err != nil {
		return err
	}

	r.probe.MarkReady()
	defer r.probe.MarkNotReady()
	r.log.Info().
		Str("stream", r.cfg.Stream.Name).
		Str("durable", r.cfg.Consumer.Durable).
		Str("subject", r.cfg.Consumer.FilterSubject).
		Msg("stage subscribed")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-r.client.Closed():
			return err
		default:
		}

		batch, err := cons.Fetch(1, jetstream.FetchMaxWait(r.cfg.FetchMaxWait))
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return ctx.Err()
			}
			r.log.Warn().Err(err).Msg("fetch failed")
			// Fetch fails fast while the connection is down, so pace
			// the retries instead of spinning until reconnect.
			if err := r.pause(ctx); err != nil {
				return err
			}
			continue
		}

		for msg := range batch.Messages() {
			r.dispatch(ctx, msg)
		}
		if err := batch.Error(); err != nil {
			r.log.Warn().Err(err).Msg("fetch batch error")
		}

		r.probe.Beat()
	}
}

// pause waits out one FetchMaxWait after a failed fetch, returning
// early if the context ends or the connection closes for good.
func (r *Runtime) pause(ctx context.Context) error {
	t := time.NewTimer(r.cfg.FetchMaxWait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-r.client.Closed():
		return err
	case <-t.C:
		return nil
	}
}

// dispatch runs the handler on one message and acknowledges according
// to the outcome contract. Ack failures are logged, never retried by
// us: the server redelivers after AckWait and handlers are replay-safe.
func (r *Runtime) dispatch(ctx context.Context, msg jetstream.Msg) {
	start := time.Now()

	hctx, cancel := context.WithTimeout(ctx, r.cfg.HandlerTimeout)
	err := r.handler(hctx, msg)
	cancel()

	switch {
	case err == nil:
		metrics.ObserveHandler(r.cfg.Name, OutcomeSuccess, start)
		if err := msg.Ack(); err != nil {
			r.log.Warn().Err(err).Str("subject", msg.Subject()).Msg("ack failed")
		}

	case IsTerminal(err):
		metrics.ObserveHandler(r.cfg.Name, OutcomeTerminal, start)
		r.log.Error().Err(err).Str("subject", msg.Subject()).Msg("terminal failure, dead-lettering")
		if err := msg.Term(); err != nil {
			r.log.Warn().Err(err).Str("subject", msg.Subject()).Msg("term failed")
		}

	default:
		metrics.ObserveHandler(r.cfg.Name, OutcomeRetry, start)
		deliveries := uint64(0)
		if md, mdErr := msg.Metadata(); mdErr == nil {
			deliveries = md.NumDelivered
		}
		r.log.Warn().Err(err).
			Str("subject", msg.Subject()).
			Uint64("deliveries", deliveries).
			Msg("retryable failure, scheduling redelivery")
		if err := msg.NakWithDelay(r.cfg.NakDelay); err != nil {
			r.log.Warn().Err(err).Str("subject", msg.Subject()).Msg("nak failed")
		}
	}
}

// Drain closes the underlying client connection.
func (r *Runtime) Drain() { r.client.Close() }
