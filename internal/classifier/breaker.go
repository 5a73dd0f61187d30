// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

package classifier

import (
	"context"

	"github.com/sony/gobreaker/v2"

	"github.com/gsantopaolo/sentinel-AI/internal/config"
	"github.com/gsantopaolo/sentinel-AI/internal/logging"
)

// breaker guards the provider with a circuit breaker. While open it
// fails fast with gobreaker.ErrOpenState, which the stage runtime
// treats as retryable, so a struggling provider backs pressure up into
// the stream instead of piling on requests.
type breaker struct {
	cb   *gobreaker.CircuitBreaker[string]
	next Completer
}

func newBreaker(cfg config.ClassifierConfig, next Completer) *breaker {
	settings := gobreaker.Settings{
		Name:    "classifier-" + cfg.Provider,
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("classifier circuit breaker state change")
		},
	}
	return &breaker{
		cb:   gobreaker.NewCircuitBreaker[string](settings),
		next: next,
	}
}

func (b *breaker) Complete(ctx context.Context, prompt string) (string, error) {
	return b.cb.Execute(func() (string, error) {
		return b.next.Complete(ctx, prompt)
	})
}
