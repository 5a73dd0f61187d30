// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

// Package stage implements the shared runtime every pipeline worker is
// built on: a durable JetStream pull consumer that feeds messages to a
// handler and translates the handler's result into an acknowledgement.
//
// The contract between the runtime and a handler is carried by the
// returned error:
//
//   - nil: the message is acknowledged and never redelivered. This
//     covers successful processing and deliberate drops (an irrelevant
//     article is a success, not a failure).
//   - an error wrapped with Terminal: the message is terminated. The
//     server stops redelivery immediately; no retry budget is spent
//     on a payload that can never succeed.
//   - any other error: the message is negatively acknowledged with a
//     delay and redelivered, up to the consumer's MaxDeliver ceiling.
//     Exhausting the ceiling makes the server emit a MAX_DELIVERIES
//     advisory, which the dead-letter watchdog consumes.
//
// Handlers must be idempotent: redelivery after a crash between
// side effect and acknowledgement is at-least-once by design.
package stage
