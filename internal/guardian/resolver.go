// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

package guardian

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// StreamResolver resolves dead-lettered messages with JetStream direct
// get. The pipeline streams are created with AllowDirect for exactly
// this read path.
type StreamResolver struct {
	js jetstream.JetStream
}

// NewStreamResolver creates a resolver on the given JetStream context.
func NewStreamResolver(js jetstream.JetStream) *StreamResolver {
	return &StreamResolver{js: js}
}

// Resolve fetches the message at seq from stream.
func (r *StreamResolver) Resolve(ctx context.Context, stream string, seq uint64) (string, []byte, error) {
	s, err := r.js.Stream(ctx, stream)
	if err != nil {
		return "", nil, fmt.Errorf("get stream %s: %w", stream, err)
	}
	msg, err := s.GetMsg(ctx, seq)
	if err != nil {
		return "", nil, fmt.Errorf("get message %d from %s: %w", seq, stream, err)
	}
	return msg.Subject, msg.Data, nil
}

var _ MessageResolver = (*StreamResolver)(nil)
