// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type crashingService struct {
	starts atomic.Int32
}

func (s *crashingService) String() string { return "crashing-service" }

func (s *crashingService) Serve(ctx context.Context) error {
	if s.starts.Add(1) == 1 {
		return errors.New("transient failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestTreeRestartsFailedService(t *testing.T) {
	tree := New("test", Config{FailureBackoff: 10 * time.Millisecond})
	svc := &crashingService{}
	tree.Add(svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	deadline := time.After(2 * time.Second)
	for svc.starts.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("service restarted %d times, want >= 2", svc.starts.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not stop after cancel")
	}
}

func TestTreeStopsOnContextCancel(t *testing.T) {
	tree := New("test", Config{})
	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)
	cancel()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Fatalf("tree error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not stop after cancel")
	}
}
