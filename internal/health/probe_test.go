// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

package health

import (
	"testing"
	"time"
)

func TestProbeLifecycle(t *testing.T) {
	p := NewProbe(time.Minute)

	if p.Healthy() {
		t.Fatal("new probe must not be ready before MarkReady")
	}

	p.MarkReady()
	if !p.Healthy() {
		t.Fatal("probe must be ready after MarkReady")
	}

	p.MarkNotReady()
	if p.Healthy() {
		t.Fatal("probe must not be ready after MarkNotReady")
	}
}

func TestProbeStaleness(t *testing.T) {
	p := NewProbe(10 * time.Millisecond)
	p.MarkReady()

	time.Sleep(30 * time.Millisecond)
	if p.Healthy() {
		t.Fatal("probe must go unready once the pull loop stops beating")
	}

	p.Beat()
	if !p.Healthy() {
		t.Fatal("probe must recover after a fresh beat")
	}
}

func TestProbeConnCheckGatesReadiness(t *testing.T) {
	connected := true
	p := NewProbe(time.Minute)
	p.ConnCheck = func() bool { return connected }
	p.MarkReady()

	if !p.Healthy() {
		t.Fatal("probe must be ready while connected")
	}

	connected = false
	if p.Healthy() {
		t.Fatal("probe must go unready the moment the connection drops")
	}

	connected = true
	if !p.Healthy() {
		t.Fatal("probe must recover when the connection returns")
	}
}

func TestProbeZeroStaleAfterDisablesCheck(t *testing.T) {
	p := NewProbe(0)
	p.MarkReady()

	time.Sleep(20 * time.Millisecond)
	if !p.Healthy() {
		t.Fatal("zero StaleAfter must disable staleness checking")
	}
}
