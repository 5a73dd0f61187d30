// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

// Package health provides the liveness/readiness surface every pipeline
// service exposes. A Probe tracks whether the stage's subscription is
// established and whether its pull loop is still making progress; the
// Server publishes that state over HTTP for the process orchestrator.
package health

import (
	"sync/atomic"
	"time"
)

// Probe reports stage readiness. It becomes ready once the durable
// subscription is established and the log connection is live, and it
// turns unready when the pull loop stops beating for longer than
// StaleAfter or the connection drops.
type Probe struct {
	// StaleAfter bounds how long the pull loop may go silent before the
	// stage is reported unready. Zero disables staleness checking.
	StaleAfter time.Duration

	// ConnCheck, when set, is consulted on every Healthy call so a
	// dropped log connection turns the stage unready immediately
	// instead of waiting out the staleness window. Set before the
	// probe is shared; reads are not synchronized.
	ConnCheck func() bool

	ready    atomic.Bool
	lastBeat atomic.Int64 // unix nanos of the most recent Beat
}

// NewProbe creates a probe with the given staleness window.
func NewProbe(staleAfter time.Duration) *Probe {
	p := &Probe{StaleAfter: staleAfter}
	p.lastBeat.Store(time.Now().UnixNano())
	return p
}

// MarkReady records that the subscription is established.
func (p *Probe) MarkReady() {
	p.Beat()
	p.ready.Store(true)
}

// MarkNotReady records a lost connection or torn-down subscription.
func (p *Probe) MarkNotReady() {
	p.ready.Store(false)
}

// Beat records pull-loop progress. Called on every fetch cycle,
// including empty ones.
func (p *Probe) Beat() {
	p.lastBeat.Store(time.Now().UnixNano())
}

// Healthy reports whether the stage should be considered ready.
func (p *Probe) Healthy() bool {
	if !p.ready.Load() {
		return false
	}
	if p.ConnCheck != nil && !p.ConnCheck() {
		return false
	}
	if p.StaleAfter <= 0 {
		return true
	}
	last := time.Unix(0, p.lastBeat.Load())
	return time.Since(last) < p.StaleAfter
}
