// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

// Package scheduler turns the source registry into a stream of poll
// instructions. Each active source gets its own ticker job; source
// lifecycle events on the log start and stop jobs at runtime.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gsantopaolo/sentinel-AI/internal/event"
	"github.com/gsantopaolo/sentinel-AI/internal/logging"
	"github.com/gsantopaolo/sentinel-AI/internal/metrics"
	"github.com/gsantopaolo/sentinel-AI/internal/sources"
)

// SourceReader is the slice of the source registry the poller needs.
type SourceReader interface {
	GetByID(ctx context.Context, id int64) (*sources.Source, error)
	ListActive(ctx context.Context) ([]*sources.Source, error)
}

// Publisher publishes poll instructions to the event log.
type Publisher interface {
	Publish(ctx context.Context, subject, msgID string, e event.Validatable) error
}

type job struct {
	cancel   context.CancelFunc
	interval time.Duration
}

// Poller owns one ticker goroutine per active source. Scheduling the
// same source again replaces its job, so interval changes take effect
// on the next lifecycle event.
type Poller struct {
	defaultInterval time.Duration
	repo            SourceReader
	publisher       Publisher

	mu      sync.Mutex
	jobs    map[int64]*job
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewPoller creates a poller. Jobs run until Stop or until their source
// disappears from the registry.
func NewPoller(defaultInterval time.Duration, repo SourceReader, publisher Publisher) *Poller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		defaultInterval: defaultInterval,
		repo:            repo,
		publisher:       publisher,
		jobs:            make(map[int64]*job),
		baseCtx:         ctx,
		cancel:          cancel,
	}
}

// Bootstrap schedules a job for every source that is active at startup.
// Lifecycle events that raced the listing are idempotent against it.
func (p *Poller) Bootstrap(ctx context.Context) error {
	active, err := p.repo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("listing active sources: %w", err)
	}
	for _, src := range active {
		p.Schedule(src)
	}
	logging.Info().Int("sources", len(active)).Msg("scheduler bootstrapped")
	return nil
}

// Schedule starts (or restarts) the poll job for src. Inactive sources
// are unscheduled instead.
func (p *Poller) Schedule(src *sources.Source) {
	if !src.IsActive {
		p.Unschedule(src.ID)
		return
	}
	interval := src.PollInterval(p.defaultInterval)

	p.mu.Lock()
	defer p.mu.Unlock()
	if old, ok := p.jobs[src.ID]; ok {
		old.cancel()
	}
	ctx, cancel := context.WithCancel(p.baseCtx)
	p.jobs[src.ID] = &job{cancel: cancel, interval: interval}

	p.wg.Add(1)
	go p.run(ctx, src.ID, src.Name, interval)

	logging.Info().
		Int64("source_id", src.ID).
		Str("source", src.Name).
		Dur("interval", interval).
		Msg("poll job scheduled")
}

// Unschedule stops the poll job for a source id, if one exists.
func (p *Poller) Unschedule(id int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if j, ok := p.jobs[id]; ok {
		j.cancel()
		delete(p.jobs, id)
		logging.Info().Int64("source_id", id).Msg("poll job unscheduled")
	}
}

// Jobs returns the ids of currently scheduled sources.
func (p *Poller) Jobs() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]int64, 0, len(p.jobs))
	for id := range p.jobs {
		ids = append(ids, id)
	}
	return ids
}

// Stop cancels every job and waits for the goroutines to exit.
func (p *Poller) Stop() {
	p.cancel()
	p.wg.Wait()
}

func sourceFromEvent(ev *event.SourceEvent) *sources.Source {
	return &sources.Source{
		ID:       ev.ID,
		Name:     ev.Name,
		Type:     ev.Type,
		Config:   ev.Config,
		IsActive: ev.IsActive,
	}
}

func (p *Poller) run(ctx context.Context, id int64, name string, interval time.Duration) {
	defer p.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx, id, name)
		}
	}
}

// tick re-reads the source so each poll carries current config and a
// deactivation observed between lifecycle events still stops the job.
func (p *Poller) tick(ctx context.Context, id int64, name string) {
	src, err := p.repo.GetByID(ctx, id)
	if errors.Is(err, sources.ErrSourceNotFound) {
		logging.Warn().Int64("source_id", id).Msg("source gone, stopping poll job")
		p.Unschedule(id)
		return
	}
	if err != nil {
		logging.Error().Err(err).Int64("source_id", id).Msg("fetching source for poll")
		return
	}
	if !src.IsActive {
		p.Unschedule(id)
		return
	}

	poll := &event.PollSource{
		ID:       src.ID,
		Name:     src.Name,
		Type:     src.Type,
		Config:   src.Config,
		IsActive: src.IsActive,
	}
	// Every tick is a distinct instruction, so the msg id must be
	// unique or the stream's duplicate window would swallow repolls.
	msgID := fmt.Sprintf("poll-%d-%s", src.ID, uuid.New().String())
	if err := p.publisher.Publish(ctx, event.SubjectPollSource, msgID, poll); err != nil {
		logging.Error().Err(err).Int64("source_id", id).Msg("publishing poll instruction")
		return
	}
	metrics.PollTicks.WithLabelValues(name).Inc()
	logging.Debug().Int64("source_id", id).Str("source", name).Msg("poll instruction published")
}
