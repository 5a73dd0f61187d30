// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gsantopaolo/sentinel-AI/internal/event"
	"github.com/gsantopaolo/sentinel-AI/internal/sources"
	"github.com/gsantopaolo/sentinel-AI/internal/stage"
)

type fakeRepo struct {
	mu   sync.Mutex
	srcs map[int64]*sources.Source
}

func newFakeRepo(srcs ...*sources.Source) *fakeRepo {
	r := &fakeRepo{srcs: make(map[int64]*sources.Source)}
	for _, s := range srcs {
		r.srcs[s.ID] = s
	}
	return r
}

func (r *fakeRepo) GetByID(_ context.Context, id int64) (*sources.Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	src, ok := r.srcs[id]
	if !ok {
		return nil, sources.ErrSourceNotFound
	}
	return src, nil
}

func (r *fakeRepo) ListActive(context.Context) ([]*sources.Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*sources.Source
	for _, s := range r.srcs {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeRepo) remove(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.srcs, id)
}

type capturedPublish struct {
	subject string
	msgID   string
	payload event.Validatable
}

type fakePublisher struct {
	mu        sync.Mutex
	published []capturedPublish
}

func (p *fakePublisher) Publish(_ context.Context, subject, msgID string, e event.Validatable) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, capturedPublish{subject, msgID, e})
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

func (p *fakePublisher) last() capturedPublish {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.published[len(p.published)-1]
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func activeSource(id int64, name, config string) *sources.Source {
	return &sources.Source{
		ID:       id,
		Name:     name,
		Type:     "synthetic",
		Config:   []byte(config),
		IsActive: true,
	}
}

func TestPollerPublishesOnTick(t *testing.T) {
	src := activeSource(1, "reuters", `{}`)
	repo := newFakeRepo(src)
	pub := &fakePublisher{}
	p := NewPoller(10*time.Millisecond, repo, pub)
	defer p.Stop()

	p.Schedule(src)
	waitFor(t, 2*time.Second, func() bool { return pub.count() >= 2 })

	got := pub.last()
	if got.subject != event.SubjectPollSource {
		t.Fatalf("subject = %q, want %q", got.subject, event.SubjectPollSource)
	}
	poll, ok := got.payload.(*event.PollSource)
	if !ok {
		t.Fatalf("payload type = %T, want *event.PollSource", got.payload)
	}
	if poll.ID != 1 || poll.Name != "reuters" {
		t.Fatalf("poll payload = %+v", poll)
	}
}

func TestPollerRespectsPerSourceInterval(t *testing.T) {
	src := activeSource(2, "ap", `{"poll_interval_seconds": 3600}`)
	repo := newFakeRepo(src)
	pub := &fakePublisher{}
	p := NewPoller(10*time.Millisecond, repo, pub)
	defer p.Stop()

	p.Schedule(src)
	time.Sleep(100 * time.Millisecond)
	if n := pub.count(); n != 0 {
		t.Fatalf("published %d polls for an hourly source within 100ms", n)
	}
}

func TestPollerStopsWhenSourceVanishes(t *testing.T) {
	src := activeSource(3, "bbc", `{}`)
	repo := newFakeRepo(src)
	pub := &fakePublisher{}
	p := NewPoller(10*time.Millisecond, repo, pub)
	defer p.Stop()

	p.Schedule(src)
	waitFor(t, 2*time.Second, func() bool { return pub.count() >= 1 })
	repo.remove(3)
	waitFor(t, 2*time.Second, func() bool { return len(p.Jobs()) == 0 })
}

func TestPollerRescheduleReplacesJob(t *testing.T) {
	src := activeSource(4, "afp", `{}`)
	repo := newFakeRepo(src)
	pub := &fakePublisher{}
	p := NewPoller(10*time.Millisecond, repo, pub)
	defer p.Stop()

	p.Schedule(src)
	p.Schedule(src)
	if got := len(p.Jobs()); got != 1 {
		t.Fatalf("jobs = %d, want 1", got)
	}
}

func TestScheduleInactiveSourceUnschedules(t *testing.T) {
	src := activeSource(5, "dpa", `{}`)
	repo := newFakeRepo(src)
	pub := &fakePublisher{}
	p := NewPoller(10*time.Millisecond, repo, pub)
	defer p.Stop()

	p.Schedule(src)
	inactive := *src
	inactive.IsActive = false
	p.Schedule(&inactive)
	if got := len(p.Jobs()); got != 0 {
		t.Fatalf("jobs = %d, want 0", got)
	}
}

func TestBootstrapSchedulesActiveSources(t *testing.T) {
	repo := newFakeRepo(
		activeSource(6, "a", `{}`),
		activeSource(7, "b", `{}`),
		&sources.Source{ID: 8, Name: "c", Type: "synthetic", IsActive: false},
	)
	pub := &fakePublisher{}
	p := NewPoller(time.Hour, repo, pub)
	defer p.Stop()

	if err := p.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	if got := len(p.Jobs()); got != 2 {
		t.Fatalf("jobs = %d, want 2", got)
	}
}

func TestNewSourceHandlerSchedules(t *testing.T) {
	repo := newFakeRepo(activeSource(9, "e", `{}`))
	pub := &fakePublisher{}
	p := NewPoller(time.Hour, repo, pub)
	defer p.Stop()

	ev := &event.SourceEvent{ID: 9, Name: "e", Type: "synthetic", IsActive: true}
	data, err := event.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	h := NewNewSourceHandler(p)
	if err := h.Handle(context.Background(), data); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if got := len(p.Jobs()); got != 1 {
		t.Fatalf("jobs = %d, want 1", got)
	}
}

func TestRemovedSourceHandlerUnschedules(t *testing.T) {
	src := activeSource(10, "f", `{}`)
	repo := newFakeRepo(src)
	pub := &fakePublisher{}
	p := NewPoller(time.Hour, repo, pub)
	defer p.Stop()
	p.Schedule(src)

	ev := &event.SourceEvent{ID: 10, Name: "f", Type: "synthetic"}
	data, err := event.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	h := NewRemovedSourceHandler(p)
	if err := h.Handle(context.Background(), data); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if got := len(p.Jobs()); got != 0 {
		t.Fatalf("jobs = %d, want 0", got)
	}
}

func TestHandlersRejectMalformedPayload(t *testing.T) {
	p := NewPoller(time.Hour, newFakeRepo(), &fakePublisher{})
	defer p.Stop()

	for _, h := range []interface {
		Handle(context.Context, []byte) error
	}{NewNewSourceHandler(p), NewRemovedSourceHandler(p)} {
		err := h.Handle(context.Background(), []byte("{not json"))
		if !stage.IsTerminal(err) {
			t.Fatalf("Handle(malformed) error = %v, want terminal", err)
		}
	}
}
