// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

package connector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gsantopaolo/sentinel-AI/internal/event"
	"github.com/gsantopaolo/sentinel-AI/internal/sources"
	"github.com/gsantopaolo/sentinel-AI/internal/stage"
)

type fakePublisher struct {
	published []*event.RawEvent
	subjects  []string
	msgIDs    []string
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, subject, msgID string, e event.Validatable) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, e.(*event.RawEvent))
	p.subjects = append(p.subjects, subject)
	p.msgIDs = append(p.msgIDs, msgID)
	return nil
}

func pollPayload(t *testing.T, poll *event.PollSource) []byte {
	t.Helper()
	data, err := event.Marshal(poll)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestHandlePublishesFetchedArticles(t *testing.T) {
	pub := &fakePublisher{}
	h := NewHandler(FetchConfig{}, pub)
	data := pollPayload(t, &event.PollSource{ID: 1, Name: "reuters", Type: "synthetic", IsActive: true})

	if err := h.Handle(context.Background(), data); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(pub.published) != 1 {
		t.Fatalf("published %d articles, want 1", len(pub.published))
	}
	if pub.subjects[0] != event.SubjectRawEvents {
		t.Fatalf("subject = %q, want %q", pub.subjects[0], event.SubjectRawEvents)
	}
	art := pub.published[0]
	if art.Source != "reuters" || art.ID == "" || art.Title == "" {
		t.Fatalf("article = %+v", art)
	}
	if pub.msgIDs[0] != art.ID {
		t.Fatalf("msgID = %q, want article id %q", pub.msgIDs[0], art.ID)
	}
}

func TestHandleInactiveSourceIsNoop(t *testing.T) {
	pub := &fakePublisher{}
	h := NewHandler(FetchConfig{}, pub)
	data := pollPayload(t, &event.PollSource{ID: 2, Name: "ap", Type: "synthetic", IsActive: false})

	if err := h.Handle(context.Background(), data); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(pub.published) != 0 {
		t.Fatalf("published %d articles for inactive source", len(pub.published))
	}
}

func TestHandleMalformedInstructionIsTerminal(t *testing.T) {
	h := NewHandler(FetchConfig{}, &fakePublisher{})
	if err := h.Handle(context.Background(), []byte("{not json")); !stage.IsTerminal(err) {
		t.Fatalf("Handle(malformed) error = %v, want terminal", err)
	}
}

func TestHandleUnknownSourceTypeIsTerminal(t *testing.T) {
	h := NewHandler(FetchConfig{}, &fakePublisher{})
	data := pollPayload(t, &event.PollSource{ID: 3, Name: "x", Type: "carrier-pigeon", IsActive: true})
	if err := h.Handle(context.Background(), data); !stage.IsTerminal(err) {
		t.Fatalf("Handle(unknown type) error = %v, want terminal", err)
	}
}

type failingFetcher struct{ err error }

func (f *failingFetcher) Fetch(context.Context, *sources.Source) ([]*event.RawEvent, error) {
	return nil, f.err
}

func TestHandleFetchFailureIsRetryable(t *testing.T) {
	h := NewHandler(FetchConfig{}, &fakePublisher{})
	fetchErr := errors.New("feed unreachable")
	h.newFetcher = func(string, FetchConfig) (Fetcher, error) {
		return &failingFetcher{err: fetchErr}, nil
	}
	data := pollPayload(t, &event.PollSource{ID: 4, Name: "x", Type: "http", IsActive: true})

	err := h.Handle(context.Background(), data)
	if err == nil || stage.IsTerminal(err) {
		t.Fatalf("Handle(fetch failure) error = %v, want retryable", err)
	}
}

func TestHandlePublishFailureIsRetryable(t *testing.T) {
	pub := &fakePublisher{err: errors.New("stream unavailable")}
	h := NewHandler(FetchConfig{}, pub)
	data := pollPayload(t, &event.PollSource{ID: 5, Name: "x", Type: "synthetic", IsActive: true})

	err := h.Handle(context.Background(), data)
	if err == nil || stage.IsTerminal(err) {
		t.Fatalf("Handle(publish failure) error = %v, want retryable", err)
	}
}

func TestHTTPFetcherDecodesFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "sentinel-connector/1.0" {
			t.Errorf("User-Agent = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"title": "Budget passes", "content": "The vote concluded.", "timestamp": "2026-08-28T10:00:00Z"},
			{"title": "Rates hold", "content": "No change announced."}
		]`))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(FetchConfig{Timeout: 5 * time.Second, UserAgent: "sentinel-connector/1.0"})
	src := &sources.Source{ID: 6, Name: "wire", Type: "http", Config: []byte(`{"url": "` + srv.URL + `"}`)}

	got, err := f.Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("fetched %d articles, want 2", len(got))
	}
	if got[0].Title != "Budget passes" || got[0].Source != "wire" {
		t.Fatalf("first article = %+v", got[0])
	}
	want := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	if !got[0].Timestamp.Equal(want) {
		t.Fatalf("timestamp = %v, want %v", got[0].Timestamp, want)
	}
	if got[1].Timestamp.IsZero() {
		t.Fatal("missing feed timestamp should default to now")
	}
}

func TestHTTPFetcherIDsAreReplayStable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": "feed-77", "title": "Budget passes", "content": "The vote concluded.", "timestamp": "2026-08-28T10:00:00Z"},
			{"title": "Rates hold", "content": "No change announced.", "timestamp": "2026-08-28T11:00:00Z"}
		]`))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(FetchConfig{Timeout: 5 * time.Second})
	src := &sources.Source{ID: 9, Name: "wire", Type: "http", Config: []byte(`{"url": "` + srv.URL + `"}`)}

	first, err := f.Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	second, err := f.Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("fetched %d and %d articles, want 2 each", len(first), len(second))
	}
	for i := range first {
		if first[i].ID == "" {
			t.Fatalf("article %d has empty id", i)
		}
		if first[i].ID != second[i].ID {
			t.Fatalf("article %d id changed across fetches: %q vs %q", i, first[i].ID, second[i].ID)
		}
	}
	if first[0].ID == first[1].ID {
		t.Fatal("distinct feed items share an id")
	}

	// The same item served by another source must not collide with it.
	other := &sources.Source{ID: 10, Name: "agency", Type: "http", Config: []byte(`{"url": "` + srv.URL + `"}`)}
	otherItems, err := f.Fetch(context.Background(), other)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if otherItems[0].ID == first[0].ID {
		t.Fatal("articles from different sources share an id")
	}
}

func TestHTTPFetcherRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(FetchConfig{Timeout: 5 * time.Second})
	src := &sources.Source{ID: 7, Name: "wire", Config: []byte(`{"url": "` + srv.URL + `"}`)}
	if _, err := f.Fetch(context.Background(), src); err == nil {
		t.Fatal("Fetch() should fail on 502")
	}
}

func TestHTTPFetcherRequiresURL(t *testing.T) {
	f := NewHTTPFetcher(FetchConfig{})
	src := &sources.Source{ID: 8, Name: "wire", Config: []byte(`{}`)}
	if _, err := f.Fetch(context.Background(), src); err == nil {
		t.Fatal("Fetch() should fail without a url")
	}
}
