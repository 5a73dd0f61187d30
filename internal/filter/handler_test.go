// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

package filter

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/gsantopaolo/sentinel-AI/internal/classifier"
	"github.com/gsantopaolo/sentinel-AI/internal/event"
	"github.com/gsantopaolo/sentinel-AI/internal/stage"
	"github.com/gsantopaolo/sentinel-AI/internal/store"
)

type fakeClassifier struct {
	verdict    classifier.Relevance
	rationale  string
	categories []string
	relErr     error
	catErr     error
}

func (f *fakeClassifier) Relevance(context.Context, string) (classifier.Relevance, string, error) {
	return f.verdict, f.rationale, f.relErr
}

func (f *fakeClassifier) Categories(context.Context, string) ([]string, error) {
	return f.categories, f.catErr
}

func (f *fakeClassifier) Anomaly(context.Context, string) (bool, error) {
	return false, nil
}

type fakeStore struct {
	items []*store.Item
	err   error
}

func (f *fakeStore) Upsert(_ context.Context, item *store.Item) error {
	if f.err != nil {
		return f.err
	}
	f.items = append(f.items, item)
	return nil
}

type fakePublisher struct {
	subjects []string
	msgIDs   []string
	events   []event.Validatable
	err      error
}

func (f *fakePublisher) Publish(_ context.Context, subject, msgID string, e event.Validatable) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.msgIDs = append(f.msgIDs, msgID)
	f.events = append(f.events, e)
	return nil
}

func rawEventBytes(t *testing.T) ([]byte, *event.RawEvent) {
	t.Helper()
	ev := event.NewRawEvent("election results", "the incumbent conceded late on tuesday", "wire-service")
	data, err := event.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	return data, ev
}

func TestHandleRelevantEventStoresThenPublishes(t *testing.T) {
	data, ev := rawEventBytes(t)
	st := &fakeStore{}
	pub := &fakePublisher{}
	h := NewHandler(
		&fakeClassifier{verdict: classifier.Relevant, categories: []string{"Politics"}},
		st, pub, NewVectorizer(32),
	)

	if err := h.Handle(context.Background(), data); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(st.items) != 1 {
		t.Fatalf("store writes = %d, want 1", len(st.items))
	}
	item := st.items[0]
	if item.ID != ev.ID || item.Relevance != "RELEVANT" {
		t.Fatalf("item = %+v", item)
	}
	if len(item.Embedding) != 32 {
		t.Fatalf("embedding dim = %d, want 32", len(item.Embedding))
	}

	if len(pub.events) != 1 || pub.subjects[0] != event.SubjectFilteredEvents {
		t.Fatalf("publishes = %v", pub.subjects)
	}
	if pub.msgIDs[0] != ev.ID {
		t.Fatalf("msg id = %s, want event id for dedup", pub.msgIDs[0])
	}
	filtered, ok := pub.events[0].(*event.FilteredEvent)
	if !ok {
		t.Fatalf("published %T", pub.events[0])
	}
	if !filtered.IsRelevant || filtered.Categories[0] != "Politics" {
		t.Fatalf("filtered = %+v", filtered)
	}
}

func TestHandleIrrelevantEventIsSuccessfulDrop(t *testing.T) {
	data, _ := rawEventBytes(t)
	st := &fakeStore{}
	pub := &fakePublisher{}
	h := NewHandler(
		&fakeClassifier{verdict: classifier.Irrelevant, rationale: "IRRELEVANT - ad copy"},
		st, pub, NewVectorizer(32),
	)

	if err := h.Handle(context.Background(), data); err != nil {
		t.Fatalf("drop must be success, got %v", err)
	}
	if len(st.items) != 0 {
		t.Fatal("irrelevant event must not be stored")
	}
	if len(pub.events) != 0 {
		t.Fatal("irrelevant event must not be published")
	}
}

func TestHandleMalformedPayloadIsTerminal(t *testing.T) {
	h := NewHandler(&fakeClassifier{}, &fakeStore{}, &fakePublisher{}, NewVectorizer(32))

	err := h.Handle(context.Background(), []byte("not json"))
	if !stage.IsTerminal(err) {
		t.Fatalf("err = %v, want terminal", err)
	}
}

func TestHandleClassifierFailureIsRetryable(t *testing.T) {
	data, _ := rawEventBytes(t)
	h := NewHandler(
		&fakeClassifier{relErr: errors.New("provider timeout")},
		&fakeStore{}, &fakePublisher{}, NewVectorizer(32),
	)

	err := h.Handle(context.Background(), data)
	if err == nil || stage.IsTerminal(err) {
		t.Fatalf("err = %v, want retryable", err)
	}
}

func TestHandleStoreFailureSkipsPublish(t *testing.T) {
	data, _ := rawEventBytes(t)
	pub := &fakePublisher{}
	h := NewHandler(
		&fakeClassifier{verdict: classifier.Relevant},
		&fakeStore{err: errors.New("store unavailable")},
		pub, NewVectorizer(32),
	)

	err := h.Handle(context.Background(), data)
	if err == nil || stage.IsTerminal(err) {
		t.Fatalf("err = %v, want retryable", err)
	}
	if len(pub.events) != 0 {
		t.Fatal("publish must not happen when the store write failed")
	}
}

func TestHandlePublishFailureIsRetryable(t *testing.T) {
	data, _ := rawEventBytes(t)
	h := NewHandler(
		&fakeClassifier{verdict: classifier.PotentiallyRelevant},
		&fakeStore{},
		&fakePublisher{err: errors.New("stream unavailable")},
		NewVectorizer(32),
	)

	err := h.Handle(context.Background(), data)
	if err == nil || stage.IsTerminal(err) {
		t.Fatalf("err = %v, want retryable", err)
	}
}

func TestVectorizeDeterministicAndNormalized(t *testing.T) {
	v := NewVectorizer(64)
	a := v.Vectorize("markets rallied after the announcement")
	b := v.Vectorize("markets rallied after the announcement")

	var norm float64
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("vectorizer must be deterministic")
		}
		norm += float64(a[i]) * float64(a[i])
	}
	if math.Abs(norm-1) > 1e-5 {
		t.Fatalf("norm^2 = %v, want 1", norm)
	}
}

func TestVectorizeEmptyTextIsZeroVector(t *testing.T) {
	v := NewVectorizer(16)
	vec := v.Vectorize("   ")
	if len(vec) != 16 {
		t.Fatalf("dim = %d", len(vec))
	}
	for _, x := range vec {
		if x != 0 {
			t.Fatal("empty text must embed to the zero vector")
		}
	}
}
