// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

package stage

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/gsantopaolo/sentinel-AI/internal/event"
	"github.com/gsantopaolo/sentinel-AI/internal/health"
	"github.com/gsantopaolo/sentinel-AI/internal/logging"
)

func startTestServer(t *testing.T) (*EmbeddedServer, *Client) {
	t.Helper()
	logging.Init(logging.Config{Level: "error", Format: "json"})

	ns, err := StartEmbeddedServer(EmbeddedServerConfig{
		Host:     "127.0.0.1",
		Port:     -1,
		StoreDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("start embedded server: %v", err)
	}
	t.Cleanup(ns.Shutdown)

	client, err := Connect(ConnectConfig{
		URL:            ns.ClientURL(),
		Name:           "stage-test",
		ConnectTimeout: 5 * time.Second,
		ReconnectWait:  100 * time.Millisecond,
		MaxReconnects:  5,
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(client.Close)

	return ns, client
}

func TestRuntimeDeliversAndAcks(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	_, client := startTestServer(t)

	received := make(chan []byte, 1)
	cfg := RuntimeConfig{
		Name:   "itest-success",
		Stream: DefaultStreamConfig("itest-success-stream", "itest.success"),
		Consumer: ConsumerConfig{
			Durable:       "itest-success-worker",
			FilterSubject: "itest.success",
			AckWait:       5 * time.Second,
			MaxDeliver:    3,
		},
		NakDelay:     50 * time.Millisecond,
		FetchMaxWait: 200 * time.Millisecond,
	}
	rt := NewRuntime(cfg, client, health.NewProbe(time.Minute), func(_ context.Context, msg jetstream.Msg) error {
		select {
		case received <- msg.Data():
		default:
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = rt.Serve(ctx) }()

	ev := event.NewRawEvent("headline", "body text", "itest")
	pub := NewPublisher(client.JetStream())

	deadline := time.After(10 * time.Second)
	for {
		if err := pub.Publish(context.Background(), "itest.success", ev.ID, ev); err == nil {
			break
		}
		select {
		case <-deadline:
			t.Fatal("stream never became publishable")
		case <-time.After(100 * time.Millisecond):
		}
	}

	select {
	case data := <-received:
		var got event.RawEvent
		if err := event.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal delivered event: %v", err)
		}
		if got.ID != ev.ID {
			t.Fatalf("delivered id = %s, want %s", got.ID, ev.ID)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("event never delivered")
	}
}

func TestRuntimeExhaustedRetriesEmitOneAdvisory(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	_, client := startTestServer(t)

	sub, err := client.Conn().SubscribeSync(event.SubjectDLQAdvisories)
	if err != nil {
		t.Fatalf("subscribe advisories: %v", err)
	}
	defer func() { _ = sub.Unsubscribe() }()

	var calls atomic.Int64
	const maxDeliver = 3
	cfg := RuntimeConfig{
		Name:   "itest-retry",
		Stream: DefaultStreamConfig("itest-retry-stream", "itest.retry"),
		Consumer: ConsumerConfig{
			Durable:       "itest-retry-worker",
			FilterSubject: "itest.retry",
			AckWait:       2 * time.Second,
			MaxDeliver:    maxDeliver,
		},
		NakDelay:     20 * time.Millisecond,
		FetchMaxWait: 200 * time.Millisecond,
	}
	rt := NewRuntime(cfg, client, health.NewProbe(time.Minute), func(context.Context, jetstream.Msg) error {
		calls.Add(1)
		return errors.New("downstream unavailable")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = rt.Serve(ctx) }()

	ev := event.NewRawEvent("poison", "always fails", "itest")
	pub := NewPublisher(client.JetStream())

	deadline := time.After(10 * time.Second)
	for {
		if err := pub.Publish(context.Background(), "itest.retry", ev.ID, ev); err == nil {
			break
		}
		select {
		case <-deadline:
			t.Fatal("stream never became publishable")
		case <-time.After(100 * time.Millisecond):
		}
	}

	if _, err := sub.NextMsg(15 * time.Second); err != nil {
		t.Fatalf("expected a max-deliveries advisory: %v", err)
	}
	if got := calls.Load(); got != maxDeliver {
		t.Fatalf("handler invoked %d times, want %d", got, maxDeliver)
	}
	if _, err := sub.NextMsg(time.Second); err == nil {
		t.Fatal("expected exactly one advisory for one poison message")
	}
}

func TestRuntimeTerminalStopsRedelivery(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	_, client := startTestServer(t)

	// Termination must be visible to the watchdog's advisory feed.
	sub, err := client.Conn().SubscribeSync(event.SubjectDLQTerminated)
	if err != nil {
		t.Fatalf("subscribe terminated advisories: %v", err)
	}
	defer func() { _ = sub.Unsubscribe() }()

	var calls atomic.Int64
	cfg := RuntimeConfig{
		Name:   "itest-terminal",
		Stream: DefaultStreamConfig("itest-terminal-stream", "itest.terminal"),
		Consumer: ConsumerConfig{
			Durable:       "itest-terminal-worker",
			FilterSubject: "itest.terminal",
			AckWait:       time.Second,
			MaxDeliver:    5,
		},
		NakDelay:     20 * time.Millisecond,
		FetchMaxWait: 200 * time.Millisecond,
	}
	rt := NewRuntime(cfg, client, health.NewProbe(time.Minute), func(context.Context, jetstream.Msg) error {
		calls.Add(1)
		return Terminalf("payload can never parse")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = rt.Serve(ctx) }()

	ev := event.NewRawEvent("broken", "terminal case", "itest")
	pub := NewPublisher(client.JetStream())

	deadline := time.After(10 * time.Second)
	for {
		if err := pub.Publish(context.Background(), "itest.terminal", ev.ID, ev); err == nil {
			break
		}
		select {
		case <-deadline:
			t.Fatal("stream never became publishable")
		case <-time.After(100 * time.Millisecond):
		}
	}

	if _, err := sub.NextMsg(15 * time.Second); err != nil {
		t.Fatalf("expected a msg-terminated advisory: %v", err)
	}

	// Wait past several AckWait windows; a terminated message must not
	// come back.
	time.Sleep(3 * time.Second)
	if got := calls.Load(); got != 1 {
		t.Fatalf("terminated message delivered %d times, want 1", got)
	}
}

func TestPublisherDeduplicatesByMsgID(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	_, client := startTestServer(t)

	ctx := context.Background()
	if _, err := EnsureStream(ctx, client.JetStream(), DefaultStreamConfig("itest-dedup-stream", "itest.dedup")); err != nil {
		t.Fatalf("ensure stream: %v", err)
	}

	ev := event.NewRawEvent("once", "published twice", "itest")
	pub := NewPublisher(client.JetStream())
	if err := pub.Publish(ctx, "itest.dedup", ev.ID, ev); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if err := pub.Publish(ctx, "itest.dedup", ev.ID, ev); err != nil {
		t.Fatalf("duplicate publish: %v", err)
	}

	stream, err := client.JetStream().Stream(ctx, "itest-dedup-stream")
	if err != nil {
		t.Fatalf("get stream: %v", err)
	}
	info, err := stream.Info(ctx)
	if err != nil {
		t.Fatalf("stream info: %v", err)
	}
	if info.State.Msgs != 1 {
		t.Fatalf("stream holds %d messages, want 1 after dedup", info.State.Msgs)
	}
}
