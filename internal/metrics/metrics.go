// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

// Package metrics provides Prometheus instrumentation for the pipeline:
// per-stage handler outcomes and latency, classifier calls, item store
// operations, publishes, and dead-letter alerts. Every service exposes
// these on its /metrics endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsProcessed counts handler invocations by stage and outcome
	// (success, retry, terminal).
	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_events_processed_total",
			Help: "Total handler invocations by stage and outcome",
		},
		[]string{"stage", "outcome"},
	)

	// HandlerDuration measures handler latency by stage.
	HandlerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentinel_handler_duration_seconds",
			Help:    "Handler execution time in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	// EventsPublished counts publishes by subject.
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_events_published_total",
			Help: "Total events published by subject",
		},
		[]string{"subject"},
	)

	// ClassifierRequests counts external classifier calls by operation
	// (relevance, categories, anomaly) and result (ok, error).
	ClassifierRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_classifier_requests_total",
			Help: "Total external classifier calls by operation and result",
		},
		[]string{"operation", "result"},
	)

	// ClassifierDuration measures classifier call latency by operation.
	ClassifierDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentinel_classifier_duration_seconds",
			Help:    "External classifier call latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	// StoreOperations counts item store calls by operation and result.
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_store_operations_total",
			Help: "Total item store operations by operation and result",
		},
		[]string{"operation", "result"},
	)

	// ItemsDropped counts items intentionally dropped as irrelevant.
	ItemsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_items_dropped_total",
			Help: "Total items dropped by the relevance filter",
		},
	)

	// AnomaliesFlagged counts items flagged by the inspector, by detector.
	AnomaliesFlagged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_anomalies_flagged_total",
			Help: "Total items flagged as anomalous by detector type",
		},
		[]string{"detector"},
	)

	// DeadLetterAlerts counts guardian alerts by origin stream.
	DeadLetterAlerts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_dead_letter_alerts_total",
			Help: "Total dead-letter advisories alerted by origin stream",
		},
		[]string{"stream"},
	)

	// NotifierErrors counts notifier delivery failures by notifier name.
	NotifierErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_notifier_errors_total",
			Help: "Total notifier delivery failures by notifier",
		},
		[]string{"notifier"},
	)

	// PollTicks counts poll instructions emitted by the scheduler.
	PollTicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_poll_ticks_total",
			Help: "Total poll instructions emitted per source",
		},
		[]string{"source"},
	)
)

// ObserveHandler records one handler invocation.
func ObserveHandler(stage, outcome string, start time.Time) {
	EventsProcessed.WithLabelValues(stage, outcome).Inc()
	HandlerDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
