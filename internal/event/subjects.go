// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

package event

// Subject and stream names for the Sentinel-AI event log.
// Each pipeline subject is captured by exactly one stream; consumer
// durables are one per stage per subject so redelivery state is tracked
// per logical consumer, never shared between sibling stages.
const (
	// RawEventsStream captures externally supplied items entering the pipeline.
	RawEventsStream  = "raw-events-stream"
	SubjectRawEvents = "raw.events"

	// FilteredEventsStream captures relevance-accepted, enriched items.
	// Ranker and inspector consume it as independent siblings.
	FilteredEventsStream  = "filtered-events-stream"
	SubjectFilteredEvents = "filtered.events"

	// RankedEventsStream captures fully scored items for external consumers.
	RankedEventsStream  = "ranked-events-stream"
	SubjectRankedEvents = "ranked.events"

	// Source lifecycle subjects feeding the scheduler.
	NewSourceStream      = "new-source-stream"
	SubjectNewSource     = "new.source"
	RemovedSourceStream  = "removed-source-stream"
	SubjectRemovedSource = "removed.source"

	// Poll instructions emitted by the scheduler for the connector.
	PollSourceStream  = "poll-source-stream"
	SubjectPollSource = "poll.source"

	// DLQStream captures the JetStream advisories for both ways a
	// message permanently fails: retry exhaustion (MAX_DELIVERIES) and
	// explicit termination (MSG_TERMINATED). The guardian is its only
	// consumer.
	DLQStream            = "DLQ"
	SubjectDLQAdvisories = "$JS.EVENT.ADVISORY.CONSUMER.MAX_DELIVERIES.>"
	SubjectDLQTerminated = "$JS.EVENT.ADVISORY.CONSUMER.MSG_TERMINATED.>"
)

// Durable consumer names, one per stage per subject.
const (
	DurableFilter           = "filter-worker"
	DurableRanker           = "ranker-worker"
	DurableInspector        = "inspector-worker"
	DurableConnector        = "connector-worker"
	DurableGuardian         = "guardian-worker"
	DurableSchedulerNew     = "scheduler-new-source"
	DurableSchedulerRemoved = "scheduler-removed-source"
)
