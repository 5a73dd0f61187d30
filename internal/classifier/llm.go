// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

package classifier

import (
	"context"
	"fmt"
	"time"

	"github.com/gsantopaolo/sentinel-AI/internal/config"
	"github.com/gsantopaolo/sentinel-AI/internal/metrics"
)

const relevancePrompt = `You are a news relevance classifier for a current-events intelligence feed.
Decide whether the following article is newsworthy for that feed.
Reply with exactly one of RELEVANT, POTENTIALLY_RELEVANT, or IRRELEVANT,
optionally followed by a one-sentence rationale.

Article:
%s`

const categoryPrompt = `Classify the following news article into one or more of these categories:
Politics, Economy, Technology, Science, Health, Sports, Other.
Reply with a comma-separated list of categories only.

Article:
%s`

const anomalyPrompt = `Decide whether the following article content is anomalous:
spam, gibberish, truncated text, or machine-generated filler.
Reply with exactly ANOMALY or NORMAL.

Article:
%s`

// LLM implements Classifier on top of a Completer.
type LLM struct {
	completer Completer
}

// New builds the configured provider client, wraps it in a circuit
// breaker, and returns the classifier.
func New(cfg config.ClassifierConfig) (*LLM, error) {
	var completer Completer
	switch cfg.Provider {
	case "openai":
		completer = newOpenAIClient(cfg)
	case "anthropic":
		completer = newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported classifier provider: %s", cfg.Provider)
	}
	return &LLM{completer: newBreaker(cfg, completer)}, nil
}

// NewWithCompleter wires an explicit completer, used by tests.
func NewWithCompleter(c Completer) *LLM {
	return &LLM{completer: c}
}

func (l *LLM) Relevance(ctx context.Context, content string) (Relevance, string, error) {
	response, err := l.complete(ctx, "relevance", relevancePrompt, content)
	if err != nil {
		return "", "", err
	}
	verdict, err := ParseRelevance(response)
	if err != nil {
		return "", response, err
	}
	return verdict, response, nil
}

func (l *LLM) Categories(ctx context.Context, content string) ([]string, error) {
	response, err := l.complete(ctx, "categories", categoryPrompt, content)
	if err != nil {
		return nil, err
	}
	return ParseCategories(response), nil
}

func (l *LLM) Anomaly(ctx context.Context, content string) (bool, error) {
	response, err := l.complete(ctx, "anomaly", anomalyPrompt, content)
	if err != nil {
		return false, err
	}
	return ParseAnomaly(response)
}

func (l *LLM) complete(ctx context.Context, operation, template, content string) (string, error) {
	start := time.Now()
	response, err := l.completer.Complete(ctx, fmt.Sprintf(template, content))
	metrics.ClassifierDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.ClassifierRequests.WithLabelValues(operation, result).Inc()

	if err != nil {
		return "", fmt.Errorf("classifier %s: %w", operation, err)
	}
	return response, nil
}

var _ Classifier = (*LLM)(nil)
