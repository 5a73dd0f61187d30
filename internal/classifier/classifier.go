// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

// Package classifier calls an external language model for relevance,
// categorization, and anomaly verdicts. The provider sits behind a
// circuit breaker; every failure it returns is retryable from the
// pipeline's point of view.
package classifier

import (
	"context"
	"fmt"
	"strings"
)

// Relevance is the classifier's verdict on an article.
type Relevance string

const (
	Relevant            Relevance = "RELEVANT"
	PotentiallyRelevant Relevance = "POTENTIALLY_RELEVANT"
	Irrelevant          Relevance = "IRRELEVANT"
)

// Classifier is what the filter and inspector stages depend on.
type Classifier interface {
	// Relevance returns the verdict plus the model's raw response,
	// which the caller logs as the drop rationale.
	Relevance(ctx context.Context, content string) (Relevance, string, error)

	// Categories returns zero or more category labels. An empty list
	// is a valid classification.
	Categories(ctx context.Context, content string) ([]string, error)

	// Anomaly reports whether the content reads as anomalous.
	Anomaly(ctx context.Context, content string) (bool, error)
}

// Completer produces one completion for one prompt. Implemented by the
// provider clients and by test fakes.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ParseRelevance maps a model response onto a verdict. The longest
// token is matched first so IRRELEVANT is never mistaken for RELEVANT
// by substring. An answer containing none of the tokens is an error:
// dropping an article on unparsable output would be a silent loss.
func ParseRelevance(response string) (Relevance, error) {
	upper := strings.ToUpper(response)
	switch {
	case strings.Contains(upper, string(PotentiallyRelevant)):
		return PotentiallyRelevant, nil
	case strings.Contains(upper, string(Irrelevant)):
		return Irrelevant, nil
	case strings.Contains(upper, string(Relevant)):
		return Relevant, nil
	default:
		return "", fmt.Errorf("unparsable relevance response: %q", truncate(response, 120))
	}
}

// ParseCategories splits a comma-separated category response. Empty
// entries are dropped; an all-empty response yields an empty list.
func ParseCategories(response string) []string {
	var categories []string
	for _, c := range strings.Split(response, ",") {
		c = strings.TrimSpace(c)
		if c != "" {
			categories = append(categories, c)
		}
	}
	return categories
}

// ParseAnomaly maps a model response onto the binary anomaly verdict.
// NORMAL is checked first so "NO ANOMALY" style answers do not flag.
func ParseAnomaly(response string) (bool, error) {
	upper := strings.ToUpper(response)
	switch {
	case strings.Contains(upper, "NORMAL"):
		return false, nil
	case strings.Contains(upper, "ANOMALY"):
		return true, nil
	default:
		return false, fmt.Errorf("unparsable anomaly response: %q", truncate(response, 120))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
