// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

// Package inspector implements the anomaly stage: an ordered battery
// of detectors over the stored item, short-circuiting on the first
// hit. Deterministic rules run before the LLM check so the model is
// only consulted for content that passes them.
package inspector

import (
	"context"
	"fmt"
	"strings"

	"github.com/gsantopaolo/sentinel-AI/internal/classifier"
	"github.com/gsantopaolo/sentinel-AI/internal/config"
	"github.com/gsantopaolo/sentinel-AI/internal/store"
)

// Detector checks one item for one class of anomaly. A hit returns
// true with a human-readable reason. An error means the check itself
// failed and the event should be retried.
type Detector interface {
	Name() string
	Detect(ctx context.Context, item *store.Item) (bool, string, error)
}

// NewBattery builds the ordered detector list from config.
func NewBattery(cfgs []config.DetectorConfig, c classifier.Classifier) ([]Detector, error) {
	detectors := make([]Detector, 0, len(cfgs))
	for _, dc := range cfgs {
		switch dc.Type {
		case "keyword_match":
			detectors = append(detectors, &keywordDetector{keywords: dc.Keywords})
		case "content_length":
			detectors = append(detectors, &lengthDetector{min: dc.MinLength, max: dc.MaxLength})
		case "missing_fields":
			detectors = append(detectors, &missingFieldsDetector{fields: dc.RequiredFields})
		case "llm_anomaly":
			if c == nil {
				return nil, fmt.Errorf("llm_anomaly detector configured without a classifier")
			}
			detectors = append(detectors, &llmDetector{classifier: c})
		default:
			return nil, fmt.Errorf("unknown detector type: %s", dc.Type)
		}
	}
	return detectors, nil
}

// keywordDetector flags content containing any denylisted keyword,
// case-insensitively.
type keywordDetector struct {
	keywords []string
}

func (d *keywordDetector) Name() string { return "keyword_match" }

func (d *keywordDetector) Detect(_ context.Context, item *store.Item) (bool, string, error) {
	content := strings.ToLower(item.Content)
	for _, kw := range d.keywords {
		if strings.Contains(content, strings.ToLower(kw)) {
			return true, fmt.Sprintf("keyword %q found", kw), nil
		}
	}
	return false, "", nil
}

// lengthDetector flags content outside the configured byte-length
// bounds. A zero max means unbounded above.
type lengthDetector struct {
	min, max int
}

func (d *lengthDetector) Name() string { return "content_length" }

func (d *lengthDetector) Detect(_ context.Context, item *store.Item) (bool, string, error) {
	n := len(item.Content)
	if n < d.min {
		return true, fmt.Sprintf("content length %d below minimum %d", n, d.min), nil
	}
	if d.max > 0 && n > d.max {
		return true, fmt.Sprintf("content length %d above maximum %d", n, d.max), nil
	}
	return false, "", nil
}

// missingFieldsDetector flags items missing any required field.
type missingFieldsDetector struct {
	fields []string
}

func (d *missingFieldsDetector) Name() string { return "missing_fields" }

func (d *missingFieldsDetector) Detect(_ context.Context, item *store.Item) (bool, string, error) {
	for _, f := range d.fields {
		if fieldEmpty(item, f) {
			return true, fmt.Sprintf("required field %q is missing", f), nil
		}
	}
	return false, "", nil
}

func fieldEmpty(item *store.Item, field string) bool {
	switch field {
	case "id":
		return item.ID == ""
	case "title":
		return item.Title == ""
	case "content":
		return item.Content == ""
	case "source":
		return item.Source == ""
	case "timestamp":
		return item.Timestamp.IsZero()
	default:
		// An unknown field name counts as missing so a config typo
		// surfaces as flagged items instead of a silent pass.
		return true
	}
}

// llmDetector asks the classifier for the binary anomaly verdict.
type llmDetector struct {
	classifier classifier.Classifier
}

func (d *llmDetector) Name() string { return "llm_anomaly" }

func (d *llmDetector) Detect(ctx context.Context, item *store.Item) (bool, string, error) {
	anomalous, err := d.classifier.Anomaly(ctx, item.Content)
	if err != nil {
		return false, "", err
	}
	if anomalous {
		return true, "language model flagged content as anomalous", nil
	}
	return false, "", nil
}
