// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

// Package ranker implements the scoring stage: importance from
// category weights, recency from exponential decay, and a weighted
// final score persisted back onto the item.
package ranker

import (
	"math"
	"time"

	"github.com/gsantopaolo/sentinel-AI/internal/config"
)

// Scorer computes the three scores from the configured parameters.
// Pure and deterministic apart from the clock, so redelivered events
// recompute near-identical values.
type Scorer struct {
	cfg config.RankerConfig
	now func() time.Time
}

// NewScorer creates a scorer with the wall clock.
func NewScorer(cfg config.RankerConfig) *Scorer {
	return &Scorer{cfg: cfg, now: time.Now}
}

// Importance sums the configured weight of every category the event
// carries. Unknown categories contribute the default weight, so a new
// label coming out of the classifier scores like background noise
// instead of zero.
func (s *Scorer) Importance(categories []string) float64 {
	var score float64
	for _, c := range categories {
		if w, ok := s.cfg.CategoryWeights[c]; ok {
			score += w
		} else {
			score += s.cfg.DefaultWeight
		}
	}
	return score
}

// Recency decays exponentially with age:
//
//	max_score * 0.5^(age_hours / half_life_hours)
//
// A timestamp in the future clamps to age zero so recency never
// exceeds max_score.
func (s *Scorer) Recency(timestamp time.Time) float64 {
	age := s.now().UTC().Sub(timestamp.UTC())
	if age < 0 {
		age = 0
	}
	halfLives := age.Hours() / s.cfg.HalfLifeHours
	return s.cfg.MaxRecencyScore * math.Pow(0.5, halfLives)
}

// Final combines the two scores with the configured weights. No
// normalization is applied.
func (s *Scorer) Final(importance, recency float64) float64 {
	return s.cfg.ImportanceWeight*importance + s.cfg.RecencyWeight*recency
}
