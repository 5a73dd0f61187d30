// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

// Package filter implements the relevance and enrichment stage. It is
// the pipeline's gatekeeper: irrelevant articles are dropped here, and
// accepted ones get their category labels, embedding, and the first
// durable store write.
package filter

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// Vectorizer produces a deterministic feature-hashing embedding of
// text: each token hashes to a bucket with a hash-derived sign, the
// result is L2-normalized. Deterministic, so replaying the same event
// yields byte-identical store writes.
type Vectorizer struct {
	dim int
}

// NewVectorizer creates a vectorizer with the given dimensionality.
func NewVectorizer(dim int) *Vectorizer {
	return &Vectorizer{dim: dim}
}

// Vectorize embeds text. Empty or token-free text yields a zero
// vector of the configured dimension.
func (v *Vectorizer) Vectorize(text string) []float32 {
	vec := make([]float32, v.dim)

	for _, token := range tokenize(text) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(token))
		sum := h.Sum64()

		idx := int(sum % uint64(v.dim))
		// One hash bit decides the sign, keeping the expected bucket
		// sum near zero under collisions.
		sign := float32(1)
		if sum&(1<<63) != 0 {
			sign = -1
		}
		vec[idx] += sign
	}

	var norm float64
	for _, x := range vec {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
