// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

package event

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Validatable is implemented by every payload type so encoding can refuse
// incomplete events before they reach the log.
type Validatable interface {
	Validate() error
}

// Marshal validates the payload and encodes it as JSON.
func Marshal(e Validatable) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}

	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// Unmarshal decodes JSON into the payload and validates it. Decode and
// validation failures are permanent: retrying the same bytes cannot help.
func Unmarshal(data []byte, e Validatable) error {
	if err := json.Unmarshal(data, e); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validate event: %w", err)
	}
	return nil
}
