// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

package stage

import (
	"errors"
	"fmt"
)

// TerminalError marks a failure that redelivery cannot fix: malformed
// payloads, validation failures, anything deterministic. The runtime
// terminates the message instead of scheduling a retry.
type TerminalError struct {
	Err error
}

func (e *TerminalError) Error() string {
	return fmt.Sprintf("terminal: %v", e.Err)
}

func (e *TerminalError) Unwrap() error {
	return e.Err
}

// Terminal wraps err so the runtime terminates the message. A nil err
// returns nil.
func Terminal(err error) error {
	if err == nil {
		return nil
	}
	return &TerminalError{Err: err}
}

// Terminalf is Terminal with formatting.
func Terminalf(format string, args ...any) error {
	return &TerminalError{Err: fmt.Errorf(format, args...)}
}

// IsTerminal reports whether err carries a TerminalError anywhere in
// its chain.
func IsTerminal(err error) bool {
	var t *TerminalError
	return errors.As(err, &t)
}
