// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"errors"
	"fmt"
	"strings"

	"inkpress/internal/apperr"
)

// Failure reasons. A *GenerationError unwraps to exactly one of these.
var (
	ErrRequestFailed = errors.New("request failed")
	ErrNoCandidates  = errors.New("no candidates")
	ErrStoppedEarly  = errors.New("stopped early")
	ErrEmptyText     = errors.New("empty text")
)

// GenerationError reports a completion that cannot be used. It matches
// apperr.ErrGeneration and its Reason with errors.Is.
type GenerationError struct {
	// Stage names what was being generated, e.g. "article" or "excerpt".
	Stage        string
	Reason       error
	FinishReason string
	Err          error
}

// Public is the caller-facing text: the stage and reason without upstream
// response bodies.
func (e *GenerationError) Public() string {
	reason := e.Reason.Error()
	if errors.Is(e.Reason, ErrStoppedEarly) && e.FinishReason != "" {
		reason += ": " + e.FinishReason
	}
	if e.Stage == "" {
		return reason
	}
	return e.Stage + " generation failed: " + reason
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Public(), e.Err)
	}
	return e.Public()
}

func (e *GenerationError) Unwrap() []error {
	errs := []error{apperr.ErrGeneration, e.Reason}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Check validates a provider response and returns the trimmed text. It
// never accepts partial output: a missing candidate, a non-normal finish
// reason or blank text are all failures.
func Check(stage string, c *Completion, err error) (string, error) {
	if err != nil {
		return "", &GenerationError{Stage: stage, Reason: ErrRequestFailed, Err: err}
	}
	if c == nil {
		return "", &GenerationError{Stage: stage, Reason: ErrNoCandidates}
	}
	if !c.Finished {
		return "", &GenerationError{Stage: stage, Reason: ErrStoppedEarly, FinishReason: c.FinishReason}
	}
	text := strings.TrimSpace(c.Text)
	if text == "" {
		return "", &GenerationError{Stage: stage, Reason: ErrEmptyText}
	}
	return text, nil
}
