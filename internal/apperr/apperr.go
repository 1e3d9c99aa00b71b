// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apperr defines the failure taxonomy shared by the store, the
// generation pipeline and the HTTP layer. Lower layers wrap one of the
// sentinel kinds; the boundary maps the kind to a status code and a JSON
// {error, message} body.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// Sentinel kinds. Match with errors.Is.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrGeneration  = errors.New("generation failed")
	ErrStorage     = errors.New("storage failure")
	ErrUnavailable = errors.New("unavailable")
	ErrTooLarge    = errors.New("payload too large")
)

// Error attaches a caller-safe message to one of the sentinel kinds.
type Error struct {
	Kind    error
	Message string
	Err     error // underlying cause, logged but never sent to the client
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Validation reports malformed or missing input.
func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports an unknown id or slug.
func NotFound(what string) error {
	return &Error{Kind: ErrNotFound, Message: what + " not found"}
}

// Conflict reports a uniqueness clash the caller can fix.
func Conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

// Storage wraps a persistence failure.
func Storage(op string, err error) error {
	return &Error{Kind: ErrStorage, Message: op, Err: err}
}

// Unavailable reports an optional subsystem that is not configured.
func Unavailable(format string, args ...any) error {
	return &Error{Kind: ErrUnavailable, Message: fmt.Sprintf(format, args...)}
}

// TooLarge reports a request body over its size limit.
func TooLarge(format string, args ...any) error {
	return &Error{Kind: ErrTooLarge, Message: fmt.Sprintf(format, args...)}
}

// Response is the JSON body written for every failed API request.
type Response struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Status maps an error to its HTTP status and short error label.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "payload too large"
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, ErrGeneration):
		return http.StatusInternalServerError, "generation failed"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// Public is implemented by errors that carry their own caller-safe text.
type Public interface {
	error
	Public() string
}

// Message returns the caller-safe text for err. Generation failures surface
// their reason; storage and unknown failures stay opaque.
func Message(err error) string {
	var p Public
	if errors.As(err, &p) {
		return p.Public()
	}
	var e *Error
	if errors.As(err, &e) && !errors.Is(err, ErrStorage) {
		return e.Message
	}
	if errors.Is(err, ErrGeneration) {
		return err.Error()
	}
	return ""
}

// ToResponse builds the status and body for err.
func ToResponse(err error) (int, Response) {
	status, label := Status(err)
	return status, Response{Error: label, Message: Message(err)}
}

// WriteJSON writes err as a JSON error response. Server-side failures are
// logged with their full cause.
func WriteJSON(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToResponse(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
