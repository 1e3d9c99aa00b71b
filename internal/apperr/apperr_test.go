package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: Validation("title is required"), want: http.StatusBadRequest},
		{name: "not found", err: NotFound("article"), want: http.StatusNotFound},
		{name: "conflict", err: Conflict("slug %q is taken", "x"), want: http.StatusConflict},
		{name: "unavailable", err: Unavailable("storage off"), want: http.StatusServiceUnavailable},
		{name: "too large", err: TooLarge("file over %d bytes", 10), want: http.StatusRequestEntityTooLarge},
		{name: "storage", err: Storage("create article", errors.New("boom")), want: http.StatusInternalServerError},
		{name: "wrapped not found", err: fmt.Errorf("find: %w", NotFound("article")), want: http.StatusNotFound},
		{name: "plain error", err: errors.New("mystery"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Status(tt.err)
			if got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMessage_HidesStorageCause(t *testing.T) {
	err := Storage("create article", errors.New("password authentication failed"))
	if msg := Message(err); msg != "" {
		t.Errorf("Message() = %q, want empty for storage errors", msg)
	}
	if !errors.Is(err, ErrStorage) {
		t.Error("storage error should match ErrStorage")
	}
}

func TestMessage_SurfacesValidation(t *testing.T) {
	err := Validation("title is required")
	if got := Message(err); got != "title is required" {
		t.Errorf("Message() = %q, want %q", got, "title is required")
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/articles/x", nil)

	WriteJSON(rec, req, NotFound("article"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type: got %q", ct)
	}

	var body Response
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "not found" {
		t.Errorf("error: got %q, want %q", body.Error, "not found")
	}
	if body.Message != "article not found" {
		t.Errorf("message: got %q, want %q", body.Message, "article not found")
	}
}

type publicErr struct{}

func (publicErr) Error() string  { return "upstream said: quota exceeded for key abc" }
func (publicErr) Public() string { return "request failed" }
func (publicErr) Unwrap() error  { return ErrGeneration }

func TestMessage_PrefersPublicText(t *testing.T) {
	err := fmt.Errorf("article 2 of 3: %w", publicErr{})
	if got := Message(err); got != "request failed" {
		t.Errorf("Message() = %q, want %q", got, "request failed")
	}
	if status, label := Status(err); status != http.StatusInternalServerError || label != "generation failed" {
		t.Errorf("Status() = %d %q", status, label)
	}
}
