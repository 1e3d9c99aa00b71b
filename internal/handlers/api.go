// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for inkpress: the JSON
// article API and the server-rendered public blog. Handlers receive their
// dependencies through small interfaces on the handler struct.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"inkpress/internal/apperr"
	"inkpress/internal/batch"
	"inkpress/internal/models"
)

// maxJSONBody caps API request bodies. Article content is the largest field.
const maxJSONBody = 1 << 20

// ArticleStore is the persistence the API needs.
type ArticleStore interface {
	List(ctx context.Context) ([]models.Article, error)
	ListPublished(ctx context.Context) ([]models.Article, error)
	FindByID(ctx context.Context, id string) (*models.Article, error)
	FindBySlug(ctx context.Context, slug string) (*models.Article, error)
	Create(ctx context.Context, in models.ArticleInput) (*models.Article, error)
	Update(ctx context.Context, id string, u models.ArticleUpdate) (*models.Article, error)
	Delete(ctx context.Context, id string) (bool, error)
	Stats(ctx context.Context, now time.Time) (*models.Stats, error)
}

// Generator runs the generate-and-store pipeline.
type Generator interface {
	GenerateOne(ctx context.Context, title string) (*models.Article, error)
	GenerateBatch(ctx context.Context, titles []string, onProgress batch.ProgressFunc) ([]models.Article, error)
}

// SlugAllocator picks an unused slug for manual creates.
type SlugAllocator interface {
	Allocate(ctx context.Context, title string) (string, error)
}

// ImageStore holds uploaded featured images.
type ImageStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	DeleteURL(ctx context.Context, rawURL string) (bool, error)
}

// API groups the JSON article endpoints and their dependencies.
type API struct {
	articles        ArticleStore
	gen             Generator
	slugs           SlugAllocator
	images          ImageStore
	genTimeout      time.Duration
	maxSlugAttempts int
	now             func() time.Time
}

// Options configures NewAPI. Images may be nil when object storage is not
// configured; the upload endpoint then answers 503.
type Options struct {
	Images            ImageStore
	GenerationTimeout time.Duration
	MaxSlugAttempts   int
}

// NewAPI creates the API handler group.
func NewAPI(articles ArticleStore, gen Generator, slugs SlugAllocator, opts Options) *API {
	if opts.GenerationTimeout <= 0 {
		opts.GenerationTimeout = 90 * time.Second
	}
	if opts.MaxSlugAttempts <= 0 {
		opts.MaxSlugAttempts = batch.DefaultMaxSlugAttempts
	}
	return &API{
		articles:        articles,
		gen:             gen,
		slugs:           slugs,
		images:          opts.Images,
		genTimeout:      opts.GenerationTimeout,
		maxSlugAttempts: opts.MaxSlugAttempts,
		now:             time.Now,
	}
}

// generationContext detaches generation from the client connection: a
// caller that disconnects does not abort an article already in flight.
func (a *API) generationContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(r.Context()), a.genTimeout)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("write json response", "error", err)
	}
}

// decodeJSON reads a size-limited JSON body into dst. Malformed or
// oversized bodies are validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.TooLarge("request body exceeds %d bytes", tooLarge.Limit)
		}
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		return apperr.Validation("invalid JSON body: %s", jsonProblem(err))
	}
	return nil
}

// jsonProblem describes a decode error without echoing request content.
func jsonProblem(err error) string {
	var syntax *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntax):
		return fmt.Sprintf("syntax error at offset %d", syntax.Offset)
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return fmt.Sprintf("field %q has the wrong type", typeErr.Field)
	default:
		return "malformed"
	}
}

// orEmpty keeps list endpoints answering [] instead of null.
func orEmpty(items []models.Article) []models.Article {
	if items == nil {
		return []models.Article{}
	}
	return items
}
