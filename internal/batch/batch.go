// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package batch drives article generation: one title at a time, each one
// generated, given a unique slug and stored as a draft.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"inkpress/internal/apperr"
	"inkpress/internal/metrics"
	"inkpress/internal/models"
	"inkpress/internal/store"
	"inkpress/internal/textgen"
)

// DefaultMaxSlugAttempts bounds the insert retries after a slug conflict.
const DefaultMaxSlugAttempts = 5

// Generator produces article text for a title.
type Generator interface {
	Generate(ctx context.Context, title string) (textgen.Result, error)
}

// Allocator hands out a currently unused slug for a title.
type Allocator interface {
	Allocate(ctx context.Context, title string) (string, error)
}

// Creator persists a new article. It returns store.ErrSlugTaken when the
// slug was claimed after allocation.
type Creator interface {
	Create(ctx context.Context, in models.ArticleInput) (*models.Article, error)
}

// State is a position in the batch lifecycle.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Progress is reported as a batch moves through its states. While Running,
// Article is nil when item Index is starting and set once it is stored.
type Progress struct {
	State   State
	Index   int // 1-based position of the current title
	Total   int
	Title   string
	Article *models.Article
	Err     error
}

// ProgressFunc receives progress updates synchronously.
type ProgressFunc func(Progress)

// Error reports the title that stopped a batch. Titles before Index were
// stored; titles after it were never attempted.
type Error struct {
	Index int // 1-based
	Total int
	Title string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("article %d of %d (%q) failed: %v", e.Index, e.Total, e.Title, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Public is the caller-facing summary of the failure.
func (e *Error) Public() string {
	msg := apperr.Message(e.Err)
	if msg == "" {
		_, msg = apperr.Status(e.Err)
	}
	return fmt.Sprintf("article %d of %d failed: %s", e.Index, e.Total, msg)
}

// Runner generates and stores articles. It holds no per-batch state and is
// safe for concurrent use; each call is strictly sequential.
type Runner struct {
	gen             Generator
	slugs           Allocator
	store           Creator
	maxSlugAttempts int
	itemTimeout     time.Duration
}

// NewRunner creates a Runner. maxSlugAttempts <= 0 selects the default.
func NewRunner(gen Generator, slugs Allocator, creator Creator, maxSlugAttempts int) *Runner {
	if maxSlugAttempts <= 0 {
		maxSlugAttempts = DefaultMaxSlugAttempts
	}
	return &Runner{gen: gen, slugs: slugs, store: creator, maxSlugAttempts: maxSlugAttempts}
}

// WithItemTimeout gives every batch title its own deadline d. Titles then
// run detached from the batch context: cancelling it stops the batch before
// the next title instead of aborting the one in flight.
func (r *Runner) WithItemTimeout(d time.Duration) *Runner {
	r.itemTimeout = d
	return r
}

// GenerateOne generates and stores a single article as a draft.
func (r *Runner) GenerateOne(ctx context.Context, title string) (*models.Article, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}
	a, err := r.generate(ctx, title)
	if err != nil {
		return nil, err
	}
	metrics.ArticlesGenerated.WithLabelValues("single").Inc()
	slog.Info("article generated", "title", title, "slug", a.Slug, "id", a.ID)
	return a, nil
}

// GenerateBatch processes titles in order. Blank titles are dropped first.
// The first failure stops the batch: the articles stored so far are
// returned together with an *Error, and nothing after it is attempted.
// Stored articles are never rolled back.
func (r *Runner) GenerateBatch(ctx context.Context, titles []string, onProgress ProgressFunc) ([]models.Article, error) {
	titles = CleanTitles(titles)
	if len(titles) == 0 {
		return nil, apperr.Validation("titles must contain at least one non-blank title")
	}
	report := func(p Progress) {
		if onProgress != nil {
			onProgress(p)
		}
	}

	total := len(titles)
	created := make([]models.Article, 0, total)
	report(Progress{State: StateIdle, Total: total})

	for i, title := range titles {
		pos := i + 1
		report(Progress{State: StateRunning, Index: pos, Total: total, Title: title})

		a, err := r.runItem(ctx, title)
		if err != nil {
			berr := &Error{Index: pos, Total: total, Title: title, Err: err}
			slog.Error("batch item failed", "title", title, "position", pos, "total", total, "error", err)
			metrics.BatchesTotal.WithLabelValues(string(StateFailed)).Inc()
			report(Progress{State: StateFailed, Index: pos, Total: total, Title: title, Err: berr})
			return created, berr
		}

		created = append(created, *a)
		metrics.ArticlesGenerated.WithLabelValues("batch").Inc()
		slog.Info("article generated", "title", title, "slug", a.Slug, "id", a.ID, "position", pos, "total", total)
		report(Progress{State: StateRunning, Index: pos, Total: total, Title: title, Article: a})
	}

	metrics.BatchesTotal.WithLabelValues(string(StateCompleted)).Inc()
	report(Progress{State: StateCompleted, Index: total, Total: total})
	return created, nil
}

// runItem checks for cancellation before starting a title. Without an item
// timeout the title shares ctx and is aborted with it.
func (r *Runner) runItem(ctx context.Context, title string) (*models.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch cancelled: %w", err)
	}
	if r.itemTimeout <= 0 {
		return r.generate(ctx, title)
	}
	itemCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.itemTimeout)
	defer cancel()
	return r.generate(itemCtx, title)
}

// generate runs the single-title path: text, slug, insert. A slug lost to
// a concurrent writer between allocation and insert is re-allocated.
func (r *Runner) generate(ctx context.Context, title string) (*models.Article, error) {
	res, err := r.gen.Generate(ctx, title)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= r.maxSlugAttempts; attempt++ {
		s, err := r.slugs.Allocate(ctx, title)
		if err != nil {
			return nil, apperr.Storage("allocate slug", err)
		}

		a, err := r.store.Create(ctx, models.ArticleInput{
			Title:   title,
			Slug:    s,
			Content: res.Content,
			Excerpt: res.Excerpt,
			Status:  models.StatusDraft,
		})
		if err == nil {
			return a, nil
		}
		if !errors.Is(err, store.ErrSlugTaken) {
			return nil, err
		}
		metrics.SlugConflicts.Inc()
		slog.Warn("slug taken at insert, retrying", "title", title, "slug", s, "attempt", attempt)
	}
	return nil, apperr.Storage("create article",
		fmt.Errorf("slug for %q still taken after %d attempts", title, r.maxSlugAttempts))
}

// CleanTitles trims every title and drops blank ones.
func CleanTitles(titles []string) []string {
	out := make([]string, 0, len(titles))
	for _, t := range titles {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
