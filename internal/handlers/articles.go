// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"inkpress/internal/apperr"
	"inkpress/internal/metrics"
	"inkpress/internal/models"
	"inkpress/internal/slug"
	"inkpress/internal/store"
)

// List returns every article, newest first.
func (a *API) List(w http.ResponseWriter, r *http.Request) {
	items, err := a.articles.List(r.Context())
	if err != nil {
		apperr.WriteJSON(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(items))
}

// Published returns published articles, most recently published first.
func (a *API) Published(w http.ResponseWriter, r *http.Request) {
	items, err := a.articles.ListPublished(r.Context())
	if err != nil {
		apperr.WriteJSON(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(items))
}

// GetBySlug returns one article by slug.
func (a *API) GetBySlug(w http.ResponseWriter, r *http.Request) {
	art, err := a.articles.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		apperr.WriteJSON(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, art)
}

// GetByID returns one article by id.
func (a *API) GetByID(w http.ResponseWriter, r *http.Request) {
	art, err := a.articles.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apperr.WriteJSON(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, art)
}

// Create stores a manually written article. An explicit slug must be free
// (409 otherwise); without one the slug is derived from the title and
// re-allocated if another writer takes it first.
func (a *API) Create(w http.ResponseWriter, r *http.Request) {
	var in models.ArticleInput
	if err := decodeJSON(w, r, &in); err != nil {
		apperr.WriteJSON(w, r, err)
		return
	}
	in.Normalize(a.now())
	if err := in.Validate(); err != nil {
		apperr.WriteJSON(w, r, err)
		return
	}
	if err := validateInput(&in); err != nil {
		apperr.WriteJSON(w, r, err)
		return
	}

	if in.Slug != "" {
		if !slug.Valid(in.Slug) {
			apperr.WriteJSON(w, r, apperr.Validation("slug must be lowercase letters, digits and single hyphens"))
			return
		}
		art, err := a.articles.Create(r.Context(), in)
		if err != nil {
			apperr.WriteJSON(w, r, err)
			return
		}
		slog.Info("article created", "id", art.ID, "slug", art.Slug)
		writeJSON(w, http.StatusOK, art)
		return
	}

	for attempt := 1; attempt <= a.maxSlugAttempts; attempt++ {
		s, err := a.slugs.Allocate(r.Context(), in.Title)
		if err != nil {
			apperr.WriteJSON(w, r, apperr.Storage("allocate slug", err))
			return
		}
		in.Slug = s
		art, err := a.articles.Create(r.Context(), in)
		if err == nil {
			slog.Info("article created", "id", art.ID, "slug", art.Slug)
			writeJSON(w, http.StatusOK, art)
			return
		}
		if !errors.Is(err, store.ErrSlugTaken) {
			apperr.WriteJSON(w, r, err)
			return
		}
		metrics.SlugConflicts.Inc()
		slog.Warn("slug taken at insert, retrying", "slug", s, "attempt", attempt)
	}
	apperr.WriteJSON(w, r, apperr.Storage("create article", errors.New("slug still taken after retries")))
}

// Update applies a partial update. Changing status without publishedAt
// stamps or clears the publish time.
func (a *API) Update(w http.ResponseWriter, r *http.Request) {
	var u models.ArticleUpdate
	if err := decodeJSON(w, r, &u); err != nil {
		apperr.WriteJSON(w, r, err)
		return
	}
	if err := validateUpdate(&u); err != nil {
		apperr.WriteJSON(w, r, err)
		return
	}
	trimUpdate(&u)

	art, err := a.articles.Update(r.Context(), chi.URLParam(r, "id"), u)
	if err != nil {
		apperr.WriteJSON(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, art)
}

// Delete removes an article and, best effort, its uploaded featured image.
func (a *API) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	art, err := a.articles.FindByID(ctx, id)
	if err != nil {
		apperr.WriteJSON(w, r, err)
		return
	}
	deleted, err := a.articles.Delete(ctx, id)
	if err != nil {
		apperr.WriteJSON(w, r, err)
		return
	}
	if !deleted {
		apperr.WriteJSON(w, r, apperr.NotFound("article"))
		return
	}

	if a.images != nil && art.FeaturedImage != nil {
		a.removeImage(ctx, *art.FeaturedImage)
	}
	slog.Info("article deleted", "id", art.ID, "slug", art.Slug)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Stats returns the dashboard counters.
func (a *API) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.articles.Stats(r.Context(), a.now())
	if err != nil {
		apperr.WriteJSON(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// trimUpdate trims supplied text fields and turns a blank image into null.
func trimUpdate(u *models.ArticleUpdate) {
	if u.Title != nil {
		t := strings.TrimSpace(*u.Title)
		u.Title = &t
	}
	if u.Excerpt != nil {
		e := strings.TrimSpace(*u.Excerpt)
		u.Excerpt = &e
	}
	if u.FeaturedImage.Value != nil && strings.TrimSpace(*u.FeaturedImage.Value) == "" {
		u.FeaturedImage.Value = nil
	}
}
