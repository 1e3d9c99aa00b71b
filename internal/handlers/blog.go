// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkpress/internal/apperr"
	"inkpress/internal/markdown"
	"inkpress/internal/models"
	"inkpress/internal/render"
)

// BlogStore is the read side the public blog needs.
type BlogStore interface {
	ListPublished(ctx context.Context) ([]models.Article, error)
	FindBySlug(ctx context.Context, slug string) (*models.Article, error)
}

// Blog serves the server-rendered public pages.
type Blog struct {
	articles BlogStore
	renderer *render.Renderer
}

// NewBlog creates the public blog handler group.
func NewBlog(articles BlogStore, renderer *render.Renderer) *Blog {
	return &Blog{articles: articles, renderer: renderer}
}

// Index lists published articles, most recently published first.
func (b *Blog) Index(w http.ResponseWriter, r *http.Request) {
	items, err := b.articles.ListPublished(r.Context())
	if err != nil {
		slog.Error("list published articles", "error", err)
		b.errorPage(w, r, http.StatusInternalServerError, "Something went wrong", "Please try again later.")
		return
	}
	b.renderer.Page(w, r, http.StatusOK, "list", &render.PageData{
		Title:       "Blog",
		Description: "Latest articles",
		Articles:    items,
	})
}

// Post renders one published article. Drafts are indistinguishable from
// missing slugs.
func (b *Blog) Post(w http.ResponseWriter, r *http.Request) {
	art, err := b.articles.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			b.notFound(w, r)
			return
		}
		slog.Error("load article", "slug", chi.URLParam(r, "slug"), "error", err)
		b.errorPage(w, r, http.StatusInternalServerError, "Something went wrong", "Please try again later.")
		return
	}
	if !art.IsPublished() {
		b.notFound(w, r)
		return
	}

	body, err := markdown.ToHTML(art.Content)
	if err != nil {
		slog.Error("render markdown", "id", art.ID, "error", err)
		b.errorPage(w, r, http.StatusInternalServerError, "Something went wrong", "Please try again later.")
		return
	}

	b.renderer.Page(w, r, http.StatusOK, "post", &render.PageData{
		Title:       art.Title,
		Description: art.Excerpt,
		Article:     art,
		Body:        template.HTML(body), // raw HTML is dropped by the markdown renderer
	})
}

// NotFound is the blog's catch-all 404 page.
func (b *Blog) NotFound(w http.ResponseWriter, r *http.Request) {
	b.notFound(w, r)
}

func (b *Blog) notFound(w http.ResponseWriter, r *http.Request) {
	b.errorPage(w, r, http.StatusNotFound, "Article Not Found", "The article you are looking for does not exist.")
}

func (b *Blog) errorPage(w http.ResponseWriter, r *http.Request, status int, title, msg string) {
	b.renderer.Page(w, r, status, "error", &render.PageData{
		Title:   title,
		Message: msg,
	})
}
