// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the public blog.
// Every page template is paired with the shared base layout.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"inkpress/internal/markdown"
	"inkpress/internal/models"
)

//go:embed templates/blog/*.html
var blogFS embed.FS

// PlaceholderImage is shown for articles without a featured image.
const PlaceholderImage = "/static/placeholder.svg"

// PageData holds all data passed to blog templates.
type PageData struct {
	Title       string // Page title for <title> tag
	Description string // meta description
	Articles    []models.Article
	Article     *models.Article
	Body        template.HTML // rendered article markdown
	Message     string        // error pages
}

// Renderer handles template parsing and execution for blog pages.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// New parses all blog templates from the embedded filesystem.
// When devMode is true, pages load fonts and styles from a CDN.
func New(devMode bool) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		funcMap: template.FuncMap{
			"isDev": func() bool {
				return devMode
			},
			// imageURL falls back to the placeholder for articles without
			// a featured image.
			"imageURL": func(s *string) string {
				if s == nil || strings.TrimSpace(*s) == "" {
					return PlaceholderImage
				}
				return *s
			},
			"publishDate": func(a models.Article, layout string) string {
				return PublishDate(a).Format(layout)
			},
			"readingTime": markdown.ReadingTime,
			"year": func() int {
				return time.Now().Year()
			},
		},
	}

	pages, err := fs.Glob(blogFS, "templates/blog/*.html")
	if err != nil {
		return nil, fmt.Errorf("glob templates: %w", err)
	}

	for _, page := range pages {
		name := page[strings.LastIndex(page, "/")+1:]
		if name == "base.html" {
			continue
		}
		tmpl, err := template.New("base.html").Funcs(r.funcMap).ParseFS(
			blogFS, "templates/blog/base.html", page,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[strings.TrimSuffix(name, ".html")] = tmpl
	}

	return r, nil
}

// Page renders the named template inside the base layout with the given
// status. The page is buffered so a template error never leaves a half
// written response.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		slog.Error("template render failed", "template", name, "path", r.URL.Path, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// PublishDate is the date shown for an article: its publish time, or its
// creation time when it has never been published.
func PublishDate(a models.Article) time.Time {
	if a.PublishedAt != nil {
		return *a.PublishedAt
	}
	return a.CreatedAt
}
