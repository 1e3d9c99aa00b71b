// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models holds the domain types shared by the store, the generation
// pipeline and the HTTP handlers.
package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"inkpress/internal/apperr"
)

// ArticleStatus represents the publishing state of an article.
type ArticleStatus string

const (
	StatusDraft     ArticleStatus = "draft"
	StatusPublished ArticleStatus = "published"
)

// Valid reports whether s is one of the known states.
func (s ArticleStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Article is the only persisted entity. Slug is assigned once at creation
// and never re-derived from later title edits.
type Article struct {
	ID            uuid.UUID     `json:"id"`
	Title         string        `json:"title"`
	Slug          string        `json:"slug"`
	Content       string        `json:"content"`
	Excerpt       string        `json:"excerpt"`
	FeaturedImage *string       `json:"featuredImage"`
	Status        ArticleStatus `json:"status"`
	PublishedAt   *time.Time    `json:"publishedAt"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// IsPublished returns true if the article is publicly visible.
func (a *Article) IsPublished() bool {
	return a.Status == StatusPublished
}

// ArticleInput carries the fields for a new article. ID and CreatedAt are
// always assigned by the store.
type ArticleInput struct {
	Title         string        `json:"title"`
	Slug          string        `json:"slug,omitempty"`
	Content       string        `json:"content"`
	Excerpt       string        `json:"excerpt"`
	FeaturedImage *string       `json:"featuredImage,omitempty"`
	Status        ArticleStatus `json:"status,omitempty"`
	PublishedAt   *time.Time    `json:"publishedAt,omitempty"`
}

// UnmarshalJSON accepts the same publishedAt strings as ArticleUpdate.
func (in *ArticleInput) UnmarshalJSON(b []byte) error {
	type plain ArticleInput
	aux := struct {
		*plain
		PublishedAt NullableTime `json:"publishedAt"`
	}{plain: (*plain)(in)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	in.PublishedAt = aux.PublishedAt.Value
	return nil
}

// Normalize trims text fields, defaults the status to draft and keeps
// PublishedAt consistent with the status.
func (in *ArticleInput) Normalize(now time.Time) {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Excerpt = strings.TrimSpace(in.Excerpt)
	if in.FeaturedImage != nil && strings.TrimSpace(*in.FeaturedImage) == "" {
		in.FeaturedImage = nil
	}
	if in.Status == "" {
		in.Status = StatusDraft
	}
	switch in.Status {
	case StatusPublished:
		if in.PublishedAt == nil {
			t := now
			in.PublishedAt = &t
		}
	case StatusDraft:
		in.PublishedAt = nil
	}
}

// Validate checks the required fields. The slug is checked by the caller
// because its format rules live in the slug package.
func (in *ArticleInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return apperr.Validation("title is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return apperr.Validation("content is required")
	}
	if strings.TrimSpace(in.Excerpt) == "" {
		return apperr.Validation("excerpt is required")
	}
	if in.Status != "" && !in.Status.Valid() {
		return apperr.Validation("status must be %q or %q", StatusDraft, StatusPublished)
	}
	return nil
}

// ArticleUpdate is a partial update: nil pointers and unset Nullable fields
// are left untouched. Slug is deliberately absent.
type ArticleUpdate struct {
	Title         *string          `json:"title,omitempty"`
	Content       *string          `json:"content,omitempty"`
	Excerpt       *string          `json:"excerpt,omitempty"`
	Status        *ArticleStatus   `json:"status,omitempty"`
	FeaturedImage Nullable[string] `json:"featuredImage"`
	PublishedAt   NullableTime     `json:"publishedAt"`
}

// IsEmpty reports whether the update carries no fields at all.
func (u *ArticleUpdate) IsEmpty() bool {
	return u.Title == nil && u.Content == nil && u.Excerpt == nil &&
		u.Status == nil && !u.FeaturedImage.Set && !u.PublishedAt.Set
}

// Validate rejects blank required fields and unknown states.
func (u *ArticleUpdate) Validate() error {
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return apperr.Validation("title cannot be blank")
	}
	if u.Content != nil && strings.TrimSpace(*u.Content) == "" {
		return apperr.Validation("content cannot be blank")
	}
	if u.Excerpt != nil && strings.TrimSpace(*u.Excerpt) == "" {
		return apperr.Validation("excerpt cannot be blank")
	}
	if u.Status != nil && !u.Status.Valid() {
		return apperr.Validation("status must be %q or %q", StatusDraft, StatusPublished)
	}
	return nil
}

// Apply writes the supplied fields onto a. A status change without an
// explicit publishedAt stamps the publish time (keeping an existing one) or
// clears it when reverting to draft.
func (u *ArticleUpdate) Apply(a *Article, now time.Time) {
	if u.Title != nil {
		a.Title = *u.Title
	}
	if u.Content != nil {
		a.Content = *u.Content
	}
	if u.Excerpt != nil {
		a.Excerpt = *u.Excerpt
	}
	if u.FeaturedImage.Set {
		a.FeaturedImage = u.FeaturedImage.Value
	}
	if u.Status != nil {
		a.Status = *u.Status
	}
	if u.PublishedAt.Set {
		a.PublishedAt = u.PublishedAt.Value
		return
	}
	if u.Status != nil {
		switch *u.Status {
		case StatusPublished:
			if a.PublishedAt == nil {
				t := now
				a.PublishedAt = &t
			}
		case StatusDraft:
			a.PublishedAt = nil
		}
	}
}

// Stats summarises the article table for the admin dashboard.
type Stats struct {
	Total     int `json:"total"`
	Published int `json:"published"`
	Drafts    int `json:"drafts"`
	ThisWeek  int `json:"thisWeek"`
}

// StatsWindow is the trailing window counted by Stats.ThisWeek.
const StatsWindow = 7 * 24 * time.Hour
