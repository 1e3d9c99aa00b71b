// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storetest provides an in-memory article store with the same
// contract as store.ArticleStore, for tests that do not need PostgreSQL.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"inkpress/internal/apperr"
	"inkpress/internal/models"
	"inkpress/internal/slug"
	"inkpress/internal/store"
)

// Memory is a goroutine-safe in-memory article store. Slugs are unique, as
// with the database index.
type Memory struct {
	mu       sync.Mutex
	articles map[uuid.UUID]models.Article
	order    int64
	seq      map[uuid.UUID]int64

	// Now stamps CreatedAt and publish times. Defaults to time.Now.
	Now func() time.Time
	// FailCreate, when set, is returned by Create instead of inserting.
	FailCreate error
	// BeforeCreate runs before each insert with the candidate slug, which
	// lets tests simulate a concurrent writer taking it first.
	BeforeCreate func(slug string)
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		articles: make(map[uuid.UUID]models.Article),
		seq:      make(map[uuid.UUID]int64),
		Now:      time.Now,
	}
}

func (m *Memory) List(_ context.Context) ([]models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.snapshot(func(models.Article) bool { return true })
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return m.seq[items[i].ID] > m.seq[items[j].ID]
	})
	return items, nil
}

func (m *Memory) ListPublished(_ context.Context) ([]models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.snapshot(func(a models.Article) bool { return a.IsPublished() })
	sort.SliceStable(items, func(i, j int) bool {
		pi, pj := items[i].PublishedAt, items[j].PublishedAt
		switch {
		case pi == nil:
			return false
		case pj == nil:
			return true
		default:
			return pi.After(*pj)
		}
	})
	return items, nil
}

func (m *Memory) FindByID(_ context.Context, id string) (*models.Article, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.NotFound("article")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[uid]
	if !ok {
		return nil, apperr.NotFound("article")
	}
	return &a, nil
}

func (m *Memory) FindBySlug(_ context.Context, s string) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.articles {
		if a.Slug == s {
			return &a, nil
		}
	}
	return nil, apperr.NotFound("article")
}

func (m *Memory) SlugExists(_ context.Context, s string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slugTaken(s), nil
}

func (m *Memory) Create(_ context.Context, in models.ArticleInput) (*models.Article, error) {
	if m.BeforeCreate != nil {
		m.BeforeCreate(in.Slug)
	}
	if m.FailCreate != nil {
		return nil, m.FailCreate
	}
	now := m.Now()
	in.Normalize(now)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if !slug.Valid(in.Slug) {
		return nil, apperr.Validation("slug %q is not URL-safe", in.Slug)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slugTaken(in.Slug) {
		return nil, store.ErrSlugTaken
	}
	a := models.Article{
		ID:            uuid.New(),
		Title:         in.Title,
		Slug:          in.Slug,
		Content:       in.Content,
		Excerpt:       in.Excerpt,
		FeaturedImage: in.FeaturedImage,
		Status:        in.Status,
		PublishedAt:   in.PublishedAt,
		CreatedAt:     now,
	}
	m.order++
	m.seq[a.ID] = m.order
	m.articles[a.ID] = a
	return &a, nil
}

func (m *Memory) Update(_ context.Context, id string, u models.ArticleUpdate) (*models.Article, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.NotFound("article")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[uid]
	if !ok {
		return nil, apperr.NotFound("article")
	}
	u.Apply(&a, m.Now())
	m.articles[uid] = a
	return &a, nil
}

func (m *Memory) Delete(_ context.Context, id string) (bool, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.articles[uid]; !ok {
		return false, nil
	}
	delete(m.articles, uid)
	delete(m.seq, uid)
	return true, nil
}

func (m *Memory) Stats(_ context.Context, now time.Time) (*models.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := now.Add(-models.StatsWindow)
	st := &models.Stats{}
	for _, a := range m.articles {
		st.Total++
		switch a.Status {
		case models.StatusPublished:
			st.Published++
		case models.StatusDraft:
			st.Drafts++
		}
		if a.CreatedAt.After(cutoff) {
			st.ThisWeek++
		}
	}
	return st, nil
}

// Put stores a as-is, bypassing validation. Useful for seeding fixtures
// with specific timestamps.
func (m *Memory) Put(a models.Article) models.Article {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	m.order++
	m.seq[a.ID] = m.order
	m.articles[a.ID] = a
	return a
}

// Len returns the number of stored articles.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.articles)
}

func (m *Memory) slugTaken(s string) bool {
	for _, a := range m.articles {
		if a.Slug == s {
			return true
		}
	}
	return false
}

func (m *Memory) snapshot(keep func(models.Article) bool) []models.Article {
	items := []models.Article{}
	for _, a := range m.articles {
		if keep(a) {
			items = append(items, a)
		}
	}
	return items
}
