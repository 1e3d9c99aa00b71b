package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"inkpress/internal/apperr"
	"inkpress/internal/models"
	"inkpress/internal/store"
)

func input(title, s string) models.ArticleInput {
	return models.ArticleInput{Title: title, Slug: s, Content: "body", Excerpt: "summary"}
}

func TestMemory_SlugUnique(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.Create(ctx, input("A", "a")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := m.Create(ctx, input("A again", "a"))
	if !errors.Is(err, store.ErrSlugTaken) {
		t.Fatalf("second create = %v, want ErrSlugTaken", err)
	}
	if !errors.Is(err, apperr.ErrConflict) {
		t.Error("ErrSlugTaken should be a conflict")
	}
	if m.Len() != 1 {
		t.Errorf("len = %d, want 1", m.Len())
	}
}

func TestMemory_ListNewestFirst(t *testing.T) {
	m := NewMemory()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.Put(models.Article{Title: "old", Slug: "old", CreatedAt: base})
	m.Put(models.Article{Title: "new", Slug: "new", CreatedAt: base.Add(time.Hour)})

	items, err := m.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].Slug != "new" {
		t.Errorf("order: got %v", items)
	}
}

func TestMemory_NotFound(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for _, id := range []string{"not-a-uuid", "00000000-0000-0000-0000-000000000001"} {
		if _, err := m.FindByID(ctx, id); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("FindByID(%q) = %v, want ErrNotFound", id, err)
		}
		ok, err := m.Delete(ctx, id)
		if ok || err != nil {
			t.Errorf("Delete(%q) = %v, %v; want false, nil", id, ok, err)
		}
	}
	if _, err := m.FindBySlug(ctx, "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("FindBySlug = %v, want ErrNotFound", err)
	}
}

func TestMemory_Stats(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.Put(models.Article{Slug: "a", Status: models.StatusDraft, CreatedAt: now.Add(-time.Hour)})
	m.Put(models.Article{Slug: "b", Status: models.StatusPublished, CreatedAt: now.Add(-6 * 24 * time.Hour)})
	m.Put(models.Article{Slug: "c", Status: models.StatusDraft, CreatedAt: now.Add(-8 * 24 * time.Hour)})
	m.Put(models.Article{Slug: "d", Status: models.StatusPublished, CreatedAt: now.Add(-models.StatsWindow)})

	st, err := m.Stats(context.Background(), now)
	if err != nil {
		t.Fatal(err)
	}
	want := models.Stats{Total: 4, Published: 2, Drafts: 2, ThisWeek: 2}
	if *st != want {
		t.Errorf("stats = %+v, want %+v", *st, want)
	}
	if st.Published+st.Drafts != st.Total {
		t.Error("published + drafts should equal total")
	}
}
