package render

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"inkpress/internal/models"
)

func sampleArticle(image *string) models.Article {
	published := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return models.Article{
		ID:            uuid.New(),
		Title:         "Rust & Go <compared>",
		Slug:          "rust-and-go-compared",
		Content:       strings.Repeat("word ", 450),
		Excerpt:       "A short look at two systems languages.",
		FeaturedImage: image,
		Status:        models.StatusPublished,
		PublishedAt:   &published,
		CreatedAt:     published.Add(-time.Hour),
	}
}

func TestNew(t *testing.T) {
	for _, devMode := range []bool{true, false} {
		rn, err := New(devMode)
		if err != nil {
			t.Fatalf("New(devMode=%v) returned error: %v", devMode, err)
		}
		for _, name := range []string{"list", "post", "error"} {
			if _, ok := rn.templates[name]; !ok {
				t.Errorf("expected template %q to be parsed", name)
			}
		}
		if _, ok := rn.templates["base"]; ok {
			t.Error("base.html should not be registered as a separate template")
		}
	}
}

func TestPage_List(t *testing.T) {
	rn, err := New(false)
	if err != nil {
		t.Fatal(err)
	}
	img := "https://cdn.example.com/cover.png"
	articles := []models.Article{sampleArticle(&img), sampleArticle(nil)}
	articles[1].Slug = "second"

	rec := httptest.NewRecorder()
	rn.Page(rec, httptest.NewRequest(http.MethodGet, "/blog", nil), http.StatusOK, "list", &PageData{
		Title:    "Blog",
		Articles: articles,
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`href="/blog/rust-and-go-compared"`,
		`href="/blog/second"`,
		`src="https://cdn.example.com/cover.png"`,
		`src="` + PlaceholderImage + `"`,
		"Mar 14, 2026",
		"3 min read",
		"Rust &amp; Go &lt;compared&gt;",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("list page missing %q", want)
		}
	}
	if strings.Contains(body, "<compared>") {
		t.Error("title should be escaped")
	}
}

func TestPage_ListEmpty(t *testing.T) {
	rn, err := New(false)
	if err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	rn.Page(rec, httptest.NewRequest(http.MethodGet, "/blog", nil), http.StatusOK, "list", &PageData{})
	if !strings.Contains(rec.Body.String(), "No articles yet") {
		t.Error("empty list should show the empty state")
	}
}

func TestPage_Post(t *testing.T) {
	rn, err := New(false)
	if err != nil {
		t.Fatal(err)
	}
	a := sampleArticle(nil)
	rec := httptest.NewRecorder()
	rn.Page(rec, httptest.NewRequest(http.MethodGet, "/blog/x", nil), http.StatusOK, "post", &PageData{
		Title:   a.Title,
		Article: &a,
		Body:    template.HTML("<h2 id=\"intro\">Intro</h2>"),
	})

	body := rec.Body.String()
	for _, want := range []string{
		`<h2 id="intro">Intro</h2>`,
		"March 14, 2026",
		a.Excerpt,
		PlaceholderImage,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("post page missing %q", want)
		}
	}
}

func TestPage_Status(t *testing.T) {
	rn, err := New(false)
	if err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	rn.Page(rec, httptest.NewRequest(http.MethodGet, "/blog/nope", nil), http.StatusNotFound, "error", &PageData{
		Title:   "Article Not Found",
		Message: "The article you're looking for doesn't exist.",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Article Not Found") {
		t.Error("error page missing title")
	}
}

func TestPage_UnknownTemplate(t *testing.T) {
	rn, err := New(false)
	if err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	rn.Page(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, "missing", &PageData{})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestPublishDate(t *testing.T) {
	a := sampleArticle(nil)
	if !PublishDate(a).Equal(*a.PublishedAt) {
		t.Error("published article should use PublishedAt")
	}
	a.PublishedAt = nil
	if !PublishDate(a).Equal(a.CreatedAt) {
		t.Error("unpublished article should fall back to CreatedAt")
	}
}
