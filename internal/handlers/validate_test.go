package handlers

import (
	"errors"
	"strings"
	"testing"

	"inkpress/internal/apperr"
	"inkpress/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name      string
		in        models.ArticleInput
		wantError bool
	}{
		{"valid", models.ArticleInput{Title: "My Title", Content: "Body", Excerpt: "Ex"}, false},
		{"title too long", models.ArticleInput{Title: strings.Repeat("a", 301)}, true},
		{"title at limit", models.ArticleInput{Title: strings.Repeat("é", 300)}, false},
		{"slug too long", models.ArticleInput{Title: "t", Slug: strings.Repeat("a", 256)}, true},
		{"content too long", models.ArticleInput{Title: "t", Content: strings.Repeat("a", 200_001)}, true},
		{"excerpt too long", models.ArticleInput{Title: "t", Excerpt: strings.Repeat("a", 1_001)}, true},
		{"empty fields left to the store", models.ArticleInput{}, false},
		{"https image", models.ArticleInput{FeaturedImage: ptr("https://cdn.example.com/a.png")}, false},
		{"relative image", models.ArticleInput{FeaturedImage: ptr("/static/placeholder.svg")}, false},
		{"javascript image", models.ArticleInput{FeaturedImage: ptr("javascript:alert(1)")}, true},
		{"hostless image", models.ArticleInput{FeaturedImage: ptr("https:///a.png")}, true},
		{"bare word image", models.ArticleInput{FeaturedImage: ptr("cover.png")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateInput(&tt.in)
			if tt.wantError {
				if !errors.Is(err, apperr.ErrValidation) {
					t.Errorf("validateInput = %v, want a validation error", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	tests := []struct {
		name      string
		u         models.ArticleUpdate
		wantError bool
	}{
		{"empty", models.ArticleUpdate{}, false},
		{"title only", models.ArticleUpdate{Title: ptr("New")}, false},
		{"long content", models.ArticleUpdate{Content: ptr(strings.Repeat("a", 200_001))}, true},
		{"null image", models.ArticleUpdate{FeaturedImage: models.Null[string]()}, false},
		{"ftp image", models.ArticleUpdate{FeaturedImage: models.Some("ftp://x/a.png")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateUpdate(&tt.u)
			if (err != nil) != tt.wantError {
				t.Errorf("validateUpdate = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}
