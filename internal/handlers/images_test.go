// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"inkpress/internal/ai/aitest"
	"inkpress/internal/models"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

func uploadRequest(t *testing.T, path, field string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "cover.png")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadFeaturedImage(t *testing.T) {
	images := newFakeImages()
	e := newTestEnv(t, aitest.New(), images)
	old := "https://cdn.example.com/articles/old.png"
	a := e.mem.Put(models.Article{
		Title: "Cover", Slug: "cover", Content: "c", Excerpt: "e",
		Status: models.StatusDraft, FeaturedImage: &old, CreatedAt: time.Now(),
	})

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, uploadRequest(t, "/api/articles/"+a.ID.String()+"/featured-image", "file", pngHeader))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body)
	}

	got := decode[models.Article](t, rec)
	if got.FeaturedImage == nil {
		t.Fatal("featuredImage should be set")
	}
	prefix := "https://cdn.example.com/articles/" + a.ID.String() + "/"
	if !strings.HasPrefix(*got.FeaturedImage, prefix) || !strings.HasSuffix(*got.FeaturedImage, ".png") {
		t.Errorf("featuredImage = %q", *got.FeaturedImage)
	}
	if len(images.uploads) != 1 {
		t.Errorf("uploads = %d, want 1", len(images.uploads))
	}
	if len(images.deleted) != 1 || images.deleted[0] != old {
		t.Errorf("old image should be removed, deleted = %v", images.deleted)
	}
}

func TestUploadFeaturedImage_Errors(t *testing.T) {
	e := newTestEnv(t, aitest.New(), newFakeImages())
	a := seed(e, "Cover", "cover", models.StatusDraft, time.Now())
	path := "/api/articles/" + a.ID.String() + "/featured-image"

	tests := []struct {
		name       string
		req        *http.Request
		wantStatus int
	}{
		{"unknown article", uploadRequest(t, "/api/articles/00000000-0000-0000-0000-000000000000/featured-image", "file", pngHeader), http.StatusNotFound},
		{"wrong field", uploadRequest(t, path, "image", pngHeader), http.StatusBadRequest},
		{"not an image", uploadRequest(t, path, "file", []byte("hello, plain text")), http.StatusBadRequest},
		{"not multipart", httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`)), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.router.ServeHTTP(rec, tt.req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d; body %s", rec.Code, tt.wantStatus, rec.Body)
			}
		})
	}
}

func TestUploadFeaturedImage_StorageDisabled(t *testing.T) {
	e := newTestEnv(t, aitest.New(), nil)
	a := seed(e, "Cover", "cover", models.StatusDraft, time.Now())

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, uploadRequest(t, "/api/articles/"+a.ID.String()+"/featured-image", "file", pngHeader))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestUploadFeaturedImage_UploadFails(t *testing.T) {
	images := newFakeImages()
	images.failUp = errors.New("bucket gone")
	e := newTestEnv(t, aitest.New(), images)
	a := seed(e, "Cover", "cover", models.StatusDraft, time.Now())

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, uploadRequest(t, "/api/articles/"+a.ID.String()+"/featured-image", "file", pngHeader))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "bucket gone") {
		t.Errorf("body leaks storage error: %s", rec.Body)
	}
}
