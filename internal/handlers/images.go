// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkpress/internal/apperr"
	"inkpress/internal/models"
	"inkpress/internal/storage"
)

// UploadFeaturedImage stores a multipart "file" upload in object storage
// and points the article's featuredImage at it. A previously uploaded
// image is removed afterwards.
func (a *API) UploadFeaturedImage(w http.ResponseWriter, r *http.Request) {
	if a.images == nil {
		apperr.WriteJSON(w, r, apperr.Unavailable("object storage is not configured"))
		return
	}
	ctx := r.Context()

	art, err := a.articles.FindByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		apperr.WriteJSON(w, r, err)
		return
	}

	// Limit request body to the image size plus some overhead for the form.
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxImageSize+1024)
	if err := r.ParseMultipartForm(storage.MaxImageSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apperr.WriteJSON(w, r, apperr.TooLarge("image exceeds %d MB", storage.MaxImageSize>>20))
			return
		}
		apperr.WriteJSON(w, r, apperr.Validation("expected a multipart form with a file field"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		apperr.WriteJSON(w, r, apperr.Validation("no file provided"))
		return
	}
	defer file.Close()
	if header.Size > storage.MaxImageSize {
		apperr.WriteJSON(w, r, apperr.TooLarge("image exceeds %d MB", storage.MaxImageSize>>20))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		apperr.WriteJSON(w, r, apperr.Validation("failed to read file"))
		return
	}
	contentType, ext, ok := storage.DetectImage(data)
	if !ok {
		apperr.WriteJSON(w, r, apperr.Validation("file type %q is not allowed", contentType))
		return
	}

	key := storage.ImageKey(art.ID, ext)
	url, err := a.images.Upload(ctx, key, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		apperr.WriteJSON(w, r, apperr.Storage("upload image", err))
		return
	}

	updated, err := a.articles.Update(ctx, art.ID.String(), models.ArticleUpdate{
		FeaturedImage: models.Some(url),
	})
	if err != nil {
		// The article row is the reference; drop the orphaned object.
		a.removeImage(context.WithoutCancel(ctx), url)
		apperr.WriteJSON(w, r, err)
		return
	}

	if art.FeaturedImage != nil && *art.FeaturedImage != url {
		a.removeImage(ctx, *art.FeaturedImage)
	}
	slog.Info("featured image uploaded", "id", art.ID, "key", key, "size", len(data), "type", contentType)
	writeJSON(w, http.StatusOK, updated)
}

// removeImage deletes an uploaded image, logging instead of failing.
// Images hosted elsewhere are left alone.
func (a *API) removeImage(ctx context.Context, url string) {
	removed, err := a.images.DeleteURL(ctx, url)
	if err != nil {
		slog.Warn("featured image cleanup failed", "url", url, "error", err)
		return
	}
	if removed {
		slog.Info("featured image removed", "url", url)
	}
}
