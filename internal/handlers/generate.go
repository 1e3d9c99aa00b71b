// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"inkpress/internal/apperr"
	"inkpress/internal/batch"
	"inkpress/internal/models"
)

// generateRequest accepts any JSON value for title so a non-string can be
// reported as a validation error rather than a decode failure.
type generateRequest struct {
	Title any `json:"title"`
}

type batchRequest struct {
	Titles []string `json:"titles"`
}

type batchResponse struct {
	Articles []models.Article `json:"articles"`
}

// batchFailure is the 500 body for a batch that stopped part way.
type batchFailure struct {
	Error    string           `json:"error"`
	Message  string           `json:"message"`
	FailedAt int              `json:"failedAt"`
	Total    int              `json:"total"`
	Articles []models.Article `json:"articles"`
}

// Generate creates one draft article from a title.
func (a *API) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apperr.WriteJSON(w, r, err)
		return
	}
	title, ok := req.Title.(string)
	if !ok || title == "" {
		apperr.WriteJSON(w, r, apperr.Validation("title is required"))
		return
	}
	if err := validateTitle(title); err != nil {
		apperr.WriteJSON(w, r, err)
		return
	}

	ctx, cancel := a.generationContext(r)
	defer cancel()

	slog.Info("generating article", "title", title)
	art, err := a.gen.GenerateOne(ctx, title)
	if err != nil {
		apperr.WriteJSON(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, art)
}

// GenerateBatch runs titles sequentially. On failure the articles created
// before the failing title are returned alongside its position.
func (a *API) GenerateBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apperr.WriteJSON(w, r, err)
		return
	}
	if len(req.Titles) > maxBatchTitles {
		apperr.WriteJSON(w, r, apperr.Validation("at most %d titles per batch", maxBatchTitles))
		return
	}
	for i, t := range req.Titles {
		if err := validateTitle(t); err != nil {
			apperr.WriteJSON(w, r, apperr.Validation("titles[%d]: %s", i, apperr.Message(err)))
			return
		}
	}

	// Every title gets the full generation timeout.
	budget := a.genTimeout * time.Duration(max(len(req.Titles), 1))
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), budget)
	defer cancel()
	// The server-wide write timeout only covers a single generation.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Now().Add(budget + 30*time.Second)); err != nil && !errors.Is(err, http.ErrNotSupported) {
		slog.Warn("extend write deadline", "error", err)
	}

	articles, err := a.gen.GenerateBatch(ctx, req.Titles, func(p batch.Progress) {
		if p.State == batch.StateRunning && p.Article == nil {
			slog.Info("batch progress", "position", p.Index, "total", p.Total, "title", p.Title)
		}
	})
	if err == nil {
		writeJSON(w, http.StatusOK, batchResponse{Articles: orEmpty(articles)})
		return
	}

	var berr *batch.Error
	if !errors.As(err, &berr) {
		apperr.WriteJSON(w, r, err)
		return
	}
	slog.Error("batch generation failed",
		"position", berr.Index,
		"total", berr.Total,
		"title", berr.Title,
		"created", len(articles),
		"error", berr.Err,
	)
	status, label := apperr.Status(berr.Err)
	if status < http.StatusInternalServerError {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, batchFailure{
		Error:    label,
		Message:  apperr.Message(berr),
		FailedAt: berr.Index,
		Total:    berr.Total,
		Articles: orEmpty(articles),
	})
}
