// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store persists articles in PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"inkpress/internal/apperr"
	"inkpress/internal/models"
	"inkpress/internal/slug"
)

// ErrSlugTaken is returned by Create when the slug unique index rejects the
// insert. Callers holding a generated slug re-allocate and retry.
var ErrSlugTaken = &apperr.Error{Kind: apperr.ErrConflict, Message: "slug is already in use"}

// articleColumns is the select list matching scanArticle.
const articleColumns = `id, title, slug, content, excerpt, featured_image,
	status, published_at, created_at`

// ArticleStore handles all article database operations.
type ArticleStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewArticleStore creates a new ArticleStore with the given database connection.
func NewArticleStore(db *sql.DB) *ArticleStore {
	return &ArticleStore{db: db, now: time.Now}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*models.Article, error) {
	a := &models.Article{}
	err := row.Scan(
		&a.ID, &a.Title, &a.Slug, &a.Content, &a.Excerpt, &a.FeaturedImage,
		&a.Status, &a.PublishedAt, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *ArticleStore) queryArticles(ctx context.Context, op, query string, args ...any) ([]models.Article, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	defer rows.Close()

	items := []models.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, apperr.Storage(op, fmt.Errorf("scan article: %w", err))
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(op, err)
	}
	return items, nil
}

// List returns every article, newest first.
func (s *ArticleStore) List(ctx context.Context) ([]models.Article, error) {
	return s.queryArticles(ctx, "list articles", `
		SELECT `+articleColumns+`
		FROM articles
		ORDER BY created_at DESC
	`)
}

// ListPublished returns published articles, most recently published first.
func (s *ArticleStore) ListPublished(ctx context.Context) ([]models.Article, error) {
	return s.queryArticles(ctx, "list published articles", `
		SELECT `+articleColumns+`
		FROM articles
		WHERE status = 'published'
		ORDER BY published_at DESC NULLS LAST, created_at DESC
	`)
}

// FindByID retrieves an article by id. A malformed id is reported as not found.
func (s *ArticleStore) FindByID(ctx context.Context, id string) (*models.Article, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.NotFound("article")
	}
	a, err := scanArticle(s.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = $1`, uid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("article")
	}
	if err != nil {
		return nil, apperr.Storage("find article by id", err)
	}
	return a, nil
}

// FindBySlug retrieves an article by slug regardless of status.
func (s *ArticleStore) FindBySlug(ctx context.Context, slug string) (*models.Article, error) {
	a, err := scanArticle(s.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE slug = $1`, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("article")
	}
	if err != nil {
		return nil, apperr.Storage("find article by slug", err)
	}
	return a, nil
}

// SlugExists reports whether any article already uses slug.
func (s *ArticleStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM articles WHERE slug = $1)`, slug,
	).Scan(&exists)
	if err != nil {
		return false, apperr.Storage("check slug", err)
	}
	return exists, nil
}

// Create validates in, inserts it and returns the stored row with its
// database-assigned id and creation time.
func (s *ArticleStore) Create(ctx context.Context, in models.ArticleInput) (*models.Article, error) {
	in.Normalize(s.now())
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if !slug.Valid(in.Slug) {
		return nil, apperr.Validation("slug %q is not URL-safe", in.Slug)
	}

	a, err := scanArticle(s.db.QueryRowContext(ctx, `
		INSERT INTO articles (title, slug, content, excerpt, featured_image, status, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+articleColumns,
		in.Title, in.Slug, in.Content, in.Excerpt, in.FeaturedImage, in.Status, in.PublishedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, apperr.Storage("create article", err)
	}
	return a, nil
}

// Update applies the supplied fields of u to the article with the given id
// and returns the updated row. The row is locked while the status and
// publish time are reconciled so concurrent toggles do not interleave.
func (s *ArticleStore) Update(ctx context.Context, id string, u models.ArticleUpdate) (*models.Article, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.NotFound("article")
	}
	if u.IsEmpty() {
		return s.FindByID(ctx, id)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Storage("update article", err)
	}
	defer tx.Rollback()

	current, err := scanArticle(tx.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = $1 FOR UPDATE`, uid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("article")
	}
	if err != nil {
		return nil, apperr.Storage("update article", err)
	}

	next := *current
	u.Apply(&next, s.now())

	set, args := updateAssignments(&u, &next)
	args = append(args, uid)
	query := fmt.Sprintf(`UPDATE articles SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(set, ", "), len(args), articleColumns)

	updated, err := scanArticle(tx.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, apperr.Storage("update article", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, apperr.Storage("update article", fmt.Errorf("commit: %w", err))
	}
	return updated, nil
}

// updateAssignments builds the SET list for the fields u touches, reading
// the final values from next.
func updateAssignments(u *models.ArticleUpdate, next *models.Article) ([]string, []any) {
	var (
		set  []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if u.Title != nil {
		add("title", next.Title)
	}
	if u.Content != nil {
		add("content", next.Content)
	}
	if u.Excerpt != nil {
		add("excerpt", next.Excerpt)
	}
	if u.FeaturedImage.Set {
		add("featured_image", next.FeaturedImage)
	}
	if u.Status != nil {
		add("status", next.Status)
	}
	if u.Status != nil || u.PublishedAt.Set {
		add("published_at", next.PublishedAt)
	}
	return set, args
}

// Delete removes an article and reports whether a row was deleted.
func (s *ArticleStore) Delete(ctx context.Context, id string) (bool, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return false, nil
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, uid)
	if err != nil {
		return false, apperr.Storage("delete article", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperr.Storage("delete article", err)
	}
	return n > 0, nil
}

// Stats counts articles by status plus those created in the trailing week
// relative to now, in a single pass over the table.
func (s *ArticleStore) Stats(ctx context.Context, now time.Time) (*models.Stats, error) {
	st := &models.Stats{}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'published'),
		       COUNT(*) FILTER (WHERE status = 'draft'),
		       COUNT(*) FILTER (WHERE created_at > $1)
		FROM articles
	`, now.Add(-models.StatsWindow)).Scan(&st.Total, &st.Published, &st.Drafts, &st.ThisWeek)
	if err != nil {
		return nil, apperr.Storage("article stats", err)
	}
	return st, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
