package handlers

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"inkpress/internal/apperr"
	"inkpress/internal/models"
)

// Validation limits for article fields.
const (
	maxTitleLen    = 300
	maxSlugLen     = 255
	maxContentLen  = 200_000
	maxExcerptLen  = 1_000
	maxImageURLLen = 2_048
	maxBatchTitles = 50
)

// validateInput checks field lengths on a manual create. Required fields
// are checked by the store.
func validateInput(in *models.ArticleInput) error {
	if err := validateLengths(&in.Title, &in.Content, &in.Excerpt); err != nil {
		return err
	}
	if utf8.RuneCountInString(in.Slug) > maxSlugLen {
		return apperr.Validation("slug is too long (max %d characters)", maxSlugLen)
	}
	return validateImageURL(in.FeaturedImage)
}

// validateUpdate checks field lengths on a partial update.
func validateUpdate(u *models.ArticleUpdate) error {
	if err := validateLengths(u.Title, u.Content, u.Excerpt); err != nil {
		return err
	}
	return validateImageURL(u.FeaturedImage.Value)
}

// validateTitle applies the title cap to a generation request.
func validateTitle(title string) error {
	if utf8.RuneCountInString(strings.TrimSpace(title)) > maxTitleLen {
		return apperr.Validation("title is too long (max %d characters)", maxTitleLen)
	}
	return nil
}

func validateLengths(title, content, excerpt *string) error {
	if title != nil && utf8.RuneCountInString(*title) > maxTitleLen {
		return apperr.Validation("title is too long (max %d characters)", maxTitleLen)
	}
	if content != nil && utf8.RuneCountInString(*content) > maxContentLen {
		return apperr.Validation("content is too long (max %d characters)", maxContentLen)
	}
	if excerpt != nil && utf8.RuneCountInString(*excerpt) > maxExcerptLen {
		return apperr.Validation("excerpt is too long (max %d characters)", maxExcerptLen)
	}
	return nil
}

// validateImageURL accepts an absolute http(s) URL or a site-relative path.
func validateImageURL(s *string) error {
	if s == nil || *s == "" {
		return nil
	}
	if len(*s) > maxImageURLLen {
		return apperr.Validation("featuredImage is too long (max %d characters)", maxImageURLLen)
	}
	u, err := url.Parse(*s)
	if err != nil {
		return apperr.Validation("featuredImage is not a valid URL")
	}
	switch {
	case u.Scheme == "http" || u.Scheme == "https":
		if u.Host == "" {
			return apperr.Validation("featuredImage is not a valid URL")
		}
	case u.Scheme == "" && u.Host == "" && len(u.Path) > 0 && u.Path[0] == '/':
	default:
		return apperr.Validation("featuredImage must be an http(s) URL or an absolute path")
	}
	return nil
}
