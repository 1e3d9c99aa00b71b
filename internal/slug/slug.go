// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings
// and allocation of slugs that are unique within the article store.
package slug

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLen caps generated slugs below the varchar(255) column, leaving room
// for a numeric suffix.
const MaxLen = 200

// Fallback is used for titles that are blank.
const Fallback = "untitled"

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, separator or hyphen.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s_-]`)
	// separators collapses whitespace, underscores and hyphens into one hyphen.
	separators = regexp.MustCompile(`[\s_-]+`)
	// valid matches a well-formed slug: lowercase words joined by single hyphens.
	valid = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// transliterations covers letters that NFKD does not decompose into an ASCII base.
var transliterations = strings.NewReplacer(
	"ß", "ss", "æ", "ae", "Æ", "ae", "œ", "oe", "Œ", "oe",
	"ø", "o", "Ø", "o", "đ", "d", "Đ", "d", "ł", "l", "Ł", "l",
	"þ", "th", "Þ", "th", "ð", "d", "Ð", "d", "&", " and ",
)

// Generate creates a URL-friendly slug from the given string. Accented
// letters are folded to their ASCII base, punctuation is dropped and
// whitespace runs become single hyphens.
// Example: "Café Crème, 2026!" → "cafe-creme-2026"
func Generate(s string) string {
	result := transliterations.Replace(strings.TrimSpace(s))
	result = foldMarks(result)
	result = strings.ToLower(result)
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = separators.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return truncate(result, MaxLen)
}

// Base returns the slug for title with deterministic fallbacks, so it is
// never empty: blank titles map to Fallback, and titles with no ASCII-
// foldable characters map to "article-" plus a hash of the title.
func Base(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return Fallback
	}
	if s := Generate(title); s != "" {
		return s
	}
	sum := sha256.Sum256([]byte(title))
	return "article-" + hex.EncodeToString(sum[:4])
}

// Valid reports whether s is a well-formed slug.
func Valid(s string) bool {
	return len(s) <= 255 && valid.MatchString(s)
}

// foldMarks decomposes s (NFKD) and drops combining marks: "é" → "e".
func foldMarks(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// truncate cuts s to at most n bytes, preferring the last hyphen so words
// are not split.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	if i := strings.LastIndex(s, "-"); i > n/2 {
		s = s[:i]
	}
	return strings.Trim(s, "-")
}
