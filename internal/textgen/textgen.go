// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package textgen turns an article title into a markdown body and a short
// plain-text excerpt using a generative text provider.
package textgen

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"inkpress/internal/ai"
	"inkpress/internal/apperr"
	"inkpress/internal/metrics"
)

const (
	// ExcerptContextLen is how much of the article the excerpt prompt sees.
	ExcerptContextLen = 2000
	// MaxExcerptLen bounds the stored excerpt, in runes. The prompt asks
	// for under 200 characters; models overshoot.
	MaxExcerptLen = 300
)

const articleSystemPrompt = `You are an expert technical writer. Write a comprehensive, well-researched blog article about the topic the user gives you.

Requirements:
1. Write in markdown format
2. Include proper headings (## for main sections, ### for subsections)
3. Add code examples where relevant (use proper markdown code blocks with language specification)
4. Include lists, blockquotes, and other markdown formatting where appropriate
5. Make it informative, engaging, and at least 1000 words
6. Use professional but accessible language
7. Structure the article with: Introduction, Main Content Sections, Conclusion
8. Do NOT include the main title as a top-level heading, it will be added separately
9. Start directly with the introduction paragraph`

const excerptSystemPrompt = `You write compelling, self-contained summaries (2-3 sentences) for blog articles. The summary must:
- stay under 200 characters
- avoid markdown formatting
- entice the reader with the key value of the article

Respond with the summary only.`

// Result is a generated article body and its excerpt.
type Result struct {
	Content string
	Excerpt string
}

// Generator produces article text. It holds no state beyond its provider
// and is safe for concurrent use.
type Generator struct {
	provider ai.Provider
}

// New creates a Generator backed by p (usually an *ai.Registry).
func New(p ai.Provider) *Generator {
	return &Generator{provider: p}
}

// Generate makes two sequential model calls: the article body, then an
// excerpt grounded on the start of that body. Either failing fails the
// whole call; no partial result is returned.
func (g *Generator) Generate(ctx context.Context, title string) (Result, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Result{}, apperr.Validation("title is required")
	}

	content, err := g.call(ctx, "article", title, ai.Request{
		System: articleSystemPrompt,
		Prompt: fmt.Sprintf("Write the complete article now about: %q", title),
	})
	if err != nil {
		return Result{}, err
	}
	content = stripTitleHeading(content)

	excerpt, err := g.call(ctx, "excerpt", title, ai.Request{
		System: excerptSystemPrompt,
		Prompt: fmt.Sprintf("Article title: %q\n\nArticle body:\n%s\n\nRespond with the summary only:",
			title, TrimForExcerpt(content, ExcerptContextLen)),
	})
	if err != nil {
		return Result{}, err
	}

	if excerpt = CleanExcerpt(excerpt); excerpt == "" {
		return Result{}, &ai.GenerationError{Stage: "excerpt", Reason: ai.ErrEmptyText}
	}

	return Result{Content: content, Excerpt: excerpt}, nil
}

// call runs one model request and validates the response.
func (g *Generator) call(ctx context.Context, stage, title string, req ai.Request) (string, error) {
	start := time.Now()
	c, err := g.provider.Complete(ctx, req)
	text, err := ai.Check(stage, c, err)
	metrics.ObserveGeneration(g.provider.Name(), stage, err, time.Since(start))
	if err != nil {
		slog.Error("generation failed",
			"provider", g.provider.Name(),
			"stage", stage,
			"title", title,
			"error", err,
		)
		return "", err
	}
	return text, nil
}

// TrimForExcerpt returns at most maxLen runes of content. When a sentence
// ends past 60% of the window the cut is made just after it.
func TrimForExcerpt(content string, maxLen int) string {
	if utf8.RuneCountInString(content) <= maxLen {
		return content
	}
	truncated := string([]rune(content)[:maxLen])
	if i := strings.LastIndex(truncated, "."); i >= 0 {
		if utf8.RuneCountInString(truncated[:i]) > maxLen*6/10 {
			return truncated[:i+1]
		}
	}
	return truncated
}

// CleanExcerpt flattens the model's summary to one line, drops wrapping
// quotes and clamps it to MaxExcerptLen runes at a word boundary.
func CleanExcerpt(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimPrefix(s, "Summary:")
	s = strings.TrimSpace(s)
	for _, q := range []string{`"`, "'", "“", "”", "*"} {
		s = strings.TrimPrefix(s, q)
		s = strings.TrimSuffix(s, q)
	}
	s = strings.TrimSpace(s)

	if utf8.RuneCountInString(s) <= MaxExcerptLen {
		return s
	}
	r := []rune(s)[:MaxExcerptLen]
	cut := string(r)
	if i := strings.LastIndex(cut, " "); i > len(cut)/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:-") + "…"
}

// stripTitleHeading drops a leading "# Title" line the model was asked not
// to write.
func stripTitleHeading(content string) string {
	first, rest, _ := strings.Cut(content, "\n")
	if !strings.HasPrefix(first, "# ") {
		return content
	}
	if rest = strings.TrimSpace(rest); rest == "" {
		return content
	}
	return rest
}
