// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package slug

import (
	"context"
	"fmt"
	"strconv"
)

// maxProbes bounds the suffix search so a broken lookup cannot spin forever.
const maxProbes = 10_000

// Checker reports whether a slug is already taken.
type Checker interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// Allocator hands out slugs that are unused at the moment of the call. The
// check-then-insert is racy across requests; the store's unique index is the
// source of truth and callers retry on conflict.
type Allocator struct {
	checker Checker
}

// NewAllocator creates an Allocator backed by the given lookup.
func NewAllocator(checker Checker) *Allocator {
	return &Allocator{checker: checker}
}

// Allocate derives the base slug from title and returns the first unused
// candidate among base, base-1, base-2, ...
func (a *Allocator) Allocate(ctx context.Context, title string) (string, error) {
	return a.AllocateFrom(ctx, Base(title))
}

// AllocateFrom probes base and its numbered variants.
func (a *Allocator) AllocateFrom(ctx context.Context, base string) (string, error) {
	for n := 0; n < maxProbes; n++ {
		candidate := WithSuffix(base, n)
		taken, err := a.checker.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("slug lookup %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("slug %q: no free suffix after %d probes", base, maxProbes)
}

// WithSuffix returns base for n == 0 and "base-n" otherwise.
func WithSuffix(base string, n int) string {
	if n == 0 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}
