// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package slug

import (
	"context"
	"errors"
	"testing"
)

type fakeChecker struct {
	taken map[string]bool
	err   error
	calls []string
}

func (f *fakeChecker) SlugExists(_ context.Context, s string) (bool, error) {
	f.calls = append(f.calls, s)
	if f.err != nil {
		return false, f.err
	}
	return f.taken[s], nil
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		name  string
		title string
		taken []string
		want  string
	}{
		{"free base", "Hello World", nil, "hello-world"},
		{"base taken", "Hello World", []string{"hello-world"}, "hello-world-1"},
		{"gap is reused", "Hello World", []string{"hello-world", "hello-world-2"}, "hello-world-1"},
		{"several taken", "Hello World", []string{"hello-world", "hello-world-1", "hello-world-2"}, "hello-world-3"},
		{"blank title", "  ", nil, Fallback},
		{"blank title taken", "", []string{Fallback}, Fallback + "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeChecker{taken: map[string]bool{}}
			for _, s := range tt.taken {
				fc.taken[s] = true
			}
			got, err := NewAllocator(fc).Allocate(context.Background(), tt.title)
			if err != nil {
				t.Fatalf("Allocate: unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Allocate(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestAllocate_SameTitleTwice(t *testing.T) {
	fc := &fakeChecker{taken: map[string]bool{}}
	a := NewAllocator(fc)
	ctx := context.Background()

	first, err := a.Allocate(ctx, "Go Tips")
	if err != nil {
		t.Fatal(err)
	}
	fc.taken[first] = true
	second, err := a.Allocate(ctx, "Go Tips")
	if err != nil {
		t.Fatal(err)
	}
	if first != "go-tips" || second != "go-tips-1" {
		t.Errorf("got %q then %q, want go-tips then go-tips-1", first, second)
	}
}

func TestAllocate_LookupError(t *testing.T) {
	boom := errors.New("connection refused")
	fc := &fakeChecker{err: boom}
	_, err := NewAllocator(fc).Allocate(context.Background(), "Anything")
	if !errors.Is(err, boom) {
		t.Errorf("Allocate error = %v, want wrapped %v", err, boom)
	}
	if len(fc.calls) != 1 {
		t.Errorf("lookups = %d, want 1", len(fc.calls))
	}
}

func TestWithSuffix(t *testing.T) {
	if got := WithSuffix("a", 0); got != "a" {
		t.Errorf("WithSuffix(a, 0) = %q", got)
	}
	if got := WithSuffix("a", 12); got != "a-12" {
		t.Errorf("WithSuffix(a, 12) = %q", got)
	}
}
