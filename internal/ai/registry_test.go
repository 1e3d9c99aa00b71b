// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"
)

// mockProvider is a test double implementing the Provider interface.
// It records calls and returns configurable responses.
type mockProvider struct {
	name      string
	response  string
	err       error
	callCount int
	last      Request
	mu        sync.Mutex
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) Complete(ctx context.Context, r Request) (*Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	m.last = r
	if m.err != nil {
		return nil, m.err
	}
	return &Completion{Text: m.response, FinishReason: "STOP", Finished: true}, nil
}

// ---------- Registry.Complete ----------

func TestRegistryComplete(t *testing.T) {
	t.Run("delegates to active provider", func(t *testing.T) {
		mock := &mockProvider{name: "test", response: "Hello from mock"}

		reg := &Registry{
			providers: map[string]Provider{"test": mock},
			active:    "test",
		}

		c, err := reg.Complete(context.Background(), Request{System: "system", Prompt: "user"})
		if err != nil {
			t.Fatalf("Complete: unexpected error: %v", err)
		}
		if c.Text != "Hello from mock" {
			t.Errorf("text: got %q, want %q", c.Text, "Hello from mock")
		}

		mock.mu.Lock()
		defer mock.mu.Unlock()
		if mock.callCount != 1 {
			t.Errorf("callCount: got %d, want 1", mock.callCount)
		}
		if mock.last.System != "system" || mock.last.Prompt != "user" {
			t.Errorf("request: got %+v", mock.last)
		}
	})

	t.Run("propagates provider error", func(t *testing.T) {
		mock := &mockProvider{name: "test", err: fmt.Errorf("api failure")}

		reg := &Registry{
			providers: map[string]Provider{"test": mock},
			active:    "test",
		}

		_, err := reg.Complete(context.Background(), Request{Prompt: "user"})
		if err == nil || err.Error() != "api failure" {
			t.Errorf("error: got %v, want api failure", err)
		}
	})

	t.Run("error when active name does not match any registered provider", func(t *testing.T) {
		reg := &Registry{
			providers: map[string]Provider{"openai": &mockProvider{name: "openai"}},
			active:    "gemini",
		}

		if _, err := reg.Complete(context.Background(), Request{Prompt: "x"}); err == nil {
			t.Fatal("expected error for mismatched active provider, got nil")
		}
	})
}

func TestRegistrySetActive(t *testing.T) {
	reg := &Registry{
		providers: map[string]Provider{
			"a": &mockProvider{name: "a", response: "from a"},
			"b": &mockProvider{name: "b", response: "from b"},
		},
		active: "a",
	}

	if err := reg.SetActive("b"); err != nil {
		t.Fatalf("SetActive(b): %v", err)
	}
	if reg.ActiveName() != "b" || reg.Name() != "b" {
		t.Errorf("active: got %q", reg.ActiveName())
	}
	c, err := reg.Complete(context.Background(), Request{Prompt: "x"})
	if err != nil || c.Text != "from b" {
		t.Errorf("Complete after switch: %v, %v", c, err)
	}

	if err := reg.SetActive("nope"); err == nil {
		t.Error("expected error switching to unknown provider")
	}
	if reg.ActiveName() != "b" {
		t.Errorf("failed switch should keep active provider, got %q", reg.ActiveName())
	}
}

func TestRegistryAvailableSorted(t *testing.T) {
	reg := NewRegistry("gemini", map[string]ProviderConfig{
		"openai":  {APIKey: "k"},
		"gemini":  {APIKey: "k"},
		"mistral": {APIKey: "k"},
		"claude":  {APIKey: ""},
		"unknown": {APIKey: "k"},
	})

	want := []string{"gemini", "mistral", "openai"}
	if got := reg.Available(); !reflect.DeepEqual(got, want) {
		t.Errorf("Available: got %v, want %v", got, want)
	}
	if reg.HasProvider("claude") {
		t.Error("provider without API key should be skipped")
	}
	if reg.HasProvider("unknown") {
		t.Error("unknown provider name should be ignored")
	}
}

func TestNewRegistryProviderNames(t *testing.T) {
	reg := NewRegistry("gemini", map[string]ProviderConfig{
		"gemini":  {APIKey: "k"},
		"openai":  {APIKey: "k"},
		"claude":  {APIKey: "k"},
		"mistral": {APIKey: "k"},
	})
	for _, name := range []string{"gemini", "openai", "claude", "mistral"} {
		reg.mu.RLock()
		p := reg.providers[name]
		reg.mu.RUnlock()
		if p == nil {
			t.Fatalf("provider %q not constructed", name)
		}
		if p.Name() != name {
			t.Errorf("provider %q reports name %q", name, p.Name())
		}
	}
}

func TestRegistryConcurrency(t *testing.T) {
	mockA := &mockProvider{name: "a", response: "from a"}
	mockB := &mockProvider{name: "b", response: "from b"}

	reg := &Registry{
		providers: map[string]Provider{"a": mockA, "b": mockB},
		active:    "a",
	}

	const goroutines = 100
	var wg sync.WaitGroup
	wg.Add(goroutines * 2)

	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			name := "a"
			if i%2 == 0 {
				name = "b"
			}
			reg.SetActive(name)
		}(i)
	}

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			c, err := reg.Complete(context.Background(), Request{Prompt: "usr"})
			if err != nil {
				t.Errorf("Complete error during concurrency: %v", err)
				return
			}
			if c.Text != "from a" && c.Text != "from b" {
				t.Errorf("unexpected result: %q", c.Text)
			}
		}()
	}

	wg.Wait()
}
