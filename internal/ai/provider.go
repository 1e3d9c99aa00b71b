// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ai provides a unified interface for generative text providers
// (Gemini, OpenAI, Claude, Mistral). Each provider implements the Provider
// interface, and the Registry selects the active one by name.
package ai

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Sampling parameters shared by every provider.
const (
	Temperature     = 0.7
	TopP            = 0.95
	TopK            = 40
	MaxOutputTokens = 2048
)

// Request is a single-turn prompt.
type Request struct {
	// System sets the model's behaviour. Optional.
	System string
	Prompt string
}

// Completion is the provider's answer to a Request. A nil *Completion with
// a nil error means the model returned no candidates at all.
type Completion struct {
	Text string
	// FinishReason is the provider's own stop label, e.g. "STOP", "MAX_TOKENS",
	// "SAFETY" for Gemini or "stop", "length" for OpenAI.
	FinishReason string
	// Finished is true when the model stopped normally.
	Finished bool
}

// Provider defines the interface that all AI providers must implement.
// Each provider handles its own HTTP communication and response parsing;
// interpreting the Completion is left to Check.
type Provider interface {
	// Complete sends req to the model. Transport, auth and quota failures
	// are returned as errors.
	Complete(ctx context.Context, req Request) (*Completion, error)

	// Name returns the provider identifier (e.g., "openai", "gemini").
	Name() string
}

// ProviderConfig holds the credentials and settings for a single provider.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	// SafetyThreshold is the Gemini harm-block threshold. Ignored by others.
	SafetyThreshold string
}

// Registry manages available AI providers and selects the active one.
// It supports runtime switching by changing the active provider name.
// All methods are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	active    string
}

// NewRegistry creates a registry and initialises providers for every config
// that has a non-empty API key. Providers without keys are silently skipped.
func NewRegistry(active string, configs map[string]ProviderConfig) *Registry {
	r := &Registry{
		providers: make(map[string]Provider),
		active:    active,
	}

	for name, cfg := range configs {
		if cfg.APIKey == "" {
			continue
		}
		switch name {
		case "gemini":
			r.providers[name] = newGemini(cfg)
		case "openai":
			r.providers[name] = newOpenAI(cfg)
		case "claude":
			r.providers[name] = newClaude(cfg)
		case "mistral":
			r.providers[name] = newMistral(cfg)
		}
	}
	return r
}

// Complete calls the active provider. The Registry is itself a Provider so
// the generator does not care which backend is selected.
func (r *Registry) Complete(ctx context.Context, req Request) (*Completion, error) {
	p, err := r.Active()
	if err != nil {
		return nil, err
	}
	return p.Complete(ctx, req)
}

// Name returns the name of the active provider.
func (r *Registry) Name() string {
	return r.ActiveName()
}

// Active returns the currently active provider.
func (r *Registry) Active() (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[r.active]
	if !ok {
		return nil, fmt.Errorf("ai: no provider configured for %q", r.active)
	}
	return p, nil
}

// SetActive switches the active provider at runtime. Returns an error if
// the named provider has no API key configured.
func (r *Registry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[name]; !ok {
		return fmt.Errorf("ai: provider %q is not available (no API key?)", name)
	}
	r.active = name
	return nil
}

// ActiveName returns the name of the currently active provider.
func (r *Registry) ActiveName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.active
}

// Available returns the sorted names of all providers that have API keys.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasProvider checks whether a named provider is configured and available.
func (r *Registry) HasProvider(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.providers[name]
	return ok
}
