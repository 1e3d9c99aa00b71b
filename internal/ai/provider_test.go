// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"os"
	"testing"
	"time"
)

// liveComplete runs one short request against a real provider. Skipped
// unless the provider's API key is set.
func liveComplete(t *testing.T, name, keyEnv, modelEnv string) {
	t.Helper()
	key := os.Getenv(keyEnv)
	if key == "" {
		t.Skipf("%s not set", keyEnv)
	}

	reg := NewRegistry(name, map[string]ProviderConfig{
		name: {APIKey: key, Model: os.Getenv(modelEnv)},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c, err := reg.Complete(ctx, Request{
		System: "Reply in exactly one short sentence.",
		Prompt: "What is 2+2?",
	})
	text, err := Check("live", c, err)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	t.Logf("%s response: %s", name, text)
}

func TestGeminiLive(t *testing.T)  { liveComplete(t, "gemini", "GEMINI_API_KEY", "GEMINI_MODEL") }
func TestOpenAILive(t *testing.T)  { liveComplete(t, "openai", "OPENAI_API_KEY", "OPENAI_MODEL") }
func TestClaudeLive(t *testing.T)  { liveComplete(t, "claude", "CLAUDE_API_KEY", "CLAUDE_MODEL") }
func TestMistralLive(t *testing.T) { liveComplete(t, "mistral", "MISTRAL_API_KEY", "MISTRAL_MODEL") }
