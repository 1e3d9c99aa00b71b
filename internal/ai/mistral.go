// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

const (
	MistralDefaultModel   = "mistral-small-latest"
	mistralDefaultBaseURL = "https://api.mistral.ai/v1/"
)

// newMistral creates a Mistral provider. Mistral's chat completions API is
// OpenAI-compatible, so the openai-go client is reused with its base URL.
func newMistral(cfg ProviderConfig) *openAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = mistralDefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = MistralDefaultModel
	}
	return newOpenAICompatible("mistral", cfg)
}
