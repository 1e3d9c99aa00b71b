package ai

import (
	"context"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	OpenAIDefaultModel = "gpt-4o-mini"
	openAIFinishStop   = "stop"
)

// openAIProvider implements the Provider interface using the official
// openai-go SDK (chat completions). It also serves OpenAI-compatible
// backends reached through a different base URL.
type openAIProvider struct {
	name   string
	model  string
	client openai.Client
}

// newOpenAI creates a new OpenAI provider.
func newOpenAI(cfg ProviderConfig) *openAIProvider {
	if cfg.Model == "" {
		cfg.Model = OpenAIDefaultModel
	}
	return newOpenAICompatible("openai", cfg)
}

func newOpenAICompatible(name string, cfg ProviderConfig) *openAIProvider {
	// Retries are disabled: a failed generation fails the title outright.
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &openAIProvider{
		name:   name,
		model:  cfg.Model,
		client: openai.NewClient(opts...),
	}
}

func (p *openAIProvider) Name() string { return p.name }

// Complete sends a chat completion request and reports the first choice.
func (p *openAIProvider) Complete(ctx context.Context, r Request) (*Completion, error) {
	var msgs []openai.ChatCompletionMessageParamUnion
	if r.System != "" {
		msgs = append(msgs, openai.SystemMessage(r.System))
	}
	msgs = append(msgs, openai.UserMessage(r.Prompt))

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(p.model),
		Messages:    msgs,
		Temperature: openai.Float(Temperature),
		TopP:        openai.Float(TopP),
		MaxTokens:   openai.Int(MaxOutputTokens),
	})
	if err != nil {
		return nil, fmt.Errorf("%s chat completion: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, nil
	}

	choice := resp.Choices[0]
	reason := string(choice.FinishReason)
	return &Completion{
		Text:         choice.Message.Content,
		FinishReason: reason,
		Finished:     reason == openAIFinishStop,
	}, nil
}
