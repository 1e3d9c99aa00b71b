// Package config loads application configuration from an optional YAML file
// and the environment. Environment variables always win over the file.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"inkpress/internal/ai"
)

// Config holds all application configuration values.
type Config struct {
	// Server settings
	Host     string `yaml:"host" env:"APP_HOST" env-default:"0.0.0.0"`
	Port     string `yaml:"port" env:"APP_PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"APP_ENV" env-default:"development"` // "development", "production", "testing"
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`

	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL,POSTGRES_URL"`

	AI AIConfig `yaml:"ai"`
	S3 S3Config `yaml:"s3"`

	// SlugMaxAttempts bounds insert retries when a slug is claimed between
	// allocation and insert.
	SlugMaxAttempts int `yaml:"slug_max_attempts" env:"SLUG_MAX_ATTEMPTS" env-default:"5"`
}

// AIConfig selects the active text provider and carries every provider's
// credentials. Providers without a key are not registered.
type AIConfig struct {
	Provider string        `yaml:"provider" env:"AI_PROVIDER" env-default:"gemini"`
	Timeout  time.Duration `yaml:"timeout" env:"AI_TIMEOUT" env-default:"90s"`

	GeminiKey       string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	GeminiModel     string `yaml:"gemini_model" env:"GEMINI_MODEL" env-default:"gemini-2.0-flash"`
	GeminiBaseURL   string `yaml:"gemini_base_url" env:"GEMINI_BASE_URL"`
	GeminiThreshold string `yaml:"gemini_safety_threshold" env:"GEMINI_SAFETY_THRESHOLD" env-default:"BLOCK_LOW_AND_ABOVE"`

	OpenAIKey     string `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	OpenAIModel   string `yaml:"openai_model" env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
	OpenAIBaseURL string `yaml:"openai_base_url" env:"OPENAI_BASE_URL"`

	ClaudeKey     string `yaml:"claude_api_key" env:"CLAUDE_API_KEY"`
	ClaudeModel   string `yaml:"claude_model" env:"CLAUDE_MODEL"`
	ClaudeBaseURL string `yaml:"claude_base_url" env:"CLAUDE_BASE_URL"`

	MistralKey     string `yaml:"mistral_api_key" env:"MISTRAL_API_KEY"`
	MistralModel   string `yaml:"mistral_model" env:"MISTRAL_MODEL"`
	MistralBaseURL string `yaml:"mistral_base_url" env:"MISTRAL_BASE_URL"`
}

// S3Config points at an S3-compatible bucket for featured images. Storage
// is disabled unless endpoint and both keys are set.
type S3Config struct {
	Endpoint  string `yaml:"endpoint" env:"S3_ENDPOINT"`
	Region    string `yaml:"region" env:"S3_REGION" env-default:"us-east-1"`
	AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY"`
	Bucket    string `yaml:"bucket" env:"S3_BUCKET" env-default:"inkpress"`
	PublicURL string `yaml:"public_url" env:"S3_PUBLIC_URL"`
}

// Enabled reports whether enough is set to build a storage client.
func (s S3Config) Enabled() bool {
	return s.Endpoint != "" && s.AccessKey != "" && s.SecretKey != ""
}

// Load reads the YAML file at path when given (falling back to CONFIG_PATH),
// then applies environment variables. Only the database URL is checked
// here; commands that talk to a provider call RequireAI.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL must be set")
	}
	if c.SlugMaxAttempts < 1 {
		return fmt.Errorf("SLUG_MAX_ATTEMPTS must be at least 1, got %d", c.SlugMaxAttempts)
	}
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT must be positive, got %s", c.AI.Timeout)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", c.LogLevel)
	}
	return nil
}

// RequireAI fails unless the active provider is known and has a key.
func (c *Config) RequireAI() error {
	cfg, ok := c.ProviderConfigs()[c.AI.Provider]
	if !ok {
		return fmt.Errorf("AI_PROVIDER %q is not one of gemini, openai, claude, mistral", c.AI.Provider)
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("%s_API_KEY must be set for AI_PROVIDER=%s", strings.ToUpper(c.AI.Provider), c.AI.Provider)
	}
	return nil
}

// ProviderConfigs returns the per-provider settings for ai.NewRegistry.
func (c *Config) ProviderConfigs() map[string]ai.ProviderConfig {
	return map[string]ai.ProviderConfig{
		"gemini": {
			APIKey:          c.AI.GeminiKey,
			Model:           c.AI.GeminiModel,
			BaseURL:         c.AI.GeminiBaseURL,
			SafetyThreshold: c.AI.GeminiThreshold,
		},
		"openai":  {APIKey: c.AI.OpenAIKey, Model: c.AI.OpenAIModel, BaseURL: c.AI.OpenAIBaseURL},
		"claude":  {APIKey: c.AI.ClaudeKey, Model: c.AI.ClaudeModel, BaseURL: c.AI.ClaudeBaseURL},
		"mistral": {APIKey: c.AI.MistralKey, Model: c.AI.MistralModel, BaseURL: c.AI.MistralBaseURL},
	}
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}
