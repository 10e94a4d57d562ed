package summarizer

import (
	"context"
	"errors"
)

// Provider defines the interface for LLM providers.
type Provider interface {
	// Complete generates a response for the given system prompt and content.
	Complete(ctx context.Context, systemPrompt, content string) (string, error)
	// Name returns the provider name.
	Name() string
}

// Config holds the configuration for an LLM provider.
type Config struct {
	Provider string // openai, anthropic
	APIKey   string
	BaseURL  string // optional
	Model    string
	Language string // target locale for summaries, e.g. ja-JP
}

// ProviderType constants
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

var (
	ErrInvalidProvider = errors.New("invalid provider")
	ErrMissingAPIKey   = errors.New("API key is required")
	ErrMissingModel    = errors.New("model is required")
)

// NewProvider creates a new LLM provider based on the config.
func NewProvider(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		return nil, ErrMissingModel
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case ProviderAnthropic:
		return NewAnthropicProvider(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	default:
		return nil, ErrInvalidProvider
	}
}
