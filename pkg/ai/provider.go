// Package ai provides AI completion backends for pull request descriptions.
//
// This package implements a provider-agnostic interface over Anthropic's text
// completions endpoint and OpenAI-compatible chat completions. Each call is a
// single request; callers decide what to do with a failure.
package ai

import (
	"context"
	"log/slog"

	"thoreinstein.com/autopr/pkg/config"
	prerrors "thoreinstein.com/autopr/pkg/errors"
)

// Provider interface for AI operations.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// IsAvailable checks if provider is configured.
	IsAvailable() bool

	// Complete sends prompt and returns the completion text unmodified.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Provider name constants.
const (
	ProviderAnthropic = config.ProviderAnthropic
	ProviderOpenAI    = config.ProviderOpenAI
)

// NewProvider creates an AI provider based on config. The API key must
// already be resolved into cfg.
func NewProvider(cfg *config.AIConfig, logger *slog.Logger) (Provider, error) {
	if cfg == nil {
		return nil, prerrors.NewConfigError("ai", "config is nil")
	}

	if cfg.APIKey == "" {
		return nil, prerrors.NewConfigError("ai.api_key", cfg.Provider+" API key not set")
	}

	switch cfg.Provider {
	case ProviderAnthropic:
		return NewAnthropicProvider(cfg.APIKey,
			WithModel(cfg.Model),
			WithEndpoint(cfg.Endpoint),
			WithMaxTokens(cfg.MaxTokens),
			WithLogger(logger),
		), nil

	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey,
			WithModel(cfg.Model),
			WithEndpoint(cfg.Endpoint),
			WithMaxTokens(cfg.MaxTokens),
			WithLogger(logger),
		), nil

	default:
		return nil, prerrors.NewConfigError("ai.provider",
			"unsupported AI provider: "+cfg.Provider+" (supported: anthropic, openai)")
	}
}

// Option configures a provider.
type Option func(*providerOptions)

type providerOptions struct {
	model     string
	endpoint  string
	maxTokens int
	logger    *slog.Logger
}

// WithModel overrides the provider's default model. Empty keeps the default.
func WithModel(model string) Option {
	return func(o *providerOptions) {
		if model != "" {
			o.model = model
		}
	}
}

// WithEndpoint overrides the provider's base URL. Empty keeps the default.
func WithEndpoint(endpoint string) Option {
	return func(o *providerOptions) {
		if endpoint != "" {
			o.endpoint = endpoint
		}
	}
}

// WithMaxTokens sets the completion token budget. Non-positive keeps the default.
func WithMaxTokens(n int) Option {
	return func(o *providerOptions) {
		if n > 0 {
			o.maxTokens = n
		}
	}
}

// WithLogger enables debug logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *providerOptions) {
		o.logger = logger
	}
}

func applyOptions(defaults providerOptions, opts []Option) providerOptions {
	o := defaults
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
