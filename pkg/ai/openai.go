package ai

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/sashabaranov/go-openai"

	prerrors "thoreinstein.com/autopr/pkg/errors"
)

const (
	openAIDefaultModel = openai.GPT4oMini

	// openAIMaxCompletionTokens is the largest budget chat models accept.
	// Larger budgets are left to the model default.
	openAIMaxCompletionTokens = 16384
)

// OpenAIProvider implements Provider for OpenAI-compatible chat completions.
type OpenAIProvider struct {
	apiKey    string
	model     string
	maxTokens int
	logger    *slog.Logger
	client    *openai.Client
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(apiKey string, opts ...Option) *OpenAIProvider {
	o := applyOptions(providerOptions{model: openAIDefaultModel}, opts)

	clientCfg := openai.DefaultConfig(apiKey)
	if o.endpoint != "" {
		clientCfg.BaseURL = o.endpoint
	}

	maxTokens := o.maxTokens
	if maxTokens > openAIMaxCompletionTokens {
		maxTokens = 0
	}

	return &OpenAIProvider{
		apiKey:    apiKey,
		model:     o.model,
		maxTokens: maxTokens,
		logger:    o.logger,
		client:    openai.NewClientWithConfig(clientCfg),
	}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

// IsAvailable checks if the provider is configured and ready.
func (p *OpenAIProvider) IsAvailable() bool {
	return p.apiKey != ""
}

// Complete sends prompt as a single user message.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if !p.IsAvailable() {
		return "", prerrors.NewGenerationError(ProviderOpenAI, "Complete", "provider not configured")
	}

	if p.logger != nil {
		p.logger.Debug("sending chat completion request", "model", p.model, "prompt_bytes", len(prompt))
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", toGenerationError(err)
	}

	if len(resp.Choices) == 0 {
		return "", prerrors.NewGenerationError(ProviderOpenAI, "Complete", "response contained no choices")
	}

	if p.logger != nil {
		p.logger.Debug("received chat completion",
			"finish_reason", resp.Choices[0].FinishReason,
			"prompt_tokens", resp.Usage.PromptTokens,
			"completion_tokens", resp.Usage.CompletionTokens)
	}

	return resp.Choices[0].Message.Content, nil
}

func toGenerationError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		genErr := prerrors.NewGenerationErrorWithStatus(ProviderOpenAI, "Complete", apiErr.HTTPStatusCode, apiErr.Message)
		genErr.Cause = err
		return genErr
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		genErr := prerrors.NewGenerationErrorWithStatus(ProviderOpenAI, "Complete", reqErr.HTTPStatusCode, "request failed")
		genErr.Cause = err
		return genErr
	}

	return prerrors.NewGenerationErrorWithCause(ProviderOpenAI, "Complete", "request failed", err)
}
