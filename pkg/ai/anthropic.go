package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"thoreinstein.com/autopr/pkg/config"
	prerrors "thoreinstein.com/autopr/pkg/errors"
)

// Anthropic API configuration.
const (
	anthropicDefaultEndpoint = "https://api.anthropic.com"
	anthropicCompletePath    = "/v1/complete"
	anthropicAPIVersion      = "2023-06-01"
	anthropicDefaultModel    = "claude-3-haiku-20240307"

	humanPrompt     = "\n\nHuman:"
	assistantPrompt = "\n\nAssistant:"
)

// AnthropicProvider implements Provider for Anthropic's text completions API.
type AnthropicProvider struct {
	apiKey    string
	model     string
	endpoint  string
	maxTokens int
	logger    *slog.Logger
	client    *http.Client
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(apiKey string, opts ...Option) *AnthropicProvider {
	o := applyOptions(providerOptions{
		model:     anthropicDefaultModel,
		endpoint:  anthropicDefaultEndpoint,
		maxTokens: config.DefaultMaxTokens,
	}, opts)

	return &AnthropicProvider{
		apiKey:    apiKey,
		model:     o.model,
		endpoint:  strings.TrimRight(o.endpoint, "/"),
		maxTokens: o.maxTokens,
		logger:    o.logger,
		client:    &http.Client{},
	}
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string {
	return ProviderAnthropic
}

// IsAvailable checks if the provider is configured and ready.
func (p *AnthropicProvider) IsAvailable() bool {
	return p.apiKey != ""
}

// anthropicRequest represents a text completions request.
type anthropicRequest struct {
	Model             string   `json:"model"`
	Prompt            string   `json:"prompt"`
	MaxTokensToSample int      `json:"max_tokens_to_sample"`
	StopSequences     []string `json:"stop_sequences"`
	Stream            bool     `json:"stream"`
}

// anthropicResponse represents a text completions response.
type anthropicResponse struct {
	Completion string `json:"completion"`
	StopReason string `json:"stop_reason"`
	Model      string `json:"model"`
}

// anthropicError represents an Anthropic API error response.
type anthropicError struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// wrapPrompt frames prompt as a single human turn awaiting the assistant.
func wrapPrompt(prompt string) string {
	return humanPrompt + prompt + "\n" + assistantPrompt
}

// Complete performs a single text completion.
func (p *AnthropicProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if !p.IsAvailable() {
		return "", prerrors.NewGenerationError(ProviderAnthropic, "Complete", "provider not configured")
	}

	reqBody := anthropicRequest{
		Model:             p.model,
		Prompt:            wrapPrompt(prompt),
		MaxTokensToSample: p.maxTokens,
		StopSequences:     []string{humanPrompt},
		Stream:            false,
	}

	p.logDebug("sending completion request", "model", p.model, "prompt_bytes", len(reqBody.Prompt))

	respBody, err := p.doRequest(ctx, reqBody)
	if err != nil {
		return "", err
	}

	var resp anthropicResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", prerrors.NewGenerationErrorWithCause(ProviderAnthropic, "Complete",
			"failed to parse response", err)
	}

	p.logDebug("received completion", "stop_reason", resp.StopReason, "completion_bytes", len(resp.Completion))

	return resp.Completion, nil
}

// doRequest performs an HTTP request and returns the response body.
func (p *AnthropicProvider) doRequest(ctx context.Context, reqBody anthropicRequest) ([]byte, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, prerrors.NewGenerationErrorWithCause(ProviderAnthropic, "Complete",
			"failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+anthropicCompletePath, bytes.NewReader(body))
	if err != nil {
		return nil, prerrors.NewGenerationErrorWithCause(ProviderAnthropic, "Complete",
			"failed to create request", err)
	}

	p.setHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, prerrors.NewGenerationErrorWithCause(ProviderAnthropic, "Complete",
			"request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, p.handleErrorResponse(resp, "Complete")
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, prerrors.NewGenerationErrorWithCause(ProviderAnthropic, "Complete",
			"failed to read response", err)
	}

	return respBody, nil
}

// setHeaders sets the required headers for Anthropic API requests.
func (p *AnthropicProvider) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)
}

// handleErrorResponse parses error responses from the Anthropic API.
func (p *AnthropicProvider) handleErrorResponse(resp *http.Response, operation string) error {
	body, _ := io.ReadAll(resp.Body)

	var apiErr anthropicError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return prerrors.NewGenerationErrorWithStatus(ProviderAnthropic, operation,
			resp.StatusCode, apiErr.Error.Message)
	}

	return prerrors.NewGenerationErrorWithStatus(ProviderAnthropic, operation,
		resp.StatusCode, fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
}

// logDebug logs a debug message if verbose logging is enabled.
func (p *AnthropicProvider) logDebug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
