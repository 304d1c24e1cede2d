package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"

	"thoreinstein.com/autopr/pkg/config"
	prerrors "thoreinstein.com/autopr/pkg/errors"
)

func TestNewAnthropicProvider_Defaults(t *testing.T) {
	p := NewAnthropicProvider("key")

	if p.model != anthropicDefaultModel {
		t.Errorf("model = %q, want %q", p.model, anthropicDefaultModel)
	}
	if p.endpoint != anthropicDefaultEndpoint {
		t.Errorf("endpoint = %q, want %q", p.endpoint, anthropicDefaultEndpoint)
	}
	if p.maxTokens != config.DefaultMaxTokens {
		t.Errorf("maxTokens = %d, want %d", p.maxTokens, config.DefaultMaxTokens)
	}
	if p.Name() != ProviderAnthropic {
		t.Errorf("Name() = %q, want %q", p.Name(), ProviderAnthropic)
	}
}

func TestAnthropicProvider_IsAvailable(t *testing.T) {
	if NewAnthropicProvider("").IsAvailable() {
		t.Error("IsAvailable() = true for empty key")
	}
	if !NewAnthropicProvider("key").IsAvailable() {
		t.Error("IsAvailable() = false for configured key")
	}
}

func TestWrapPrompt(t *testing.T) {
	got := wrapPrompt("summarize")
	want := "\n\nHuman:summarize\n\n\nAssistant:"
	if got != want {
		t.Errorf("wrapPrompt() = %q, want %q", got, want)
	}
}

func TestAnthropicProvider_Complete(t *testing.T) {
	var gotReq anthropicRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/v1/complete" {
			t.Errorf("path = %s, want /v1/complete", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key = %q, want test-key", got)
		}
		if got := r.Header.Get("anthropic-version"); got != anthropicAPIVersion {
			t.Errorf("anthropic-version = %q, want %q", got, anthropicAPIVersion)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}

		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(anthropicResponse{
			Completion: " ## Summary\nAdds login.\n",
			StopReason: "stop_sequence",
		})
	}))
	defer server.Close()

	p := NewAnthropicProvider("test-key", WithEndpoint(server.URL+"/"))

	got, err := p.Complete(context.Background(), "PROMPT")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if got != " ## Summary\nAdds login.\n" {
		t.Errorf("Complete() = %q, want the completion verbatim", got)
	}

	if gotReq.Model != "claude-3-haiku-20240307" {
		t.Errorf("model = %q", gotReq.Model)
	}
	if gotReq.Prompt != "\n\nHuman:PROMPT\n\n\nAssistant:" {
		t.Errorf("prompt = %q", gotReq.Prompt)
	}
	if gotReq.MaxTokensToSample != 1000000 {
		t.Errorf("max_tokens_to_sample = %d, want 1000000", gotReq.MaxTokensToSample)
	}
	if len(gotReq.StopSequences) != 1 || gotReq.StopSequences[0] != "\n\nHuman:" {
		t.Errorf("stop_sequences = %q", gotReq.StopSequences)
	}
	if gotReq.Stream {
		t.Error("stream = true, want false")
	}
}

func TestAnthropicProvider_Complete_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "api error body",
			status:      http.StatusUnauthorized,
			body:        `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "invalid x-api-key",
		},
		{
			name:        "unparseable body",
			status:      http.StatusBadGateway,
			body:        "<html>bad gateway</html>",
			wantStatus:  http.StatusBadGateway,
			wantMessage: "HTTP 502: Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p := NewAnthropicProvider("key", WithEndpoint(server.URL))
			_, err := p.Complete(context.Background(), "prompt")

			var genErr *prerrors.GenerationError
			if !errors.As(err, &genErr) {
				t.Fatalf("Complete() error = %v, want GenerationError", err)
			}
			if genErr.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", genErr.StatusCode, tt.wantStatus)
			}
			if genErr.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", genErr.Message, tt.wantMessage)
			}
		})
	}
}

func TestAnthropicProvider_Complete_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	p := NewAnthropicProvider("key", WithEndpoint(url))
	_, err := p.Complete(context.Background(), "prompt")
	if !prerrors.IsGenerationError(err) {
		t.Errorf("Complete() error = %v, want GenerationError", err)
	}
}

func TestAnthropicProvider_Complete_NotConfigured(t *testing.T) {
	_, err := NewAnthropicProvider("").Complete(context.Background(), "prompt")
	if !prerrors.IsGenerationError(err) {
		t.Errorf("Complete() error = %v, want GenerationError", err)
	}
}
