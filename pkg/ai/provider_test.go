package ai

import (
	"testing"

	"thoreinstein.com/autopr/pkg/config"
	prerrors "thoreinstein.com/autopr/pkg/errors"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.AIConfig
		wantName string
		wantErr  bool
	}{
		{
			name:    "nil config",
			cfg:     nil,
			wantErr: true,
		},
		{
			name:    "missing key",
			cfg:     &config.AIConfig{Provider: "anthropic"},
			wantErr: true,
		},
		{
			name:     "anthropic",
			cfg:      &config.AIConfig{Provider: "anthropic", APIKey: "k", MaxTokens: 100},
			wantName: ProviderAnthropic,
		},
		{
			name:     "openai",
			cfg:      &config.AIConfig{Provider: "openai", APIKey: "k", Model: "gpt-4o"},
			wantName: ProviderOpenAI,
		},
		{
			name:    "unsupported",
			cfg:     &config.AIConfig{Provider: "groq", APIKey: "k"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.cfg, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !prerrors.IsConfigError(err) {
					t.Errorf("NewProvider() error = %v, want ConfigError", err)
				}
				return
			}
			if p.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.wantName)
			}
			if !p.IsAvailable() {
				t.Error("IsAvailable() = false")
			}
		})
	}
}

func TestNewProvider_PassesSettings(t *testing.T) {
	p, err := NewProvider(&config.AIConfig{
		Provider:  "anthropic",
		APIKey:    "k",
		Model:     "claude-instant-1.2",
		Endpoint:  "http://localhost:9999",
		MaxTokens: 2048,
	}, nil)
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	ap, ok := p.(*AnthropicProvider)
	if !ok {
		t.Fatalf("NewProvider() = %T, want *AnthropicProvider", p)
	}
	if ap.model != "claude-instant-1.2" || ap.endpoint != "http://localhost:9999" || ap.maxTokens != 2048 {
		t.Errorf("provider = %+v", ap)
	}
}
