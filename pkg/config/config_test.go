package config

import (
	"os"
	"strings"
	"testing"

	"github.com/spf13/viper"

	prerrors "thoreinstein.com/autopr/pkg/errors"
)

var credentialEnv = []string{
	"AUTOPR_AI_API_KEY", "ANTHROPIC_API_KEY", "ANTHROPIC_KEY", "OPENAI_API_KEY",
	"AUTOPR_GITHUB_TOKEN", "GITHUB_TOKEN",
}

func clearCredentials(t *testing.T) {
	t.Helper()
	for _, name := range credentialEnv {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	clearCredentials(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"git.remote", cfg.Git.Remote, "origin"},
		{"git.base_branch", cfg.Git.BaseBranch, "master"},
		{"github.publisher", cfg.GitHub.Publisher, PublisherGHCLI},
		{"github.cli_command", cfg.GitHub.CLICommand, "gh"},
		{"ai.provider", cfg.AI.Provider, ProviderAnthropic},
		{"ai.max_tokens", cfg.AI.MaxTokens, DefaultMaxTokens},
		{"pr.title", cfg.PR.Title, DefaultTitle},
		{"ui.progress", cfg.UI.Progress, true},
		{"ai.api_key", cfg.AI.APIKey, ""},
		{"github.token", cfg.GitHub.Token, ""},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	if got := cfg.BaseRef(); got != "origin/master" {
		t.Errorf("BaseRef() = %q, want origin/master", got)
	}
}

func TestLoad_CredentialFallbacks(t *testing.T) {
	tests := []struct {
		name      string
		provider  string
		env       map[string]string
		wantKey   string
		wantToken string
	}{
		{
			name:     "anthropic key from ANTHROPIC_KEY",
			provider: ProviderAnthropic,
			env:      map[string]string{"ANTHROPIC_KEY": "sk-legacy"},
			wantKey:  "sk-legacy",
		},
		{
			name:     "ANTHROPIC_API_KEY wins over ANTHROPIC_KEY",
			provider: ProviderAnthropic,
			env:      map[string]string{"ANTHROPIC_API_KEY": "sk-new", "ANTHROPIC_KEY": "sk-legacy"},
			wantKey:  "sk-new",
		},
		{
			name:     "AUTOPR_AI_API_KEY wins over provider variables",
			provider: ProviderOpenAI,
			env:      map[string]string{"AUTOPR_AI_API_KEY": "sk-autopr", "OPENAI_API_KEY": "sk-openai"},
			wantKey:  "sk-autopr",
		},
		{
			name:     "openai ignores anthropic variables",
			provider: ProviderOpenAI,
			env:      map[string]string{"ANTHROPIC_KEY": "sk-legacy"},
			wantKey:  "",
		},
		{
			name:      "github token from GITHUB_TOKEN",
			provider:  ProviderAnthropic,
			env:       map[string]string{"GITHUB_TOKEN": "ghp-env"},
			wantToken: "ghp-env",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			defer viper.Reset()
			clearCredentials(t)

			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			viper.Set("ai.provider", tt.provider)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.AI.APIKey != tt.wantKey {
				t.Errorf("AI.APIKey = %q, want %q", cfg.AI.APIKey, tt.wantKey)
			}
			if cfg.GitHub.Token != tt.wantToken {
				t.Errorf("GitHub.Token = %q, want %q", cfg.GitHub.Token, tt.wantToken)
			}
		})
	}
}

func TestLoad_ConfiguredKeyWins(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	clearCredentials(t)

	t.Setenv("ANTHROPIC_KEY", "sk-env")
	viper.Set("ai.api_key", "sk-config")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AI.APIKey != "sk-config" {
		t.Errorf("AI.APIKey = %q, want sk-config", cfg.AI.APIKey)
	}
}

func validConfig() *Config {
	return &Config{
		Git:    GitConfig{Remote: "origin", BaseBranch: "master"},
		GitHub: GitHubConfig{Publisher: PublisherGHCLI, CLICommand: "gh"},
		AI:     AIConfig{Provider: ProviderAnthropic, APIKey: "sk-test", MaxTokens: DefaultMaxTokens},
		PR:     PRConfig{Title: DefaultTitle},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty remote", func(c *Config) { c.Git.Remote = " " }, "git.remote"},
		{"empty base", func(c *Config) { c.Git.BaseBranch = "" }, "git.base_branch"},
		{"unknown publisher", func(c *Config) { c.GitHub.Publisher = "hub" }, "github.publisher"},
		{"unknown provider", func(c *Config) { c.AI.Provider = "gemini" }, "ai.provider"},
		{"zero max tokens", func(c *Config) { c.AI.MaxTokens = 0 }, "ai.max_tokens"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}

			var configErr *prerrors.ConfigError
			if !prerrors.As(err, &configErr) {
				t.Fatalf("Validate() error = %v, want ConfigError", err)
			}
			if configErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", configErr.Field, tt.wantField)
			}
		})
	}
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
		wantHint  string
	}{
		{"all present", func(*Config) {}, "", ""},
		{"missing anthropic key", func(c *Config) { c.AI.APIKey = "" }, "ai.api_key", "ANTHROPIC_KEY"},
		{
			"missing openai key",
			func(c *Config) { c.AI.Provider = ProviderOpenAI; c.AI.APIKey = "" },
			"ai.api_key", "OPENAI_API_KEY",
		},
		{
			"api publisher needs token",
			func(c *Config) { c.GitHub.Publisher = PublisherAPI },
			"github.token", "GITHUB_TOKEN",
		},
		{
			"gh cli works without token",
			func(c *Config) { c.GitHub.Token = "" },
			"", "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.ValidateCredentials()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("ValidateCredentials() error = %v, want nil", err)
				}
				return
			}

			var configErr *prerrors.ConfigError
			if !prerrors.As(err, &configErr) {
				t.Fatalf("ValidateCredentials() error = %v, want ConfigError", err)
			}
			if configErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", configErr.Field, tt.wantField)
			}
			if !strings.Contains(configErr.Message, tt.wantHint) {
				t.Errorf("Message = %q, want it to mention %q", configErr.Message, tt.wantHint)
			}
		})
	}
}

func TestCheckSecurityWarnings(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	clearCredentials(t)

	viper.SetConfigType("toml")
	if err := viper.ReadConfig(strings.NewReader("[github]\ntoken = \"ghp_inline\"\n[ai]\napi_key = \"sk-inline\"\n")); err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	warnings := CheckSecurityWarnings(cfg)
	if len(warnings) != 2 {
		t.Fatalf("CheckSecurityWarnings() returned %d warnings, want 2: %+v", len(warnings), warnings)
	}
	if warnings[0].Field != "github.token" || warnings[1].Field != "ai.api_key" {
		t.Errorf("warning fields = %q, %q", warnings[0].Field, warnings[1].Field)
	}

	t.Setenv("GITHUB_TOKEN", "ghp-env")
	if got := CheckSecurityWarnings(cfg); len(got) != 1 {
		t.Errorf("with GITHUB_TOKEN set, got %d warnings, want 1", len(got))
	}
}
