package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/viper"

	prerrors "thoreinstein.com/autopr/pkg/errors"
)

// Publisher strategies.
const (
	PublisherGHCLI = "gh_cli"
	PublisherAPI   = "api"
)

// AI providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// DefaultTitle is the pull request title used when none is configured.
const DefaultTitle = "Automated Pull Request"

// DefaultMaxTokens is the completion budget sent to the AI provider.
const DefaultMaxTokens = 1000000

// Config represents the application configuration.
// Repository state is derived from git, not configuration.
type Config struct {
	Git    GitConfig    `mapstructure:"git" toml:"git"`
	GitHub GitHubConfig `mapstructure:"github" toml:"github"`
	AI     AIConfig     `mapstructure:"ai" toml:"ai"`
	PR     PRConfig     `mapstructure:"pr" toml:"pr"`
	UI     UIConfig     `mapstructure:"ui" toml:"ui"`
}

// GitConfig holds the remote and base branch the pull request targets
type GitConfig struct {
	Remote     string `mapstructure:"remote" toml:"remote"`           // Remote to push to and diff against (default: origin)
	BaseBranch string `mapstructure:"base_branch" toml:"base_branch"` // Branch the PR merges into (default: master)
}

// GitHubConfig holds GitHub publishing configuration
type GitHubConfig struct {
	Publisher  string `mapstructure:"publisher" toml:"publisher"`     // "gh_cli" or "api"
	Token      string `mapstructure:"token" toml:"token"`             // GITHUB_TOKEN env var is used when empty
	Owner      string `mapstructure:"owner" toml:"owner"`             // Derived from the remote URL when empty
	Repo       string `mapstructure:"repo" toml:"repo"`               // Derived from the remote URL when empty
	APIURL     string `mapstructure:"api_url" toml:"api_url"`         // Custom REST base URL (GitHub Enterprise)
	CLICommand string `mapstructure:"cli_command" toml:"cli_command"` // gh executable (default: gh)
}

// AIConfig holds AI provider configuration
type AIConfig struct {
	Provider  string `mapstructure:"provider" toml:"provider"`     // "anthropic" or "openai"
	Model     string `mapstructure:"model" toml:"model"`           // Empty means the provider default
	APIKey    string `mapstructure:"api_key" toml:"api_key"`       // Provider API key (env var fallback)
	Endpoint  string `mapstructure:"endpoint" toml:"endpoint"`     // Custom endpoint URL
	MaxTokens int    `mapstructure:"max_tokens" toml:"max_tokens"` // Completion token budget
}

// PRConfig holds pull request content settings
type PRConfig struct {
	Title string `mapstructure:"title" toml:"title"`
}

// UIConfig holds terminal output settings
type UIConfig struct {
	Progress bool `mapstructure:"progress" toml:"progress"` // Show progress indicators
}

// SecurityWarning represents a configuration security issue
type SecurityWarning struct {
	Field   string
	Message string
}

// Environment variables consulted for credentials when the config leaves them
// empty, in order of precedence.
var (
	anthropicKeyEnv = []string{"AUTOPR_AI_API_KEY", "ANTHROPIC_API_KEY", "ANTHROPIC_KEY"}
	openAIKeyEnv    = []string{"AUTOPR_AI_API_KEY", "OPENAI_API_KEY"}
	githubTokenEnv  = []string{"AUTOPR_GITHUB_TOKEN", "GITHUB_TOKEN"}
)

// Load loads the configuration from file and environment variables
func Load() (*Config, error) {
	config := &Config{}

	// Set defaults
	setDefaults()

	// Unmarshal the config
	if err := viper.Unmarshal(config); err != nil {
		return nil, prerrors.NewConfigErrorWithCause("", "failed to unmarshal config", err)
	}

	resolveCredentials(config)

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// BaseRef returns the remote-tracking ref the change set is computed against,
// e.g. "origin/master".
func (c *Config) BaseRef() string {
	return c.Git.Remote + "/" + c.Git.BaseBranch
}

// Validate validates the configuration and returns any validation errors.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Git.Remote) == "" {
		return prerrors.NewConfigError("git.remote", "remote name must not be empty")
	}
	if strings.TrimSpace(c.Git.BaseBranch) == "" {
		return prerrors.NewConfigError("git.base_branch", "base branch must not be empty")
	}
	if !slices.Contains([]string{PublisherGHCLI, PublisherAPI}, c.GitHub.Publisher) {
		return prerrors.NewConfigError("github.publisher",
			fmt.Sprintf("invalid publisher %q: must be one of: gh_cli, api", c.GitHub.Publisher))
	}
	if !slices.Contains([]string{ProviderAnthropic, ProviderOpenAI}, c.AI.Provider) {
		return prerrors.NewConfigError("ai.provider",
			fmt.Sprintf("invalid provider %q: must be one of: anthropic, openai", c.AI.Provider))
	}
	if c.AI.MaxTokens <= 0 {
		return prerrors.NewConfigError("ai.max_tokens", "must be a positive integer")
	}
	return nil
}

// ValidateCredentials reports the first credential the configured backends
// need but do not have. It is checked before any git or network call.
func (c *Config) ValidateCredentials() error {
	if c.AI.APIKey == "" {
		envs := anthropicKeyEnv
		if c.AI.Provider == ProviderOpenAI {
			envs = openAIKeyEnv
		}
		return prerrors.NewConfigError("ai.api_key",
			"no API key configured (set one of "+strings.Join(envs, ", ")+")")
	}
	if c.GitHub.Publisher == PublisherAPI && c.GitHub.Token == "" {
		return prerrors.NewConfigError("github.token",
			"the api publisher needs a token (set one of "+strings.Join(githubTokenEnv, ", ")+")")
	}
	return nil
}

// CheckSecurityWarnings returns warnings for insecure configuration practices.
// Call this when loading config to warn users about tokens stored in config files.
func CheckSecurityWarnings(config *Config) []SecurityWarning {
	var warnings []SecurityWarning

	if config.GitHub.Token != "" && viper.InConfig("github.token") && firstEnv(githubTokenEnv) == "" {
		warnings = append(warnings, SecurityWarning{
			Field:   "github.token",
			Message: "GitHub token is set in config file. For security, use the GITHUB_TOKEN environment variable instead.",
		})
	}

	if config.AI.APIKey != "" && viper.InConfig("ai.api_key") &&
		firstEnv(anthropicKeyEnv) == "" && firstEnv(openAIKeyEnv) == "" {
		warnings = append(warnings, SecurityWarning{
			Field:   "ai.api_key",
			Message: "AI API key is set in config file. For security, use environment variables (ANTHROPIC_KEY, OPENAI_API_KEY, or AUTOPR_AI_API_KEY) instead.",
		})
	}

	return warnings
}

// resolveCredentials fills empty secrets from the well-known environment
// variables of each backend.
func resolveCredentials(config *Config) {
	if config.AI.APIKey == "" {
		envs := anthropicKeyEnv
		if config.AI.Provider == ProviderOpenAI {
			envs = openAIKeyEnv
		}
		config.AI.APIKey = firstEnv(envs)
	}

	if config.GitHub.Token == "" {
		config.GitHub.Token = firstEnv(githubTokenEnv)
	}
}

func firstEnv(names []string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// setDefaults sets default configuration values
func setDefaults() {
	// Git defaults
	viper.SetDefault("git.remote", "origin")
	viper.SetDefault("git.base_branch", "master")

	// GitHub defaults
	viper.SetDefault("github.publisher", PublisherGHCLI)
	viper.SetDefault("github.token", "")
	viper.SetDefault("github.owner", "")
	viper.SetDefault("github.repo", "")
	viper.SetDefault("github.api_url", "")
	viper.SetDefault("github.cli_command", "gh")

	// AI defaults
	viper.SetDefault("ai.provider", ProviderAnthropic)
	viper.SetDefault("ai.model", "") // Empty means use per-provider default
	viper.SetDefault("ai.api_key", "")
	viper.SetDefault("ai.endpoint", "") // Empty means use provider default
	viper.SetDefault("ai.max_tokens", DefaultMaxTokens)

	// PR defaults
	viper.SetDefault("pr.title", DefaultTitle)

	// UI defaults
	viper.SetDefault("ui.progress", true)
}
