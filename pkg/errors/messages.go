package errors

import (
	"fmt"
	"strings"
)

// FormatUserError returns a user-friendly error message with actionable guidance.
// It examines the error chain and provides context-appropriate help text.
func FormatUserError(err error) string {
	if err == nil {
		return ""
	}

	// A dirty tree is reported exactly as-is.
	var abortErr *AbortError
	if As(err, &abortErr) {
		return abortErr.Message
	}

	var b strings.Builder

	var wfErr *WorkflowError
	if As(err, &wfErr) && wfErr.Step != "" {
		fmt.Fprintf(&b, "Pull request creation stopped at '%s'.\n\n", wfErr.Step)
	}

	var configErr *ConfigError
	var repoErr *RepositoryError
	var pubErr *PublishError
	var genErr *GenerationError

	switch {
	case As(err, &configErr):
		b.WriteString(formatConfigError(configErr))
	case As(err, &repoErr):
		b.WriteString(formatRepositoryError(repoErr))
	case As(err, &pubErr):
		b.WriteString(formatPublishError(pubErr))
	case As(err, &genErr):
		b.WriteString(formatGenerationError(genErr))
	case wfErr != nil:
		b.WriteString(formatWorkflowError(wfErr))
	default:
		// Default: return the error message as-is
		return err.Error()
	}

	return strings.TrimRight(b.String(), "\n")
}

// formatConfigError formats a ConfigError with actionable guidance.
func formatConfigError(err *ConfigError) string {
	var b strings.Builder

	if err.Field != "" {
		fmt.Fprintf(&b, "Configuration error in '%s': %s\n", err.Field, err.Message)
	} else {
		fmt.Fprintf(&b, "Configuration error: %s\n", err.Message)
	}

	b.WriteString("\nTo fix this:\n")
	switch err.Field {
	case "ai.api_key":
		b.WriteString("  • Set ANTHROPIC_KEY (or AUTOPR_AI_API_KEY) in your environment or .env file\n")
		b.WriteString("  • For the openai provider, set OPENAI_API_KEY instead\n")
	case "github.token":
		b.WriteString("  • Set GITHUB_TOKEN (or AUTOPR_GITHUB_TOKEN)\n")
		b.WriteString("  • Or switch to github.publisher = \"gh_cli\" and run 'gh auth login'\n")
	default:
		b.WriteString("  • Check your config file: ~/.config/autopr/config.toml\n")
		b.WriteString("  • Run 'autopr config show' to inspect the effective settings\n")
	}

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}

// formatRepositoryError formats a RepositoryError with git's own stderr.
func formatRepositoryError(err *RepositoryError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Git error during '%s': %s\n", err.Query, err.Message)

	if stderr := strings.TrimSpace(err.Stderr); stderr != "" {
		fmt.Fprintf(&b, "\ngit reported:\n  %s\n", stderr)
	}

	b.WriteString("\nTo fix this:\n")
	b.WriteString("  • Run autopr from inside a git work tree\n")
	b.WriteString("  • Verify the remote and base branch exist (git fetch)\n")

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}

// formatPublishError formats a PublishError with guidance based on status code.
func formatPublishError(err *PublishError) string {
	var b strings.Builder

	switch {
	case err.StatusCode > 0:
		fmt.Fprintf(&b, "Publishing failed during %s (HTTP %d): %s\n", err.Operation, err.StatusCode, err.Message)
	case err.ExitCode > 0:
		fmt.Fprintf(&b, "Publishing failed during %s (exit %d): %s\n", err.Operation, err.ExitCode, err.Message)
	default:
		fmt.Fprintf(&b, "Publishing failed during %s: %s\n", err.Operation, err.Message)
	}

	if body := strings.TrimSpace(err.Body); body != "" {
		fmt.Fprintf(&b, "\nResponse:\n  %s\n", body)
	}

	switch err.StatusCode {
	case 401:
		b.WriteString("\nAuthentication failed. To fix this:\n")
		b.WriteString("  • Set the GITHUB_TOKEN environment variable\n")
		b.WriteString("  • Ensure your token has the 'repo' scope\n")

	case 403:
		b.WriteString("\nPermission denied. To fix this:\n")
		b.WriteString("  • Ensure you have write access to this repository\n")
		b.WriteString("  • If using SSO, ensure the token is authorized for your organization\n")

	case 404:
		b.WriteString("\nRepository not found. To fix this:\n")
		b.WriteString("  • Verify github.owner and github.repo\n")
		b.WriteString("  • Check that you have access to the repository\n")

	case 422:
		b.WriteString("\nValidation failed. To fix this:\n")
		b.WriteString("  • A pull request for this branch may already exist\n")
		b.WriteString("  • Ensure the head branch has commits the base branch lacks\n")
	}

	if err.Operation == "push" {
		b.WriteString("\nThe branch could not be pushed. Check your remote credentials.\n")
	}

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}

// formatGenerationError formats a GenerationError with guidance based on status code.
func formatGenerationError(err *GenerationError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "AI provider error (%s) during %s: %s\n", err.Provider, err.Operation, err.Message)

	switch err.StatusCode {
	case 401:
		fmt.Fprintf(&b, "\nAuthentication failed with %s. To fix this:\n", err.Provider)
		b.WriteString("  • Verify your API key is valid and not expired\n")

	case 429:
		fmt.Fprintf(&b, "\n%s rate limit exceeded. To fix this:\n", err.Provider)
		b.WriteString("  • Wait a few minutes before running autopr again\n")

	case 500, 502, 503, 504:
		fmt.Fprintf(&b, "\n%s server error. To fix this:\n", err.Provider)
		b.WriteString("  • Wait a few moments and try again\n")
		b.WriteString("  • Check the provider's status page\n")
	}

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}

// formatWorkflowError formats a WorkflowError with no more specific cause.
func formatWorkflowError(err *WorkflowError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", err.Message)
	b.WriteString("\nTo troubleshoot:\n")
	b.WriteString("  • Run with --verbose for more details\n")

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}
