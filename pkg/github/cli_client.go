package github

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"thoreinstein.com/autopr/pkg/config"
	prerrors "thoreinstein.com/autopr/pkg/errors"
)

// CLIClient implements Publisher using the gh CLI.
// gh handles authentication itself; a configured token is passed through
// as GITHUB_TOKEN.
type CLIClient struct {
	command string
	token   string // Optional token for GITHUB_TOKEN env override
	dir     string
	logger  *slog.Logger
}

// CLIClientOption is a functional option for configuring CLIClient.
type CLIClientOption func(*CLIClient)

// WithToken sets a token to be used via GITHUB_TOKEN environment variable.
func WithToken(token string) CLIClientOption {
	return func(c *CLIClient) {
		c.token = token
	}
}

// WithCommand sets the gh executable name or path.
func WithCommand(command string) CLIClientOption {
	return func(c *CLIClient) {
		if command != "" {
			c.command = command
		}
	}
}

// WithDir runs gh in dir so it picks up that repository.
func WithDir(dir string) CLIClientOption {
	return func(c *CLIClient) {
		c.dir = dir
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(logger *slog.Logger) CLIClientOption {
	return func(c *CLIClient) {
		c.logger = logger
	}
}

// NewCLIClient creates a new gh CLI-based publisher.
func NewCLIClient(opts ...CLIClientOption) (*CLIClient, error) {
	c := &CLIClient{
		command: "gh",
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	// Verify gh CLI is available
	if _, err := exec.LookPath(c.command); err != nil {
		return nil, prerrors.NewConfigErrorWithCause("github.cli_command", c.command+" not found in PATH", err)
	}

	return c, nil
}

// Name returns the publisher strategy name.
func (c *CLIClient) Name() string {
	return config.PublisherGHCLI
}

// CreatePR creates a new pull request using gh pr create.
func (c *CLIClient) CreatePR(ctx context.Context, opts CreatePROptions) (*PRInfo, error) {
	if opts.Title == "" {
		return nil, prerrors.NewPublishError("CreatePR", "title is required")
	}

	// Always pass --body (even if empty) because gh requires both --title and --body
	// when running non-interactively
	args := []string{"pr", "create", "--title", opts.Title, "--body", opts.Body}
	if opts.BaseBranch != "" {
		args = append(args, "--base", opts.BaseBranch)
	}
	if opts.HeadBranch != "" {
		args = append(args, "--head", opts.HeadBranch)
	}

	c.logger.Debug("creating PR", "command", c.command, "base", opts.BaseBranch, "head", opts.HeadBranch)

	output, err := c.runGH(ctx, args...)
	if err != nil {
		return nil, err
	}

	// gh pr create prints the PR URL on its last line
	prURL := lastLine(output)
	c.logger.Debug("PR created", "url", prURL)

	info := &PRInfo{
		URL:        prURL,
		Title:      opts.Title,
		HeadBranch: opts.HeadBranch,
		BaseBranch: opts.BaseBranch,
	}

	number, parseErr := extractPRNumber(prURL)
	if parseErr != nil {
		c.logger.Debug("could not parse PR number from URL", "url", prURL, "error", parseErr)
		return info, nil
	}
	info.Number = number

	return info, nil
}

// runGH executes a gh command and returns its stdout. A non-zero exit becomes a
// PublishError carrying the child's exit code and stderr.
func (c *CLIClient) runGH(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, c.command, args...)
	cmd.Dir = c.dir

	// Set GITHUB_TOKEN if configured
	if c.token != "" {
		cmd.Env = append(os.Environ(), "GITHUB_TOKEN="+c.token)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		errMsg := strings.TrimSpace(stderr.String())

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			msg := "gh pr create failed"
			if errMsg != "" {
				msg = firstLine(errMsg)
			}
			return "", prerrors.NewPublishErrorWithExit("CreatePR", exitErr.ExitCode(), msg, errMsg)
		}

		return "", prerrors.NewPublishErrorWithCause("CreatePR", "failed to run "+c.command, err)
	}

	return stdout.String(), nil
}

// extractPRNumber extracts the PR number from a GitHub PR URL.
func extractPRNumber(url string) (int, error) {
	// URL format: https://github.com/owner/repo/pull/123
	parts := strings.Split(url, "/")
	if len(parts) < 2 || parts[len(parts)-2] != "pull" {
		return 0, errors.Newf("invalid PR URL format: %q", url)
	}
	number, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0, errors.Wrap(err, "failed to parse PR number")
	}
	return number, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
