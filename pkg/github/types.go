// Package github publishes pull requests to GitHub.
//
// Two Publisher implementations are provided: CLIClient shells out to the gh
// CLI and relies on its stored credentials, APIClient calls the REST API
// directly with a token. Both return a PublishError on any failure.
package github

import "context"

// PRInfo describes a created pull request.
type PRInfo struct {
	Number     int
	URL        string
	Title      string
	HeadBranch string
	BaseBranch string
}

// CreatePROptions holds options for creating a pull request.
type CreatePROptions struct {
	Title      string // PR title (required)
	Body       string // PR body/description
	HeadBranch string // Source branch (required)
	BaseBranch string // Target branch (required)
}

// Publisher creates pull requests.
type Publisher interface {
	// Name identifies the strategy, e.g. "gh_cli" or "api".
	Name() string

	// CreatePR submits exactly one pull request.
	CreatePR(ctx context.Context, opts CreatePROptions) (*PRInfo, error)
}

// Compile-time checks that implementations satisfy the Publisher interface.
var (
	_ Publisher = (*CLIClient)(nil)
	_ Publisher = (*APIClient)(nil)
)
