package github

import (
	"log/slog"

	"thoreinstein.com/autopr/pkg/config"
	prerrors "thoreinstein.com/autopr/pkg/errors"
	"thoreinstein.com/autopr/pkg/git"
)

// NewPublisher creates the publisher selected by github.publisher. For the api
// strategy, owner and repo default to the GitHub coordinates of the configured
// remote in dir.
func NewPublisher(cfg *config.Config, dir string, logger *slog.Logger) (Publisher, error) {
	if cfg == nil {
		return nil, prerrors.NewConfigError("github", "config is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.GitHub.Publisher {
	case config.PublisherGHCLI:
		return NewCLIClient(
			WithCommand(cfg.GitHub.CLICommand),
			WithToken(cfg.GitHub.Token),
			WithDir(dir),
			WithLogger(logger),
		)

	case config.PublisherAPI:
		owner, repo := cfg.GitHub.Owner, cfg.GitHub.Repo
		if owner == "" || repo == "" {
			remoteOwner, remoteRepo, err := git.ResolveGitHubRepo(dir, cfg.Git.Remote)
			if err != nil {
				return nil, prerrors.NewConfigErrorWithCause("github.repo",
					"set github.owner and github.repo, or use a GitHub remote", err)
			}
			if owner == "" {
				owner = remoteOwner
			}
			if repo == "" {
				repo = remoteRepo
			}
		}

		logger.Debug("using REST publisher", "owner", owner, "repo", repo)
		return NewAPIClient(cfg.GitHub.Token, owner, repo,
			WithBaseURL(cfg.GitHub.APIURL),
			WithAPILogger(logger),
		)

	default:
		return nil, prerrors.NewConfigError("github.publisher",
			"unsupported publisher: "+cfg.GitHub.Publisher+" (supported: gh_cli, api)")
	}
}
