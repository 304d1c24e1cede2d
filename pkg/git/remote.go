package git

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	gogit "github.com/go-git/go-git/v5"

	prerrors "thoreinstein.com/autopr/pkg/errors"
)

// RepoURL is a parsed GitHub remote URL.
type RepoURL struct {
	Original string // Original input
	Host     string // e.g. "github.com" or a GitHub Enterprise host
	Protocol string // "ssh" or "https"
	Owner    string // GitHub org/user
	Repo     string // Repository name (without .git)
}

var (
	// scp-like SSH: git@github.com:owner/repo.git
	scpURLRegex = regexp.MustCompile(`^[\w.-]+@([\w.-]+):([\w.-]+)/([\w.-]+?)(?:\.git)?/?$`)

	// URL SSH: ssh://git@github.com/owner/repo.git (optional port)
	sshURLRegex = regexp.MustCompile(`^ssh://(?:[\w.-]+@)?([\w.-]+)(?::\d+)?/([\w.-]+)/([\w.-]+?)(?:\.git)?/?$`)

	// HTTPS: https://github.com/owner/repo(.git), credentials allowed
	httpsURLRegex = regexp.MustCompile(`^https?://(?:[^@/]+@)?([\w.-]+)(?::\d+)?/([\w.-]+)/([\w.-]+?)(?:\.git)?/?$`)

	// Shorthand: github.com/owner/repo
	shorthandURLRegex = regexp.MustCompile(`^(github\.com)/([\w.-]+)/([\w.-]+?)(?:\.git)?$`)
)

// ParseGitHubURL parses the remote URL formats git accepts for GitHub
// repositories:
//   - SCP-like SSH: git@github.com:owner/repo.git
//   - SSH URL: ssh://git@github.com/owner/repo.git
//   - HTTPS: https://github.com/owner/repo
//   - Shorthand: github.com/owner/repo
func ParseGitHubURL(input string) (*RepoURL, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, errors.New("empty URL provided")
	}

	patterns := []struct {
		re       *regexp.Regexp
		protocol string
	}{
		{sshURLRegex, "ssh"},
		{httpsURLRegex, "https"},
		{scpURLRegex, "ssh"},
		{shorthandURLRegex, "ssh"},
	}

	for _, p := range patterns {
		if m := p.re.FindStringSubmatch(input); len(m) == 4 {
			return &RepoURL{
				Original: input,
				Host:     m[1],
				Protocol: p.protocol,
				Owner:    m[2],
				Repo:     m[3],
			}, nil
		}
	}

	return nil, errors.Newf("invalid GitHub URL format: %q", input)
}

// openRepository opens the repository containing dir, walking up to find .git.
func openRepository(dir string) (*gogit.Repository, error) {
	if dir == "" {
		dir = "."
	}

	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, prerrors.NewRepositoryErrorWithCause("open", "not a git repository: "+dir, err)
		}
		return nil, prerrors.NewRepositoryErrorWithCause("open", "failed to open repository", err)
	}
	return repo, nil
}

// FindRoot returns the top directory of the work tree containing dir.
func FindRoot(dir string) (string, error) {
	repo, err := openRepository(dir)
	if err != nil {
		return "", err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", prerrors.NewRepositoryErrorWithCause("open", "repository has no work tree", err)
	}
	return wt.Filesystem.Root(), nil
}

// RemoteURL returns the first configured URL of remote in the repository
// containing dir.
func RemoteURL(dir, remote string) (string, error) {
	repo, err := openRepository(dir)
	if err != nil {
		return "", err
	}

	r, err := repo.Remote(remote)
	if err != nil {
		if errors.Is(err, gogit.ErrRemoteNotFound) {
			return "", prerrors.NewRepositoryErrorWithCause("remote", "remote "+remote+" is not configured", err)
		}
		return "", prerrors.NewRepositoryErrorWithCause("remote", "failed to read remote "+remote, err)
	}

	urls := r.Config().URLs
	if len(urls) == 0 {
		return "", prerrors.NewRepositoryError("remote", "remote "+remote+" has no URL")
	}
	return urls[0], nil
}

// ResolveGitHubRepo resolves owner and repo from remote's URL.
func ResolveGitHubRepo(dir, remote string) (owner, repo string, err error) {
	rawURL, err := RemoteURL(dir, remote)
	if err != nil {
		return "", "", err
	}

	parsed, err := ParseGitHubURL(rawURL)
	if err != nil {
		return "", "", prerrors.NewRepositoryErrorWithCause("remote", "remote "+remote+" is not a GitHub URL", err)
	}
	return parsed.Owner, parsed.Repo, nil
}
