package git

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	prerrors "thoreinstein.com/autopr/pkg/errors"
)

// RepositoryState is a snapshot of the working tree. It is derived on demand and
// never cached.
type RepositoryState struct {
	IsClean         bool
	CurrentBranch   string
	HasRemoteBranch bool
}

// ChangeSet is the delta between the current branch tip and the base ref.
type ChangeSet struct {
	Diff           string
	CommitSubjects []string // git log order, newest first
}

// lsRemoteNoMatch is the exit status of `git ls-remote --exit-code` when no
// ref matched.
const lsRemoteNoMatch = 2

// Probe runs read-only git queries against one repository.
type Probe struct {
	runner CommandRunner
	dir    string
	remote string
	logger *slog.Logger
}

// Option configures a Probe or Guard.
type Option func(*options)

type options struct {
	dir    string
	logger *slog.Logger
}

// WithDir runs git in dir instead of the process working directory.
func WithDir(dir string) Option {
	return func(o *options) {
		o.dir = dir
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewProbe creates a Probe that consults remote for remote-tracking questions.
func NewProbe(runner CommandRunner, remote string, opts ...Option) *Probe {
	o := buildOptions(opts)
	return &Probe{
		runner: runner,
		dir:    o.dir,
		remote: remote,
		logger: o.logger,
	}
}

// Remote returns the remote name the probe was created with.
func (p *Probe) Remote() string {
	return p.remote
}

// IsClean reports whether `git status --porcelain` prints nothing.
func (p *Probe) IsClean(ctx context.Context) (bool, error) {
	out, err := p.query(ctx, "status", "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) == "", nil
}

// CurrentBranch returns the abbreviated name of HEAD.
func (p *Probe) CurrentBranch(ctx context.Context) (string, error) {
	out, err := p.query(ctx, "rev-parse", "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}

	branch := strings.TrimSpace(out)
	if branch == "" {
		return "", prerrors.NewRepositoryError("rev-parse", "git printed no branch name")
	}
	return branch, nil
}

// HasRemote reports whether branch exists as a head on the probe's remote.
func (p *Probe) HasRemote(ctx context.Context, branch string) (bool, error) {
	res, err := p.runner.Run(ctx, p.dir, "git", "ls-remote", "--exit-code", "--heads", p.remote, branch)
	if err != nil {
		return false, prerrors.NewRepositoryErrorWithCause("ls-remote", err.Error(), err)
	}

	// Only "no matching ref" means absent. Unreachable remotes and auth
	// failures are errors rather than a reason to push.
	switch res.ExitCode {
	case 0:
		return true, nil
	case lsRemoteNoMatch:
		return false, nil
	default:
		return false, repositoryError("ls-remote", res)
	}
}

// Diff returns `git diff <baseRef>` verbatim.
func (p *Probe) Diff(ctx context.Context, baseRef string) (string, error) {
	return p.query(ctx, "diff", "diff", baseRef)
}

// CommitSubjects returns the subject of every commit in baseRef..HEAD.
func (p *Probe) CommitSubjects(ctx context.Context, baseRef string) ([]string, error) {
	out, err := p.query(ctx, "log", "log", baseRef+"..HEAD", "--pretty=format:%s")
	if err != nil {
		return nil, err
	}
	return parseCommitSubjects(out), nil
}

// State bundles IsClean, CurrentBranch and HasRemote.
func (p *Probe) State(ctx context.Context) (*RepositoryState, error) {
	clean, err := p.IsClean(ctx)
	if err != nil {
		return nil, err
	}

	branch, err := p.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}

	hasRemote, err := p.HasRemote(ctx, branch)
	if err != nil {
		return nil, err
	}

	return &RepositoryState{
		IsClean:         clean,
		CurrentBranch:   branch,
		HasRemoteBranch: hasRemote,
	}, nil
}

// ChangeSet bundles Diff and CommitSubjects against baseRef.
func (p *Probe) ChangeSet(ctx context.Context, baseRef string) (*ChangeSet, error) {
	diff, err := p.Diff(ctx, baseRef)
	if err != nil {
		return nil, err
	}

	subjects, err := p.CommitSubjects(ctx, baseRef)
	if err != nil {
		return nil, err
	}

	return &ChangeSet{Diff: diff, CommitSubjects: subjects}, nil
}

// query runs git and returns stdout, turning any failure into a RepositoryError
// tagged with name.
func (p *Probe) query(ctx context.Context, name string, args ...string) (string, error) {
	p.logger.Debug("git query", "query", name, "args", args)

	res, err := p.runner.Run(ctx, p.dir, "git", args...)
	if err != nil {
		return "", prerrors.NewRepositoryErrorWithCause(name, err.Error(), err)
	}
	if res.ExitCode != 0 {
		return "", repositoryError(name, res)
	}
	return string(res.Stdout), nil
}

func repositoryError(query string, res Result) *prerrors.RepositoryError {
	stderr := strings.TrimSpace(string(res.Stderr))
	msg := stderr
	if msg == "" {
		msg = fmt.Sprintf("exit status %d", res.ExitCode)
	}
	return &prerrors.RepositoryError{
		Query:    query,
		ExitCode: res.ExitCode,
		Stderr:   stderr,
		Message:  msg,
	}
}

// parseCommitSubjects splits git log output into one subject per line. A
// single trailing empty line is dropped; empty subjects in the middle are kept.
func parseCommitSubjects(out string) []string {
	if out == "" {
		return []string{}
	}

	out = strings.ReplaceAll(out, "\r\n", "\n")
	out = strings.TrimSuffix(out, "\n")
	return strings.Split(out, "\n")
}
