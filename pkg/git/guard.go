package git

import (
	"context"
	"log/slog"
	"strings"

	prerrors "thoreinstein.com/autopr/pkg/errors"
)

// DirtyTreeMessage is shown when the working tree has uncommitted changes.
const DirtyTreeMessage = "There are uncommitted changes. Please commit or stash them before proceeding."

// Guard enforces the preconditions for opening a pull request.
type Guard struct {
	probe  *Probe
	runner CommandRunner
	dir    string
	logger *slog.Logger
}

// NewGuard creates a Guard that pushes through runner to the probe's remote.
func NewGuard(probe *Probe, runner CommandRunner, opts ...Option) *Guard {
	o := buildOptions(opts)
	return &Guard{
		probe:  probe,
		runner: runner,
		dir:    o.dir,
		logger: o.logger,
	}
}

// EnsureClean returns an AbortError when the working tree is dirty.
func (g *Guard) EnsureClean(ctx context.Context) error {
	clean, err := g.probe.IsClean(ctx)
	if err != nil {
		return err
	}
	if !clean {
		return prerrors.NewAbortError(DirtyTreeMessage)
	}
	return nil
}

// EnsureRemoteTracking pushes branch once when the remote does not have it yet.
// It reports whether a push happened.
func (g *Guard) EnsureRemoteTracking(ctx context.Context, branch string) (bool, error) {
	exists, err := g.probe.HasRemote(ctx, branch)
	if err != nil {
		return false, err
	}
	if exists {
		g.logger.Debug("branch already on remote", "remote", g.probe.Remote(), "branch", branch)
		return false, nil
	}

	g.logger.Debug("pushing branch", "remote", g.probe.Remote(), "branch", branch)

	res, err := g.runner.Run(ctx, g.dir, "git", "push", g.probe.Remote(), branch)
	if err != nil {
		return false, prerrors.NewPublishErrorWithCause("push", "failed to run git push", err)
	}
	if res.ExitCode != 0 {
		stderr := strings.TrimSpace(string(res.Stderr))
		return false, prerrors.NewPublishErrorWithExit("push",
			res.ExitCode, "git push "+g.probe.Remote()+" "+branch+" was rejected", stderr)
	}

	return true, nil
}
