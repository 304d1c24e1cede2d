// Package git queries and updates the local repository through the git CLI.
//
// Read-only queries live on Probe and the single mutating action (pushing the
// current branch) lives on Guard. Both shell out through a CommandRunner so tests
// can substitute canned output for a real repository.
package git

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"

	"github.com/cockroachdb/errors"
)

// Result is the captured outcome of a finished command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// CommandRunner runs external commands.
//
// Run returns an error only when the command could not be started or was
// interrupted by ctx. A command that ran and exited non-zero reports that through
// Result.ExitCode with a nil error.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (Result, error)
}

// RealCommandRunner runs commands with os/exec.
type RealCommandRunner struct {
	Logger *slog.Logger
}

// Run implements CommandRunner.
func (r *RealCommandRunner) Run(ctx context.Context, dir, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if r.Logger != nil {
		r.Logger.Debug("exec", "cmd", name, "args", args, "dir", dir)
	}

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, errors.Wrapf(ctxErr, "%s interrupted", name)
		}
		return res, errors.Wrapf(err, "failed to run %s", name)
	}

	return res, nil
}
