package workflow

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	prerrors "thoreinstein.com/autopr/pkg/errors"
	"thoreinstein.com/autopr/pkg/github"
	"thoreinstein.com/autopr/pkg/issue"
)

// Engine orchestrates the pull request workflow.
type Engine struct {
	probe     RepositoryProbe
	guard     SyncGuard
	linker    issue.Linker
	generator DescriptionGenerator
	publisher github.Publisher
	observers []Observer
	opts      Options
	logger    *slog.Logger
}

// Deps bundles the collaborators an Engine drives.
type Deps struct {
	Probe     RepositoryProbe
	Guard     SyncGuard
	Linker    issue.Linker
	Generator DescriptionGenerator
	Publisher github.Publisher
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithObserver adds a progress observer.
func WithObserver(o Observer) EngineOption {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a workflow engine. A nil Linker resolves no issue.
func NewEngine(deps Deps, opts Options, engineOpts ...EngineOption) *Engine {
	linker := deps.Linker
	if linker == nil {
		linker = issue.NoneLinker{}
	}

	e := &Engine{
		probe:     deps.Probe,
		guard:     deps.Guard,
		linker:    linker,
		generator: deps.Generator,
		publisher: deps.Publisher,
		opts:      opts,
		logger:    slog.Default(),
	}

	for _, opt := range engineOpts {
		opt(e)
	}

	return e
}

// Run executes the full workflow once.
//
// The first failure is returned wrapped in a WorkflowError naming the step.
// Steps after it do not run.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	r := &run{id: uuid.NewString()}
	logger := e.logger.With("run_id", r.id)

	logger.Debug("starting pull request workflow", "base", e.opts.BaseRef())

	// Execute each step in order
	steps := []struct {
		step Step
		fn   func(context.Context, *run) error
	}{
		{StepVerifyClean, e.runVerifyClean},
		{StepEnsureRemote, e.runEnsureRemote},
		{StepCollectDiff, e.runCollectDiff},
		{StepCollectCommits, e.runCollectCommits},
		{StepResolveIssue, e.runResolveIssue},
		{StepGenerate, e.runGenerate},
		{StepPublish, e.runPublish},
	}

	for _, s := range steps {
		logger.Debug("executing step", "step", s.step)
		e.notify(logger, func(o Observer) { o.StageStarted(s.step) })

		if err := ctx.Err(); err != nil {
			e.notify(logger, func(o Observer) { o.StageFailed(s.step, err) })
			return nil, prerrors.NewWorkflowErrorWithCause(string(s.step), "interrupted", err)
		}

		if err := s.fn(ctx, r); err != nil {
			logger.Debug("step failed", "step", s.step, "error", err)
			e.notify(logger, func(o Observer) { o.StageFailed(s.step, err) })
			return nil, prerrors.NewWorkflowErrorWithCause(string(s.step), err.Error(), err)
		}

		e.notify(logger, func(o Observer) { o.StageSucceeded(s.step) })
		logger.Debug("completed step", "step", s.step)
	}

	logger.Debug("pull request workflow completed", "url", r.pr.URL)

	return &Result{
		RunID:   r.id,
		Branch:  r.branch,
		Pushed:  r.pushed,
		Request: r.request,
		PR:      r.pr,
	}, nil
}

func (e *Engine) runVerifyClean(ctx context.Context, _ *run) error {
	return e.guard.EnsureClean(ctx)
}

func (e *Engine) runEnsureRemote(ctx context.Context, r *run) error {
	branch, err := e.probe.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	r.branch = branch

	pushed, err := e.guard.EnsureRemoteTracking(ctx, branch)
	if err != nil {
		return err
	}
	r.pushed = pushed
	return nil
}

func (e *Engine) runCollectDiff(ctx context.Context, r *run) error {
	diff, err := e.probe.Diff(ctx, e.opts.BaseRef())
	if err != nil {
		return err
	}
	r.changes.Diff = diff
	return nil
}

func (e *Engine) runCollectCommits(ctx context.Context, r *run) error {
	subjects, err := e.probe.CommitSubjects(ctx, e.opts.BaseRef())
	if err != nil {
		return err
	}
	r.changes.CommitSubjects = subjects
	return nil
}

func (e *Engine) runResolveIssue(ctx context.Context, r *run) error {
	linked, err := e.linker.Resolve(ctx, r.branch)
	if err != nil {
		return err
	}
	r.linked = linked
	return nil
}

func (e *Engine) runGenerate(ctx context.Context, r *run) error {
	desc, err := e.generator.Generate(ctx, r.changes, r.linked)
	if err != nil {
		return err
	}
	r.description = desc
	return nil
}

func (e *Engine) runPublish(ctx context.Context, r *run) error {
	r.request = github.CreatePROptions{
		Title:      e.opts.Title,
		Body:       r.description,
		HeadBranch: r.branch,
		BaseBranch: e.opts.BaseBranch,
	}

	pr, err := e.publisher.CreatePR(ctx, r.request)
	if err != nil {
		return err
	}
	if pr == nil {
		return prerrors.NewPublishError("CreatePR", e.publisher.Name()+" returned no pull request")
	}
	r.pr = pr
	return nil
}

// notify calls fn for every observer. A panicking observer is logged and
// skipped.
func (e *Engine) notify(logger *slog.Logger, fn func(Observer)) {
	for _, o := range e.observers {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Warn("progress observer panicked", "panic", rec)
				}
			}()
			fn(o)
		}()
	}
}
