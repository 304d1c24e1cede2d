package cmd

import (
	"context"
	"io"
	"log/slog"

	"thoreinstein.com/autopr/pkg/ai"
	"thoreinstein.com/autopr/pkg/config"
	"thoreinstein.com/autopr/pkg/describe"
	"thoreinstein.com/autopr/pkg/git"
	"thoreinstein.com/autopr/pkg/github"
	"thoreinstein.com/autopr/pkg/issue"
	"thoreinstein.com/autopr/pkg/ui"
	"thoreinstein.com/autopr/pkg/workflow"
)

// runPR wires the workflow from cfg and runs it once in dir.
func runPR(ctx context.Context, cfg *config.Config, dir string, logger *slog.Logger, out io.Writer) error {
	runner := &git.RealCommandRunner{Logger: logger}
	probe := git.NewProbe(runner, cfg.Git.Remote, git.WithDir(dir), git.WithLogger(logger))
	guard := git.NewGuard(probe, runner, git.WithDir(dir), git.WithLogger(logger))

	provider, err := ai.NewProvider(&cfg.AI, logger)
	if err != nil {
		return err
	}

	publisher, err := github.NewPublisher(cfg, dir, logger)
	if err != nil {
		return err
	}

	engineOpts := []workflow.EngineOption{
		workflow.WithLogger(logger),
		workflow.WithObserver(ui.NewStartBanner(out)),
	}
	if obs := ui.NewObserver(out, cfg.UI.Progress); obs != nil {
		engineOpts = append(engineOpts, workflow.WithObserver(obs))
	}

	engine := workflow.NewEngine(workflow.Deps{
		Probe:     probe,
		Guard:     guard,
		Linker:    issue.NoneLinker{},
		Generator: describe.NewGenerator(provider, logger),
		Publisher: publisher,
	}, workflow.Options{
		Title:      cfg.PR.Title,
		Remote:     cfg.Git.Remote,
		BaseBranch: cfg.Git.BaseBranch,
	}, engineOpts...)

	result, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	ui.PrintDone(out, result.PR.URL)
	return nil
}
