package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"thoreinstein.com/autopr/pkg/bootstrap"
	"thoreinstein.com/autopr/pkg/config"
	prerrors "thoreinstein.com/autopr/pkg/errors"
	"thoreinstein.com/autopr/pkg/ui"
)

// globalOptions holds the flags shared by every command.
type globalOptions struct {
	cfgFile    string
	envFile    string
	verbose    bool
	noProgress bool
	baseBranch string
}

// newRootCmd builds the autopr command tree.
func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "autopr",
		Short: "Open a pull request with an AI-written description",
		Long: `autopr opens a pull request for the current branch.

It checks that the working tree is clean, pushes the branch if the remote
does not have it yet, collects the diff and commit subjects against the base
branch, asks an AI provider to describe the change, and creates the pull
request with the gh CLI or the GitHub REST API.

Examples:
  autopr                    # PR against origin/master
  autopr --base main        # PR against origin/main
  autopr --no-progress      # Plain output for CI logs`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, cmd.Flags())
			if err != nil {
				return err
			}

			// Credentials are checked before any git, network or push call.
			if err := cfg.ValidateCredentials(); err != nil {
				return err
			}

			dir, err := os.Getwd()
			if err != nil {
				return prerrors.Wrap(err, "failed to get working directory")
			}

			return runPR(cmd.Context(), cfg, dir, newLogger(cmd.ErrOrStderr(), opts.verbose), cmd.OutOrStdout())
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.cfgFile, "config", "C", "", "config file (default is $HOME/.config/autopr/config.toml)")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "dotenv file to load (default is ./.env)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	rootCmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "disable progress indicators")
	rootCmd.Flags().StringVar(&opts.baseBranch, "base", "", "base branch (default from git.base_branch)")

	rootCmd.AddCommand(newConfigCmd(opts))

	return rootCmd
}

// Execute runs the root command and exits with the status of the workflow.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes autopr with args and returns the process exit code. Failures
// are reported once, here, on stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		ui.PrintError(stderr, prerrors.FormatUserError(err))
	}
	return prerrors.ExitCode(err)
}

// loadConfig loads the dotenv file and the layered configuration, then
// applies command-line overrides.
func loadConfig(opts *globalOptions, flags *pflag.FlagSet) (*config.Config, error) {
	if err := bootstrap.LoadDotenv(opts.envFile, opts.envFile != ""); err != nil {
		return nil, err
	}

	cfg, err := bootstrap.InitConfig(opts.cfgFile, opts.verbose)
	if err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(flags, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlagOverrides copies explicitly set flags over the loaded config.
// Flags a command does not define are skipped.
func applyFlagOverrides(flags *pflag.FlagSet, cfg *config.Config) error {
	if f := flags.Lookup("base"); f != nil && f.Changed {
		cfg.Git.BaseBranch = f.Value.String()
	}
	if f := flags.Lookup("no-progress"); f != nil && f.Changed {
		if noProgress, err := flags.GetBool("no-progress"); err == nil && noProgress {
			cfg.UI.Progress = false
		}
	}
	return cfg.Validate()
}

// newLogger returns the diagnostic logger. Everything goes to stderr: debug
// level with --verbose, warnings only otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
