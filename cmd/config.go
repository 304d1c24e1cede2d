package cmd

import (
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"thoreinstein.com/autopr/pkg/config"
	prerrors "thoreinstein.com/autopr/pkg/errors"
)

const redacted = "<redacted>"

func newConfigCmd(opts *globalOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect autopr configuration",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Long: `Print the configuration autopr would run with, after defaults, config
files, environment variables and .env have been applied. Secrets are redacted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, cmd.Flags())
			if err != nil {
				return err
			}

			data, err := toml.Marshal(redact(*cfg))
			if err != nil {
				return prerrors.Wrap(err, "failed to encode configuration")
			}

			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})

	return configCmd
}

// redact masks credentials. Empty values stay empty so a missing secret is
// still visible.
func redact(cfg config.Config) config.Config {
	if cfg.GitHub.Token != "" {
		cfg.GitHub.Token = redacted
	}
	if cfg.AI.APIKey != "" {
		cfg.AI.APIKey = redacted
	}
	return cfg
}
