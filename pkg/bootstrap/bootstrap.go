// Package bootstrap prepares process state before the workflow runs: the
// dotenv file, the layered viper configuration and the resulting Config.
package bootstrap

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"thoreinstein.com/autopr/pkg/config"
	prerrors "thoreinstein.com/autopr/pkg/errors"
	"thoreinstein.com/autopr/pkg/git"
)

const (
	// EnvPrefix prefixes every environment override, e.g. AUTOPR_GIT_REMOTE.
	EnvPrefix = "AUTOPR"

	// LocalConfigName is the repository-local config file looked up at the
	// work tree root.
	LocalConfigName = ".autopr.toml"

	// DefaultDotenv is the dotenv file read from the working directory.
	DefaultDotenv = ".env"
)

// diagnostics receives verbose startup messages and security warnings.
var diagnostics io.Writer = os.Stderr

// SetDiagnostics redirects verbose startup messages.
func SetDiagnostics(w io.Writer) {
	diagnostics = w
}

// LoadDotenv exports the KEY=VALUE pairs of a dotenv file into the process
// environment. Variables that are already set are left alone.
//
// A missing file is ignored unless explicit is true.
func LoadDotenv(path string, explicit bool) error {
	if path == "" {
		path = DefaultDotenv
	}

	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return prerrors.NewConfigErrorWithCause("env_file", "cannot read env file "+path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return prerrors.NewConfigErrorWithCause("env_file", "cannot parse env file "+path, err)
	}

	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if err := os.Setenv(name, v.GetString(key)); err != nil {
			return errors.Wrapf(err, "failed to export %s", name)
		}
	}
	return nil
}

// InitConfig reads the config file and AUTOPR_* environment variables into
// viper and returns the loaded configuration.
//
// Without cfgFile, ~/.config/autopr/config.toml is used when it exists. An
// explicit cfgFile must be readable.
func InitConfig(cfgFile string, verbose bool) (*config.Config, error) {
	// Reset Viper state to avoid carrying over stale settings from previous loads.
	viper.Reset()

	viper.SetConfigType("toml")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get home directory")
		}
		viper.AddConfigPath(filepath.Join(home, ".config", "autopr"))
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, prerrors.NewConfigErrorWithCause("", "failed to read config file", err)
		}
	} else if verbose {
		logf("Using config file: %s\n", viper.ConfigFileUsed())
	}

	// Load repository-local config (.autopr.toml) if present
	LoadRepoLocalConfig(verbose)

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	// Check for security warnings
	for _, w := range config.CheckSecurityWarnings(cfg) {
		logf("Warning: %s\n", w.Message)
	}

	return cfg, nil
}

// LoadRepoLocalConfig merges .autopr.toml from the git root, and from the
// current directory when that differs, over the loaded settings.
func LoadRepoLocalConfig(verbose bool) {
	var localConfigPaths []string

	cwd, _ := os.Getwd()
	if gitRoot, err := git.FindRoot(cwd); err == nil && gitRoot != "" {
		localConfigPaths = append(localConfigPaths, filepath.Join(gitRoot, LocalConfigName))
		if cwd != gitRoot {
			localConfigPaths = append(localConfigPaths, LocalConfigName)
		}
	} else {
		localConfigPaths = append(localConfigPaths, LocalConfigName)
	}

	for _, configPath := range localConfigPaths {
		if _, err := os.Stat(configPath); err != nil {
			continue
		}

		localViper := viper.New()
		localViper.SetConfigFile(configPath)
		localViper.SetConfigType("toml")

		if err := localViper.ReadInConfig(); err != nil {
			if verbose {
				logf("Warning: could not read local config %s: %v\n", configPath, err)
			}
			continue
		}

		if verbose {
			logf("Using repository config: %s\n", configPath)
		}

		if err := viper.MergeConfigMap(localViper.AllSettings()); err != nil && verbose {
			logf("Warning: could not merge local config: %v\n", err)
		}
	}
}

// Reset clears global viper state. Tests call it between cases.
func Reset() {
	viper.Reset()
}

func logf(format string, args ...any) {
	if diagnostics == nil {
		return
	}
	_, _ = fmt.Fprintf(diagnostics, format, args...)
}
