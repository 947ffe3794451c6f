// Package commands implements the CLI commands for mcpm.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/cmd/mcpm/commands/flags"
	"github.com/thoreinstein/mcpm/internal/buildinfo"
	"github.com/thoreinstein/mcpm/internal/config"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/logging"
)

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// projectDir holds the value of the -C/--project-dir flag.
var projectDir string

// configLoadErr holds any error that occurred during config loading.
var configLoadErr error

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project-dir", "C", ".",
		"project directory")

	rootCmd.Version = buildinfo.Version()
	rootCmd.SetVersionTemplate("mcpm version {{.Version}}\n")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	var cfg *config.Config
	cfg, configLoadErr = config.Load("")
	if configLoadErr == nil {
		flags.SetConfig(cfg)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mcpm",
	Short: "Per-project MCP server configuration manager",
	Long: `mcpm keeps the MCP servers of a project in one place and writes them
into every IDE you use: Cursor, Windsurf, Claude Desktop, Claude Code, Warp
and Codex.

The selection lives in .mcp/config.json. Every apply merges only the
servers mcpm manages into each IDE config and leaves everything else in
those files untouched. Secrets come from -e flags, Doppler or .mcp/.env and
are never stored in project state.`,
	Example: `  # Start a project with the essential bundle for Cursor
  mcpm init --bundle essential --ide cursor

  # Add servers, globs allowed
  mcpm add github 'seq*'

  # Preview what would be written
  mcpm sync --dry-run

  # Check the setup
  mcpm doctor

  See Also: mcpm list, mcpm wizard, mcpm config`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		flags.SetProjectDir(projectDir)
		flags.SetQuiet(quiet)
		return checkConfig(cmd)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.New("cannot use --quiet and --verbose together"), "")
	}

	level := slog.LevelError
	if !quiet {
		v := verbosity
		if v == 0 {
			v = logging.EnvVerbosity(os.Getenv("MCPM_DEBUG"))
		}
		level = logging.LevelFromVerbosity(v)
	}

	format, err := logging.ParseFormat(logFormat)
	if err != nil {
		return errors.NewUserError(err, "Use text or json")
	}

	opts := logging.Options{Level: level, Format: format, Output: cmd.ErrOrStderr()}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.NewUserError(errors.Wrap(err, "opening log file"), "")
		}
		opts.File = f
	}

	logger, err := logging.New(opts)
	if err != nil {
		return errors.NewUserError(err, "")
	}
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))
	return nil
}

// checkConfig reports config load errors, except for commands that must
// work with a broken config file.
func checkConfig(cmd *cobra.Command) error {
	switch cmd.Name() {
	case "help", "version", "doctor":
		return nil
	}
	if p := cmd.Parent(); p != nil && p.Name() == "config" {
		return nil
	}
	if configLoadErr != nil {
		return errors.NewConfigError(configLoadErr)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
