package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/cmd/mcpm/commands/flags"
	"github.com/thoreinstein/mcpm/internal/cli"
	"github.com/thoreinstein/mcpm/internal/env"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/workflow"
)

// applyFlags are shared by every command that writes IDE configs.
type applyFlags struct {
	dryRun     bool
	envPairs   []string
	execClaude bool
	secrets    cli.Secrets
}

func (f *applyFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false,
		"show what would be written without writing anything")
	cmd.Flags().StringArrayVarP(&f.envPairs, "env", "e", nil,
		"environment value KEY=VALUE (repeatable, never stored)")
	cmd.Flags().BoolVar(&f.execClaude, "exec-claude", false,
		"also register servers with the claude CLI")
	cmd.Flags().BoolVar(&f.secrets.Doppler, "doppler", false,
		"look up missing secrets with the Doppler CLI")
	cmd.Flags().StringVar(&f.secrets.DopplerProject, "doppler-project", "",
		"Doppler project (overrides config)")
	cmd.Flags().StringVar(&f.secrets.DopplerConfig, "doppler-config", "",
		"Doppler config (overrides config)")
}

func (f *applyFlags) options(app *cli.App) (workflow.ApplyOptions, error) {
	explicit, err := env.ParseAssignments(f.envPairs)
	if err != nil {
		return workflow.ApplyOptions{}, errors.NewUserError(err, "Use -e KEY=VALUE")
	}
	return workflow.ApplyOptions{
		DryRun:     f.dryRun,
		Explicit:   explicit,
		ExecClaude: f.execClaude || app.Config.ClaudeCode.Exec,
	}, nil
}

// run executes fn with a spinner while external secret lookups may block,
// prints the outcome and maps errors to exit codes.
func (f *applyFlags) run(cmd *cobra.Command, app *cli.App, fn func(ctx context.Context, svc *workflow.Service, opts workflow.ApplyOptions) (*workflow.Outcome, error)) error {
	opts, err := f.options(app)
	if err != nil {
		return err
	}

	svc := app.Service(f.secrets)
	msg := "Applying configuration..."
	if app.DopplerEnabled(f.secrets) {
		msg = "Resolving secrets and applying configuration..."
	}
	stop := cli.StartSpinner(cmd.ErrOrStderr(), msg, flags.Quiet())
	out, err := fn(cmd.Context(), svc, opts)
	stop()
	if err != nil {
		return cli.MapError(err)
	}

	if !flags.Quiet() {
		cli.PrintOutcome(cmd.OutOrStdout(), out, verbosity > 0)
	}
	return nil
}

// printf writes to w unless quiet is set.
func printf(w io.Writer, format string, args ...any) {
	if flags.Quiet() {
		return
	}
	fmt.Fprintf(w, format, args...)
}
