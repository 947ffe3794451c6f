package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/cmd/mcpm/commands/flags"
	"github.com/thoreinstein/mcpm/internal/cli"
	"github.com/thoreinstein/mcpm/internal/config"
	"github.com/thoreinstein/mcpm/internal/doctor"
	"github.com/thoreinstein/mcpm/internal/env"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/validator"
)

var (
	doctorJSON    bool
	doctorQuiet   bool
	doctorVerbose bool
	doctorFix     bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorQuiet, "quiet", false,
		"suppress output, exit code only")
	doctorCmd.Flags().BoolVar(&doctorVerbose, "verbose", false,
		"show detailed check-by-check output")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false,
		"fix file permission problems")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose project and IDE configuration issues",
	Long: `Run diagnostic checks on the mcpm config, the project state, IDE
config files, file permissions, the secrets provider and env coverage.

Output modes (mutually exclusive):
  (default)   Show errors and warnings
  --verbose   Show all checks including passed ones
  --quiet     No output, exit code only
  --json      Machine-readable JSON output

Exit codes:
  0 - All checks passed (no errors or warnings)
  1 - Warnings present, no errors
  2 - Errors present`,
	Example: `  mcpm doctor

  # Tighten permissions of files holding secrets
  mcpm doctor --fix

  See Also: mcpm env, mcpm config`,
	Args:    cobra.NoArgs,
	PreRunE: validateDoctorFlags,
	RunE:    runDoctor,
}

// validateDoctorFlags ensures output flags are mutually exclusive.
func validateDoctorFlags(_ *cobra.Command, _ []string) error {
	count := 0
	for _, set := range []bool{doctorJSON, doctorQuiet, doctorVerbose} {
		if set {
			count++
		}
	}
	if count > 1 {
		return errors.NewUserError(errors.New("flags --json, --quiet, and --verbose are mutually exclusive"), "")
	}
	return nil
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	app, err := flags.NewApp(cmd.Context())
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	runner := newDoctorRunner(app)
	report := runner.Run(cmd.Context())

	if doctorFix && applyFixes(w, runner) > 0 {
		report = runner.Run(cmd.Context())
	}

	if err := outputDoctorReport(w, report); err != nil {
		return err
	}
	if code := report.ExitCode(); code != errors.ExitSuccess {
		return errors.Status(code)
	}
	return nil
}

// newDoctorRunner registers every check for the app's project.
func newDoctorRunner(app *cli.App) *doctor.Runner {
	files := doctor.Files(app.Catalog.IDEs(), app.Root)
	secrets := cli.Secrets{}

	runner := doctor.NewRunner(app.Logger,
		&toolConfigCheck{cfg: app.Config, loadErr: configLoadErr},
		doctor.NewProjectCheck(app.Projects, app.Catalog),
		doctor.NewConfigSyntaxCheck(files),
		doctor.NewPathPermissionCheck(files),
		doctor.NewIDECheck(app.Detector(), app.Catalog),
		doctor.NewSecretsProviderCheck(app.Doppler(secrets), app.DopplerEnabled(secrets)),
	)
	runner.Add(doctor.NewEnvCoverageCheck(func(ctx context.Context) (*env.Result, error) {
		_, res, err := app.Service(secrets).Resolve(ctx, nil)
		return res, err
	}))
	return runner
}

// applyFixes runs the pending fixes and returns how many succeeded.
func applyFixes(w io.Writer, runner *doctor.Runner) int {
	fixed := 0
	for _, r := range runner.Fix() {
		if !doctorQuiet && !doctorJSON {
			icon := "✓"
			if !r.Fixed {
				icon = "✗"
			}
			fmt.Fprintf(w, "%s fix %s: %s\n", icon, r.Path, r.Description)
		}
		if r.Fixed {
			fixed++
		}
	}
	return fixed
}

func outputDoctorReport(w io.Writer, report *doctor.Report) error {
	if doctorQuiet {
		return nil
	}
	if doctorJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(report), "encoding JSON")
	}

	hasOutput := false
	for _, result := range report.Results {
		problem := result.Status.Problem()
		if !doctorVerbose && !problem {
			continue
		}

		hasOutput = true
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(result.Status), result.Category, result.Name, result.Message)
		if result.FixHint != "" && problem {
			fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
		}
		if doctorVerbose {
			printDetails(w, result.Details)
		}
	}

	if hasOutput {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
	return nil
}

func printDetails(w io.Writer, details map[string]any) {
	if len(details) == 0 {
		return
	}
	data, err := json.MarshalIndent(details, "    ", "  ")
	if err != nil {
		return
	}
	fmt.Fprintf(w, "    %s\n", strings.TrimSpace(string(data)))
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return "✓"
	case doctor.SeverityInfo:
		return "ℹ"
	case doctor.SeverityWarning:
		return "⚠"
	case doctor.SeverityError:
		return "✗"
	default:
		return "?"
	}
}

// toolConfigCheck reports problems with mcpm's own config file.
type toolConfigCheck struct {
	cfg     *config.Config
	loadErr error
}

var _ doctor.Check = (*toolConfigCheck)(nil)

func (c *toolConfigCheck) Name() string     { return "mcpm-config" }
func (c *toolConfigCheck) Category() string { return "config" }

func (c *toolConfigCheck) Run(context.Context) *doctor.CheckResult {
	result := &doctor.CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"path": config.FilePath()},
	}
	if c.loadErr != nil {
		result.Status = doctor.SeverityError
		result.Message = "config file cannot be loaded: " + c.loadErr.Error()
		result.FixHint = "run: mcpm config list, then fix or remove " + config.FilePath()
		return result
	}

	res := validator.Config(c.cfg)
	if res.HasErrors() {
		result.Status = doctor.SeverityError
		result.Message = res.Err().Error()
		return result
	}
	result.Status = doctor.SeverityPass
	result.Message = "config is valid"
	return result
}
