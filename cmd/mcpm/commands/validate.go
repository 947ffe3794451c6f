package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/cmd/mcpm/commands/flags"
	"github.com/thoreinstein/mcpm/internal/cli"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/validator"
)

var validateJSON bool

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false,
		"output the report as JSON")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the project state against the catalog",
	Long: `Validate .mcp/config.json: the project name, server and IDE ids, and
timestamps. Unknown ids are reported as warnings because sync skips them.

Exits 1 when the project has errors.`,
	Example: `  mcpm validate
  mcpm validate --json

  See Also: mcpm doctor, mcpm config validate`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, _ []string) error {
	app, err := flags.NewApp(cmd.Context())
	if err != nil {
		return err
	}

	d, err := app.Projects.Load()
	if err != nil {
		return cli.MapError(err)
	}

	res := validator.Project(d, app.Catalog)

	format := validator.FormatText
	if validateJSON {
		format = validator.FormatJSON
	}
	if err := validator.NewReporter(cmd.OutOrStdout(), format).Report(res); err != nil {
		return err
	}
	if res.HasErrors() {
		return errors.Status(errors.ExitUser)
	}
	return nil
}
