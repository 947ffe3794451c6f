package bundle

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/cmd/mcpm/commands/flags"
	"github.com/thoreinstein/mcpm/internal/editor"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/validator"
)

// openEditor opens the registry file; replaced in tests.
var openEditor = func(path string) error { return editor.New().Open(path) }

func init() {
	Cmd.AddCommand(editCmd)
}

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the custom bundle file in $EDITOR",
	Long: `Open the custom bundle registry in your editor. The file is checked
after the editor exits; unknown servers or invalid names are reported.`,
	Example: `  mcpm bundle edit

  See Also:
    mcpm bundle list - List bundles`,
	Args: cobra.NoArgs,
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, _ []string) error {
	app, err := flags.NewApp(cmd.Context())
	if err != nil {
		return err
	}
	path := app.Bundles.Path()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return errors.NewUserError(
			errors.Newf("no custom bundles at %s", path),
			"Run: mcpm bundle create <name>")
	}

	if err := openEditor(path); err != nil {
		return errors.NewSystemError(err, "")
	}

	bundles, err := app.Bundles.List()
	if err != nil {
		return errors.NewUserError(err, "Fix the JSON in "+path)
	}
	invalid := 0
	reporter := validator.NewReporter(cmd.ErrOrStderr(), validator.FormatText)
	for _, b := range bundles {
		res := validator.Bundle(app.Bundles, b.Name, b.Servers)
		if res.HasErrors() || res.HasWarnings() {
			_ = reporter.Report(res)
		}
		if res.HasErrors() {
			invalid++
		}
	}
	if invalid > 0 {
		return errors.NewUserError(errors.Newf("%d invalid bundle(s) in %s", invalid, path), "Run: mcpm bundle edit")
	}
	return nil
}
