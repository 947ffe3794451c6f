package bundle

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/cmd/mcpm/commands/flags"
	"github.com/thoreinstein/mcpm/internal/cli"
	"github.com/thoreinstein/mcpm/internal/errors"
)

func init() {
	Cmd.AddCommand(removeCmd)
}

var removeCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a custom bundle",
	Long: `Delete a custom bundle. Projects created from it keep their servers;
only the bundle definition is removed.`,
	Example: `  mcpm bundle remove my-stack

  See Also:
    mcpm bundle list - List bundles`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func runRemove(cmd *cobra.Command, args []string) error {
	app, err := flags.NewApp(cmd.Context())
	if err != nil {
		return err
	}
	name := args[0]

	if app.Catalog.IsBuiltinBundle(name) {
		return errors.NewUserError(errors.Newf("%s is a built-in bundle", name), "")
	}
	if err := app.Bundles.Remove(name); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return errors.NewUserError(err, "Run: mcpm bundle list --custom")
		}
		return cli.MapError(err)
	}
	if !flags.Quiet() {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed bundle %s\n", name)
	}
	return nil
}
