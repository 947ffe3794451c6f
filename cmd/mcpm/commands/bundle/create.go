package bundle

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/cmd/mcpm/commands/flags"
	"github.com/thoreinstein/mcpm/internal/cli"
	"github.com/thoreinstein/mcpm/internal/errors"
)

var createDescription string

func init() {
	createCmd.Flags().StringVarP(&createDescription, "description", "d", "",
		"bundle description")
	Cmd.AddCommand(createCmd)
}

var createCmd = &cobra.Command{
	Use:   "create <name> [server|pattern...]",
	Short: "Create or replace a custom bundle",
	Long: `Create a custom bundle. Servers may be ids or glob patterns. Without
servers the current project's servers are used.

An existing custom bundle with the same name is replaced.`,
	Example: `  mcpm bundle create my-stack
  mcpm bundle create docs -d "Docs lookups" context7 'seq*'

  See Also:
    mcpm list --available - Find server ids`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCreate,
}

func runCreate(cmd *cobra.Command, args []string) error {
	app, err := flags.NewApp(cmd.Context())
	if err != nil {
		return err
	}
	name, patterns := args[0], args[1:]

	var servers []string
	if len(patterns) == 0 {
		d, err := app.Projects.Load()
		if err != nil {
			return cli.MapError(err)
		}
		servers = d.Servers
	} else {
		ids, unmatched, err := app.Catalog.ExpandPatterns(patterns)
		if err != nil {
			return cli.MapError(err)
		}
		if len(unmatched) > 0 {
			return errors.NewUserError(
				errors.Newf("no servers match %s", strings.Join(unmatched, ", ")),
				"Run: mcpm list --available")
		}
		servers = ids
	}

	b, err := app.SaveBundle(cmd.ErrOrStderr(), name, createDescription, servers)
	if err != nil {
		return err
	}
	if !flags.Quiet() {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved bundle %s: %s\n", b.Name, strings.Join(b.Servers, ", "))
	}
	return nil
}
