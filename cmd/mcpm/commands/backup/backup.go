// Package backup provides CLI commands for managing IDE config backups.
package backup

import (
	"context"
	"slices"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/cmd/mcpm/commands/flags"
	"github.com/thoreinstein/mcpm/internal/backup"
	"github.com/thoreinstein/mcpm/internal/catalog"
	"github.com/thoreinstein/mcpm/internal/cli"
	"github.com/thoreinstein/mcpm/internal/errors"
)

// ideFilter holds the --ide flag shared by the subcommands.
var ideFilter []string

// Cmd is the root backup command.
var Cmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage IDE config backups",
	Long: `Manage backups of IDE config files.

Before mcpm rewrites an IDE config it copies the current file into
~/.local/share/mcpm/backups/<ide>/<id>. These commands list, restore, create
and prune those backups.`,
	Example: `  # List all backups
  mcpm backup list

  # Restore the most recent Cursor backup
  mcpm backup restore --ide cursor

  # Restore a specific backup
  mcpm backup restore 20260123T100712.000 --ide cursor

  # Keep only the 3 most recent backups per IDE
  mcpm backup prune --keep 3

  See Also:
    mcpm backup list    - List available backups
    mcpm backup restore - Restore from a backup
    mcpm backup create  - Manually create a backup
    mcpm backup prune   - Remove old backups`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

func init() {
	Cmd.PersistentFlags().StringSliceVar(&ideFilter, "ide", nil,
		"limit to these IDE ids (default: all)")
}

// manager builds the app and returns its backup manager with the IDEs the
// command should act on.
func manager(ctx context.Context) (*backup.Manager, *cli.App, []catalog.IDE, error) {
	app, err := flags.NewApp(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	if app.Backups == nil {
		return nil, nil, nil, errors.NewUserError(
			errors.New("backups are disabled"),
			"Run: mcpm config set backup.enabled true")
	}
	ides, err := selectIDEs(app.Catalog, ideFilter)
	if err != nil {
		return nil, nil, nil, err
	}
	return app.Backups, app, ides, nil
}

// selectIDEs returns the catalog IDEs named by filter, or all of them.
func selectIDEs(cat *catalog.Catalog, filter []string) ([]catalog.IDE, error) {
	if len(filter) == 0 {
		return cat.IDEs(), nil
	}
	_, unknown := cat.ValidateIDEs(filter)
	if len(unknown) > 0 {
		return nil, errors.NewUserError(
			errors.Newf("unknown IDE(s): %v", unknown),
			"Run: mcpm list --available")
	}
	var out []catalog.IDE
	for _, ide := range cat.IDEs() {
		if slices.Contains(filter, ide.ID) {
			out = append(out, ide)
		}
	}
	return out, nil
}
