package backup

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/internal/doctor"
	"github.com/thoreinstein/mcpm/internal/errors"
)

func init() {
	Cmd.AddCommand(createCmd)
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a manual backup",
	Long: `Back up the global and project config files of each IDE now.

IDEs whose config files do not exist yet are skipped.`,
	Example: `  mcpm backup create
  mcpm backup create --ide claude-desktop

  See Also:
    mcpm backup list    - List available backups
    mcpm backup restore - Restore from a backup`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

func runCreate(cmd *cobra.Command, _ []string) error {
	mgr, app, ides, err := manager(cmd.Context())
	if err != nil {
		return err
	}

	byIDE := make(map[string][]string)
	for _, f := range doctor.Files(ides, app.Root) {
		if f.Kind == doctor.KindConfig || f.Kind == doctor.KindScript {
			byIDE[f.Owner] = append(byIDE[f.Owner], f.Path)
		}
	}

	w := cmd.OutOrStdout()
	created := 0
	for _, ide := range ides {
		files := byIDE[ide.ID]
		if len(files) == 0 {
			continue
		}
		m, err := mgr.Backup(ide.ID, files)
		if err != nil {
			return errors.NewSystemError(errors.Wrapf(err, "backing up %s", ide.ID), "")
		}
		if m == nil {
			continue
		}
		fmt.Fprintf(w, "✓ %s: created backup %s (%d files)\n", ide.DisplayName, m.ID, len(m.Files))
		created++
	}

	if created == 0 {
		fmt.Fprintln(w, "No backups created: no IDE config files exist yet.")
	}
	return nil
}
