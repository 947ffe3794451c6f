package backup

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/internal/backup"
	"github.com/thoreinstein/mcpm/internal/errors"
)

func init() {
	Cmd.AddCommand(restoreCmd)
}

var restoreCmd = &cobra.Command{
	Use:   "restore [backup-id]",
	Short: "Restore IDE configs from a backup",
	Long: `Copy the files of a backup back to their original locations.

Without a backup id the most recent backup is restored. A backup id names a
single backup and therefore requires exactly one --ide.`,
	Example: `  mcpm backup restore --ide cursor
  mcpm backup restore 20260123T100712.000 --ide cursor

  See Also:
    mcpm backup list - Find backup ids`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRestore,
}

func runRestore(cmd *cobra.Command, args []string) error {
	mgr, _, ides, err := manager(cmd.Context())
	if err != nil {
		return err
	}
	if len(args) == 1 && len(ideFilter) != 1 {
		return errors.NewUserError(
			errors.New("restoring a backup id needs exactly one --ide"),
			"Run: mcpm backup list")
	}

	w := cmd.OutOrStdout()
	restored := 0
	for _, ide := range ides {
		var m *backup.Manifest
		if len(args) == 1 {
			m, err = mgr.Restore(ide.ID, args[0])
		} else {
			var latest *backup.Manifest
			latest, err = mgr.Latest(ide.ID)
			if err == nil {
				m, err = mgr.Restore(ide.ID, latest.ID)
			}
		}

		switch {
		case errors.Is(err, backup.ErrNoBackupsFound) && len(args) == 0:
			continue
		case errors.Is(err, backup.ErrNoBackupsFound):
			return errors.NewUserError(err, "Run: mcpm backup list")
		case errors.Is(err, backup.ErrBackupCorrupted):
			return errors.NewSystemError(err, "")
		case err != nil:
			return errors.NewSystemError(errors.Wrapf(err, "restoring %s", ide.ID), "")
		}

		fmt.Fprintf(w, "✓ %s: restored %s (%d files)\n", ide.DisplayName, m.ID, len(m.Files))
		restored++
	}

	if restored == 0 {
		return errors.NewUserError(backup.ErrNoBackupsFound, "")
	}
	return nil
}
