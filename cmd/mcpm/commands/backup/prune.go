package backup

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/internal/errors"
)

var pruneKeep int

func init() {
	pruneCmd.Flags().IntVar(&pruneKeep, "keep", -1,
		"number of backups to keep per IDE (default: backup.retention)")
	Cmd.AddCommand(pruneCmd)
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old backups",
	Long: `Remove backups beyond the retention count, oldest first.

Without --keep the backup.retention config value is used. --keep 0 removes
every backup.`,
	Example: `  mcpm backup prune
  mcpm backup prune --keep 3 --ide cursor

  See Also:
    mcpm backup list - List available backups`,
	Args: cobra.NoArgs,
	RunE: runPrune,
}

func runPrune(cmd *cobra.Command, _ []string) error {
	mgr, _, ides, err := manager(cmd.Context())
	if err != nil {
		return err
	}
	keep := pruneKeep
	if !cmd.Flags().Changed("keep") {
		keep = mgr.RetentionCount()
	}
	if keep < 0 {
		return errors.NewUserError(errors.New("--keep must be non-negative"), "")
	}

	w := cmd.OutOrStdout()
	total := 0
	for _, ide := range ides {
		manifests, err := listManifests(mgr, ide.ID)
		if err != nil {
			return err
		}
		drop := len(manifests) - keep
		if drop <= 0 {
			continue
		}
		if err := mgr.Prune(ide.ID, keep); err != nil {
			return errors.NewSystemError(errors.Wrapf(err, "pruning backups for %s", ide.ID), "")
		}
		fmt.Fprintf(w, "✓ %s: removed %d old backup(s)\n", ide.DisplayName, drop)
		total += drop
	}

	if total == 0 {
		fmt.Fprintln(w, "No backups to prune")
		return nil
	}
	fmt.Fprintf(w, "\nTotal: removed %d backup(s)\n", total)
	return nil
}
