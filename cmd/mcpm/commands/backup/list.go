package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/internal/backup"
	"github.com/thoreinstein/mcpm/internal/catalog"
	"github.com/thoreinstein/mcpm/internal/errors"
)

var listJSON bool

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output in JSON format")
	Cmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available backups",
	Long: `List backups grouped by IDE, most recent first.`,
	Example: `  mcpm backup list
  mcpm backup list --ide windsurf --json

  See Also:
    mcpm backup restore - Restore from a backup`,
	Args: cobra.NoArgs,
	RunE: runList,
}

type listOutput struct {
	IDE     string       `json:"ide"`
	Backups []infoOutput `json:"backups"`
}

type infoOutput struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	FileCount   int       `json:"file_count"`
	ToolVersion string    `json:"mcpm_version"`
}

func runList(cmd *cobra.Command, _ []string) error {
	mgr, _, ides, err := manager(cmd.Context())
	if err != nil {
		return err
	}
	if listJSON {
		return listAsJSON(cmd.OutOrStdout(), ides, mgr)
	}
	return listAsTable(cmd.OutOrStdout(), ides, mgr)
}

func listManifests(mgr *backup.Manager, ide string) ([]backup.Manifest, error) {
	manifests, err := mgr.List(ide)
	if err != nil && !errors.Is(err, backup.ErrNoBackupsFound) {
		return nil, errors.NewSystemError(errors.Wrapf(err, "listing backups for %s", ide), "")
	}
	return manifests, nil
}

func listAsJSON(w io.Writer, ides []catalog.IDE, mgr *backup.Manager) error {
	out := make([]listOutput, 0, len(ides))
	for _, ide := range ides {
		manifests, err := listManifests(mgr, ide.ID)
		if err != nil {
			return err
		}
		infos := make([]infoOutput, len(manifests))
		for i, m := range manifests {
			infos[i] = infoOutput{
				ID:          m.ID,
				CreatedAt:   m.CreatedAt,
				FileCount:   len(m.Files),
				ToolVersion: m.ToolVersion,
			}
		}
		out = append(out, listOutput{IDE: ide.ID, Backups: infos})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(out), "encoding output")
}

func listAsTable(w io.Writer, ides []catalog.IDE, mgr *backup.Manager) error {
	header := color.New(color.FgCyan, color.Bold)
	found := false

	for i, ide := range ides {
		manifests, err := listManifests(mgr, ide.ID)
		if err != nil {
			return err
		}
		if len(manifests) > 0 {
			found = true
		}

		if i > 0 {
			fmt.Fprintln(w)
		}
		header.Fprintf(w, "%s\n", ide.DisplayName)

		if len(manifests) == 0 {
			fmt.Fprintln(w, color.HiBlackString("  (no backups)"))
			continue
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  ID\tCREATED\tFILES\tVERSION")
		for _, m := range manifests {
			fmt.Fprintf(tw, "  %s\t%s\t%d\t%s\n",
				color.GreenString(m.ID),
				m.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				len(m.Files),
				m.ToolVersion)
		}
		tw.Flush()
	}

	if !found {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "No backups available. mcpm backs up IDE configs before changing them.")
	}
	return nil
}
