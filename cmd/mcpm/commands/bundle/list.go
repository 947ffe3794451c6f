package bundle

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/cmd/mcpm/commands/flags"
	"github.com/thoreinstein/mcpm/internal/catalog"
	"github.com/thoreinstein/mcpm/internal/cli"
	"github.com/thoreinstein/mcpm/internal/errors"
)

var (
	listJSON       bool
	listCustomOnly bool
)

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output in JSON format")
	listCmd.Flags().BoolVar(&listCustomOnly, "custom", false, "only list custom bundles")
	Cmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List bundles",
	Example: `  mcpm bundle list
  mcpm bundle list --custom --json

  See Also:
    mcpm bundle show - Show one bundle`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, _ []string) error {
	app, err := flags.NewApp(cmd.Context())
	if err != nil {
		return err
	}

	var bundles []catalog.Bundle
	if listCustomOnly {
		bundles, err = app.Bundles.List()
	} else {
		bundles, err = app.Bundles.All()
	}
	if err != nil {
		return cli.MapError(err)
	}

	w := cmd.OutOrStdout()
	if listJSON {
		if bundles == nil {
			bundles = []catalog.Bundle{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(bundles), "encoding output")
	}

	if len(bundles) == 0 {
		fmt.Fprintln(w, "No custom bundles. Create one with: mcpm bundle create <name>")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tSERVERS\tDESCRIPTION")
	for _, b := range bundles {
		kind := "built-in"
		if b.Custom {
			kind = "custom"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.Name, kind, strings.Join(b.Servers, ","), b.Description)
	}
	return tw.Flush()
}
