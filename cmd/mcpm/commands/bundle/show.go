package bundle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/cmd/mcpm/commands/flags"
	"github.com/thoreinstein/mcpm/internal/cli"
	"github.com/thoreinstein/mcpm/internal/errors"
)

var showJSON bool

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "output in JSON format")
	Cmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show the servers of a bundle",
	Example: `  mcpm bundle show web-dev

  See Also:
    mcpm bundle list - List bundles`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	app, err := flags.NewApp(cmd.Context())
	if err != nil {
		return err
	}

	b, err := app.Bundles.Resolve(args[0])
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return errors.NewUserError(err, "Run: mcpm bundle list")
		}
		return cli.MapError(err)
	}

	w := cmd.OutOrStdout()
	if showJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(b), "encoding output")
	}

	fmt.Fprintf(w, "Name:        %s\n", b.Name)
	if b.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", b.Description)
	}
	fmt.Fprintf(w, "Category:    %s\n", b.Category)
	if b.Created != nil {
		fmt.Fprintf(w, "Created:     %s\n", b.Created.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(w, "Servers:")
	for _, id := range b.Servers {
		s, ok := app.Catalog.Server(id)
		if !ok {
			fmt.Fprintf(w, "  %s (not in catalog)\n", id)
			continue
		}
		line := fmt.Sprintf("  %-22s %s", s.ID, s.Description)
		if len(s.RequiredEnv) > 0 {
			line += fmt.Sprintf(" [needs %s]", strings.Join(s.RequiredEnv, ", "))
		}
		fmt.Fprintln(w, line)
	}
	return nil
}
