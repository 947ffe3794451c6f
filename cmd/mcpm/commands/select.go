package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/cmd/mcpm/commands/flags"
	"github.com/thoreinstein/mcpm/internal/cli"
	"github.com/thoreinstein/mcpm/internal/cli/prompt"
	"github.com/thoreinstein/mcpm/internal/workflow"
)

var (
	selectSave        string
	selectDescription string
	selectApply       applyFlags

	// selectFinder is replaced in tests.
	selectFinder prompt.Finder = prompt.FuzzyFinder
)

func init() {
	selectCmd.Flags().StringVar(&selectSave, "save", "", "save the selection as a custom bundle instead of applying it")
	selectCmd.Flags().StringVar(&selectDescription, "description", "", "description for --save")
	selectApply.register(selectCmd)
	rootCmd.AddCommand(selectCmd)
}

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Pick servers interactively",
	Long: `Open a fuzzy finder over the catalog. Mark servers with Tab and
confirm with Enter. The selection is added to the project, or saved as a
custom bundle with --save.`,
	Example: `  # Add picked servers to the project
  mcpm select

  # Save picks as a bundle for later projects
  mcpm select --save frontend --description "UI work"

  See Also: mcpm add, mcpm bundle create`,
	Args: cobra.NoArgs,
	RunE: runSelect,
}

func runSelect(cmd *cobra.Command, _ []string) error {
	app, err := flags.NewApp(cmd.Context())
	if err != nil {
		return err
	}

	ids, err := prompt.SelectServers(selectFinder, app.Catalog.Servers())
	if err != nil {
		return cli.MapError(err)
	}

	if selectSave != "" {
		return saveBundle(cmd, app, selectSave, selectDescription, ids)
	}

	return selectApply.run(cmd, app, func(ctx context.Context, svc *workflow.Service, opts workflow.ApplyOptions) (*workflow.Outcome, error) {
		return svc.Add(ctx, ids, opts)
	})
}

// saveBundle stores the picks as a custom bundle.
func saveBundle(cmd *cobra.Command, app *cli.App, name, description string, servers []string) error {
	b, err := app.SaveBundle(cmd.ErrOrStderr(), name, description, servers)
	if err != nil {
		return err
	}
	printf(cmd.OutOrStdout(), "Saved bundle %s: %s\n", b.Name, strings.Join(b.Servers, ", "))
	return nil
}
