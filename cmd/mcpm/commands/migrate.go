package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/cmd/mcpm/commands/flags"
	"github.com/thoreinstein/mcpm/internal/cli"
	"github.com/thoreinstein/mcpm/internal/cli/prompt"
	"github.com/thoreinstein/mcpm/internal/logging"
	"github.com/thoreinstein/mcpm/internal/project"
	"github.com/thoreinstein/mcpm/internal/workflow"
)

var (
	migrateName  string
	migrateYes   bool
	migrateApply applyFlags
)

func init() {
	migrateCmd.Flags().StringVar(&migrateName, "name", "", "project name when a project is created")
	migrateCmd.Flags().BoolVarP(&migrateYes, "yes", "y", false, "do not ask for confirmation")
	migrateApply.register(migrateCmd)
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Adopt servers already configured in your IDEs",
	Long: `Read the MCP servers already present in each IDE config (and in
"claude mcp list" for Claude Code), keep the ones mcpm knows, and create
the project from them or extend the existing project.

Servers mcpm does not know stay in the IDE configs untouched.`,
	Example: `  # See what would be adopted
  mcpm migrate --dry-run

  # Adopt without prompting
  mcpm migrate --yes --name legacy-app

  See Also: mcpm init, mcpm sync`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	app, err := flags.NewApp(cmd.Context())
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	stop := cli.StartSpinner(cmd.ErrOrStderr(), "Reading IDE configs...", flags.Quiet())
	found := app.Discovery().Discover(cmd.Context(), app.Catalog.IDEs())
	stop()

	var servers, ides, foreign []string
	for _, f := range found {
		valid, unknown := app.Catalog.ValidateServers(f.Servers)
		if len(valid) > 0 {
			ides = append(ides, f.IDE)
		}
		servers = append(servers, valid...)
		foreign = append(foreign, unknown...)
		printf(w, "%-15s %s\n", f.IDE, strings.Join(f.Servers, ", "))
	}
	if len(servers) == 0 {
		printf(w, "No known MCP servers found in IDE configs.\n")
		return nil
	}
	if len(foreign) > 0 {
		printf(w, "\nNot in the catalog, left as is: %s\n", strings.Join(project.Dedupe(foreign), ", "))
	}
	printf(w, "\n")

	if !migrateYes && !migrateApply.dryRun && logging.IsTTY(os.Stdin) {
		msg := fmt.Sprintf("Adopt %d server(s) from %d IDE(s)?", len(project.Dedupe(servers)), len(ides))
		ok, err := prompt.New().Confirm(msg, true)
		if err != nil {
			return cli.MapError(err)
		}
		if !ok {
			return nil
		}
	}

	return migrateApply.run(cmd, app, func(ctx context.Context, svc *workflow.Service, opts workflow.ApplyOptions) (*workflow.Outcome, error) {
		return svc.Migrate(ctx, workflow.MigrateOptions{
			ApplyOptions: opts,
			Name:         migrateName,
			Servers:      servers,
			IDEs:         ides,
		})
	})
}
