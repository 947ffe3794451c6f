package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/cmd/mcpm/commands/flags"
	"github.com/thoreinstein/mcpm/internal/workflow"
)

var addApply applyFlags

func init() {
	addApply.register(addCmd)
	rootCmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add <server|glob>...",
	Short: "Add servers to the project and re-apply",
	Long: `Add servers to the project and write every IDE config again.

Arguments are server ids or glob patterns matched against the catalog.
Unknown ids are dropped with a warning. Entries for servers you added to an
IDE config by hand are kept.`,
	Example: `  # Add one server
  mcpm add github

  # Add by pattern, quoted so the shell does not expand it
  mcpm add 'seq*' '{context7,duckduckgo}'

  # Provide a secret for this run only
  mcpm add github -e GITHUB_TOKEN=ghp_xxx

  See Also: mcpm remove, mcpm list --available`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := flags.NewApp(cmd.Context())
		if err != nil {
			return err
		}
		return addApply.run(cmd, app, func(ctx context.Context, svc *workflow.Service, opts workflow.ApplyOptions) (*workflow.Outcome, error) {
			return svc.Add(ctx, args, opts)
		})
	},
}
