package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/cmd/mcpm/commands/flags"
	"github.com/thoreinstein/mcpm/internal/workflow"
)

var removeApply applyFlags

func init() {
	removeApply.register(removeCmd)
	rootCmd.AddCommand(removeCmd)
}

var removeCmd = &cobra.Command{
	Use:     "remove <server|glob>...",
	Aliases: []string{"rm"},
	Short:   "Remove servers from the project and their IDE entries",
	Long: `Remove servers from the project, delete their entries from every IDE
config and re-apply the rest. Other entries in those files are kept.`,
	Example: `  # Remove one server
  mcpm remove playwright

  # Preview removing every specialized server
  mcpm remove n8n webflow crawl4ai-rag --dry-run

  See Also: mcpm add, mcpm list`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := flags.NewApp(cmd.Context())
		if err != nil {
			return err
		}
		return removeApply.run(cmd, app, func(ctx context.Context, svc *workflow.Service, opts workflow.ApplyOptions) (*workflow.Outcome, error) {
			return svc.Remove(ctx, args, opts)
		})
	},
}
