package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/cmd/mcpm/commands/flags"
	"github.com/thoreinstein/mcpm/internal/workflow"
)

var (
	syncIDEs  []string
	syncApply applyFlags
)

func init() {
	syncCmd.Flags().StringSliceVar(&syncIDEs, "ide", nil, "IDE targets to add before applying")
	syncApply.register(syncCmd)
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Re-apply the project to its IDE configs",
	Long: `Write the project's servers into every IDE config again, for example
after editing .mcp/.env or when an IDE config was changed by hand.

--ide adds IDE targets to the project first.`,
	Example: `  # Re-apply
  mcpm sync

  # Start configuring Windsurf too
  mcpm sync --ide windsurf

  # Pull secrets from Doppler
  mcpm sync --doppler --doppler-project api --doppler-config dev

  See Also: mcpm env, mcpm doctor`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := flags.NewApp(cmd.Context())
		if err != nil {
			return err
		}
		return syncApply.run(cmd, app, func(ctx context.Context, svc *workflow.Service, opts workflow.ApplyOptions) (*workflow.Outcome, error) {
			return svc.Sync(ctx, syncIDEs, opts)
		})
	},
}
