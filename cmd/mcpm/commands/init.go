package commands

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/cmd/mcpm/commands/flags"
	"github.com/thoreinstein/mcpm/internal/cli"
	"github.com/thoreinstein/mcpm/internal/cli/prompt"
	"github.com/thoreinstein/mcpm/internal/logging"
	"github.com/thoreinstein/mcpm/internal/workflow"
)

var (
	initName          string
	initBundle        string
	initServers       []string
	initIDEs          []string
	initNoInteractive bool
	initForce         bool
	initApply         applyFlags
)

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "project name (default: directory name)")
	initCmd.Flags().StringVarP(&initBundle, "bundle", "b", "", "built-in or custom bundle")
	initCmd.Flags().StringSliceVarP(&initServers, "servers", "s", nil, "server ids or globs, comma-separated")
	initCmd.Flags().StringSliceVar(&initIDEs, "ide", nil, "IDE targets (default: configured default_ides)")
	initCmd.Flags().BoolVar(&initNoInteractive, "no-interactive", false, "never prompt")
	initCmd.Flags().BoolVar(&initForce, "force", false, "replace an existing project")
	initApply.register(initCmd)
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a project and write its IDE configs",
	Long: `Create .mcp/config.json for this directory and write the selected
servers into every selected IDE config.

Without --bundle or --servers, init asks which bundle to start from when
running in a terminal, otherwise it uses default_bundle from the config.
Without --ide it uses default_ides, narrowed to the ones installed.`,
	Example: `  # Interactive
  mcpm init

  # Non-interactive
  mcpm init --name api --bundle web-dev --ide cursor,claude-code

  # Start from a bundle plus extra servers
  mcpm init --bundle essential --servers github,context7

  See Also: mcpm wizard, mcpm add, mcpm sync`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, _ []string) error {
	app, err := flags.NewApp(cmd.Context())
	if err != nil {
		return err
	}

	opts := workflow.InitOptions{
		Name:    initName,
		Bundle:  initBundle,
		Servers: initServers,
		IDEs:    initIDEs,
		Force:   initForce,
	}

	interactive := !initNoInteractive && logging.IsTTY(os.Stdin)
	if opts.Bundle == "" && len(opts.Servers) == 0 {
		if interactive {
			name, err := chooseBundle(app, prompt.New())
			if err != nil {
				return cli.MapError(err)
			}
			opts.Bundle = name
		} else {
			opts.Bundle = app.Config.DefaultBundle
		}
	}
	if len(opts.IDEs) == 0 {
		if interactive {
			ides, err := chooseIDEs(app, prompt.New())
			if err != nil {
				return cli.MapError(err)
			}
			opts.IDEs = ides
		} else {
			opts.IDEs = app.DefaultIDEs()
		}
	}
	if opts.Name == "" && interactive {
		name, err := prompt.New().Input("Project name", filepath.Base(app.Root))
		if err != nil {
			return cli.MapError(err)
		}
		opts.Name = name
	}

	return initApply.run(cmd, app, func(ctx context.Context, svc *workflow.Service, ao workflow.ApplyOptions) (*workflow.Outcome, error) {
		opts.ApplyOptions = ao
		return svc.Init(ctx, opts)
	})
}

// chooseBundle asks for a built-in or custom bundle, defaulting to the
// configured default bundle.
func chooseBundle(app *cli.App, p *prompt.Prompter) (string, error) {
	bundles, err := app.Bundles.All()
	if err != nil {
		return "", err
	}
	options := make([]prompt.Option, len(bundles))
	def := 0
	for i, b := range bundles {
		options[i] = prompt.Option{Label: b.Name, Detail: b.Description}
		if b.Name == app.Config.DefaultBundle {
			def = i
		}
	}
	i, err := p.Choose("Start from which bundle?", options, def)
	if err != nil {
		return "", err
	}
	return bundles[i].Name, nil
}

// chooseIDEs asks which IDE targets to configure, preselecting detected ones.
func chooseIDEs(app *cli.App, p *prompt.Prompter) ([]string, error) {
	ides := app.Catalog.IDEs()
	defaults := app.DefaultIDEs()

	options := make([]prompt.Option, len(ides))
	var preselected []int
	for i, ide := range ides {
		options[i] = prompt.Option{Label: ide.ID + " (" + ide.DisplayName + ")"}
		for _, d := range defaults {
			if d == ide.ID {
				preselected = append(preselected, i)
			}
		}
	}

	picked, err := p.ChooseMany("Configure which IDEs? (comma-separated numbers)", options, preselected)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(picked))
	for i, idx := range picked {
		out[i] = ides[idx].ID
	}
	return out, nil
}
