package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/cmd/mcpm/commands/flags"
	"github.com/thoreinstein/mcpm/internal/cli"
	"github.com/thoreinstein/mcpm/internal/cli/prompt"
	"github.com/thoreinstein/mcpm/internal/workflow"
)

var (
	wizardForce bool
	wizardApply applyFlags
)

func init() {
	wizardCmd.Flags().BoolVar(&wizardForce, "force", false, "replace an existing project")
	wizardApply.register(wizardCmd)
	rootCmd.AddCommand(wizardCmd)
}

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Guided project setup",
	Long: `Answer a few questions and get a configured project: what kind of
work the project is for, which IDEs to configure and what to call it.
Choosing "custom" opens the server picker.`,
	Example: `  mcpm wizard

  # See the result without writing
  mcpm wizard --dry-run

  See Also: mcpm init, mcpm select`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := flags.NewApp(cmd.Context())
		if err != nil {
			return err
		}
		if !flags.Quiet() {
			printBanner(cmd.ErrOrStderr())
		}

		opts, err := wizardOptions(app, prompt.New(), selectFinder)
		if err != nil {
			return cli.MapError(err)
		}
		opts.Force = wizardForce

		return wizardApply.run(cmd, app, func(ctx context.Context, svc *workflow.Service, ao workflow.ApplyOptions) (*workflow.Outcome, error) {
			opts.ApplyOptions = ao
			return svc.Init(ctx, opts)
		})
	},
}

// projectType maps a kind of work to the bundle that serves it. An empty
// bundle means the user picks servers individually.
type projectType struct {
	label  string
	bundle string
}

var projectTypes = []projectType{
	{label: "Web development (React, Vue, sites)", bundle: "web-dev"},
	{label: "Research and documentation", bundle: "research"},
	{label: "Automation and workflows (n8n)", bundle: "automation"},
	{label: "AI and RAG pipelines", bundle: "ai-rag"},
	{label: "Just the basics (files, reasoning)", bundle: "essential"},
	{label: "Let me choose servers individually"},
}

func printBanner(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, figure.NewFigure("mcpm", "small", true).String())
	fmt.Fprintln(w, "Set up MCP servers for this project in a few questions.")
	fmt.Fprintln(w)
}

// wizardOptions asks the wizard questions and returns the init request.
func wizardOptions(app *cli.App, p *prompt.Prompter, find prompt.Finder) (workflow.InitOptions, error) {
	var opts workflow.InitOptions

	options := make([]prompt.Option, len(projectTypes))
	def := 0
	for i, t := range projectTypes {
		options[i] = prompt.Option{Label: t.label}
		if t.bundle == app.Config.DefaultBundle {
			def = i
		}
	}
	i, err := p.Choose("What kind of project is this?", options, def)
	if err != nil {
		return opts, err
	}

	if projectTypes[i].bundle != "" {
		opts.Bundle = projectTypes[i].bundle
	} else {
		ids, err := prompt.SelectServers(find, app.Catalog.Servers())
		if err != nil {
			return opts, err
		}
		opts.Servers = ids
	}

	if opts.IDEs, err = chooseIDEs(app, p); err != nil {
		return opts, err
	}
	if opts.Name, err = p.Input("Project name", filepath.Base(app.Root)); err != nil {
		return opts, err
	}
	return opts, nil
}
