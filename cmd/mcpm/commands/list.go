package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mcpm/cmd/mcpm/commands/flags"
	"github.com/thoreinstein/mcpm/internal/catalog"
	"github.com/thoreinstein/mcpm/internal/cli"
	"github.com/thoreinstein/mcpm/internal/errors"
)

var (
	listAvailable bool
	listBundles   bool
	listJSON      bool
	listFormat    string
)

func init() {
	listCmd.Flags().BoolVarP(&listAvailable, "available", "a", false, "list every catalog server")
	listCmd.Flags().BoolVar(&listBundles, "bundles", false, "list built-in and custom bundles")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON (same as --format json)")
	listCmd.Flags().StringVar(&listFormat, "format", "text", "output format: text, json, yaml")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List project servers, catalog servers or bundles",
	Long: `List the servers of the current project. With --available list every
server in the catalog, with --bundles list built-in and custom bundles.`,
	Example: `  # Project servers
  mcpm list

  # Catalog
  mcpm list --available

  # Bundles as YAML
  mcpm list --bundles --format yaml

  See Also: mcpm add, mcpm bundle list`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format := listFormat
		if listJSON {
			format = "json"
		}
		switch format {
		case "text", "json", "yaml":
		default:
			return errors.NewUserError(errors.Newf("invalid --format %q", format), "Use text, json or yaml")
		}

		app, err := flags.NewApp(cmd.Context())
		if err != nil {
			return err
		}
		return runList(cmd.OutOrStdout(), app, format)
	},
}

type serverOutput struct {
	ID          string   `json:"id" yaml:"id"`
	Package     string   `json:"package" yaml:"package"`
	Category    string   `json:"category" yaml:"category"`
	Description string   `json:"description" yaml:"description"`
	RequiredEnv []string `json:"requiredEnv,omitempty" yaml:"required_env,omitempty"`
	OptionalEnv []string `json:"optionalEnv,omitempty" yaml:"optional_env,omitempty"`
	Selected    bool     `json:"selected" yaml:"selected"`
}

type bundleOutput struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Servers     []string `json:"servers" yaml:"servers"`
	Custom      bool     `json:"custom" yaml:"custom"`
}

type projectOutput struct {
	Name    string         `json:"name" yaml:"name"`
	IDEs    []string       `json:"ides" yaml:"ides"`
	Servers []serverOutput `json:"servers" yaml:"servers"`
}

func runList(w io.Writer, app *cli.App, format string) error {
	switch {
	case listBundles:
		bundles, err := app.Bundles.All()
		if err != nil {
			return cli.MapError(err)
		}
		out := make([]bundleOutput, len(bundles))
		for i, b := range bundles {
			out[i] = bundleOutput{Name: b.Name, Description: b.Description, Servers: b.Servers, Custom: b.Custom}
		}
		if format != "text" {
			return encode(w, format, out)
		}
		printBundles(w, out)
		return nil

	case listAvailable:
		selected := map[string]bool{}
		if d, err := app.Projects.Load(); err == nil {
			for _, id := range d.Servers {
				selected[id] = true
			}
		}
		out := serversOutput(app.Catalog.Servers(), selected)
		if format != "text" {
			return encode(w, format, out)
		}
		printServers(w, out)
		return nil
	}

	d, err := app.Projects.Load()
	if err != nil {
		return cli.MapError(err)
	}
	var servers []catalog.Server
	for _, id := range d.Servers {
		if s, ok := app.Catalog.Server(id); ok {
			servers = append(servers, s)
		}
	}
	out := projectOutput{Name: d.Name, IDEs: d.IDEs, Servers: serversOutput(servers, nil)}
	if format != "text" {
		return encode(w, format, out)
	}

	fmt.Fprintf(w, "Project %s (IDEs: %s)\n\n", color.New(color.Bold).Sprint(d.Name), strings.Join(d.IDEs, ", "))
	if len(out.Servers) == 0 {
		fmt.Fprintln(w, "No servers selected. Run: mcpm add <server>")
		return nil
	}
	printServers(w, out.Servers)
	return nil
}

func serversOutput(servers []catalog.Server, selected map[string]bool) []serverOutput {
	out := make([]serverOutput, len(servers))
	for i, s := range servers {
		out[i] = serverOutput{
			ID:          s.ID,
			Package:     s.PackageSpec(),
			Category:    string(s.Category),
			Description: s.Description,
			RequiredEnv: s.RequiredEnv,
			OptionalEnv: s.OptionalEnv,
			Selected:    selected[s.ID],
		}
	}
	return out
}

func printServers(w io.Writer, servers []serverOutput) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tENV\tDESCRIPTION")
	for _, s := range servers {
		mark := " "
		if s.Selected {
			mark = "*"
		}
		envs := "-"
		if len(s.RequiredEnv) > 0 {
			envs = strings.Join(s.RequiredEnv, ",")
		}
		fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\n", mark, s.ID, s.Category, envs, truncate(s.Description, 60))
	}
	_ = tw.Flush()
}

func printBundles(w io.Writer, bundles []bundleOutput) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSERVERS\tDESCRIPTION")
	for _, b := range bundles {
		name := b.Name
		if b.Custom {
			name += " (custom)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, truncate(strings.Join(b.Servers, ","), 50), b.Description)
	}
	_ = tw.Flush()
}

// encode writes v as indented JSON or YAML.
func encode(w io.Writer, format string, v any) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "encoding YAML")
		}
		return errors.Wrap(enc.Close(), "encoding YAML")
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "encoding JSON")
}

// truncate shortens a string to maxLen characters, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
