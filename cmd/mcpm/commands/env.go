package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/cmd/mcpm/commands/flags"
	"github.com/thoreinstein/mcpm/internal/cli"
	"github.com/thoreinstein/mcpm/internal/env"
)

var (
	envPairs   []string
	envJSON    bool
	envSecrets cli.Secrets
)

func init() {
	envCmd.Flags().StringArrayVarP(&envPairs, "env", "e", nil, "environment value KEY=VALUE (repeatable)")
	envCmd.Flags().BoolVar(&envJSON, "json", false, "output as JSON")
	envCmd.Flags().BoolVar(&envSecrets.Doppler, "doppler", false, "look up missing secrets with the Doppler CLI")
	envCmd.Flags().StringVar(&envSecrets.DopplerProject, "doppler-project", "", "Doppler project (overrides config)")
	envCmd.Flags().StringVar(&envSecrets.DopplerConfig, "doppler-config", "", "Doppler config (overrides config)")
	rootCmd.AddCommand(envCmd)
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Show which environment variables the project's servers get",
	Long: `Resolve the environment variables required and accepted by the
project's servers and show where each value comes from. Values are always
masked.

Precedence: -e flags, then Doppler (when enabled), then the env_files from
the config (.mcp/.env and .env by default).`,
	Example: `  mcpm env

  # Include Doppler
  mcpm env --doppler

  See Also: mcpm sync, mcpm doctor`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := flags.NewApp(cmd.Context())
		if err != nil {
			return err
		}
		explicit, err := env.ParseAssignments(envPairs)
		if err != nil {
			return cli.MapError(err)
		}

		stop := cli.StartSpinner(cmd.ErrOrStderr(), "Resolving environment...", flags.Quiet())
		_, res, err := app.Service(envSecrets).Resolve(cmd.Context(), explicit)
		stop()
		if err != nil {
			return cli.MapError(err)
		}

		view := newEnvView(res)
		if envJSON {
			return encode(cmd.OutOrStdout(), "json", view)
		}
		printEnv(cmd.OutOrStdout(), view)
		return nil
	},
}

type envKeyView struct {
	Key      string `json:"key"`
	Required bool   `json:"required"`
	Source   string `json:"source,omitempty"`
	Value    string `json:"value,omitempty"`
}

type envMissingView struct {
	Server string   `json:"server"`
	Keys   []string `json:"keys"`
}

type envView struct {
	Keys    []envKeyView     `json:"keys"`
	Missing []envMissingView `json:"missing,omitempty"`
}

// newEnvView builds the masked view of res.
func newEnvView(res *env.Result) envView {
	view := envView{}
	add := func(keys []string, required bool) {
		for _, k := range keys {
			kv := envKeyView{Key: k, Required: required, Source: res.Origins[k]}
			if v, ok := res.Values[k]; ok {
				kv.Value = env.Mask(v)
			}
			view.Keys = append(view.Keys, kv)
		}
	}
	add(res.Required, true)
	add(res.Optional, false)

	for _, m := range res.Missing {
		view.Missing = append(view.Missing, envMissingView{Server: m.Server, Keys: m.Keys})
	}
	return view
}

func printEnv(w io.Writer, view envView) {
	if len(view.Keys) == 0 {
		fmt.Fprintln(w, "No server in this project needs environment variables.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tREQUIRED\tSOURCE\tVALUE")
	for _, k := range view.Keys {
		req := "no"
		if k.Required {
			req = "yes"
		}
		src, val := k.Source, k.Value
		if src == "" {
			src, val = "-", "-"
			if k.Required {
				src = color.YellowString("missing")
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", k.Key, req, src, val)
	}
	_ = tw.Flush()

	if len(view.Missing) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, color.YellowString("Servers missing required variables (rendered without env):"))
		for _, m := range view.Missing {
			fmt.Fprintf(w, "  %s: %s\n", m.Server, strings.Join(m.Keys, ", "))
		}
	}
}
