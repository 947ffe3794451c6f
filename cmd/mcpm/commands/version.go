package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/internal/buildinfo"
)

var versionJSON bool

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Print the version, commit, build date and platform of mcpm.`,
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		info := buildinfo.Get()
		w := c.OutOrStdout()
		if versionJSON {
			return encode(w, "json", info)
		}
		fmt.Fprintf(w, "mcpm version %s\n", info.Version)
		fmt.Fprintf(w, "  commit:   %s\n", info.Commit)
		fmt.Fprintf(w, "  built:    %s\n", info.Date)
		fmt.Fprintf(w, "  platform: %s\n", info.Platform)
		return nil
	},
}
