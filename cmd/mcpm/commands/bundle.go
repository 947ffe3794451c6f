package commands

import "github.com/thoreinstein/mcpm/cmd/mcpm/commands/bundle"

func init() {
	rootCmd.AddCommand(bundle.Cmd)
}
