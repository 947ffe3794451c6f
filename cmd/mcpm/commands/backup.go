package commands

import "github.com/thoreinstein/mcpm/cmd/mcpm/commands/backup"

func init() {
	rootCmd.AddCommand(backup.Cmd)
}
