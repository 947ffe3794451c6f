// Package bundle provides CLI commands for authoring custom server bundles.
package bundle

import "github.com/spf13/cobra"

// Cmd is the root bundle command.
var Cmd = &cobra.Command{
	Use:   "bundle",
	Short: "Manage custom server bundles",
	Long: `Manage custom bundles: named server sets you can pass to
mcpm init --bundle next to the built-in ones.

Custom bundles are stored in ~/.mcp-project-manager/custom-bundles.json (see the
bundles_file config key) and shared by all projects. Built-in bundle names
cannot be reused.`,
	Example: `  # Save the current project's servers as a bundle
  mcpm bundle create my-stack

  # Create a bundle from explicit servers and globs
  mcpm bundle create data -d "Data work" postgres 'seq*'

  # Use it
  mcpm init --bundle my-stack

  See Also:
    mcpm bundle list   - List bundles
    mcpm bundle show   - Show one bundle
    mcpm bundle remove - Delete a custom bundle`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}
