// Package paths resolves the files and directories mcpm reads and writes.
//
// # Per-user Locations
//
// The package wraps github.com/adrg/xdg for XDG Base Directory compliance:
//
//	paths.AppConfigDir()       // <ConfigHome>/mcpm/          (config.yaml)
//	paths.BackupDir()          // <DataHome>/mcpm/backups/
//	paths.DefaultBundlesFile() // ~/.mcp-project-manager/custom-bundles.json
//
// # Project Layout
//
// Everything written inside a project lives under .mcp/:
//
//	.mcp/config.json           project state
//	.mcp/.env                  project env values, owned by the user
//	.mcp/.env.example          generated env template
//	.mcp/<ide>.json            project-local IDE config copy
//	.mcp/claude-code-setup.sh  claude CLI registration script
//
// Functions taking a projectRoot return an empty string when it is empty.
package paths
