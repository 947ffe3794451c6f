package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// AppName names the per-user directories owned by mcpm.
const AppName = "mcpm"

// Project-relative layout. Everything mcpm writes inside a project lives
// under ProjectDirName.
const (
	ProjectDirName       = ".mcp"
	ProjectStateFile     = "config.json"
	ProjectEnvFile       = ".env"
	ProjectEnvTemplate   = ".env.example"
	ClaudeCodeScriptName = "claude-code-setup.sh"
)

// legacyBundleDir is the home-relative directory holding the custom bundle
// registry. The location is shared with earlier tooling so existing bundles
// keep working.
const legacyBundleDir = ".mcp-project-manager"

// Home returns the user's home directory, or "" when it cannot be
// determined.
func Home() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

// ExpandHome expands a leading ~ to the user's home directory.
// Paths without a leading ~ are returned unchanged.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home := Home()
	if home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// AppConfigDir returns the directory holding mcpm's own config.yaml,
// $XDG_CONFIG_HOME/mcpm (~/.config/mcpm on Linux).
func AppConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// BackupDir returns the root of IDE config backups,
// $XDG_DATA_HOME/mcpm/backups (~/.local/share/mcpm/backups on Linux).
func BackupDir() string {
	return filepath.Join(xdg.DataHome, AppName, "backups")
}

// DefaultBundlesFile returns the custom bundle registry path.
// Returns: ~/.mcp-project-manager/custom-bundles.json
//
// Returns an empty string if the home directory cannot be determined.
func DefaultBundlesFile() string {
	home := Home()
	if home == "" {
		return ""
	}
	return filepath.Join(home, legacyBundleDir, "custom-bundles.json")
}

// ProjectDir returns the mcpm directory inside a project.
// Returns an empty string for an empty projectRoot.
func ProjectDir(projectRoot string) string {
	if projectRoot == "" {
		return ""
	}
	return filepath.Join(projectRoot, ProjectDirName)
}

// ProjectStatePath returns <projectRoot>/.mcp/config.json.
func ProjectStatePath(projectRoot string) string {
	return projectFile(projectRoot, ProjectStateFile)
}

// ProjectEnvPath returns <projectRoot>/.mcp/.env.
func ProjectEnvPath(projectRoot string) string {
	return projectFile(projectRoot, ProjectEnvFile)
}

// ProjectEnvTemplatePath returns <projectRoot>/.mcp/.env.example.
func ProjectEnvTemplatePath(projectRoot string) string {
	return projectFile(projectRoot, ProjectEnvTemplate)
}

// ProjectIDEConfigPath returns the project-local copy of an IDE config,
// <projectRoot>/.mcp/<ide>.<ext>.
func ProjectIDEConfigPath(projectRoot, ide, ext string) string {
	return projectFile(projectRoot, ide+"."+ext)
}

// ClaudeCodeScriptPath returns <projectRoot>/.mcp/claude-code-setup.sh.
func ClaudeCodeScriptPath(projectRoot string) string {
	return projectFile(projectRoot, ClaudeCodeScriptName)
}

// ClaudeDesktopConfigPath returns the Claude desktop config file for the
// given operating system, rooted at home.
//
// Platform paths:
//   - darwin: ~/Library/Application Support/Claude/claude_desktop_config.json
//   - windows: ~/AppData/Roaming/Claude/claude_desktop_config.json
//   - other: ~/.config/Claude/claude_desktop_config.json
func ClaudeDesktopConfigPath(home, goos string) string {
	if home == "" {
		return ""
	}
	const name = "claude_desktop_config.json"
	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Claude", name)
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "Claude", name)
	default:
		return filepath.Join(home, ".config", "Claude", name)
	}
}

func projectFile(projectRoot, name string) string {
	dir := ProjectDir(projectRoot)
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, name)
}
