package doctor

import (
	"os"

	"github.com/thoreinstein/mcpm/internal/catalog"
	"github.com/thoreinstein/mcpm/internal/paths"
)

// FileKind classifies a file for permission and syntax checks.
type FileKind string

// File kinds.
const (
	// KindConfig is an IDE config that may embed env values.
	KindConfig FileKind = "config"

	// KindSecret holds plain secrets (.env files).
	KindSecret FileKind = "secret"

	// KindScript is the generated Claude Code setup script.
	KindScript FileKind = "script"

	// KindState is project state without secrets.
	KindState FileKind = "state"
)

// Mode is the loosest permission mode acceptable for the kind, matching
// the modes mcpm writes with.
func (k FileKind) Mode() os.FileMode {
	switch k {
	case KindConfig, KindSecret:
		return 0o600
	case KindScript:
		return 0o700
	default:
		return 0o644
	}
}

// File is one file doctor inspects.
type File struct {
	Path   string
	Owner  string
	Kind   FileKind
	Format catalog.Format
}

// Files lists the files mcpm writes or reads for the project at root and
// the given IDE targets. Files that do not exist are still listed.
func Files(ides []catalog.IDE, root string) []File {
	var out []File
	for _, ide := range ides {
		if ide.ConfigPath != "" && ide.Format != catalog.FormatScript {
			out = append(out, File{Path: ide.ConfigPath, Owner: ide.ID, Kind: KindConfig, Format: ide.Format})
		}
		if root == "" || !ide.ProjectConfig {
			continue
		}
		if ide.Format == catalog.FormatScript {
			out = append(out, File{Path: paths.ClaudeCodeScriptPath(root), Owner: ide.ID, Kind: KindScript, Format: ide.Format})
			continue
		}
		out = append(out, File{
			Path:   paths.ProjectIDEConfigPath(root, ide.ID, ide.Format.Extension()),
			Owner:  ide.ID,
			Kind:   KindConfig,
			Format: ide.Format,
		})
	}
	if root != "" {
		out = append(out,
			File{Path: paths.ProjectStatePath(root), Owner: "project", Kind: KindState, Format: catalog.FormatJSON},
			File{Path: paths.ProjectEnvPath(root), Owner: "project", Kind: KindSecret},
		)
	}
	return out
}
