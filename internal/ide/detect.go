// Package ide detects installed IDE targets and discovers the MCP servers
// their configs already contain.
package ide

import (
	"os"
	"path/filepath"

	"github.com/thoreinstein/mcpm/internal/catalog"
	"github.com/thoreinstein/mcpm/internal/shell"
)

// Status is the installation state of an IDE.
type Status string

const (
	// StatusInstalled means at least one detection signal matched.
	StatusInstalled Status = "installed"

	// StatusNotInstalled means no signal matched.
	StatusNotInstalled Status = "not_installed"
)

// Detection is the result for one IDE.
type Detection struct {
	IDE    catalog.IDE
	Status Status

	// Signals lists what matched: "config", "cli" or "app".
	Signals []string
}

// Installed reports whether the IDE was detected.
func (d Detection) Installed() bool {
	return d.Status == StatusInstalled
}

// Detector checks the filesystem and PATH for IDEs.
type Detector struct {
	Runner shell.Runner
	GOOS   string

	// AppsDir is where macOS application bundles live.
	AppsDir string
}

// NewDetector returns a Detector for goos using runner for PATH lookups.
func NewDetector(runner shell.Runner, goos string) *Detector {
	return &Detector{Runner: runner, GOOS: goos, AppsDir: "/Applications"}
}

// Detect checks one IDE. A config directory, a CLI on PATH or, on darwin,
// an application bundle each count as installed.
func (d *Detector) Detect(ide catalog.IDE) Detection {
	det := Detection{IDE: ide, Status: StatusNotInstalled}

	if ide.ConfigPath != "" && dirExists(filepath.Dir(ide.ConfigPath)) {
		det.Signals = append(det.Signals, "config")
	}
	if ide.CLI != "" && d.Runner != nil {
		if _, err := d.Runner.LookPath(ide.CLI); err == nil {
			det.Signals = append(det.Signals, "cli")
		}
	}
	if ide.App != "" && d.GOOS == "darwin" && dirExists(filepath.Join(d.AppsDir, ide.App+".app")) {
		det.Signals = append(det.Signals, "app")
	}

	if len(det.Signals) > 0 {
		det.Status = StatusInstalled
	}
	return det
}

// DetectAll checks every IDE in catalog order.
func (d *Detector) DetectAll(cat *catalog.Catalog) []Detection {
	ides := cat.IDEs()
	out := make([]Detection, 0, len(ides))
	for _, ide := range ides {
		out = append(out, d.Detect(ide))
	}
	return out
}

// InstalledIDs returns the ids of detected IDEs in catalog order.
func (d *Detector) InstalledIDs(cat *catalog.Catalog) []string {
	var ids []string
	for _, det := range d.DetectAll(cat) {
		if det.Installed() {
			ids = append(ids, det.IDE.ID)
		}
	}
	return ids
}

func dirExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
