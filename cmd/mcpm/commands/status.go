package commands

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/cmd/mcpm/commands/flags"
	"github.com/thoreinstein/mcpm/internal/catalog"
	"github.com/thoreinstein/mcpm/internal/cli"
	"github.com/thoreinstein/mcpm/internal/ide"
	"github.com/thoreinstein/mcpm/internal/paths"
	"github.com/thoreinstein/mcpm/internal/project"
)

var statusJSON bool

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether IDE configs match the project",
	Long: `Compare the project's servers with what each IDE config file
actually contains.

For every IDE of the project and each of its files, status lists project
servers missing from the file and other entries the file holds. Other
entries are never touched by mcpm; missing ones are written by mcpm sync.`,
	Example: `  mcpm status
  mcpm status --json

  See Also: mcpm sync, mcpm doctor`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

type fileStatus struct {
	IDE     string   `json:"ide"`
	Path    string   `json:"path"`
	Exists  bool     `json:"exists"`
	Missing []string `json:"missing,omitempty"`
	Other   []string `json:"other,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// InSync reports whether the file holds every project server.
func (f fileStatus) InSync() bool {
	return f.Exists && f.Error == "" && len(f.Missing) == 0
}

type statusOutput struct {
	Project string       `json:"project"`
	Servers []string     `json:"servers"`
	Files   []fileStatus `json:"files"`
	InSync  bool         `json:"in_sync"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	app, err := flags.NewApp(cmd.Context())
	if err != nil {
		return err
	}
	d, err := app.Projects.Load()
	if err != nil {
		return cli.MapError(err)
	}

	out := collectStatus(app.Catalog, app.Root, d)
	if statusJSON {
		return encode(cmd.OutOrStdout(), "json", out)
	}
	printStatus(cmd.OutOrStdout(), out)
	return nil
}

// collectStatus inspects every file written for the project's IDEs. The
// claude-code script is only checked for presence.
func collectStatus(cat *catalog.Catalog, root string, d *project.Descriptor) statusOutput {
	out := statusOutput{Project: d.Name, Servers: d.Servers, InSync: true}

	for _, id := range d.IDEs {
		target, ok := cat.IDE(id)
		if !ok {
			continue
		}

		var files []string
		if target.ConfigPath != "" && target.Format != catalog.FormatScript {
			files = append(files, target.ConfigPath)
		}
		if target.ProjectConfig {
			if target.Format == catalog.FormatScript {
				out.Files = append(out.Files, scriptStatus(id, paths.ClaudeCodeScriptPath(root)))
			} else {
				files = append(files, paths.ProjectIDEConfigPath(root, id, target.Format.Extension()))
			}
		}

		for _, path := range files {
			out.Files = append(out.Files, configStatus(target, path, d.Servers))
		}
	}

	for _, f := range out.Files {
		if !f.InSync() {
			out.InSync = false
		}
	}
	return out
}

func configStatus(target catalog.IDE, path string, servers []string) fileStatus {
	fs := fileStatus{IDE: target.ID, Path: path}
	if _, err := os.Stat(path); err != nil {
		fs.Missing = servers
		return fs
	}
	fs.Exists = true

	ids, err := ide.ManagedIDs(path, target)
	if err != nil {
		fs.Error = err.Error()
		return fs
	}
	for _, s := range servers {
		if !slices.Contains(ids, s) {
			fs.Missing = append(fs.Missing, s)
		}
	}
	for _, id := range ids {
		if !slices.Contains(servers, id) {
			fs.Other = append(fs.Other, id)
		}
	}
	return fs
}

func scriptStatus(id, path string) fileStatus {
	_, err := os.Stat(path)
	return fileStatus{IDE: id, Path: path, Exists: err == nil}
}

func printStatus(w io.Writer, out statusOutput) {
	fmt.Fprintf(w, "Project %s: %d server(s)\n\n", out.Project, len(out.Servers))

	for _, f := range out.Files {
		switch {
		case f.Error != "":
			fmt.Fprintf(w, "%s %-15s %s\n    %s\n", color.RedString("✗"), f.IDE, f.Path, f.Error)
			continue
		case !f.Exists:
			fmt.Fprintf(w, "%s %-15s %s (not written yet)\n", color.YellowString("⚠"), f.IDE, f.Path)
			continue
		case len(f.Missing) > 0:
			fmt.Fprintf(w, "%s %-15s %s\n", color.YellowString("⚠"), f.IDE, f.Path)
			fmt.Fprintf(w, "    missing: %s\n", strings.Join(f.Missing, ", "))
		default:
			fmt.Fprintf(w, "%s %-15s %s\n", color.GreenString("✓"), f.IDE, f.Path)
		}
		if len(f.Other) > 0 {
			fmt.Fprintf(w, "    %s\n", color.HiBlackString("other entries: "+strings.Join(f.Other, ", ")))
		}
	}

	if !out.InSync {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Run: mcpm sync")
	}
}
