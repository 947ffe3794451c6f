package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/thoreinstein/mcpm/internal/errors"
)

var (
	genDocDir    string
	genDocFormat string
)

func init() {
	genDocCmd.Flags().StringVarP(&genDocDir, "dir", "d", "", "output directory")
	genDocCmd.Flags().StringVar(&genDocFormat, "format", "markdown", "markdown or man")
	rootCmd.AddCommand(genDocCmd)
}

var genDocCmd = &cobra.Command{
	Use:    "gen-doc",
	Short:  "Generate reference documentation for the CLI",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if genDocDir == "" {
			return errors.NewUserError(errors.New("output directory is required"), "Use --dir")
		}
		if err := os.MkdirAll(genDocDir, 0o755); err != nil {
			return errors.Wrap(err, "creating output directory")
		}

		var err error
		switch genDocFormat {
		case "markdown":
			err = doc.GenMarkdownTreeCustom(rootCmd, genDocDir, docFrontMatter, docLink)
		case "man":
			err = doc.GenManTree(rootCmd, &doc.GenManHeader{Title: "MCPM", Section: "1"}, genDocDir)
		default:
			return errors.NewUserError(errors.Newf("invalid --format %q", genDocFormat), "Use markdown or man")
		}
		if err != nil {
			return errors.Wrap(err, "generating documentation")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Documentation generated in %s\n", genDocDir)
		return nil
	},
}

// docFrontMatter titles each page after its command path, e.g.
// mcpm_bundle_create.md becomes "mcpm bundle create".
func docFrontMatter(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	title := strings.ReplaceAll(base, "_", " ")
	return fmt.Sprintf("---\ntitle: %q\ndescription: %q\n---\n", title, "Reference for "+title)
}

func docLink(name string) string {
	return "../" + strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name))) + "/"
}
