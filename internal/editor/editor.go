// Package editor opens files in the user's text editor.
package editor

import (
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/thoreinstein/mcpm/internal/errors"
)

// Editor runs an external editor on a file.
type Editor struct {
	// Command overrides editor detection when set. It may carry arguments,
	// e.g. "code --wait".
	Command string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New returns an Editor attached to the process's terminal.
func New() *Editor {
	return &Editor{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Open blocks until the editor exits.
func (e *Editor) Open(path string) error {
	argv := strings.Fields(e.Command)
	if len(argv) == 0 {
		argv = strings.Fields(Detect())
	}
	if len(argv) == 0 {
		return errors.New("no editor configured: set $EDITOR")
	}

	cmd := exec.Command(argv[0], append(argv[1:], path)...) //nolint:gosec // editor comes from the user's environment
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running editor %s", argv[0])
	}
	return nil
}

// Detect picks the editor command: $MCPM_EDITOR, $EDITOR, $VISUAL, then
// nano if installed, then vi.
func Detect() string {
	for _, key := range []string{"MCPM_EDITOR", "EDITOR", "VISUAL"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	if _, err := exec.LookPath("nano"); err == nil {
		return "nano"
	}
	return "vi"
}
