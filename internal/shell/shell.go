// Package shell runs external CLIs (doppler, claude) on behalf of mcpm.
//
// Callers depend on the [Runner] interface so tests can substitute
// mocks.MockRunner for real processes.
package shell

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/thoreinstein/mcpm/internal/errors"
)

// ErrNotInstalled indicates the requested executable is not on PATH.
var ErrNotInstalled = errors.New("executable not found in PATH")

// Result holds the captured output of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes external commands.
type Runner interface {
	// Run executes name with args and returns its captured output. A command
	// that starts but exits non-zero returns a Result with ExitCode set and a
	// non-nil *ExitError.
	Run(ctx context.Context, name string, args ...string) (Result, error)

	// LookPath reports the resolved path of an executable.
	LookPath(name string) (string, error)
}

// ExitError reports a command that ran but exited with a non-zero status.
type ExitError struct {
	Name   string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := e.Name + " exited with status " + strconv.Itoa(e.Code)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// IsExitError reports whether err is a non-zero exit of a started command.
func IsExitError(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Dir is the working directory. Empty means the current directory.
	Dir string
}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	if _, err := exec.LookPath(name); err != nil {
		return Result{}, errors.Wrapf(ErrNotInstalled, "%s", name)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err == nil {
		return res, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, errors.Wrapf(ctxErr, "running %s", name)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, &ExitError{
			Name:   name,
			Code:   res.ExitCode,
			Stderr: strings.TrimSpace(res.Stderr),
		}
	}
	return res, errors.Wrapf(err, "running %s", name)
}

// LookPath implements Runner.
func (r *ExecRunner) LookPath(name string) (string, error) {
	p, err := exec.LookPath(name)
	if err != nil {
		return "", errors.Wrapf(ErrNotInstalled, "%s", name)
	}
	return p, nil
}

// Quote returns s quoted for a POSIX shell. Strings made only of safe
// characters are returned unchanged.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !isSafe(r) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Join quotes each argument and joins them with spaces.
func Join(args ...string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = Quote(a)
	}
	return strings.Join(quoted, " ")
}

func isSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	switch r {
	case '-', '_', '.', '/', '@', ':', '=', ',', '+', '%':
		return true
	}
	return false
}
