package errors

import (
	"fmt"
	"strings"

	crdb "github.com/cockroachdb/errors"
)

// Process exit codes.
const (
	ExitSuccess = 0
	// ExitUser covers problems the user can fix: bad input, no project,
	// invalid config, doctor warnings.
	ExitUser = 1
	// ExitSystem covers everything else: I/O, permissions, external tools.
	ExitSystem = 2
)

// Sentinels callers branch on with [Is].
var (
	ErrMissingName           = crdb.New("name is required")
	ErrNotFound              = crdb.New("not found")
	ErrInvalidConfig         = crdb.New("invalid configuration")
	ErrProjectNotInitialized = crdb.New("project not initialized")
	ErrProjectExists         = crdb.New("project already initialized")
	ErrCorruptState          = crdb.New("corrupt state file")
)

// New returns an error with a stack trace.
func New(msg string) error { return crdb.New(msg) }

// Newf returns a formatted error with a stack trace.
func Newf(format string, args ...any) error { return crdb.Newf(format, args...) }

// Wrap annotates err with msg, returning nil for a nil err.
func Wrap(err error, msg string) error { return crdb.Wrap(err, msg) }

// Wrapf annotates err with a formatted message, returning nil for a nil err.
func Wrapf(err error, format string, args ...any) error { return crdb.Wrapf(err, format, args...) }

func Is(err, target error) bool { return crdb.Is(err, target) }

func As(err error, target any) bool { return crdb.As(err, target) }

// Join combines errs, discarding nils.
func Join(errs ...error) error { return crdb.Join(errs...) }

// WithHint attaches a user-facing remedy to err. Hints are not part of
// the error message.
func WithHint(err error, hint string) error { return crdb.WithHint(err, hint) }

// Hint returns the hints attached anywhere in err's chain, one per line,
// or "" when there are none.
func Hint(err error) string {
	if err == nil {
		return ""
	}
	return strings.TrimSpace(crdb.FlattenHints(err))
}

// ExitError carries the exit code for an error and an optional suggestion
// printed under the message. An ExitError with a nil Err is a status-only
// exit: the command already reported its findings.
type ExitError struct {
	Err        error
	Code       int
	Suggestion string
}

// NewExitError returns an ExitError with code and no suggestion.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{Err: err, Code: code}
}

// Status returns a status-only ExitError.
func Status(code int) *ExitError {
	return &ExitError{Code: code}
}

// NewUserError returns an ExitUser error. An empty suggestion falls back to
// the hints attached to err.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{Err: err, Code: ExitUser, Suggestion: suggest(err, suggestion)}
}

// NewSystemError returns an ExitSystem error. An empty suggestion falls
// back to the hints attached to err.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{Err: err, Code: ExitSystem, Suggestion: suggest(err, suggestion)}
}

// NewConfigError returns an ExitUser error pointing at mcpm doctor, unless
// err carries a more specific hint.
func NewConfigError(err error) *ExitError {
	hint := Hint(err)
	if hint == "" {
		hint = "Run: mcpm doctor"
	}
	return &ExitError{Err: err, Code: ExitUser, Suggestion: hint}
}

func suggest(err error, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return Hint(err)
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode returns the code for err: ExitSuccess for nil, the code of the
// first ExitError in the chain, or ExitSystem.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitSystem
}
