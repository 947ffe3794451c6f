// Package errors is the single error package used across mcpm.
//
// It forwards to cockroachdb/errors for construction, wrapping and
// inspection, defines the sentinels shared between packages, and maps
// failures onto exit codes with [ExitError].
//
// Library code attaches remedies with [WithHint] where it knows them:
//
//	return errors.WithHint(errors.Wrapf(errors.ErrCorruptState, "parsing %s", path),
//		"Fix the JSON by hand or run: mcpm init --force")
//
// The command layer turns the error into an [ExitError]; an empty
// suggestion falls back to the attached hints, and main prints the
// suggestion under the error message before exiting with the code.
package errors
