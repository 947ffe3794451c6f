// Package logging configures the slog loggers used by mcpm.
//
// Records go to stderr, as colored one-line text ([ConsoleHandler]) or as
// JSON, and optionally also to a log file, always as JSON. Values of
// secret-looking attributes are masked on every output, so a resolved
// GITHUB_TOKEN logged at trace level shows as ****abcd.
//
// Verbosity follows the -v count ([LevelFromVerbosity]); -vvv or
// MCPM_DEBUG=2 enables [LevelTrace]. Commands keep the logger in their
// context with [NewContext]; library packages receive a *slog.Logger
// explicitly and never reach for the default logger.
package logging
