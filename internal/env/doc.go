// Package env resolves the environment variables required by a set of MCP
// servers from an ordered chain of sources.
//
// Sources are consulted highest priority first and each one is asked only
// for the keys still unresolved, so the first source to produce a
// non-empty value wins. The standard chain is:
//
//  1. [Explicit] key=value pairs from the command line
//  2. [Doppler], the Doppler secrets manager CLI
//  3. [DotEnv], project-local .env files
//
// A source that fails (CLI missing, not authenticated, unreadable file) is
// treated as empty; resolution never fails because a source is
// unavailable. Keys found nowhere are absent from the result, and the
// required keys each server still lacks are reported in [Result.Missing].
package env
