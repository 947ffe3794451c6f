// Package workflow implements the project use cases behind the mcpm
// commands: init, add, remove, sync and migrate.
//
// Every use case follows the same pipeline: load the project, update the
// server and IDE selection, resolve env values, render launch specs, plan
// the IDE writes and, unless dry-run is set, commit them and save the
// project state last.
package workflow
