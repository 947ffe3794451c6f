// Package apply turns a rendered server set into file writes.
//
// [Plan] reads every target file, merges, and returns a [Report] of
// intended writes without touching disk. [Commit] performs exactly those
// writes. A dry run is Plan alone, so its report is the write that would
// have happened.
//
// Targets per IDE:
//   - the global config file, when the IDE has one;
//   - a project-local copy under .mcp/, when the IDE accepts one
//     (a setup script for script-format IDEs);
//   - the shared .mcp/.env.example template when any server needs env keys.
//
// A failure on one target is recorded on its [Change] and never stops the
// remaining targets.
package apply
