// Package merge folds rendered MCP launch specs into an IDE's existing
// configuration file without disturbing anything mcpm does not own.
//
// Exactly one top-level key, the managed key (mcpServers for JSON targets,
// mcp_servers for codex), is rewritten. Every other top-level key passes
// through untouched. Inside the managed key, entries for servers that are
// not being rendered are preserved, rendered entries replace existing
// ones wholesale and new entries are appended.
//
// Merging is split into two steps. [Plan] is a pure computation producing
// the exact bytes that would be written together with the decision
// (create, update, unchanged). [Commit] is the only function that touches
// the filesystem. A dry run is a Plan without a Commit, so a preview can
// never diverge from what an apply would write.
//
// An existing file that cannot be parsed is treated as empty; the parse
// error is reported in [Result.Malformed] and is never fatal.
package merge
