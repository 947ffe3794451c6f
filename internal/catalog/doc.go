// Package catalog holds the read-only registries mcpm works from: the known
// MCP servers, the built-in server bundles and the IDE targets that consume
// generated configuration.
//
// A [Catalog] is immutable once constructed. The built-in tables come from
// [Builtin]; tests build their own with [New] so the rest of the core never
// depends on package-level state.
//
// # Lookups
//
//	cat := catalog.Builtin(paths.Home(), runtime.GOOS)
//	srv, ok := cat.Server("github")
//	valid, unknown := cat.ValidateServers([]string{"filesystem", "bogus"})
//
// Unknown ids are reported back to the caller rather than returned as
// errors; deciding whether an unknown id is fatal belongs to the caller.
package catalog
