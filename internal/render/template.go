package render

import (
	"strings"

	"github.com/thoreinstein/mcpm/internal/catalog"
)

// EnvTemplate returns the KEY= placeholder file for servers, grouped by
// server. It returns nil when no selected server requires env keys.
func EnvTemplate(cat *catalog.Catalog, servers []string) []byte {
	var b strings.Builder
	wrote := false
	seen := make(map[string]bool)

	for _, id := range servers {
		s, ok := cat.Server(id)
		if !ok || len(s.RequiredEnv) == 0 || seen[id] {
			continue
		}
		seen[id] = true

		if !wrote {
			b.WriteString("# MCP Server Environment Variables\n")
			b.WriteString("# Copy this file to .mcp/.env or your project root and fill in the actual values\n\n")
			wrote = true
		}
		b.WriteString("# " + s.Description + "\n")
		for _, k := range s.RequiredEnv {
			b.WriteString(k + "=\n")
		}
		for _, k := range s.OptionalEnv {
			b.WriteString("# " + k + "=\n")
		}
		b.WriteString("\n")
	}

	if !wrote {
		return nil
	}
	return []byte(b.String())
}
