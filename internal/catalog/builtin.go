package catalog

import (
	"path/filepath"

	"github.com/thoreinstein/mcpm/internal/paths"
)

// Built-in IDE target ids.
const (
	IDECursor        = "cursor"
	IDEWindsurf      = "windsurf"
	IDEClaudeDesktop = "claude-desktop"
	IDEClaudeCode    = "claude-code"
	IDEWarp          = "warp"
	IDECodex         = "codex"
)

// DefaultBundle is the bundle used when none is requested.
const DefaultBundle = "essential"

var builtinServers = []Server{
	{
		ID:          "filesystem",
		Package:     "@modelcontextprotocol/server-filesystem",
		Version:     "2025.8.21",
		Description: "File system operations and management",
		Category:    CategoryCore,
	},
	{
		ID:          "sequential-thinking",
		Package:     "@modelcontextprotocol/server-sequential-thinking",
		Version:     "2025.7.1",
		Description: "Advanced reasoning and problem-solving capabilities",
		Category:    CategoryCore,
	},
	{
		ID:          "github",
		Package:     "@modelcontextprotocol/server-github",
		Version:     "2025.4.8",
		Description: "GitHub integration for repositories and issues",
		Category:    CategoryIntegration,
		RequiredEnv: []string{"GITHUB_TOKEN"},
	},
	{
		ID:          "duckduckgo",
		Package:     "duckduckgo-mcp-server",
		Version:     "0.1.2",
		Description: "Web search capabilities via DuckDuckGo",
		Category:    CategoryIntegration,
	},
	{
		ID:          "context7",
		Package:     "@upstash/context7-mcp",
		Version:     "latest",
		Description: "Up-to-date code documentation and examples for LLMs",
		Category:    CategoryIntegration,
	},
	{
		ID:          "playwright",
		Package:     "@playwright/mcp",
		Version:     "0.0.36",
		Description: "Browser automation and web testing",
		Category:    CategorySpecialized,
	},
	{
		ID:          "n8n",
		Package:     "n8n-mcp",
		Version:     "2.10.6",
		Description: "Workflow automation platform",
		Category:    CategorySpecialized,
		RequiredEnv: []string{"N8N_API_KEY", "N8N_BASE_URL"},
	},
	{
		ID:          "webflow",
		Package:     "webflow-mcp-server",
		Version:     "0.7.0",
		Description: "Webflow CMS and site management",
		Category:    CategorySpecialized,
		RequiredEnv: []string{"WEBFLOW_API_TOKEN"},
	},
	{
		ID:          "crawl4ai-rag",
		Package:     "mcp-crawl4ai-rag",
		Version:     "latest",
		Description: "Web crawling and RAG with vector database storage",
		Category:    CategorySpecialized,
		RequiredEnv: []string{"OPENAI_API_KEY", "SUPABASE_URL", "SUPABASE_SERVICE_ROLE_KEY"},
		OptionalEnv: []string{"NEO4J_URI", "NEO4J_USERNAME", "NEO4J_PASSWORD"},
	},
}

var builtinBundles = []Bundle{
	{
		Name:        "essential",
		Description: "Core servers for basic functionality",
		Servers:     []string{"filesystem", "sequential-thinking"},
		Category:    "core",
	},
	{
		Name:        "web-dev",
		Description: "Web development with GitHub, search, documentation, and browser automation",
		Servers:     []string{"filesystem", "sequential-thinking", "github", "duckduckgo", "context7", "playwright"},
		Category:    "development",
	},
	{
		Name:        "automation",
		Description: "Workflow automation and integration tools",
		Servers:     []string{"filesystem", "sequential-thinking", "n8n", "webflow"},
		Category:    "automation",
	},
	{
		Name:        "research",
		Description: "Research and documentation tools",
		Servers:     []string{"filesystem", "sequential-thinking", "duckduckgo", "context7", "github"},
		Category:    "research",
	},
	{
		Name:        "ai-rag",
		Description: "AI development with documentation and RAG capabilities",
		Servers:     []string{"filesystem", "sequential-thinking", "context7", "crawl4ai-rag", "github"},
		Category:    "ai",
	},
	{
		Name:        "full",
		Description: "All available MCP servers",
		Servers: []string{
			"filesystem", "sequential-thinking", "github", "duckduckgo", "context7",
			"playwright", "n8n", "webflow", "crawl4ai-rag",
		},
		Category: "comprehensive",
	},
}

// BuiltinIDEIDs returns the ids of the built-in IDE targets in display order.
func BuiltinIDEIDs() []string {
	return []string{IDECursor, IDEWindsurf, IDEClaudeDesktop, IDEClaudeCode, IDEWarp, IDECodex}
}

// BuiltinIDEs returns the built-in IDE targets with config paths rooted at
// home. goos selects the Claude desktop location.
func BuiltinIDEs(home, goos string) []IDE {
	join := func(elem ...string) string {
		if home == "" {
			return ""
		}
		return filepath.Join(append([]string{home}, elem...)...)
	}

	return []IDE{
		{
			ID:            IDECursor,
			DisplayName:   "Cursor",
			ConfigPath:    join(".cursor", "mcp.json"),
			Format:        FormatJSON,
			ProjectConfig: true,
			CLI:           "cursor",
			App:           "Cursor",
		},
		{
			ID:            IDEWindsurf,
			DisplayName:   "Windsurf",
			ConfigPath:    join(".codeium", "windsurf", "mcp_config.json"),
			Format:        FormatJSON,
			ProjectConfig: true,
			CLI:           "windsurf",
			App:           "Windsurf",
		},
		{
			ID:          IDEClaudeDesktop,
			DisplayName: "Claude Desktop",
			ConfigPath:  paths.ClaudeDesktopConfigPath(home, goos),
			Format:      FormatJSON,
			App:         "Claude",
		},
		{
			ID:            IDEClaudeCode,
			DisplayName:   "Claude Code",
			Format:        FormatScript,
			ProjectConfig: true,
			CLI:           "claude",
		},
		{
			ID:            IDEWarp,
			DisplayName:   "Warp",
			ConfigPath:    join(".warp", "mcp_config.json"),
			Format:        FormatJSON,
			ProjectConfig: true,
			App:           "Warp",
		},
		{
			ID:          IDECodex,
			DisplayName: "Codex",
			ConfigPath:  join(".codex", "config.toml"),
			Format:      FormatTOML,
			ManagedKey:  "mcp_servers",
			CLI:         "codex",
		},
	}
}

// Builtin returns the catalog shipped with mcpm.
func Builtin(home, goos string) *Catalog {
	return MustNew(builtinServers, builtinBundles, BuiltinIDEs(home, goos))
}
