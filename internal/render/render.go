// Package render turns a selection of servers plus resolved environment
// values into IDE-native launch specifications.
package render

import (
	"maps"
	"slices"

	"github.com/thoreinstein/mcpm/internal/catalog"
)

// LaunchCommand is the executable every catalog server is started with.
const LaunchCommand = "npx"

// LaunchSpec describes how an IDE starts one MCP server.
type LaunchSpec struct {
	Command string            `json:"command" toml:"command"`
	Args    []string          `json:"args" toml:"args"`
	Env     map[string]string `json:"env,omitempty" toml:"env,omitempty"`
}

// Entry is one rendered server.
type Entry struct {
	ID   string
	Spec LaunchSpec
}

// Config is the rendered, format-independent payload for one apply.
type Config struct {
	// Entries are in selection order.
	Entries []Entry

	// Skipped lists selected ids unknown to the catalog.
	Skipped []string

	// Withheld lists servers rendered without an env block because some
	// required key was missing.
	Withheld []string
}

// IDs returns the rendered server ids in order.
func (c *Config) IDs() []string {
	ids := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		ids[i] = e.ID
	}
	return ids
}

// Render builds launch specs for servers using values for env blocks.
//
// A server with required keys gets an env block only when every required
// key is present in values; optional keys that were found ride along with
// that block. A server without required keys carries whichever optional
// keys were found. Unknown ids are skipped and reported.
func Render(cat *catalog.Catalog, servers []string, values map[string]string) *Config {
	out := &Config{}
	seen := make(map[string]bool, len(servers))

	for _, id := range servers {
		if seen[id] {
			continue
		}
		seen[id] = true

		s, ok := cat.Server(id)
		if !ok {
			out.Skipped = append(out.Skipped, id)
			continue
		}

		spec := LaunchSpec{
			Command: LaunchCommand,
			Args:    []string{s.PackageSpec()},
		}

		env, complete := envBlock(s, values)
		if !complete {
			out.Withheld = append(out.Withheld, id)
		} else if len(env) > 0 {
			spec.Env = env
		}

		out.Entries = append(out.Entries, Entry{ID: id, Spec: spec})
	}

	return out
}

func envBlock(s catalog.Server, values map[string]string) (map[string]string, bool) {
	env := make(map[string]string)
	for _, k := range s.RequiredEnv {
		v, ok := values[k]
		if !ok || v == "" {
			return nil, false
		}
		env[k] = v
	}
	for _, k := range s.OptionalEnv {
		if v, ok := values[k]; ok && v != "" {
			env[k] = v
		}
	}
	return env, true
}

// Map returns the entries keyed by server id, the shape of the managed key.
func (c *Config) Map() map[string]LaunchSpec {
	m := make(map[string]LaunchSpec, len(c.Entries))
	for _, e := range c.Entries {
		spec := e.Spec
		spec.Args = slices.Clone(spec.Args)
		if spec.Env != nil {
			spec.Env = maps.Clone(spec.Env)
		}
		m[e.ID] = spec
	}
	return m
}
