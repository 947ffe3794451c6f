package render

import (
	"fmt"
	"slices"
	"strings"

	"github.com/thoreinstein/mcpm/internal/shell"
)

// ClaudeBinary is the Claude Code CLI executable.
const ClaudeBinary = "claude"

// ClaudeScope is the scope servers are registered under.
const ClaudeScope = "user"

// Step is one step of the Claude Code setup sequence. Remove steps may fail
// harmlessly when the server is not registered yet.
type Step struct {
	Args     []string
	Optional bool
}

// ClaudeSteps returns the idempotent remove-then-add sequence that
// registers every rendered server with Claude Code.
func ClaudeSteps(cfg *Config) []Step {
	steps := make([]Step, 0, 2*len(cfg.Entries))
	for _, e := range cfg.Entries {
		steps = append(steps, removeStep(e.ID))

		add := []string{"mcp", "add", "--scope", ClaudeScope, e.ID}
		for _, k := range sortedKeys(e.Spec.Env) {
			add = append(add, "-e", k+"="+e.Spec.Env[k])
		}
		add = append(add, "--", e.Spec.Command)
		add = append(add, e.Spec.Args...)
		steps = append(steps, Step{Args: add})
	}
	return steps
}

// ClaudeRemoveSteps returns steps that unregister ids from Claude Code.
func ClaudeRemoveSteps(ids []string) []Step {
	steps := make([]Step, 0, len(ids))
	for _, id := range ids {
		steps = append(steps, removeStep(id))
	}
	return steps
}

func removeStep(id string) Step {
	return Step{
		Args:     []string{"mcp", "remove", "--scope", ClaudeScope, id},
		Optional: true,
	}
}

// Script renders the Claude Code setup sequence as a POSIX shell script.
// The output depends only on its inputs so repeated applies are stable.
func Script(project string, cfg *Config) []byte {
	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	fmt.Fprintf(&b, "# Claude Code MCP configuration for %s\n", oneLine(project))
	b.WriteString("# Generated by mcpm. Safe to re-run: each server is removed, then added.\n")
	b.WriteString("set -e\n")

	for _, st := range ClaudeSteps(cfg) {
		line := shell.Join(append([]string{ClaudeBinary}, st.Args...)...)
		if st.Optional {
			b.WriteString("\n")
			line += " >/dev/null 2>&1 || true"
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return []byte(b.String())
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func oneLine(s string) string {
	return strings.NewReplacer("\n", " ", "\r", " ").Replace(s)
}
