package ide

import (
	"context"
	"log/slog"
	"strings"

	"github.com/thoreinstein/mcpm/internal/catalog"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/merge"
	"github.com/thoreinstein/mcpm/internal/render"
	"github.com/thoreinstein/mcpm/internal/shell"
	"github.com/thoreinstein/mcpm/pkg/fileutil"
)

// Found is the set of server ids one IDE already configures.
type Found struct {
	IDE     string
	Path    string
	Servers []string
}

// Discovery reads the managed key of existing IDE configs.
type Discovery struct {
	Runner shell.Runner
	Logger *slog.Logger
}

// Discover returns the server ids each IDE config lists, skipping IDEs
// with no servers. Unreadable or malformed files are logged and skipped.
func (d *Discovery) Discover(ctx context.Context, ides []catalog.IDE) []Found {
	var out []Found
	for _, ide := range ides {
		var ids []string
		var path string
		switch {
		case ide.Format == catalog.FormatScript:
			ids = d.claudeServers(ctx)
		case ide.ConfigPath != "":
			path = ide.ConfigPath
			var err error
			if ids, err = ManagedIDs(path, ide); err != nil {
				d.logger().Debug("skipping config", "ide", ide.ID, "path", path, "error", err)
				continue
			}
		}
		if len(ids) > 0 {
			out = append(out, Found{IDE: ide.ID, Path: path, Servers: ids})
		}
	}
	return out
}

// ManagedIDs returns the entry names under ide's managed key in path, in
// file order. A missing file yields no ids.
func ManagedIDs(path string, ide catalog.IDE) ([]string, error) {
	data, exists, err := fileutil.ReadOptional(path)
	if err != nil || !exists {
		return nil, err
	}
	codec, err := merge.CodecFor(ide.Format)
	if err != nil {
		return nil, err
	}
	doc, err := codec.Decode(data)
	if err != nil {
		return nil, err
	}
	v, ok := doc.Get(ide.Key())
	if !ok {
		return nil, nil
	}
	servers, err := codec.DecodeObject(v)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", ide.Key())
	}
	return servers.Keys(), nil
}

func (d *Discovery) claudeServers(ctx context.Context) []string {
	if d.Runner == nil {
		return nil
	}
	if _, err := d.Runner.LookPath(render.ClaudeBinary); err != nil {
		return nil
	}
	res, err := d.Runner.Run(ctx, render.ClaudeBinary, "mcp", "list")
	if err != nil {
		d.logger().Debug("claude mcp list failed", "error", err)
		return nil
	}
	return ParseClaudeList(res.Stdout)
}

// ParseClaudeList extracts server names from `claude mcp list` output,
// whose entries look like "name: command args - status".
func ParseClaudeList(out string) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		name, _, ok := strings.Cut(strings.TrimSpace(line), ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" || strings.ContainsAny(name, " \t") || seen[name] {
			continue
		}
		seen[name] = true
		ids = append(ids, name)
	}
	return ids
}

func (d *Discovery) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
