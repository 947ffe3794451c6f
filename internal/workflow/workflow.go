package workflow

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/thoreinstein/mcpm/internal/apply"
	"github.com/thoreinstein/mcpm/internal/bundle"
	"github.com/thoreinstein/mcpm/internal/catalog"
	"github.com/thoreinstein/mcpm/internal/env"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/project"
	"github.com/thoreinstein/mcpm/internal/render"
	"github.com/thoreinstein/mcpm/internal/shell"
)

// ErrNoServers indicates a project would end up with nothing to configure.
var ErrNoServers = errors.New("no valid servers selected")

// ErrNoIDEs indicates no valid IDE target was selected.
var ErrNoIDEs = errors.New("no valid IDE selected")

// Service wires the stores and engines used by every use case.
type Service struct {
	Catalog  *catalog.Catalog
	Bundles  *bundle.Store
	Projects *project.Store
	Applier  *apply.Applier

	// Sources are consulted after explicit values, highest priority first.
	Sources []env.Source

	// Runner executes the Claude Code CLI when ExecClaude is requested.
	Runner shell.Runner

	Logger *slog.Logger
	Now    func() time.Time
}

// ApplyOptions are shared by every mutating use case.
type ApplyOptions struct {
	DryRun bool

	// Explicit values take precedence over every other source.
	Explicit env.Explicit

	// ExecClaude also registers servers through the claude CLI when the
	// project targets Claude Code.
	ExecClaude bool
}

// Outcome reports what a use case did or, for a dry run, would do.
type Outcome struct {
	Project *project.Descriptor

	// Created is set when the project state did not exist before.
	Created bool

	// Selection changes.
	Added       []string
	Removed     []string
	AddedIDEs   []string
	Unknown     []string
	UnknownIDEs []string

	Env      *env.Result
	Rendered *render.Config
	Report   *apply.Report
	DryRun   bool

	// ClaudeErr is set when running the claude CLI failed as a whole.
	ClaudeErr error
}

// Warnings flattens non-fatal problems for display.
func (o *Outcome) Warnings() []string {
	var out []string
	for _, id := range o.Unknown {
		out = append(out, "unknown server dropped: "+id)
	}
	for _, id := range o.UnknownIDEs {
		out = append(out, "unknown IDE dropped: "+id)
	}
	if o.Rendered != nil {
		for _, id := range o.Rendered.Withheld {
			out = append(out, "env block withheld, missing required keys: "+id)
		}
	}
	if o.Report != nil {
		for _, c := range o.Report.Changes {
			if c.Malformed != nil {
				out = append(out, "malformed config treated as empty: "+c.Path)
			}
		}
		for _, c := range o.Report.Failed() {
			out = append(out, c.IDE+": "+c.Err.Error())
		}
	}
	if o.ClaudeErr != nil {
		out = append(out, "claude CLI: "+o.ClaudeErr.Error())
	}
	return out
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// InitOptions configures Init.
type InitOptions struct {
	ApplyOptions

	// Name defaults to the project directory name.
	Name string

	// Bundle is a built-in or custom bundle name. Optional.
	Bundle string

	// Servers are extra server ids or glob patterns.
	Servers []string

	IDEs []string

	// Force replaces an existing project.
	Force bool
}

// Init creates a project from a bundle and/or servers and applies it.
func (s *Service) Init(ctx context.Context, opts InitOptions) (*Outcome, error) {
	out := &Outcome{DryRun: opts.DryRun, Created: true}

	if s.Projects.Exists() {
		if !opts.Force {
			return nil, errors.Wrapf(errors.ErrProjectExists, "%s", s.Projects.Path())
		}
		out.Created = false
	}

	var requested []string
	if opts.Bundle != "" {
		b, err := s.Bundles.Resolve(opts.Bundle)
		if err != nil {
			return nil, err
		}
		requested = append(requested, b.Servers...)
	}
	expanded, err := s.expand(opts.Servers, out)
	if err != nil {
		return nil, err
	}
	requested = append(requested, expanded...)

	servers := s.validServers(requested, out)
	if len(servers) == 0 {
		return nil, ErrNoServers
	}
	ides := s.validIDEs(opts.IDEs, out)
	if len(ides) == 0 {
		return nil, ErrNoIDEs
	}

	name := opts.Name
	if name == "" {
		name = filepath.Base(s.Projects.Root())
	}
	d := project.New(name, servers, ides, s.now())
	out.Added = slices.Clone(d.Servers)
	out.AddedIDEs = slices.Clone(d.IDEs)

	return out, s.apply(ctx, d, nil, opts.ApplyOptions, out)
}

// Add adds servers to an existing project and re-applies. When nothing
// valid was requested the project is left untouched and the unknown ids
// are reported on the Outcome.
func (s *Service) Add(ctx context.Context, patterns []string, opts ApplyOptions) (*Outcome, error) {
	d, err := s.Projects.Load()
	if err != nil {
		return nil, err
	}
	out := &Outcome{DryRun: opts.DryRun}

	ids, err := s.expand(patterns, out)
	if err != nil {
		return nil, err
	}
	valid := s.validServers(ids, out)
	if len(valid) == 0 {
		out.Project = d
		return out, nil
	}
	out.Added = d.AddServers(valid...)
	if len(out.Added) > 0 {
		d.Touch(s.now())
	}
	return out, s.apply(ctx, d, nil, opts, out)
}

// Remove drops servers from the project and deletes their entries from
// every managed IDE config.
func (s *Service) Remove(ctx context.Context, patterns []string, opts ApplyOptions) (*Outcome, error) {
	d, err := s.Projects.Load()
	if err != nil {
		return nil, err
	}
	out := &Outcome{DryRun: opts.DryRun}

	ids, err := s.expand(patterns, out)
	if err != nil {
		return nil, err
	}
	out.Removed = d.RemoveServers(ids...)
	for _, id := range ids {
		if !slices.Contains(out.Removed, id) {
			s.logger().Warn("server not in project", "server", id)
		}
	}
	if len(out.Removed) > 0 {
		d.Touch(s.now())
	}
	return out, s.apply(ctx, d, out.Removed, opts, out)
}

// Sync adds IDE targets to the project and re-applies every target.
func (s *Service) Sync(ctx context.Context, ides []string, opts ApplyOptions) (*Outcome, error) {
	d, err := s.Projects.Load()
	if err != nil {
		return nil, err
	}
	out := &Outcome{DryRun: opts.DryRun}

	out.AddedIDEs = d.AddIDEs(s.validIDEs(ides, out)...)
	d.Touch(s.now())
	return out, s.apply(ctx, d, nil, opts, out)
}

// MigrateOptions configures Migrate.
type MigrateOptions struct {
	ApplyOptions

	// Name is used when a new project is created.
	Name string

	// Servers are the server ids found in existing IDE configs.
	Servers []string

	// IDEs are the targets the servers were found in.
	IDEs []string
}

// Migrate adopts servers found in existing IDE configs. It creates the
// project when missing and otherwise extends it with the union.
func (s *Service) Migrate(ctx context.Context, opts MigrateOptions) (*Outcome, error) {
	out := &Outcome{DryRun: opts.DryRun}
	servers := s.validServers(opts.Servers, out)
	ides := s.validIDEs(opts.IDEs, out)

	d, err := s.Projects.Load()
	switch {
	case errors.Is(err, errors.ErrProjectNotInitialized):
		if len(servers) == 0 {
			return nil, ErrNoServers
		}
		if len(ides) == 0 {
			return nil, ErrNoIDEs
		}
		name := opts.Name
		if name == "" {
			name = filepath.Base(s.Projects.Root())
		}
		d = project.New(name, servers, ides, s.now())
		out.Created = true
		out.Added = slices.Clone(d.Servers)
		out.AddedIDEs = slices.Clone(d.IDEs)
	case err != nil:
		return nil, err
	default:
		out.Added = d.AddServers(servers...)
		out.AddedIDEs = d.AddIDEs(ides...)
		if len(out.Added)+len(out.AddedIDEs) > 0 {
			d.Touch(s.now())
		}
	}
	return out, s.apply(ctx, d, nil, opts.ApplyOptions, out)
}

// Resolve computes env values for the project's servers without writing.
func (s *Service) Resolve(ctx context.Context, explicit env.Explicit) (*project.Descriptor, *env.Result, error) {
	d, err := s.Projects.Load()
	if err != nil {
		return nil, nil, err
	}
	return d, s.resolver(explicit).Resolve(ctx, d.Servers), nil
}

func (s *Service) resolver(explicit env.Explicit) *env.Resolver {
	sources := make([]env.Source, 0, len(s.Sources)+1)
	if len(explicit) > 0 {
		sources = append(sources, explicit)
	}
	sources = append(sources, s.Sources...)
	return env.NewResolver(s.Catalog, s.logger(), sources...)
}

// apply runs the shared pipeline for d and saves it unless dry-run is set.
func (s *Service) apply(ctx context.Context, d *project.Descriptor, remove []string, opts ApplyOptions, out *Outcome) error {
	d.Servers = s.validServers(d.Servers, out)
	d.IDEs = s.validIDEs(d.IDEs, out)
	out.Project = d

	out.Env = s.resolver(opts.Explicit).Resolve(ctx, d.Servers)
	for _, m := range out.Env.Missing {
		s.logger().Warn("missing required env", "server", m.Server, "vars", m.Keys)
	}

	out.Rendered = render.Render(s.Catalog, d.Servers, out.Env.Values)
	out.Report = s.Applier.Run(apply.Options{
		Root:     s.Projects.Root(),
		Project:  d.Name,
		IDEs:     d.IDEs,
		Servers:  d.Servers,
		Rendered: out.Rendered,
		Remove:   remove,
	}, opts.DryRun)

	if opts.DryRun {
		return nil
	}

	if opts.ExecClaude && slices.Contains(d.IDEs, catalog.IDEClaudeCode) && s.Runner != nil {
		results, err := apply.ExecClaude(ctx, s.Runner, out.Rendered, remove)
		out.Report.Claude = results
		out.ClaudeErr = err
	}

	if err := s.Projects.Save(d); err != nil {
		return errors.Wrap(err, "saving project state")
	}
	return nil
}

func (s *Service) expand(patterns []string, out *Outcome) ([]string, error) {
	ids, unmatched, err := s.Catalog.ExpandPatterns(patterns)
	if err != nil {
		return nil, err
	}
	for _, p := range unmatched {
		s.logger().Warn("pattern matched no servers", "pattern", p)
		out.Unknown = appendUnique(out.Unknown, p)
	}
	return ids, nil
}

// validServers drops unknown ids with a warning.
func (s *Service) validServers(ids []string, out *Outcome) []string {
	valid, unknown := s.Catalog.ValidateServers(ids)
	for _, id := range unknown {
		s.logger().Warn("unknown server dropped", "server", id)
		out.Unknown = appendUnique(out.Unknown, id)
	}
	return valid
}

// validIDEs drops unknown IDE ids with a warning.
func (s *Service) validIDEs(ids []string, out *Outcome) []string {
	valid, unknown := s.Catalog.ValidateIDEs(ids)
	for _, id := range unknown {
		s.logger().Warn("unknown IDE dropped", "ide", id)
		out.UnknownIDEs = appendUnique(out.UnknownIDEs, id)
	}
	return valid
}

func appendUnique(dst []string, id string) []string {
	if slices.Contains(dst, id) {
		return dst
	}
	return append(dst, id)
}
