package apply

import (
	"bytes"
	"context"
	"io/fs"
	"log/slog"
	"os"

	"github.com/thoreinstein/mcpm/internal/backup"
	"github.com/thoreinstein/mcpm/internal/catalog"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/merge"
	"github.com/thoreinstein/mcpm/internal/paths"
	"github.com/thoreinstein/mcpm/internal/render"
	"github.com/thoreinstein/mcpm/internal/shell"
	"github.com/thoreinstein/mcpm/pkg/fileutil"
)

// Kind identifies what a target file is.
type Kind string

// Target kinds.
const (
	KindGlobal      Kind = "global"
	KindProject     Kind = "project"
	KindScript      Kind = "script"
	KindEnvTemplate Kind = "env-template"
)

// File modes for new targets. Existing files keep their mode.
const (
	ConfigPerm   fs.FileMode = 0o600
	ScriptPerm   fs.FileMode = 0o700
	TemplatePerm fs.FileMode = 0o644
)

// Options describes one apply.
type Options struct {
	// Root is the project root directory.
	Root string

	// Project names the project in generated headers.
	Project string

	// IDEs are the IDE target ids to write. Unknown ids are reported as
	// failed changes.
	IDEs []string

	// Servers are the selected server ids, used for the env template.
	Servers []string

	Rendered *render.Config

	// Remove lists server ids to delete from every managed key.
	Remove []string
}

// Change is the planned or committed write for one target file.
type Change struct {
	IDE  string
	Kind Kind
	Path string

	Action  merge.Action
	Content []byte
	Perm    fs.FileMode

	// Exists reports whether the file was present when planned.
	Exists bool

	// Merge holds entry-level detail for config targets.
	Merge *merge.Result

	// Malformed is set when existing content was unparsable and treated
	// as empty.
	Malformed error

	// Backup is the backup taken before the write, if any.
	Backup *backup.Manifest

	// Err is the per-target failure. A change with Err is never written.
	Err error
}

// Changed reports whether the change modifies the filesystem.
func (c *Change) Changed() bool {
	return c.Err == nil && c.Action != merge.ActionUnchanged
}

// Report is the outcome of Plan or Commit.
type Report struct {
	Changes []*Change

	// Claude holds the results of running the Claude Code setup steps.
	Claude []StepResult
}

// Failed returns changes that carry an error.
func (r *Report) Failed() []*Change {
	var out []*Change
	for _, c := range r.Changes {
		if c.Err != nil {
			out = append(out, c)
		}
	}
	return out
}

// Err joins every per-target error, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, c := range r.Failed() {
		errs = append(errs, errors.Wrapf(c.Err, "%s %s", c.IDE, c.Path))
	}
	for _, s := range r.Claude {
		if s.Err != nil && !s.Step.Optional {
			errs = append(errs, s.Err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

// Applier plans and commits writes for a catalog.
type Applier struct {
	cat     *catalog.Catalog
	backups *backup.Session
	logger  *slog.Logger
}

// New returns an Applier. A nil backups session disables backups and a nil
// logger means slog.Default.
func New(cat *catalog.Catalog, backups *backup.Session, logger *slog.Logger) *Applier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Applier{cat: cat, backups: backups, logger: logger}
}

// Plan computes every target write without modifying the filesystem.
func (a *Applier) Plan(opts Options) *Report {
	rep := &Report{}
	rendered := opts.Rendered
	if rendered == nil {
		rendered = &render.Config{}
	}

	for _, id := range opts.IDEs {
		ide, ok := a.cat.IDE(id)
		if !ok {
			rep.Changes = append(rep.Changes, &Change{
				IDE: id,
				Err: errors.Wrapf(errors.ErrNotFound, "ide %q", id),
			})
			continue
		}

		if ide.ConfigPath != "" && ide.Format != catalog.FormatScript {
			rep.Changes = append(rep.Changes, a.planConfig(ide, KindGlobal, ide.ConfigPath, rendered, opts.Remove))
		}
		if !ide.ProjectConfig {
			continue
		}
		if ide.Format == catalog.FormatScript {
			rep.Changes = append(rep.Changes, planFile(ide.ID, KindScript,
				paths.ClaudeCodeScriptPath(opts.Root), render.Script(opts.Project, rendered), ScriptPerm))
			continue
		}
		local := paths.ProjectIDEConfigPath(opts.Root, ide.ID, ide.Format.Extension())
		rep.Changes = append(rep.Changes, a.planConfig(ide, KindProject, local, rendered, opts.Remove))
	}

	if tmpl := render.EnvTemplate(a.cat, opts.Servers); tmpl != nil {
		rep.Changes = append(rep.Changes, planFile("", KindEnvTemplate,
			paths.ProjectEnvTemplatePath(opts.Root), tmpl, TemplatePerm))
	}

	for _, c := range rep.Changes {
		a.logChange(c)
	}
	return rep
}

func (a *Applier) planConfig(ide catalog.IDE, kind Kind, path string, rendered *render.Config, remove []string) *Change {
	c := &Change{IDE: ide.ID, Kind: kind, Path: path, Perm: ConfigPerm}

	codec, err := merge.CodecFor(ide.Format)
	if err != nil {
		c.Err = err
		return c
	}

	existing, exists, perm, err := readTarget(path)
	if err != nil {
		c.Err = err
		return c
	}
	c.Exists = exists
	if exists {
		c.Perm = perm
	}

	res, err := merge.Plan(merge.Input{
		Existing: existing,
		Exists:   exists,
		Key:      ide.Key(),
		Rendered: rendered,
		Remove:   remove,
		Codec:    codec,
	})
	if err != nil {
		c.Err = err
		return c
	}
	c.Merge = res
	c.Action = res.Action
	c.Content = res.Content
	c.Malformed = res.Malformed
	return c
}

// planFile plans a whole-file target whose content is fully generated.
func planFile(ide string, kind Kind, path string, content []byte, perm fs.FileMode) *Change {
	c := &Change{IDE: ide, Kind: kind, Path: path, Content: content, Perm: perm}

	existing, exists, _, err := readTarget(path)
	if err != nil {
		c.Err = err
		return c
	}
	c.Exists = exists
	switch {
	case !exists:
		c.Action = merge.ActionCreate
	case bytes.Equal(existing, content):
		c.Action = merge.ActionUnchanged
	default:
		c.Action = merge.ActionUpdate
	}
	return c
}

func readTarget(path string) ([]byte, bool, fs.FileMode, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, 0, nil
		}
		return nil, false, 0, errors.Wrapf(err, "stat %s", path)
	}
	if info.IsDir() {
		return nil, false, 0, errors.Newf("%s is a directory", path)
	}
	data, err := fileutil.ReadFile(path)
	if err != nil {
		return nil, false, 0, err
	}
	return data, true, info.Mode().Perm(), nil
}

// Commit writes every changed target of rep. Existing global files are
// backed up first; a failed backup skips that target.
func (a *Applier) Commit(rep *Report) *Report {
	for _, c := range rep.Changes {
		if !c.Changed() {
			continue
		}

		if c.Kind == KindGlobal && c.Exists {
			m, err := a.backups.EnsureBackedUp(c.IDE, []string{c.Path})
			if err != nil {
				c.Err = err
				a.logger.Warn("backup failed, skipping write", "ide", c.IDE, "path", c.Path, "error", err)
				continue
			}
			if m != nil {
				c.Backup = m
				a.logger.Debug("backed up config", "ide", c.IDE, "backup", m.ID)
			}
		}

		if err := fileutil.WriteFile(c.Path, c.Content, c.Perm); err != nil {
			c.Err = errors.Wrapf(err, "writing %s", c.Path)
			a.logger.Warn("write failed", "ide", c.IDE, "path", c.Path, "error", err)
			continue
		}
		a.logger.Info("wrote config", "ide", c.IDE, "path", c.Path, "action", string(c.Action))
	}
	return rep
}

// Run plans and, unless dryRun is set, commits.
func (a *Applier) Run(opts Options, dryRun bool) *Report {
	rep := a.Plan(opts)
	if dryRun {
		return rep
	}
	return a.Commit(rep)
}

func (a *Applier) logChange(c *Change) {
	if c.Err != nil {
		a.logger.Warn("target skipped", "ide", c.IDE, "path", c.Path, "error", c.Err)
		return
	}
	if c.Malformed != nil {
		a.logger.Warn("existing config is malformed, treating as empty", "ide", c.IDE, "path", c.Path, "error", c.Malformed)
	}
	a.logger.Debug("planned", "ide", c.IDE, "kind", string(c.Kind), "path", c.Path, "action", string(c.Action))
}

// StepResult is the outcome of one Claude Code CLI step.
type StepResult struct {
	Step render.Step
	Err  error
}

// ExecClaude runs the Claude Code setup sequence for rendered, preceded by
// removal of ids in remove. A missing claude CLI fails with
// shell.ErrNotInstalled before any step runs. Optional step failures are
// recorded but do not stop the sequence.
func ExecClaude(ctx context.Context, runner shell.Runner, rendered *render.Config, remove []string) ([]StepResult, error) {
	if _, err := runner.LookPath(render.ClaudeBinary); err != nil {
		return nil, errors.Wrap(shell.ErrNotInstalled, render.ClaudeBinary)
	}

	steps := render.ClaudeRemoveSteps(remove)
	if rendered != nil {
		steps = append(steps, render.ClaudeSteps(rendered)...)
	}

	results := make([]StepResult, 0, len(steps))
	for _, st := range steps {
		_, err := runner.Run(ctx, render.ClaudeBinary, st.Args...)
		results = append(results, StepResult{Step: st, Err: err})
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
	}
	return results, nil
}
