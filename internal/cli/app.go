// Package cli wires the mcpm stores and engines together for the command
// tree and holds the terminal helpers shared by commands.
package cli

import (
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"github.com/thoreinstein/mcpm/internal/apply"
	"github.com/thoreinstein/mcpm/internal/backup"
	"github.com/thoreinstein/mcpm/internal/bundle"
	"github.com/thoreinstein/mcpm/internal/catalog"
	"github.com/thoreinstein/mcpm/internal/config"
	"github.com/thoreinstein/mcpm/internal/env"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/ide"
	"github.com/thoreinstein/mcpm/internal/paths"
	"github.com/thoreinstein/mcpm/internal/project"
	"github.com/thoreinstein/mcpm/internal/shell"
	"github.com/thoreinstein/mcpm/internal/validator"
	"github.com/thoreinstein/mcpm/internal/workflow"
)

// App holds everything a command needs for one project directory.
type App struct {
	Root     string
	Config   *config.Config
	Catalog  *catalog.Catalog
	Bundles  *bundle.Store
	Projects *project.Store
	Runner   shell.Runner
	Logger   *slog.Logger

	// Backups is nil when backups are disabled.
	Backups *backup.Manager

	Home string
	GOOS string
}

// Option customizes NewApp.
type Option func(*App)

// WithRunner replaces the process runner.
func WithRunner(r shell.Runner) Option {
	return func(a *App) { a.Runner = r }
}

// WithHome roots IDE config paths at home instead of the user's home.
func WithHome(home string) Option {
	return func(a *App) { a.Home = home }
}

// WithBackupDir stores backups under dir.
func WithBackupDir(dir string) Option {
	return func(a *App) {
		if a.Backups != nil {
			a.Backups = backup.NewManager(backup.WithBackupDir(dir), backup.WithRetentionCount(a.Config.Backup.Retention))
		}
	}
}

// NewApp builds an App for the project at root. A nil cfg uses defaults.
func NewApp(root string, cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving project directory %s", root)
	}

	a := &App{
		Root:   abs,
		Config: cfg,
		Runner: shell.NewExecRunner(),
		Logger: logger,
		Home:   paths.Home(),
		GOOS:   runtime.GOOS,
	}
	if cfg.Backup.Enabled {
		a.Backups = backup.NewManager(backup.WithRetentionCount(cfg.Backup.Retention))
	}
	for _, opt := range opts {
		opt(a)
	}

	a.Catalog = catalog.Builtin(a.Home, a.GOOS)
	bundlesFile := cfg.BundlesFile
	if bundlesFile == "" {
		bundlesFile = paths.DefaultBundlesFile()
	}
	a.Bundles = bundle.NewStore(paths.ExpandHome(bundlesFile), a.Catalog)
	a.Projects = project.NewStore(abs)
	return a, nil
}

// Secrets selects the secrets-manager source for one command.
type Secrets struct {
	Doppler        bool
	DopplerProject string
	DopplerConfig  string
}

// secrets overlays flag values on the config file settings.
func (a *App) secrets(s Secrets) Secrets {
	out := Secrets{
		Doppler:        s.Doppler || a.Config.Doppler.Enabled,
		DopplerProject: a.Config.Doppler.Project,
		DopplerConfig:  a.Config.Doppler.Config,
	}
	if s.DopplerProject != "" {
		out.DopplerProject = s.DopplerProject
	}
	if s.DopplerConfig != "" {
		out.DopplerConfig = s.DopplerConfig
	}
	return out
}

// Doppler returns the Doppler source configured by s and the config file.
func (a *App) Doppler(s Secrets) *env.Doppler {
	s = a.secrets(s)
	return env.NewDoppler(a.Runner, s.DopplerProject, s.DopplerConfig, a.Config.Doppler.Timeout, a.Logger)
}

// DopplerEnabled reports whether Doppler is consulted for s.
func (a *App) DopplerEnabled(s Secrets) bool {
	return a.secrets(s).Doppler
}

// Sources returns the env sources after explicit values: Doppler when
// enabled, then the project .env files.
func (a *App) Sources(s Secrets) []env.Source {
	var sources []env.Source
	if a.DopplerEnabled(s) {
		sources = append(sources, a.Doppler(s))
	}
	sources = append(sources, &env.DotEnv{Root: a.Root, Files: a.Config.EnvFiles, Logger: a.Logger})
	return sources
}

// Service returns the workflow service for one command invocation. Each
// call starts a new backup session so every IDE is backed up once.
func (a *App) Service(s Secrets) *workflow.Service {
	var session *backup.Session
	if a.Backups != nil {
		session = backup.NewSession(a.Backups)
	}
	return &workflow.Service{
		Catalog:  a.Catalog,
		Bundles:  a.Bundles,
		Projects: a.Projects,
		Applier:  apply.New(a.Catalog, session, a.Logger),
		Sources:  a.Sources(s),
		Runner:   a.Runner,
		Logger:   a.Logger,
		Now:      time.Now,
	}
}

// Detector returns an IDE detector using the app runner.
func (a *App) Detector() *ide.Detector {
	return ide.NewDetector(a.Runner, a.GOOS)
}

// Discovery returns the managed-id reader used by migrate.
func (a *App) Discovery() *ide.Discovery {
	return &ide.Discovery{Runner: a.Runner, Logger: a.Logger}
}

// DefaultIDEs returns the IDEs to use when none were requested: installed
// IDEs that are also configured defaults, else the configured defaults.
func (a *App) DefaultIDEs() []string {
	installed := a.Detector().InstalledIDs(a.Catalog)
	var both []string
	for _, id := range a.Config.DefaultIDEs {
		if slices.Contains(installed, id) {
			both = append(both, id)
		}
	}
	if len(both) > 0 {
		return both
	}
	return a.Config.DefaultIDEs
}

// SaveBundle validates and stores a custom bundle. When the definition is
// rejected every issue is reported to errOut and a user error is returned.
func (a *App) SaveBundle(errOut io.Writer, name, description string, servers []string) (catalog.Bundle, error) {
	res := validator.Bundle(a.Bundles, name, servers)
	if res.HasErrors() {
		_ = validator.NewReporter(errOut, validator.FormatText).Report(res)
		return catalog.Bundle{}, errors.NewUserError(res.Err(), "Run: mcpm list --available --bundles")
	}
	b, err := a.Bundles.Save(name, description, servers)
	if err != nil {
		return catalog.Bundle{}, MapError(err)
	}
	return b, nil
}
