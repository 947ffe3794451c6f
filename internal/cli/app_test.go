package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/thoreinstein/mcpm/internal/catalog"
	"github.com/thoreinstein/mcpm/internal/config"
	"github.com/thoreinstein/mcpm/internal/env"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/shell"
	"github.com/thoreinstein/mcpm/internal/shell/mocks"
)

func notInstalled(t *testing.T) *mocks.MockRunner {
	t.Helper()
	r := mocks.NewMockRunner(t)
	r.EXPECT().LookPath(mock.Anything).Return("", shell.ErrNotInstalled).Maybe()
	return r
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.BundlesFile = filepath.Join(t.TempDir(), "bundles.json")
	return cfg
}

func TestNewApp(t *testing.T) {
	home := t.TempDir()
	root := t.TempDir()
	cfg := testConfig(t)

	app, err := NewApp(root, cfg, nil, WithHome(home), WithRunner(notInstalled(t)), WithBackupDir(t.TempDir()))
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}

	if app.Root != root {
		t.Errorf("Root = %q, want %q", app.Root, root)
	}
	if app.Projects.Root() != root {
		t.Errorf("Projects.Root() = %q", app.Projects.Root())
	}
	if app.Bundles.Path() != cfg.BundlesFile {
		t.Errorf("Bundles.Path() = %q, want %q", app.Bundles.Path(), cfg.BundlesFile)
	}
	ide, ok := app.Catalog.IDE(catalog.IDECursor)
	if !ok || !strings.HasPrefix(ide.ConfigPath, home) {
		t.Errorf("cursor config %q not under home %q", ide.ConfigPath, home)
	}
	if app.Backups == nil {
		t.Error("Backups is nil with backups enabled")
	}
	if app.Backups.RetentionCount() != cfg.Backup.Retention {
		t.Errorf("RetentionCount() = %d, want %d", app.Backups.RetentionCount(), cfg.Backup.Retention)
	}
}

func TestNewApp_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	app, err := NewApp("", nil, nil, WithHome(t.TempDir()))
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	wd, _ := os.Getwd()
	if app.Root != wd {
		t.Errorf("Root = %q, want working directory %q", app.Root, wd)
	}
	if app.Config == nil || app.Logger == nil {
		t.Error("expected default config and logger")
	}
}

func TestNewApp_BackupsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Backup.Enabled = false

	app, err := NewApp(t.TempDir(), cfg, nil, WithHome(t.TempDir()), WithBackupDir(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}
	if app.Backups != nil {
		t.Error("Backups should be nil when disabled")
	}
	if app.Service(Secrets{}).Applier == nil {
		t.Error("Service without backups has no applier")
	}
}

func TestSources(t *testing.T) {
	cfg := testConfig(t)
	cfg.Doppler.Project = "proj"

	app, err := NewApp(t.TempDir(), cfg, nil, WithHome(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}

	sources := app.Sources(Secrets{})
	if len(sources) != 1 {
		t.Fatalf("Sources() without doppler = %d sources, want 1", len(sources))
	}
	if _, ok := sources[0].(*env.DotEnv); !ok {
		t.Errorf("Sources()[0] = %T, want *env.DotEnv", sources[0])
	}

	sources = app.Sources(Secrets{Doppler: true, DopplerConfig: "dev"})
	if len(sources) != 2 {
		t.Fatalf("Sources() with doppler = %d sources, want 2", len(sources))
	}
	if _, ok := sources[0].(*env.Doppler); !ok {
		t.Errorf("Sources()[0] = %T, want *env.Doppler first", sources[0])
	}
}

func TestSecretsOverlay(t *testing.T) {
	cfg := testConfig(t)
	cfg.Doppler = config.DopplerConfig{Enabled: true, Project: "cfg-proj", Config: "cfg-conf"}
	app, err := NewApp(t.TempDir(), cfg, nil, WithHome(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}

	got := app.secrets(Secrets{DopplerConfig: "flag-conf"})
	want := Secrets{Doppler: true, DopplerProject: "cfg-proj", DopplerConfig: "flag-conf"}
	if got != want {
		t.Errorf("secrets() = %+v, want %+v", got, want)
	}
	if !app.DopplerEnabled(Secrets{}) {
		t.Error("DopplerEnabled() = false with config enabled")
	}
}

func TestDefaultIDEs(t *testing.T) {
	home := t.TempDir()
	cfg := testConfig(t)
	cfg.DefaultIDEs = []string{catalog.IDECursor, catalog.IDEWindsurf}

	app, err := NewApp(t.TempDir(), cfg, nil, WithHome(home), WithRunner(notInstalled(t)))
	if err != nil {
		t.Fatal(err)
	}

	if got := app.DefaultIDEs(); !slices.Equal(got, cfg.DefaultIDEs) {
		t.Errorf("nothing installed: DefaultIDEs() = %v, want %v", got, cfg.DefaultIDEs)
	}

	if err := os.MkdirAll(filepath.Join(home, ".codeium", "windsurf"), 0o755); err != nil {
		t.Fatal(err)
	}
	if got := app.DefaultIDEs(); !slices.Equal(got, []string{catalog.IDEWindsurf}) {
		t.Errorf("windsurf installed: DefaultIDEs() = %v, want [windsurf]", got)
	}
}

func TestSaveBundle(t *testing.T) {
	app, err := NewApp(t.TempDir(), testConfig(t), nil, WithHome(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}

	var errOut bytes.Buffer
	b, err := app.SaveBundle(&errOut, "mine", "desc", []string{"github", "filesystem"})
	if err != nil {
		t.Fatalf("SaveBundle() error = %v", err)
	}
	if !b.Custom || b.Category != "custom" {
		t.Errorf("bundle = %+v", b)
	}

	_, err = app.SaveBundle(&errOut, "essential", "", []string{"ghost"})
	if errors.ExitCode(err) != errors.ExitUser {
		t.Fatalf("SaveBundle(invalid) exit code = %d, want %d", errors.ExitCode(err), errors.ExitUser)
	}
	for _, want := range []string{"ghost", "essential"} {
		if !strings.Contains(errOut.String(), want) {
			t.Errorf("report %q missing %q", errOut.String(), want)
		}
	}
}
