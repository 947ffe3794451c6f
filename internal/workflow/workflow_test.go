package workflow

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/thoreinstein/mcpm/internal/apply"
	"github.com/thoreinstein/mcpm/internal/bundle"
	"github.com/thoreinstein/mcpm/internal/catalog"
	"github.com/thoreinstein/mcpm/internal/env"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/project"
)

type harness struct {
	svc  *Service
	home string
	root string
}

func newHarness(t *testing.T) harness {
	t.Helper()
	home := t.TempDir()
	root := filepath.Join(t.TempDir(), "demo")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	cat := catalog.Builtin(home, "linux")
	clock := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	svc := &Service{
		Catalog:  cat,
		Bundles:  bundle.NewStore(filepath.Join(home, "bundles.json"), cat),
		Projects: project.NewStore(root),
		Applier:  apply.New(cat, nil, nil),
		Sources:  []env.Source{&env.DotEnv{Root: root, Files: []string{".mcp/.env", ".env"}}},
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	}
	return harness{svc: svc, home: home, root: root}
}

func (h harness) cursorServers(t *testing.T) map[string]map[string]any {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(h.home, ".cursor", "mcp.json"))
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		MCPServers map[string]map[string]any `json:"mcpServers"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	return doc.MCPServers
}

func TestInit_EssentialCursor(t *testing.T) {
	h := newHarness(t)

	out, err := h.svc.Init(context.Background(), InitOptions{
		Bundle: "essential",
		IDEs:   []string{catalog.IDECursor},
	})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := out.Report.Err(); err != nil {
		t.Fatalf("report error = %v", err)
	}

	servers := h.cursorServers(t)
	if len(servers) != 2 {
		t.Errorf("mcpServers has %d entries, want 2", len(servers))
	}
	for id, spec := range servers {
		if _, ok := spec["env"]; ok {
			t.Errorf("%s has an env key", id)
		}
	}

	d, err := h.svc.Projects.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(d.Servers, []string{"filesystem", "sequential-thinking"}) {
		t.Errorf("Servers = %v", d.Servers)
	}
	if !slices.Equal(d.IDEs, []string{"cursor"}) {
		t.Errorf("IDEs = %v", d.IDEs)
	}
	if !d.Created.Equal(d.Updated) {
		t.Errorf("created %v != updated %v", d.Created, d.Updated)
	}
	if d.Name != "demo" {
		t.Errorf("Name = %q, want directory name", d.Name)
	}
}

func TestInit_ExistingProject(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	opts := InitOptions{Bundle: "essential", IDEs: []string{catalog.IDECursor}}

	if _, err := h.svc.Init(ctx, opts); err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.Init(ctx, opts); !errors.Is(err, errors.ErrProjectExists) {
		t.Errorf("second Init() error = %v, want ErrProjectExists", err)
	}

	opts.Force = true
	out, err := h.svc.Init(ctx, opts)
	if err != nil || out.Created {
		t.Errorf("forced Init() = %+v, %v", out, err)
	}
}

func TestInit_DropsUnknownIDs(t *testing.T) {
	h := newHarness(t)

	out, err := h.svc.Init(context.Background(), InitOptions{
		Servers: []string{"filesystem", "bogus"},
		IDEs:    []string{catalog.IDEWarp, "vim"},
	})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if !slices.Equal(out.Project.Servers, []string{"filesystem"}) {
		t.Errorf("Servers = %v", out.Project.Servers)
	}
	if !slices.Equal(out.Unknown, []string{"bogus"}) || !slices.Equal(out.UnknownIDEs, []string{"vim"}) {
		t.Errorf("Unknown = %v, UnknownIDEs = %v", out.Unknown, out.UnknownIDEs)
	}
	if len(out.Warnings()) != 2 {
		t.Errorf("Warnings() = %v", out.Warnings())
	}
}

func TestInit_Errors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.svc.Init(ctx, InitOptions{Servers: []string{"bogus"}, IDEs: []string{"cursor"}}); !errors.Is(err, ErrNoServers) {
		t.Errorf("no servers error = %v", err)
	}
	if _, err := h.svc.Init(ctx, InitOptions{Bundle: "essential"}); !errors.Is(err, ErrNoIDEs) {
		t.Errorf("no ides error = %v", err)
	}
	if _, err := h.svc.Init(ctx, InitOptions{Bundle: "nope", IDEs: []string{"cursor"}}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("unknown bundle error = %v", err)
	}
	if h.svc.Projects.Exists() {
		t.Error("failed Init wrote project state")
	}
}

func TestInit_DryRun(t *testing.T) {
	h := newHarness(t)

	out, err := h.svc.Init(context.Background(), InitOptions{
		Bundle:       "essential",
		IDEs:         []string{catalog.IDECursor},
		ApplyOptions: ApplyOptions{DryRun: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !out.DryRun || len(out.Report.Changes) == 0 {
		t.Errorf("outcome = %+v", out)
	}
	if h.svc.Projects.Exists() {
		t.Error("dry run saved project state")
	}
	if _, err := os.Stat(filepath.Join(h.home, ".cursor")); !os.IsNotExist(err) {
		t.Error("dry run wrote IDE config")
	}
}

func TestAdd(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.svc.Init(ctx, InitOptions{Bundle: "essential", IDEs: []string{catalog.IDECursor}}); err != nil {
		t.Fatal(err)
	}
	before, _ := h.svc.Projects.Load()

	out, err := h.svc.Add(ctx, []string{"github", "filesystem"}, ApplyOptions{
		Explicit: env.Explicit{"GITHUB_TOKEN": "from-flag"},
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if !slices.Equal(out.Added, []string{"github"}) {
		t.Errorf("Added = %v", out.Added)
	}

	servers := h.cursorServers(t)
	gh, ok := servers["github"]
	if !ok {
		t.Fatal("github not written")
	}
	if block := gh["env"].(map[string]any); block["GITHUB_TOKEN"] != "from-flag" {
		t.Errorf("env = %v", block)
	}

	after, _ := h.svc.Projects.Load()
	if !after.Updated.After(before.Updated) || !after.Created.Equal(before.Created) {
		t.Errorf("timestamps: before %+v after %+v", before, after)
	}
	if len(after.EnvVars) != 0 {
		t.Errorf("explicit values persisted: %v", after.EnvVars)
	}
}

func TestAdd_ExplicitBeatsDotEnv(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if err := os.MkdirAll(filepath.Join(h.root, ".mcp"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(h.root, ".mcp", ".env"), []byte("GITHUB_TOKEN=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.Init(ctx, InitOptions{Servers: []string{"github"}, IDEs: []string{catalog.IDECursor}}); err != nil {
		t.Fatal(err)
	}
	if got := h.cursorServers(t)["github"]["env"].(map[string]any)["GITHUB_TOKEN"]; got != "from-file" {
		t.Errorf("dotenv value = %v", got)
	}

	if _, err := h.svc.Add(ctx, []string{"github"}, ApplyOptions{Explicit: env.Explicit{"GITHUB_TOKEN": "explicit"}}); err != nil {
		t.Fatal(err)
	}
	if got := h.cursorServers(t)["github"]["env"].(map[string]any)["GITHUB_TOKEN"]; got != "explicit" {
		t.Errorf("GITHUB_TOKEN = %v, want explicit", got)
	}
}

func TestAdd_Glob(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.svc.Init(ctx, InitOptions{Servers: []string{"filesystem"}, IDEs: []string{catalog.IDEWarp}}); err != nil {
		t.Fatal(err)
	}

	out, err := h.svc.Add(ctx, []string{"seq*", "zzz*"}, ApplyOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(out.Added, []string{"sequential-thinking"}) || !slices.Equal(out.Unknown, []string{"zzz*"}) {
		t.Errorf("Added = %v, Unknown = %v", out.Added, out.Unknown)
	}
}

func TestAdd_OnlyUnknown(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.svc.Init(ctx, InitOptions{Bundle: "essential", IDEs: []string{catalog.IDECursor}}); err != nil {
		t.Fatal(err)
	}
	before, _ := h.svc.Projects.Load()

	out, err := h.svc.Add(ctx, []string{"bogus", "zzz*"}, ApplyOptions{})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if !slices.Equal(out.Unknown, []string{"zzz*", "bogus"}) {
		t.Errorf("Unknown = %v", out.Unknown)
	}
	if len(out.Added) != 0 || out.Report != nil {
		t.Errorf("Added = %v, Report = %v, want no change", out.Added, out.Report)
	}
	if out.Project == nil || out.Project.Name != before.Name {
		t.Errorf("Project = %+v", out.Project)
	}

	after, _ := h.svc.Projects.Load()
	if !after.Updated.Equal(before.Updated) || !slices.Equal(after.Servers, before.Servers) {
		t.Errorf("project changed: before %+v after %+v", before, after)
	}
}

func TestAdd_RequiresProject(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Add(context.Background(), []string{"github"}, ApplyOptions{})
	if !errors.Is(err, errors.ErrProjectNotInitialized) {
		t.Errorf("Add() error = %v, want ErrProjectNotInitialized", err)
	}
}

func TestAdd_CorruptStateIsFatal(t *testing.T) {
	h := newHarness(t)
	path := h.svc.Projects.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{broken"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := h.svc.Add(context.Background(), []string{"github"}, ApplyOptions{})
	if !errors.Is(err, errors.ErrCorruptState) {
		t.Errorf("Add() error = %v, want ErrCorruptState", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "{broken" {
		t.Error("corrupt state was overwritten")
	}
}

func TestRemove(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.svc.Init(ctx, InitOptions{Bundle: "essential", IDEs: []string{catalog.IDECursor}}); err != nil {
		t.Fatal(err)
	}

	out, err := h.svc.Remove(ctx, []string{"filesystem", "github"}, ApplyOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(out.Removed, []string{"filesystem"}) {
		t.Errorf("Removed = %v", out.Removed)
	}
	servers := h.cursorServers(t)
	if _, ok := servers["filesystem"]; ok {
		t.Error("filesystem still configured")
	}
	if _, ok := servers["sequential-thinking"]; !ok {
		t.Error("sequential-thinking removed")
	}
}

func TestSync_AddsIDE(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.svc.Init(ctx, InitOptions{Bundle: "essential", IDEs: []string{catalog.IDECursor}}); err != nil {
		t.Fatal(err)
	}

	out, err := h.svc.Sync(ctx, []string{catalog.IDEWindsurf}, ApplyOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(out.AddedIDEs, []string{"windsurf"}) {
		t.Errorf("AddedIDEs = %v", out.AddedIDEs)
	}
	if _, err := os.Stat(filepath.Join(h.home, ".codeium", "windsurf", "mcp_config.json")); err != nil {
		t.Errorf("windsurf config not written: %v", err)
	}
}

func TestMigrate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	out, err := h.svc.Migrate(ctx, MigrateOptions{
		Servers: []string{"github", "my-private-server"},
		IDEs:    []string{catalog.IDECursor},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Created || !slices.Equal(out.Project.Servers, []string{"github"}) {
		t.Errorf("outcome = %+v", out)
	}

	out, err = h.svc.Migrate(ctx, MigrateOptions{Servers: []string{"filesystem"}, IDEs: []string{catalog.IDEWarp}})
	if err != nil {
		t.Fatal(err)
	}
	if out.Created {
		t.Error("second migrate recreated the project")
	}
	if !slices.Equal(out.Project.Servers, []string{"github", "filesystem"}) {
		t.Errorf("Servers = %v", out.Project.Servers)
	}
	if !slices.Equal(out.Project.IDEs, []string{"cursor", "warp"}) {
		t.Errorf("IDEs = %v", out.Project.IDEs)
	}
}

func TestResolve(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.svc.Init(ctx, InitOptions{Servers: []string{"n8n"}, IDEs: []string{catalog.IDECursor}}); err != nil {
		t.Fatal(err)
	}

	_, res, err := h.svc.Resolve(ctx, env.Explicit{"N8N_API_KEY": "k"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Missing) != 1 || !slices.Equal(res.Missing[0].Keys, []string{"N8N_BASE_URL"}) {
		t.Errorf("Missing = %+v", res.Missing)
	}
}
