package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/thoreinstein/mcpm/internal/errors"
)

var now = time.Date(2026, 3, 14, 9, 26, 53, 589_793_238, time.UTC)

func TestNew(t *testing.T) {
	d := New("demo", []string{"filesystem", "github", "filesystem"}, []string{"cursor", "cursor"}, now)

	if _, err := uuid.Parse(d.ID); err != nil {
		t.Errorf("ID %q is not a UUID: %v", d.ID, err)
	}
	if !slices.Equal(d.Servers, []string{"filesystem", "github"}) {
		t.Errorf("Servers = %v", d.Servers)
	}
	if !slices.Equal(d.IDEs, []string{"cursor"}) {
		t.Errorf("IDEs = %v", d.IDEs)
	}
	if !d.Created.Equal(d.Updated) {
		t.Errorf("Created %v != Updated %v", d.Created, d.Updated)
	}
	if d.Created.Nanosecond()%int(time.Millisecond) != 0 {
		t.Errorf("Created not truncated to milliseconds: %v", d.Created)
	}
}

func TestDescriptor_AddRemove(t *testing.T) {
	d := New("demo", []string{"filesystem"}, nil, now)

	added := d.AddServers("github", "filesystem", "", "github", "context7")
	if !slices.Equal(added, []string{"github", "context7"}) {
		t.Errorf("added = %v", added)
	}
	if !slices.Equal(d.Servers, []string{"filesystem", "github", "context7"}) {
		t.Errorf("Servers = %v", d.Servers)
	}

	removed := d.RemoveServers("github", "bogus")
	if !slices.Equal(removed, []string{"github"}) {
		t.Errorf("removed = %v", removed)
	}
	if !slices.Equal(d.Servers, []string{"filesystem", "context7"}) {
		t.Errorf("Servers = %v", d.Servers)
	}

	if got := d.AddIDEs("warp", "warp"); !slices.Equal(got, []string{"warp"}) {
		t.Errorf("AddIDEs = %v", got)
	}
}

func TestDescriptor_Clone(t *testing.T) {
	d := New("demo", []string{"filesystem"}, []string{"cursor"}, now)
	d.EnvVars["A"] = "1"

	c := d.Clone()
	c.Servers[0] = "changed"
	c.EnvVars["A"] = "2"

	if d.Servers[0] != "filesystem" || d.EnvVars["A"] != "1" {
		t.Errorf("Clone shares state with original: %+v", d)
	}
}

func TestStore_LoadMissing(t *testing.T) {
	s := NewStore(t.TempDir())

	if s.Exists() {
		t.Error("Exists() = true for empty directory")
	}
	_, err := s.Load()
	if !errors.Is(err, errors.ErrProjectNotInitialized) {
		t.Errorf("Load() error = %v, want ErrProjectNotInitialized", err)
	}
}

func TestStore_LoadCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid json", "{not json"},
		{"missing name", `{"servers":[]}`},
		{"wrong type", `{"name":"demo","servers":"filesystem"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			s := NewStore(root)
			if err := os.MkdirAll(filepath.Dir(s.Path()), 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(s.Path(), []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}

			_, err := s.Load()
			if !errors.Is(err, errors.ErrCorruptState) {
				t.Errorf("Load() error = %v, want ErrCorruptState", err)
			}
			if !s.Exists() {
				t.Error("Exists() = false for a present but corrupt file")
			}
		})
	}
}

func TestStore_SaveLoad(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	d := New("demo", []string{"filesystem", "sequential-thinking"}, []string{"cursor"}, now)
	if err := s.Save(d); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if s.Path() != filepath.Join(root, ".mcp", "config.json") {
		t.Errorf("Path() = %q", s.Path())
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.ID != d.ID || got.Name != "demo" {
		t.Errorf("Load() = %+v", got)
	}
	if !slices.Equal(got.Servers, d.Servers) || !slices.Equal(got.IDEs, d.IDEs) {
		t.Errorf("Load() servers/ides = %v/%v", got.Servers, got.IDEs)
	}
	if !got.Created.Equal(d.Created) || !got.Updated.Equal(got.Created) {
		t.Errorf("timestamps = %v/%v", got.Created, got.Updated)
	}
}

func TestStore_SaveShape(t *testing.T) {
	s := NewStore(t.TempDir())
	d := New("demo", nil, nil, now)
	if err := s.Save(d); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"id", "name", "servers", "ides", "envVars", "created", "updated"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("saved state missing %q: %s", key, data)
		}
	}
	if servers, ok := raw["servers"].([]any); !ok || len(servers) != 0 {
		t.Errorf("servers = %#v, want empty array", raw["servers"])
	}
	if raw["created"] != "2026-03-14T09:26:53.589Z" {
		t.Errorf("created = %v", raw["created"])
	}
}

func TestStore_SaveRequiresName(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.Save(&Descriptor{}); !errors.Is(err, errors.ErrMissingName) {
		t.Errorf("Save() error = %v, want ErrMissingName", err)
	}
	if err := s.Save(nil); !errors.Is(err, errors.ErrMissingName) {
		t.Errorf("Save(nil) error = %v, want ErrMissingName", err)
	}
}
