package bundle

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/thoreinstein/mcpm/internal/catalog"
	"github.com/thoreinstein/mcpm/internal/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "registry", "custom-bundles.json"), catalog.Builtin("/home/u", "linux"))
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s
}

func TestValidateName(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{"valid", "my-stack_2", nil},
		{"empty", "", ErrInvalidName},
		{"blank", "   ", ErrInvalidName},
		{"space", "my bundle", ErrInvalidName},
		{"tab", "my\tbundle", ErrInvalidName},
		{"punctuation", "my.bundle", ErrInvalidName},
		{"builtin", "essential", ErrBuiltinConflict},
		{"builtin full", "full", ErrBuiltinConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.ValidateName(tt.in)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateName(%q) = %v, want nil", tt.in, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateName(%q) = %v, want %v", tt.in, err, tt.wantErr)
			}
		})
	}
}

func TestStore_ListMissingFile(t *testing.T) {
	s := newTestStore(t)

	bundles, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(bundles) != 0 {
		t.Errorf("List() = %v, want empty", bundles)
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	s := newTestStore(t)

	b, err := s.Save("frontend", "UI work", []string{"filesystem", "playwright", "filesystem"})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !b.Custom || b.Category != CustomCategory || b.Created == nil {
		t.Errorf("Save() = %+v", b)
	}
	if !slices.Equal(b.Servers, []string{"filesystem", "playwright"}) {
		t.Errorf("Servers = %v", b.Servers)
	}

	got, err := s.Get("frontend")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Description != "UI work" || !got.Created.Equal(*b.Created) {
		t.Errorf("Get() = %+v", got)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if raw["lastUpdated"] != "2026-01-02T03:04:05Z" {
		t.Errorf("lastUpdated = %v", raw["lastUpdated"])
	}
}

func TestStore_SaveRejects(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		name     string
		bundle   string
		servers  []string
		wantErr  error
		wantFile bool
	}{
		{"builtin collision", "essential", []string{"filesystem"}, ErrBuiltinConflict, false},
		{"whitespace", "my bundle", []string{"filesystem"}, ErrInvalidName, false},
		{"unknown server", "mine", []string{"filesystem", "bogus"}, ErrUnknownServers, false},
		{"no servers", "mine", nil, ErrNoServers, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Save(tt.bundle, "", tt.servers)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Save() error = %v, want %v", err, tt.wantErr)
			}
			if _, statErr := os.Stat(s.Path()); statErr == nil {
				t.Error("rejected bundle was written")
			}
		})
	}
}

func TestStore_SaveLastWriteWins(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Save("mine", "first", []string{"filesystem", "github"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save("other", "", []string{"context7"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save("mine", "second", []string{"duckduckgo"}); err != nil {
		t.Fatal(err)
	}

	bundles, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(bundles) != 2 {
		t.Fatalf("List() = %d bundles, want 2", len(bundles))
	}
	mine, _ := s.Get("mine")
	if mine.Description != "second" || !slices.Equal(mine.Servers, []string{"duckduckgo"}) {
		t.Errorf("Get(mine) = %+v, want replaced bundle", mine)
	}
}

func TestStore_Remove(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Save("mine", "", []string{"filesystem"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove("mine"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := s.Get("mine"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Get() after remove = %v, want ErrNotFound", err)
	}
	if err := s.Remove("mine"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("second Remove() = %v, want ErrNotFound", err)
	}
}

func TestStore_ResolveAndAll(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Save("mine", "", []string{"github"}); err != nil {
		t.Fatal(err)
	}

	b, err := s.Resolve("essential")
	if err != nil || b.Custom {
		t.Errorf("Resolve(essential) = %+v, %v", b, err)
	}
	b, err = s.Resolve("mine")
	if err != nil || !b.Custom {
		t.Errorf("Resolve(mine) = %+v, %v", b, err)
	}
	if _, err := s.Resolve("nope"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Resolve(nope) = %v, want ErrNotFound", err)
	}

	all, err := s.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 7 || all[6].Name != "mine" {
		t.Errorf("All() = %d bundles, last %q", len(all), all[len(all)-1].Name)
	}
}

func TestStore_CorruptRegistry(t *testing.T) {
	s := newTestStore(t)
	if err := os.MkdirAll(filepath.Dir(s.Path()), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.Path(), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := s.List(); !errors.Is(err, errors.ErrCorruptState) {
		t.Errorf("List() error = %v, want ErrCorruptState", err)
	}
	if _, err := s.Save("mine", "", []string{"github"}); !errors.Is(err, errors.ErrCorruptState) {
		t.Errorf("Save() error = %v, want ErrCorruptState", err)
	}
}

func TestStore_LegacyEntriesMarkedCustom(t *testing.T) {
	s := newTestStore(t)
	if err := os.MkdirAll(filepath.Dir(s.Path()), 0o755); err != nil {
		t.Fatal(err)
	}
	legacy := `{"bundles":[{"name":"old","description":"","servers":["github"]}],"lastUpdated":"2025-01-01T00:00:00.000Z"}`
	if err := os.WriteFile(s.Path(), []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	b, err := s.Get("old")
	if err != nil {
		t.Fatal(err)
	}
	if !b.Custom || b.Category != CustomCategory {
		t.Errorf("Get(old) = %+v", b)
	}
}
