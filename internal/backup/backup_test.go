package backup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/thoreinstein/mcpm/internal/errors"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".cursor", "mcp.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBackup_SameInstantDoesNotCollide(t *testing.T) {
	src := writeConfig(t, `{"mcpServers":{}}`)
	m := NewManager(
		WithBackupDir(t.TempDir()),
		WithClock(fixedClock(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))),
	)

	first, err := m.Backup("cursor", []string{src})
	if err != nil {
		t.Fatalf("first Backup() error = %v", err)
	}
	second, err := m.Backup("cursor", []string{src})
	if err != nil {
		t.Fatalf("second Backup() error = %v", err)
	}

	if first.ID == second.ID {
		t.Errorf("backup ids collided: %s", first.ID)
	}
}

func TestBackup_SkipsMissingFiles(t *testing.T) {
	m := NewManager(WithBackupDir(t.TempDir()))

	manifest, err := m.Backup("cursor", []string{filepath.Join(t.TempDir(), "absent.json")})
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if manifest != nil {
		t.Errorf("Backup() = %+v, want nil for no files", manifest)
	}
	if _, err := m.List("cursor"); !errors.Is(err, ErrNoBackupsFound) {
		t.Errorf("List() error = %v, want ErrNoBackupsFound", err)
	}
}

func TestBackupRestore(t *testing.T) {
	src := writeConfig(t, `{"theme":"dark"}`)
	m := NewManager(WithBackupDir(t.TempDir()))

	manifest, err := m.Backup("cursor", []string{src})
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if len(manifest.Files) != 1 || manifest.IDE != "cursor" {
		t.Fatalf("manifest = %+v", manifest)
	}

	if err := os.WriteFile(src, []byte("overwritten"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Restore("cursor", manifest.ID); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	got, _ := os.ReadFile(src)
	if string(got) != `{"theme":"dark"}` {
		t.Errorf("restored content = %q", got)
	}
}

func TestRestore_DetectsCorruption(t *testing.T) {
	src := writeConfig(t, "original")
	root := t.TempDir()
	m := NewManager(WithBackupDir(root))

	manifest, err := m.Backup("warp", []string{src})
	if err != nil {
		t.Fatal(err)
	}
	copied := filepath.Join(root, "warp", manifest.ID, manifest.Files[0].RelPath)
	if err := os.WriteFile(copied, []byte("tampered"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Restore("warp", manifest.ID); !errors.Is(err, ErrBackupCorrupted) {
		t.Errorf("Restore() error = %v, want ErrBackupCorrupted", err)
	}
}

func TestBackup_PrunesToRetention(t *testing.T) {
	src := writeConfig(t, "{}")
	clock := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	m := NewManager(
		WithBackupDir(t.TempDir()),
		WithRetentionCount(2),
		WithClock(func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		}),
	)

	var last *Manifest
	for range 4 {
		var err error
		if last, err = m.Backup("cursor", []string{src}); err != nil {
			t.Fatal(err)
		}
	}

	list, err := m.List("cursor")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("List() returned %d backups, want 2", len(list))
	}
	if list[0].ID != last.ID {
		t.Errorf("newest = %s, want %s", list[0].ID, last.ID)
	}

	latest, err := m.Latest("cursor")
	if err != nil || latest.ID != last.ID {
		t.Errorf("Latest() = %v, %v", latest, err)
	}
}

func TestGet_RejectsTraversal(t *testing.T) {
	m := NewManager(WithBackupDir(t.TempDir()))
	for _, id := range []string{"", "..", "../x", `a\b`} {
		if _, err := m.Get("cursor", id); err == nil {
			t.Errorf("Get(%q) should fail", id)
		}
	}
}

func TestSession_OncePerIDE(t *testing.T) {
	src := writeConfig(t, "{}")
	m := NewManager(WithBackupDir(t.TempDir()))
	s := NewSession(m)

	first, err := s.EnsureBackedUp("cursor", []string{src})
	if err != nil || first == nil {
		t.Fatalf("EnsureBackedUp() = %v, %v", first, err)
	}
	second, err := s.EnsureBackedUp("cursor", []string{src})
	if err != nil || second != nil {
		t.Errorf("second EnsureBackedUp() = %v, %v; want no new backup", second, err)
	}

	list, _ := m.List("cursor")
	if len(list) != 1 {
		t.Errorf("backups = %d, want 1", len(list))
	}

	var nilSession *Session
	if _, err := nilSession.EnsureBackedUp("cursor", []string{src}); err != nil {
		t.Errorf("nil session error = %v", err)
	}
}

func TestRelPath(t *testing.T) {
	tests := []string{"/usr/local/etc/x.json", `C:\Users\me\x.json`, "file:name"}
	for _, in := range tests {
		got := relPath(in)
		if strings.Contains(got, ":") {
			t.Errorf("relPath(%q) = %q contains colon", in, got)
		}
		if filepath.IsAbs(got) {
			t.Errorf("relPath(%q) = %q is absolute", in, got)
		}
	}
}
