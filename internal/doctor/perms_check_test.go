package doctor

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestPathPermissionCheck(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	dir := t.TempDir()
	state := filepath.Join(dir, "config.json")
	sharedConfig := filepath.Join(dir, "cursor.json")
	openEnv := filepath.Join(dir, ".env")
	script := filepath.Join(dir, "claude-code-setup.sh")
	writeFile(t, state, "{}", 0o644)
	writeFile(t, sharedConfig, "{}", 0o666)
	writeFile(t, openEnv, "K=v", 0o644)
	writeFile(t, script, "#!/bin/sh", 0o700)

	c := NewPathPermissionCheck([]File{
		{Path: state, Owner: "project", Kind: KindState},
		{Path: sharedConfig, Owner: "cursor", Kind: KindConfig},
		{Path: openEnv, Owner: "project", Kind: KindSecret},
		{Path: script, Owner: "claude-code", Kind: KindScript},
		{Path: filepath.Join(dir, "absent.toml"), Owner: "codex", Kind: KindConfig},
	})
	res := c.Run(context.Background())

	if res.Status != SeverityWarning {
		t.Fatalf("Status = %s, message %q", res.Status, res.Message)
	}
	if got := res.Details["checked_paths"]; got != 5 {
		t.Errorf("checked_paths = %v, want 5 (dir + 4 files)", got)
	}
	if got := res.Details["issue_count"]; got != 2 {
		t.Errorf("issue_count = %v, want 2", got)
	}
	views := res.Details["issues"].([]issueView)
	problems := map[string]string{}
	for _, v := range views {
		problems[v.Path] = v.Problem
	}
	if problems[sharedConfig] != "world-writable" {
		t.Errorf("config problem = %q", problems[sharedConfig])
	}
	if problems[openEnv] != "readable by other users but holds secrets" {
		t.Errorf(".env problem = %q", problems[openEnv])
	}
	if !res.Fixable || c.Pending() != 2 {
		t.Errorf("Fixable = %v, Pending = %d", res.Fixable, c.Pending())
	}

	for _, r := range c.Fix() {
		if !r.Fixed {
			t.Errorf("Fix(%s) = %+v", r.Path, r)
		}
	}
	for path, want := range map[string]os.FileMode{sharedConfig: 0o600, openEnv: 0o600, state: 0o644} {
		if info, _ := os.Stat(path); info.Mode().Perm() != want {
			t.Errorf("%s mode = %04o, want %04o", filepath.Base(path), info.Mode().Perm(), want)
		}
	}

	if again := c.Run(context.Background()); again.Status != SeverityPass || c.Pending() != 0 {
		t.Errorf("after fix Status = %s, Pending = %d: %v", again.Status, c.Pending(), again.Details)
	}
}

func TestPathPermissionCheck_WorldWritableDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	dir := filepath.Join(t.TempDir(), ".mcp")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(dir, 0o777); err != nil {
		t.Fatal(err)
	}

	c := NewPathPermissionCheck([]File{{Path: filepath.Join(dir, "cursor.json"), Kind: KindConfig}})
	res := c.Run(context.Background())
	if res.Status != SeverityWarning || c.Pending() != 1 {
		t.Fatalf("Status = %s, Pending = %d", res.Status, c.Pending())
	}
	c.Fix()
	if info, _ := os.Stat(dir); info.Mode().Perm() != dirMode {
		t.Errorf("dir mode = %04o, want %04o", info.Mode().Perm(), dirMode)
	}
}

func TestPathPermissionCheck_NotADirectory(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "blocker")
	writeFile(t, parent, "", 0o644)

	res := NewPathPermissionCheck([]File{{Path: filepath.Join(parent, "x.json"), Kind: KindConfig}}).Run(context.Background())
	if res.Status != SeverityError {
		t.Errorf("Status = %s, want error", res.Status)
	}
	if res.Fixable {
		t.Error("a file in place of a directory is not fixable")
	}
}

func TestPermissionFixer_ChmodFails(t *testing.T) {
	f := &permissionFixer{issues: []pathIssue{
		{Path: filepath.Join(t.TempDir(), "gone"), Target: 0o600},
		{Path: "/not/fixable", Problem: "not readable"},
	}}
	if f.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", f.Pending())
	}
	results := f.Fix()
	if len(results) != 1 || results[0].Fixed || results[0].Err == nil {
		t.Errorf("Fix() = %+v, want one failed result", results)
	}
}
