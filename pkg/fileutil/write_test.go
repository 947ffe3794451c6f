package fileutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestWriteFile(t *testing.T) {
	tests := []struct {
		name string
		data string
		perm os.FileMode
	}{
		{"ide config", "{\n  \"mcpServers\": {}\n}\n", 0o600},
		{"env template", "", 0o644},
		{"setup script", "#!/bin/sh\nclaude mcp add filesystem\n", 0o700},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ".mcp", "nested", "out")

			if err := WriteFile(path, []byte(tt.data), tt.perm); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			got, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != tt.data {
				t.Errorf("content = %q, want %q", got, tt.data)
			}
			if runtime.GOOS != "windows" {
				if info, _ := os.Stat(path); info.Mode().Perm() != tt.perm {
					t.Errorf("mode = %04o, want %04o", info.Mode().Perm(), tt.perm)
				}
			}
		})
	}
}

func TestWriteFile_ReplacesAndCleansUp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mcp.json")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := WriteFile(path, []byte("new"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if got, _ := os.ReadFile(path); string(got) != "new" {
		t.Errorf("content = %q, want new", got)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory has leftovers: %v", names)
	}
}

func TestWriteFile_ParentIsFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(filepath.Join(blocker, "x.json"), []byte("{}"), 0o600); err == nil {
		t.Error("WriteFile() under a regular file should fail")
	}
}

func TestMarshalJSON(t *testing.T) {
	got, err := MarshalJSON(map[string]any{
		"args": []string{"-y", "@modelcontextprotocol/server-github"},
		"url":  "http://localhost:5678/?a=1&b=2",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"args\": [\n    \"-y\",\n    \"@modelcontextprotocol/server-github\"\n  ],\n  \"url\": \"http://localhost:5678/?a=1&b=2\"\n}\n"
	if string(got) != want {
		t.Errorf("MarshalJSON() =\n%s\nwant\n%s", got, want)
	}

	if _, err := MarshalJSON(func() {}); err == nil {
		t.Error("MarshalJSON(func) should fail")
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	if err := WriteJSON(path, map[string]int{"version": 1}, 0o644); err != nil {
		t.Fatal(err)
	}
	if got, _ := os.ReadFile(path); string(got) != "{\n  \"version\": 1\n}\n" {
		t.Errorf("content = %q", got)
	}
}

func TestWriteYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	v := map[string]any{"default_ides": []string{"cursor"}, "backup": map[string]bool{"enabled": true}}
	if err := WriteYAML(path, v, SecretPerm); err != nil {
		t.Fatal(err)
	}
	got, _ := os.ReadFile(path)
	for _, want := range []string{"backup:\n  enabled: true\n", "default_ides:\n  - cursor\n"} {
		if !strings.Contains(string(got), want) {
			t.Errorf("YAML %q missing %q", got, want)
		}
	}

	if err := WriteYAML(path, map[string]any{"f": func() {}}, SecretPerm); err == nil {
		t.Error("WriteYAML with a func should fail")
	}
	if got2, _ := os.ReadFile(path); string(got2) != string(got) {
		t.Error("failed WriteYAML modified the file")
	}
}
