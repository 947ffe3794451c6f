package editor

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		expect string
	}{
		{
			name:   "mcpm editor wins",
			env:    map[string]string{"MCPM_EDITOR": "hx", "EDITOR": "nvim", "VISUAL": "code"},
			expect: "hx",
		},
		{
			name:   "editor before visual",
			env:    map[string]string{"MCPM_EDITOR": "", "EDITOR": "nvim", "VISUAL": "code"},
			expect: "nvim",
		},
		{
			name:   "blank editor falls through",
			env:    map[string]string{"MCPM_EDITOR": "", "EDITOR": "  ", "VISUAL": "code --wait"},
			expect: "code --wait",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if got := Detect(); got != tt.expect {
				t.Errorf("Detect() = %q, want %q", got, tt.expect)
			}
		})
	}
}

func TestDetect_Fallback(t *testing.T) {
	t.Setenv("MCPM_EDITOR", "")
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "")

	want := "vi"
	if _, err := exec.LookPath("nano"); err == nil {
		want = "nano"
	}
	if got := Detect(); got != want {
		t.Errorf("Detect() = %q, want %q", got, want)
	}
}

func TestOpen(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script editor")
	}

	dir := t.TempDir()
	record := filepath.Join(dir, "args.txt")
	script := filepath.Join(dir, "fake-editor.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho \"$@\" > "+record+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(target, []byte("version: 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	e := &Editor{Command: script + " --wait", Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	if err := e.Open(target); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	got, err := os.ReadFile(record)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(got)) != "--wait "+target {
		t.Errorf("editor args = %q, want %q", strings.TrimSpace(string(got)), "--wait "+target)
	}
}

func TestOpen_MissingBinary(t *testing.T) {
	e := &Editor{Command: "mcpm-no-such-editor-12345"}
	if err := e.Open("x.txt"); err == nil {
		t.Error("Open() expected error for missing editor binary")
	}
}
