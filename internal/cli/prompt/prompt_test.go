package prompt

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/thoreinstein/mcpm/internal/catalog"
)

var ideOptions = []Option{
	{Label: "cursor", Detail: "Cursor"},
	{Label: "windsurf"},
	{Label: "codex", Detail: "Codex"},
}

func TestChoose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		def     int
		want    int
		wantErr error
	}{
		{name: "explicit", input: "3\n", want: 2},
		{name: "default on empty", input: "\n", def: 1, want: 1},
		{name: "out of range default", input: "\n", def: 9, want: 0},
		{name: "whitespace trimmed", input: "  2  \n", want: 1},
		{name: "no trailing newline", input: "2", want: 1},
		{name: "not a number", input: "abc\n", wantErr: ErrInvalidSelection},
		{name: "out of range", input: "4\n", wantErr: ErrInvalidSelection},
		{name: "zero", input: "0\n", wantErr: ErrInvalidSelection},
		{name: "eof", input: "", wantErr: ErrSelectionCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			got, err := NewWithIO(strings.NewReader(tt.input), &buf).Choose("IDE?", ideOptions, tt.def)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Choose() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestChoose_Output(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewWithIO(strings.NewReader("\n"), &buf).Choose("Which IDE?", ideOptions, 0); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Which IDE?", "[1] cursor - Cursor", "[2] windsurf\n", "Select [1]: "} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestChoose_Edges(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWithIO(strings.NewReader(""), &buf)
	if _, err := p.Choose("q", nil, 0); !errors.Is(err, ErrNoOptions) {
		t.Errorf("empty options error = %v", err)
	}
	got, err := p.Choose("q", ideOptions[:1], 0)
	if err != nil || got != 0 {
		t.Errorf("single option = %d, %v", got, err)
	}
	if buf.Len() > 0 {
		t.Errorf("single option prompted: %q", buf.String())
	}
}

func TestChooseMany(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{name: "defaults", input: "\n", want: []int{0}},
		{name: "commas", input: "3,1\n", want: []int{2, 0}},
		{name: "spaces and dupes", input: "2 2 3\n", want: []int{1, 2}},
		{name: "bad", input: "1,x\n", wantErr: true},
		{name: "range", input: "5\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NewWithIO(strings.NewReader(tt.input), &bytes.Buffer{}).ChooseMany("IDEs?", ideOptions, []int{0})
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !slices.Equal(got, tt.want) {
				t.Errorf("ChooseMany() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		def     bool
		want    bool
		wantErr bool
	}{
		{input: "\n", def: true, want: true},
		{input: "\n", def: false, want: false},
		{input: "y\n", want: true},
		{input: "YES\n", want: true},
		{input: "no\n", def: true, want: false},
		{input: "maybe\n", wantErr: true},
	}
	for _, tt := range tests {
		got, err := NewWithIO(strings.NewReader(tt.input), &bytes.Buffer{}).Confirm("Apply?", tt.def)
		if (err != nil) != tt.wantErr {
			t.Errorf("Confirm(%q) error = %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestInput_SequentialPrompts(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWithIO(strings.NewReader("my-app\n\ny\n"), &buf)

	name, err := p.Input("Project name", "demo")
	if err != nil || name != "my-app" {
		t.Fatalf("first Input = %q, %v", name, err)
	}
	second, err := p.Input("Description", "none")
	if err != nil || second != "none" {
		t.Fatalf("second Input = %q, %v", second, err)
	}
	ok, err := p.Confirm("Continue?", false)
	if err != nil || !ok {
		t.Fatalf("Confirm = %v, %v", ok, err)
	}
	if !strings.Contains(buf.String(), "Project name [demo]: ") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestSelectServers(t *testing.T) {
	t.Parallel()

	servers := []catalog.Server{
		{ID: "filesystem", Package: "@modelcontextprotocol/server-filesystem", Version: "2025.8.21", Category: catalog.CategoryCore},
		{ID: "github", Package: "@modelcontextprotocol/server-github", Category: catalog.CategoryIntegration, RequiredEnv: []string{"GITHUB_TOKEN"}},
		{ID: "playwright", Package: "@playwright/mcp", Category: catalog.CategorySpecialized},
	}

	t.Run("catalog order", func(t *testing.T) {
		t.Parallel()

		var labels []string
		find := func(n int, label, preview func(int) string) ([]int, error) {
			for i := range n {
				labels = append(labels, label(i))
			}
			if !strings.Contains(preview(1), "Required env: GITHUB_TOKEN") {
				t.Errorf("preview = %q", preview(1))
			}
			return []int{2, 0, 2}, nil
		}
		got, err := SelectServers(find, servers)
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(got, []string{"filesystem", "playwright"}) {
			t.Errorf("SelectServers() = %v", got)
		}
		if len(labels) != 3 || !strings.HasPrefix(labels[1], "github") {
			t.Errorf("labels = %q", labels)
		}
	})

	t.Run("nothing marked", func(t *testing.T) {
		t.Parallel()

		find := func(int, func(int) string, func(int) string) ([]int, error) { return nil, nil }
		if _, err := SelectServers(find, servers); !errors.Is(err, ErrSelectionCancelled) {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("empty catalog", func(t *testing.T) {
		t.Parallel()

		if _, err := SelectServers(FuzzyFinder, nil); !errors.Is(err, ErrNoOptions) {
			t.Errorf("error = %v", err)
		}
	})
}

func TestServerPreview(t *testing.T) {
	t.Parallel()

	got := ServerPreview(catalog.Server{ID: "n8n", Package: "n8n-mcp", Version: "2.10.6", Description: "Workflow automation"})
	for _, want := range []string{"Package:  n8n-mcp@2.10.6", "Workflow automation"} {
		if !strings.Contains(got, want) {
			t.Errorf("preview missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Required env") {
		t.Error("preview lists env for a server without any")
	}
}
