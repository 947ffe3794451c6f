package doctor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/thoreinstein/mcpm/internal/catalog"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/merge"
)

// ConfigSyntaxCheck parses each JSON and TOML file with the codec sync
// would use, so a file reported valid here can be merged.
type ConfigSyntaxCheck struct {
	files []File
}

var _ Check = (*ConfigSyntaxCheck)(nil)

// NewConfigSyntaxCheck checks files; files of other formats are ignored.
func NewConfigSyntaxCheck(files []File) *ConfigSyntaxCheck {
	return &ConfigSyntaxCheck{files: files}
}

func (c *ConfigSyntaxCheck) Name() string     { return "config-syntax" }
func (c *ConfigSyntaxCheck) Category() string { return "config" }

// syntaxFileResult is the per-file outcome: pass, error, or info for an
// absent file.
type syntaxFileResult struct {
	Path    string `json:"path"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (c *ConfigSyntaxCheck) Run(context.Context) *CheckResult {
	var files []syntaxFileResult
	counts := map[string]int{}
	for _, f := range c.files {
		codec, err := merge.CodecFor(f.Format)
		if err != nil {
			continue
		}
		fr := parseFile(f, codec)
		files = append(files, fr)
		counts[fr.Status]++
	}

	res := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details: map[string]any{
			"files":   files,
			"checked": len(files),
			"passed":  counts["pass"],
			"errors":  counts["error"],
			"missing": counts["info"],
		},
	}
	switch {
	case counts["error"] > 0:
		res.Status = SeverityError
		res.Message = fmt.Sprintf("%d config file(s) cannot be parsed", counts["error"])
		res.FixHint = "fix the syntax by hand or restore a backup with mcpm backup restore"
	case counts["pass"] > 0:
		res.Status = SeverityPass
		res.Message = fmt.Sprintf("%d config file(s) parse cleanly", counts["pass"])
	default:
		res.Status = SeverityInfo
		res.Message = "no config files to check"
	}
	return res
}

func parseFile(f File, codec merge.Codec) syntaxFileResult {
	fr := syntaxFileResult{Path: f.Path, Status: "error"}

	data, err := os.ReadFile(f.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		fr.Status, fr.Message = "info", "not created yet"
		return fr
	case err != nil:
		fr.Message = "read failed: " + err.Error()
		return fr
	case len(bytes.TrimSpace(data)) == 0:
		fr.Status, fr.Message = "pass", "empty"
		return fr
	}

	if _, err := codec.Decode(data); err != nil {
		fr.Message = describeSyntaxError(f.Format, data, err)
		return fr
	}
	fr.Status = "pass"
	return fr
}

// describeSyntaxError prefixes err with the line and column of the first
// syntax error in data, when the standard parsers can locate one.
func describeSyntaxError(format catalog.Format, data []byte, err error) string {
	switch format {
	case catalog.FormatTOML:
		var derr *toml.DecodeError
		if perr := toml.Unmarshal(data, new(map[string]any)); errors.As(perr, &derr) {
			line, col := derr.Position()
			return fmt.Sprintf("TOML syntax error at line %d, column %d: %v", line, col, err)
		}
		return "TOML: " + err.Error()
	default:
		var serr *json.SyntaxError
		if perr := json.Unmarshal(data, new(any)); errors.As(perr, &serr) {
			line, col := lineCol(data, serr.Offset)
			return fmt.Sprintf("JSON syntax error at line %d, column %d: %v", line, col, err)
		}
		return "JSON: " + err.Error()
	}
}

// lineCol converts a byte offset into 1-based line and column.
func lineCol(data []byte, offset int64) (line, col int) {
	off := int(min(max(offset, 0), int64(len(data))))
	before := data[:off]
	line = bytes.Count(before, []byte{'\n'}) + 1
	col = off - (bytes.LastIndexByte(before, '\n') + 1) + 1
	return line, col
}
