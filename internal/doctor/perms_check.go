package doctor

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/thoreinstein/mcpm/internal/errors"
)

// dirMode is what doctor --fix applies to world-writable directories.
const dirMode os.FileMode = 0o755

// PathPermissionCheck flags files whose mode is looser than mcpm writes
// them with, unreadable files, and directories mcpm cannot write to. Files
// that do not exist are skipped.
type PathPermissionCheck struct {
	permissionFixer

	files []File
}

var _ Check = (*PathPermissionCheck)(nil)

func NewPathPermissionCheck(files []File) *PathPermissionCheck {
	return &PathPermissionCheck{files: files}
}

func (c *PathPermissionCheck) Name() string     { return "path-permissions" }
func (c *PathPermissionCheck) Category() string { return "filesystem" }

func (c *PathPermissionCheck) Run(context.Context) *CheckResult {
	c.issues = nil
	checked := 0
	seen := make(map[string]bool)

	for _, f := range c.files {
		if dir := filepath.Dir(f.Path); !seen[dir] {
			seen[dir] = true
			if found, ok := inspectDir(dir, f.Owner); ok {
				c.issues = append(c.issues, found...)
				checked++
			}
		}
		if found, ok := inspectFile(f); ok {
			c.issues = append(c.issues, found...)
			checked++
		}
	}
	return c.result(checked)
}

// pathIssue is one problem with a file or directory. Issues with a non-zero
// Target can be repaired with chmod.
type pathIssue struct {
	Path     string
	Owner    string
	Dir      bool
	Problem  string
	Severity Severity
	Mode     os.FileMode
	Target   os.FileMode
	Hint     string
}

func (is pathIssue) kind() string {
	if is.Dir {
		return "directory"
	}
	return "file"
}

// inspectFile returns the issues of f, with ok false when it is absent.
func inspectFile(f File) (issues []pathIssue, ok bool) {
	info, err := os.Stat(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false
	}
	base := pathIssue{Path: f.Path, Owner: f.Owner, Severity: SeverityError}
	if err != nil {
		base.Problem = "cannot stat: " + err.Error()
		return []pathIssue{base}, true
	}
	base.Mode = info.Mode().Perm()

	fh, err := os.Open(f.Path)
	if err != nil {
		base.Problem = "not readable"
		base.Hint = "chmod u+r " + f.Path
		return []pathIssue{base}, true
	}
	fh.Close()

	if runtime.GOOS == "windows" {
		return nil, true
	}
	want := f.Kind.Mode()
	if base.Mode&^want == 0 {
		return nil, true
	}

	base.Severity = SeverityWarning
	base.Target = want
	base.Hint = fmt.Sprintf("chmod %04o %s", want, f.Path)
	switch {
	case base.Mode&0o002 != 0:
		base.Problem = "world-writable"
	case want&0o044 == 0 && base.Mode&0o044 != 0:
		base.Problem = "readable by other users but holds secrets"
	default:
		base.Problem = fmt.Sprintf("mode %04o is looser than %04o", base.Mode, want)
	}
	return []pathIssue{base}, true
}

// inspectDir returns the issues of a directory, with ok false when it is
// absent.
func inspectDir(path, owner string) (issues []pathIssue, ok bool) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false
	}
	base := pathIssue{Path: path, Owner: owner, Dir: true, Severity: SeverityError}
	switch {
	case err != nil:
		base.Problem = "cannot stat: " + err.Error()
		return []pathIssue{base}, true
	case !info.IsDir():
		base.Problem = "expected a directory, found a file"
		return []pathIssue{base}, true
	}
	base.Mode = info.Mode().Perm()
	base.Severity = SeverityWarning

	if !writable(path) {
		is := base
		is.Problem = "not writable"
		is.Hint = "chmod u+w " + path
		issues = append(issues, is)
	}
	if runtime.GOOS != "windows" && base.Mode&0o002 != 0 && info.Mode()&os.ModeSticky == 0 {
		is := base
		is.Problem = "world-writable"
		is.Target = dirMode
		is.Hint = fmt.Sprintf("chmod %04o %s", dirMode, path)
		issues = append(issues, is)
	}
	return issues, true
}

// writable probes path by creating and removing a temp file.
func writable(path string) bool {
	f, err := os.CreateTemp(path, ".mcpm-probe-*")
	if err != nil {
		return false
	}
	f.Close()
	os.Remove(f.Name())
	return true
}

type issueView struct {
	Path     string `json:"path"`
	Owner    string `json:"owner,omitempty"`
	Type     string `json:"type"`
	Problem  string `json:"problem"`
	Severity string `json:"severity"`
	Mode     string `json:"mode,omitempty"`
	Hint     string `json:"fix_hint,omitempty"`
}

func (c *PathPermissionCheck) result(checked int) *CheckResult {
	res := &CheckResult{Name: c.Name(), Category: c.Category(), Status: SeverityPass}
	if len(c.issues) == 0 {
		res.Message = fmt.Sprintf("all %d paths have valid permissions", checked)
		return res
	}

	views := make([]issueView, 0, len(c.issues))
	var hints []string
	for _, is := range c.issues {
		res.Status = max(res.Status, is.Severity)
		v := issueView{
			Path:     is.Path,
			Owner:    is.Owner,
			Type:     is.kind(),
			Problem:  is.Problem,
			Severity: is.Severity.String(),
			Hint:     is.Hint,
		}
		if is.Mode != 0 {
			v.Mode = fmt.Sprintf("%04o", is.Mode)
		}
		views = append(views, v)
		if is.Target != 0 {
			res.Fixable = true
			hints = append(hints, is.Hint)
		}
	}

	res.Message = fmt.Sprintf("%d permission issue(s) across %d paths", len(c.issues), checked)
	res.Details = map[string]any{
		"checked_paths": checked,
		"issue_count":   len(c.issues),
		"issues":        views,
	}
	if len(hints) > 0 {
		res.FixHint = strings.Join(hints, "; ")
	}
	return res
}
