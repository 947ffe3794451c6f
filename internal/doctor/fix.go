package doctor

import (
	"fmt"
	"os"

	"github.com/thoreinstein/mcpm/internal/errors"
)

// Fixer is implemented by checks that can repair what they found. Both
// methods refer to the most recent Run.
type Fixer interface {
	// Pending returns the number of problems Fix would attempt.
	Pending() int
	Fix() []FixResult
}

// FixResult is the outcome of one repair.
type FixResult struct {
	Check       string `json:"check"`
	Path        string `json:"path"`
	Fixed       bool   `json:"fixed"`
	Description string `json:"description"`
	Err         error  `json:"-"`
}

// permissionFixer repairs the modes PathPermissionCheck recorded.
type permissionFixer struct {
	issues []pathIssue
}

func (f *permissionFixer) Pending() int {
	n := 0
	for _, is := range f.issues {
		if is.Target != 0 {
			n++
		}
	}
	return n
}

func (f *permissionFixer) Fix() []FixResult {
	out := make([]FixResult, 0, f.Pending())
	for _, is := range f.issues {
		if is.Target == 0 {
			continue
		}
		res := FixResult{Path: is.Path, Description: fmt.Sprintf("chmod %04o", is.Target)}
		if err := os.Chmod(is.Path, is.Target); err != nil {
			res.Description += " failed: " + err.Error()
			res.Err = errors.Wrapf(err, "chmod %s %s", is.kind(), is.Path)
		} else {
			res.Fixed = true
		}
		out = append(out, res)
	}
	return out
}
