package cli

import (
	"testing"

	"github.com/thoreinstein/mcpm/internal/bundle"
	"github.com/thoreinstein/mcpm/internal/catalog"
	"github.com/thoreinstein/mcpm/internal/cli/prompt"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/workflow"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		suggestion string
	}{
		{"not initialized", errors.Wrap(errors.ErrProjectNotInitialized, "/p"), errors.ExitUser, "Run: mcpm init"},
		{"exists", errors.ErrProjectExists, errors.ExitUser, "Use --force to replace it, or mcpm add / mcpm sync to change it"},
		{"corrupt", errors.Wrap(errors.ErrCorruptState, "parse"), errors.ExitUser, "Run: mcpm doctor"},
		{"no servers", workflow.ErrNoServers, errors.ExitUser, "Run: mcpm list --available"},
		{"bundle conflict", bundle.ErrBuiltinConflict, errors.ExitUser, "Run: mcpm list --available --bundles"},
		{"cancelled", prompt.ErrSelectionCancelled, errors.ExitUser, ""},
		{"bad pattern", errors.Wrap(catalog.ErrBadPattern, "[x"), errors.ExitUser, ""},
		{"not found", errors.Wrap(errors.ErrNotFound, "bundle x"), errors.ExitUser, ""},
		{"io", errors.New("disk on fire"), errors.ExitSystem, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			var exitErr *errors.ExitError
			if !errors.As(got, &exitErr) {
				t.Fatalf("MapError() = %T, want *ExitError", got)
			}
			if exitErr.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", exitErr.Code, tt.wantCode)
			}
			if exitErr.Suggestion != tt.suggestion {
				t.Errorf("Suggestion = %q, want %q", exitErr.Suggestion, tt.suggestion)
			}
			if !errors.Is(got, tt.err) {
				t.Error("mapped error lost the original")
			}
		})
	}
}

func TestMapError_Passthrough(t *testing.T) {
	if MapError(nil) != nil {
		t.Error("MapError(nil) != nil")
	}
	orig := errors.NewSystemError(errors.New("x"), "try again")
	if got := MapError(orig); got != error(orig) {
		t.Errorf("MapError(ExitError) = %v, want unchanged", got)
	}
}
