package cli

import (
	"github.com/thoreinstein/mcpm/internal/bundle"
	"github.com/thoreinstein/mcpm/internal/catalog"
	"github.com/thoreinstein/mcpm/internal/cli/prompt"
	"github.com/thoreinstein/mcpm/internal/env"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/workflow"
)

// MapError turns domain errors into exit errors with a suggestion.
func MapError(err error) error {
	var exitErr *errors.ExitError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &exitErr):
		return err
	case errors.Is(err, errors.ErrProjectNotInitialized):
		return errors.NewUserError(err, "Run: mcpm init")
	case errors.Is(err, errors.ErrProjectExists):
		return errors.NewUserError(err, "Use --force to replace it, or mcpm add / mcpm sync to change it")
	case errors.Is(err, errors.ErrCorruptState):
		return errors.NewConfigError(err)
	case errors.Is(err, workflow.ErrNoServers), errors.Is(err, workflow.ErrNoIDEs):
		return errors.NewUserError(err, "Run: mcpm list --available")
	case errors.Is(err, bundle.ErrInvalidName), errors.Is(err, bundle.ErrBuiltinConflict),
		errors.Is(err, bundle.ErrUnknownServers), errors.Is(err, bundle.ErrNoServers):
		return errors.NewUserError(err, "Run: mcpm list --available --bundles")
	case errors.Is(err, prompt.ErrSelectionCancelled):
		return errors.NewUserError(err, "")
	case errors.Is(err, prompt.ErrInvalidSelection), errors.Is(err, prompt.ErrNoOptions),
		errors.Is(err, catalog.ErrBadPattern), errors.Is(err, env.ErrInvalidAssignment),
		errors.Is(err, errors.ErrNotFound), errors.Is(err, errors.ErrInvalidConfig), errors.Is(err, errors.ErrMissingName):
		return errors.NewUserError(err, "")
	default:
		return errors.NewSystemError(err, "")
	}
}

