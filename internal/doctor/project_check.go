package doctor

import (
	"context"
	"fmt"

	"github.com/thoreinstein/mcpm/internal/catalog"
	"github.com/thoreinstein/mcpm/internal/env"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/ide"
	"github.com/thoreinstein/mcpm/internal/project"
)

var _ Fixer = (*PathPermissionCheck)(nil)

// ProjectCheck verifies the project state file loads and only references
// known servers and IDEs.
type ProjectCheck struct {
	store *project.Store
	cat   *catalog.Catalog
}

var _ Check = (*ProjectCheck)(nil)

// NewProjectCheck creates a project state check.
func NewProjectCheck(store *project.Store, cat *catalog.Catalog) *ProjectCheck {
	return &ProjectCheck{store: store, cat: cat}
}

// Name returns the unique identifier for this check.
func (c *ProjectCheck) Name() string { return "project-state" }

// Category returns the grouping for this check.
func (c *ProjectCheck) Category() string { return "project" }

// Run loads the project state.
func (c *ProjectCheck) Run(context.Context) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"path": c.store.Path()},
	}

	d, err := c.store.Load()
	switch {
	case errors.Is(err, errors.ErrProjectNotInitialized):
		result.Status = SeverityInfo
		result.Message = "no project in this directory"
		result.FixHint = "run: mcpm init"
		return result
	case errors.Is(err, errors.ErrCorruptState):
		result.Status = SeverityError
		result.Message = "project state is corrupt"
		result.Details["error"] = err.Error()
		result.FixHint = errors.Hint(err)
		return result
	case err != nil:
		result.Status = SeverityError
		result.Message = "cannot read project state"
		result.Details["error"] = err.Error()
		return result
	}

	_, unknownServers := c.cat.ValidateServers(d.Servers)
	_, unknownIDEs := c.cat.ValidateIDEs(d.IDEs)
	result.Details["name"] = d.Name
	result.Details["servers"] = d.Servers
	result.Details["ides"] = d.IDEs

	if len(unknownServers)+len(unknownIDEs) > 0 {
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("project %q references unknown ids", d.Name)
		result.Details["unknown_servers"] = unknownServers
		result.Details["unknown_ides"] = unknownIDEs
		result.FixHint = "run: mcpm sync (unknown ids are dropped)"
		return result
	}

	result.Status = SeverityPass
	result.Message = fmt.Sprintf("project %q: %d server(s), %d IDE(s)", d.Name, len(d.Servers), len(d.IDEs))
	return result
}

// IDECheck reports which IDE targets are installed.
type IDECheck struct {
	detector *ide.Detector
	cat      *catalog.Catalog
}

var _ Check = (*IDECheck)(nil)

// NewIDECheck creates an IDE detection check.
func NewIDECheck(detector *ide.Detector, cat *catalog.Catalog) *IDECheck {
	return &IDECheck{detector: detector, cat: cat}
}

// Name returns the unique identifier for this check.
func (c *IDECheck) Name() string { return "ide-detection" }

// Category returns the grouping for this check.
func (c *IDECheck) Category() string { return "ide" }

// Run detects every IDE in the catalog.
func (c *IDECheck) Run(context.Context) *CheckResult {
	detections := c.detector.DetectAll(c.cat)

	ides := make(map[string]any, len(detections))
	installed := 0
	for _, d := range detections {
		ides[d.IDE.ID] = map[string]any{
			"status":  string(d.Status),
			"signals": d.Signals,
			"config":  d.IDE.ConfigPath,
		}
		if d.Installed() {
			installed++
		}
	}

	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details: map[string]any{
			"ides":      ides,
			"installed": installed,
			"total":     len(detections),
		},
	}
	if installed == 0 {
		result.Status = SeverityWarning
		result.Message = "no supported IDEs detected"
		result.FixHint = "install Cursor, Windsurf, Claude, Warp or Codex"
		return result
	}
	result.Status = SeverityPass
	result.Message = fmt.Sprintf("%d of %d IDE(s) detected", installed, len(detections))
	return result
}

// SecretsProviderCheck reports whether the Doppler CLI is usable.
type SecretsProviderCheck struct {
	doppler *env.Doppler
	enabled bool
}

var _ Check = (*SecretsProviderCheck)(nil)

// NewSecretsProviderCheck creates a Doppler availability check. When the
// provider is not enabled a missing CLI is informational only.
func NewSecretsProviderCheck(doppler *env.Doppler, enabled bool) *SecretsProviderCheck {
	return &SecretsProviderCheck{doppler: doppler, enabled: enabled}
}

// Name returns the unique identifier for this check.
func (c *SecretsProviderCheck) Name() string { return "secrets-provider" }

// Category returns the grouping for this check.
func (c *SecretsProviderCheck) Category() string { return "env" }

// Run checks installation and authentication.
func (c *SecretsProviderCheck) Run(ctx context.Context) *CheckResult {
	st := c.doppler.Check(ctx)
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details: map[string]any{
			"enabled":       c.enabled,
			"installed":     st.Installed,
			"authenticated": st.Authenticated,
		},
	}
	if st.Version != "" {
		result.Details["version"] = st.Version
	}

	notReady := SeverityInfo
	if c.enabled {
		notReady = SeverityWarning
	}
	switch {
	case !st.Installed:
		result.Status = notReady
		result.Message = "doppler CLI not installed"
		result.FixHint = "install the Doppler CLI or disable doppler.enabled"
	case !st.Authenticated:
		result.Status = notReady
		result.Message = "doppler CLI not authenticated"
		result.FixHint = "run: doppler login"
	default:
		result.Status = SeverityPass
		result.Message = "doppler CLI ready"
	}
	return result
}

// ResolveFunc resolves env values for the current project.
type ResolveFunc func(ctx context.Context) (*env.Result, error)

// EnvCoverageCheck reports required env keys no source can supply.
type EnvCoverageCheck struct {
	resolve ResolveFunc
}

var _ Check = (*EnvCoverageCheck)(nil)

// NewEnvCoverageCheck creates an env coverage check.
func NewEnvCoverageCheck(resolve ResolveFunc) *EnvCoverageCheck {
	return &EnvCoverageCheck{resolve: resolve}
}

// Name returns the unique identifier for this check.
func (c *EnvCoverageCheck) Name() string { return "env-coverage" }

// Category returns the grouping for this check.
func (c *EnvCoverageCheck) Category() string { return "env" }

// Run resolves env and lists gaps per server. Values are never reported.
func (c *EnvCoverageCheck) Run(ctx context.Context) *CheckResult {
	result := &CheckResult{Name: c.Name(), Category: c.Category(), Details: map[string]any{}}

	res, err := c.resolve(ctx)
	if err != nil {
		result.Status = SeverityInfo
		result.Message = "env coverage skipped: " + err.Error()
		return result
	}

	sources := make(map[string]string, len(res.Origins))
	for k, origin := range res.Origins {
		sources[k] = origin
	}
	result.Details["resolved"] = sources
	result.Details["required"] = len(res.Required)

	if len(res.Missing) == 0 {
		result.Status = SeverityPass
		result.Message = fmt.Sprintf("all %d required key(s) resolved", len(res.Required))
		return result
	}

	missing := make(map[string][]string, len(res.Missing))
	count := 0
	for _, m := range res.Missing {
		missing[m.Server] = m.Keys
		count += len(m.Keys)
	}
	result.Details["missing"] = missing
	result.Status = SeverityWarning
	result.Message = fmt.Sprintf("%d required key(s) missing across %d server(s)", count, len(res.Missing))
	result.FixHint = "add the keys to .mcp/.env (see .mcp/.env.example) or pass -e KEY=VALUE"
	return result
}
