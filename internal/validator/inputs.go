package validator

import (
	"slices"
	"strings"
	"time"

	"github.com/thoreinstein/mcpm/internal/bundle"
	"github.com/thoreinstein/mcpm/internal/catalog"
	"github.com/thoreinstein/mcpm/internal/config"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/project"
)

// Config reports every field config.Validate rejects.
func Config(cfg *config.Config) *Result {
	res := &Result{Subject: "config"}
	for _, err := range config.Validate(cfg) {
		var fe *config.FieldError
		if errors.As(err, &fe) {
			res.AddError(fe.Field, fe.Err.Error(), fe.Value)
			continue
		}
		res.AddError("", err.Error(), nil)
	}
	return res
}

// Project checks a stored descriptor against the catalog. Unknown ids are
// warnings because the apply path drops them; a missing name is an error.
func Project(d *project.Descriptor, cat *catalog.Catalog) *Result {
	res := &Result{Subject: "project"}
	if d == nil {
		res.AddError("", "project state is empty", nil)
		return res
	}

	if strings.TrimSpace(d.Name) == "" {
		res.AddError("name", "is required", nil)
	}
	if d.ID == "" {
		res.AddInfo("id", "missing, a new id is assigned on the next save", nil)
	}
	if !d.Created.IsZero() && d.Updated.Before(d.Created) {
		res.AddWarning("updated", "is before created", d.Updated.Format(time.RFC3339))
	}

	checkIDs(res, "servers", d.Servers, cat.ValidateServers)
	checkIDs(res, "ides", d.IDEs, cat.ValidateIDEs)

	if len(d.Servers) == 0 {
		res.AddWarning("servers", "no servers selected", nil)
	}
	if len(d.IDEs) == 0 {
		res.AddWarning("ides", "no IDE targets selected", nil)
	}
	if len(d.EnvVars) > 0 {
		res.AddWarning("envVars", "secret values are stored in project state", len(d.EnvVars)).
			Context = map[string]string{"fix": "move them to .mcp/.env"}
	}

	valid, _ := cat.ValidateServers(d.Servers)
	required, _ := cat.EnvKeys(valid)
	if len(required) > 0 {
		res.AddInfo("env", "required keys: "+strings.Join(required, ", "), nil)
	}
	return res
}

// Bundle checks a custom bundle definition before it is saved. Unlike
// project state, any unknown server makes the bundle invalid.
func Bundle(store *bundle.Store, name string, servers []string) *Result {
	res := &Result{Subject: "bundle " + name}
	if err := store.ValidateName(name); err != nil {
		res.AddError("name", err.Error(), name)
	}

	if len(servers) == 0 {
		res.AddError("servers", bundle.ErrNoServers.Error(), nil)
		return res
	}
	if dups := duplicates(servers); len(dups) > 0 {
		res.AddWarning("servers", "duplicate ids are collapsed", strings.Join(dups, ", "))
	}
	if _, unknown := store.Catalog().ValidateServers(servers); len(unknown) > 0 {
		for _, id := range unknown {
			res.AddError("servers", "unknown server", id)
		}
	}
	return res
}

func checkIDs(res *Result, field string, ids []string, validate func([]string) ([]string, []string)) {
	_, unknown := validate(ids)
	for _, id := range unknown {
		res.AddWarning(field, "unknown id is dropped on next apply", id)
	}
	if dups := duplicates(ids); len(dups) > 0 {
		res.AddWarning(field, "duplicate ids", strings.Join(dups, ", "))
	}
}

func duplicates(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var dups []string
	for _, id := range ids {
		if seen[id] && !slices.Contains(dups, id) {
			dups = append(dups, id)
		}
		seen[id] = true
	}
	return dups
}
