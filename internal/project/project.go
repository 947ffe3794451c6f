// Package project persists the per-project record of selected MCP servers
// and IDE targets in .mcp/config.json.
package project

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/paths"
	"github.com/thoreinstein/mcpm/pkg/fileutil"
)

// Descriptor is the persisted record of a single project.
type Descriptor struct {
	ID      string            `json:"id,omitempty"`
	Name    string            `json:"name"`
	Servers []string          `json:"servers"`
	IDEs    []string          `json:"ides"`
	EnvVars map[string]string `json:"envVars"`
	Created time.Time         `json:"created"`
	Updated time.Time         `json:"updated"`
}

// New returns a descriptor with a fresh id and equal created/updated times.
func New(name string, servers, ides []string, now time.Time) *Descriptor {
	now = now.UTC().Truncate(time.Millisecond)
	return &Descriptor{
		ID:      uuid.NewString(),
		Name:    name,
		Servers: Dedupe(servers),
		IDEs:    Dedupe(ides),
		EnvVars: map[string]string{},
		Created: now,
		Updated: now,
	}
}

// AddServers appends ids not already present and reports which were added.
func (d *Descriptor) AddServers(ids ...string) (added []string) {
	d.Servers, added = appendNew(d.Servers, ids)
	return added
}

// RemoveServers deletes ids and reports which were present.
func (d *Descriptor) RemoveServers(ids ...string) (removed []string) {
	d.Servers, removed = deleteAll(d.Servers, ids)
	return removed
}

// AddIDEs appends IDE ids not already present and reports which were added.
func (d *Descriptor) AddIDEs(ids ...string) (added []string) {
	d.IDEs, added = appendNew(d.IDEs, ids)
	return added
}

// Touch sets Updated to now.
func (d *Descriptor) Touch(now time.Time) {
	d.Updated = now.UTC().Truncate(time.Millisecond)
}

// Clone returns a deep copy of d.
func (d *Descriptor) Clone() *Descriptor {
	c := *d
	c.Servers = slices.Clone(d.Servers)
	c.IDEs = slices.Clone(d.IDEs)
	c.EnvVars = make(map[string]string, len(d.EnvVars))
	for k, v := range d.EnvVars {
		c.EnvVars[k] = v
	}
	return &c
}

// Dedupe collapses duplicates while preserving first-seen order.
func Dedupe(ids []string) []string {
	out, _ := appendNew(make([]string, 0, len(ids)), ids)
	return out
}

func appendNew(dst, ids []string) (out, added []string) {
	for _, id := range ids {
		if id == "" || slices.Contains(dst, id) {
			continue
		}
		dst = append(dst, id)
		added = append(added, id)
	}
	return dst, added
}

func deleteAll(src, ids []string) (out, removed []string) {
	out = make([]string, 0, len(src))
	for _, id := range src {
		if slices.Contains(ids, id) {
			removed = append(removed, id)
			continue
		}
		out = append(out, id)
	}
	return out, removed
}

// Store reads and writes a project's descriptor.
type Store struct {
	root string
}

// NewStore returns a Store for the project rooted at root.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the project root directory.
func (s *Store) Root() string {
	return s.root
}

// Path returns the state file location.
func (s *Store) Path() string {
	return paths.ProjectStatePath(s.root)
}

// Exists reports whether a state file is present.
func (s *Store) Exists() bool {
	_, exists, err := fileutil.ReadOptional(s.Path())
	return exists || err != nil
}

// Load reads the descriptor. A missing file returns ErrProjectNotInitialized;
// an unparsable one returns ErrCorruptState.
func (s *Store) Load() (*Descriptor, error) {
	data, exists, err := fileutil.ReadOptional(s.Path())
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", s.Path())
	}
	if !exists {
		return nil, errors.Wrapf(errors.ErrProjectNotInitialized, "no state at %s", s.Path())
	}

	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.WithHint(errors.Wrapf(errors.ErrCorruptState, "parsing %s: %v", s.Path(), err),
			"Fix the file by hand, or replace it with: mcpm init --force")
	}
	if d.Name == "" {
		return nil, errors.WithHint(errors.Wrapf(errors.ErrCorruptState, "%s: missing project name", s.Path()),
			"Add a \"name\" field, or replace the file with: mcpm init --force")
	}
	d.Servers = Dedupe(d.Servers)
	d.IDEs = Dedupe(d.IDEs)
	if d.EnvVars == nil {
		d.EnvVars = map[string]string{}
	}
	return &d, nil
}

// Encode renders d exactly as Save would write it.
func Encode(d *Descriptor) ([]byte, error) {
	out := d.Clone()
	if out.Servers == nil {
		out.Servers = []string{}
	}
	if out.IDEs == nil {
		out.IDEs = []string{}
	}
	return fileutil.MarshalJSON(out)
}

// Save writes d atomically, creating the .mcp directory when needed.
func (s *Store) Save(d *Descriptor) error {
	if d == nil || d.Name == "" {
		return errors.Wrap(errors.ErrMissingName, "saving project")
	}
	data, err := Encode(d)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFile(s.Path(), data, fileutil.SecretPerm); err != nil {
		return errors.Wrapf(err, "writing %s", s.Path())
	}
	return nil
}
