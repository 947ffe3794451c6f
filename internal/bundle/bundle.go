// Package bundle persists user-defined server bundles layered on top of the
// built-in catalog bundles.
//
// The registry lives in a single JSON file independent of any project:
//
//	{"bundles": [{"name": ..., "servers": [...], "custom": true, ...}], "lastUpdated": ...}
package bundle

import (
	"encoding/json"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/thoreinstein/mcpm/internal/catalog"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/project"
	"github.com/thoreinstein/mcpm/pkg/fileutil"
)

// CustomCategory is the category assigned to every user-defined bundle.
const CustomCategory = "custom"

// Validation errors for bundle authoring.
var (
	ErrInvalidName     = errors.New("invalid bundle name")
	ErrBuiltinConflict = errors.New("bundle name conflicts with built-in bundle")
	ErrUnknownServers  = errors.New("unknown servers")
	ErrNoServers       = errors.New("bundle must contain at least one server")
)

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Registry is the on-disk shape of the custom bundle file.
type Registry struct {
	Bundles     []catalog.Bundle `json:"bundles"`
	LastUpdated time.Time        `json:"lastUpdated"`
}

// Store reads and writes custom bundles.
type Store struct {
	path string
	cat  *catalog.Catalog
	now  func() time.Time
}

// NewStore returns a Store backed by the registry file at path.
func NewStore(path string, cat *catalog.Catalog) *Store {
	return &Store{path: path, cat: cat, now: time.Now}
}

// Path returns the registry file location.
func (s *Store) Path() string {
	return s.path
}

// Catalog returns the catalog bundles are validated against.
func (s *Store) Catalog() *catalog.Catalog {
	return s.cat
}

// ValidateName checks a bundle name for authoring.
func (s *Store) ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.Wrap(ErrInvalidName, "name cannot be empty")
	}
	if strings.ContainsFunc(name, unicode.IsSpace) {
		return errors.Wrapf(ErrInvalidName, "%q contains whitespace", name)
	}
	if !namePattern.MatchString(name) {
		return errors.Wrapf(ErrInvalidName, "%q may only contain letters, numbers, hyphens, and underscores", name)
	}
	if s.cat.IsBuiltinBundle(name) {
		return errors.Wrapf(ErrBuiltinConflict, "%q", name)
	}
	return nil
}

// List returns the custom bundles in registry order. A missing registry
// file yields an empty list.
func (s *Store) List() ([]catalog.Bundle, error) {
	reg, err := s.load()
	if err != nil {
		return nil, err
	}
	return reg.Bundles, nil
}

// Get returns the custom bundle called name.
func (s *Store) Get(name string) (catalog.Bundle, error) {
	bundles, err := s.List()
	if err != nil {
		return catalog.Bundle{}, err
	}
	for _, b := range bundles {
		if b.Name == name {
			return b, nil
		}
	}
	return catalog.Bundle{}, errors.Wrapf(errors.ErrNotFound, "custom bundle %q", name)
}

// Resolve looks name up among built-in bundles first, then custom ones.
func (s *Store) Resolve(name string) (catalog.Bundle, error) {
	if b, ok := s.cat.Bundle(name); ok {
		return b, nil
	}
	b, err := s.Get(name)
	if err != nil {
		return catalog.Bundle{}, errors.Wrapf(errors.ErrNotFound, "bundle %q", name)
	}
	return b, nil
}

// All returns built-in bundles followed by custom bundles.
func (s *Store) All() ([]catalog.Bundle, error) {
	custom, err := s.List()
	if err != nil {
		return nil, err
	}
	return append(s.cat.Bundles(), custom...), nil
}

// Save validates and stores a custom bundle, replacing any existing bundle
// with the same name. Every server must exist in the catalog.
func (s *Store) Save(name, description string, servers []string) (catalog.Bundle, error) {
	if err := s.ValidateName(name); err != nil {
		return catalog.Bundle{}, err
	}

	servers = project.Dedupe(servers)
	if len(servers) == 0 {
		return catalog.Bundle{}, ErrNoServers
	}
	if _, unknown := s.cat.ValidateServers(servers); len(unknown) > 0 {
		return catalog.Bundle{}, errors.Wrapf(ErrUnknownServers, "%s", strings.Join(unknown, ", "))
	}

	reg, err := s.load()
	if err != nil {
		return catalog.Bundle{}, err
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	b := catalog.Bundle{
		Name:        name,
		Description: description,
		Servers:     servers,
		Category:    CustomCategory,
		Custom:      true,
		Created:     &now,
	}

	reg.Bundles = slices.DeleteFunc(reg.Bundles, func(e catalog.Bundle) bool { return e.Name == name })
	reg.Bundles = append(reg.Bundles, b)
	if err := s.write(reg, now); err != nil {
		return catalog.Bundle{}, err
	}
	return b, nil
}

// Remove deletes the custom bundle called name.
func (s *Store) Remove(name string) error {
	reg, err := s.load()
	if err != nil {
		return err
	}

	before := len(reg.Bundles)
	reg.Bundles = slices.DeleteFunc(reg.Bundles, func(e catalog.Bundle) bool { return e.Name == name })
	if len(reg.Bundles) == before {
		return errors.Wrapf(errors.ErrNotFound, "custom bundle %q", name)
	}
	return s.write(reg, s.now().UTC().Truncate(time.Millisecond))
}

func (s *Store) load() (*Registry, error) {
	reg := &Registry{}
	data, exists, err := fileutil.ReadOptional(s.path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading bundle registry %s", s.path)
	}
	if !exists {
		return reg, nil
	}
	if err := json.Unmarshal(data, reg); err != nil {
		return nil, errors.WithHint(errors.Wrapf(errors.ErrCorruptState, "parsing bundle registry %s: %v", s.path, err),
			"Fix the JSON with: mcpm bundle edit")
	}
	for i := range reg.Bundles {
		reg.Bundles[i].Custom = true
		if reg.Bundles[i].Category == "" {
			reg.Bundles[i].Category = CustomCategory
		}
	}
	return reg, nil
}

func (s *Store) write(reg *Registry, now time.Time) error {
	if reg.Bundles == nil {
		reg.Bundles = []catalog.Bundle{}
	}
	reg.LastUpdated = now
	data, err := fileutil.MarshalJSON(reg)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFile(s.path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing bundle registry %s", s.path)
	}
	return nil
}
