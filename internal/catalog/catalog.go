package catalog

import (
	"fmt"
	"slices"
	"time"

	"github.com/thoreinstein/mcpm/internal/errors"
)

// Category classifies a server.
type Category string

// Server categories.
const (
	CategoryCore        Category = "core"
	CategoryIntegration Category = "integration"
	CategorySpecialized Category = "specialized"
)

// Valid reports whether c is one of the closed set of categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryCore, CategoryIntegration, CategorySpecialized:
		return true
	}
	return false
}

// Format is the native configuration format of an IDE target.
type Format string

// IDE configuration formats.
const (
	FormatJSON   Format = "json"
	FormatTOML   Format = "toml"
	FormatScript Format = "script"
)

// Extension returns the file extension used for project-local copies.
func (f Format) Extension() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatScript:
		return "sh"
	default:
		return "json"
	}
}

// DefaultManagedKey is the top-level key mcpm owns in JSON IDE configs.
const DefaultManagedKey = "mcpServers"

// Server describes an MCP server package that can be launched by an IDE.
type Server struct {
	ID          string   `json:"id" yaml:"id"`
	Package     string   `json:"package" yaml:"package"`
	Version     string   `json:"version" yaml:"version"`
	Description string   `json:"description" yaml:"description"`
	Category    Category `json:"category" yaml:"category"`
	RequiredEnv []string `json:"requiredEnv,omitempty" yaml:"required_env,omitempty"`
	OptionalEnv []string `json:"optionalEnv,omitempty" yaml:"optional_env,omitempty"`
}

// PackageSpec returns the npm package reference, e.g. "@playwright/mcp@0.0.36".
func (s Server) PackageSpec() string {
	if s.Version == "" {
		return s.Package
	}
	return s.Package + "@" + s.Version
}

// Bundle is a named, ordered set of server ids.
type Bundle struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Servers     []string   `json:"servers" yaml:"servers"`
	Category    string     `json:"category" yaml:"category"`
	Custom      bool       `json:"custom,omitempty" yaml:"custom,omitempty"`
	Created     *time.Time `json:"created,omitempty" yaml:"created,omitempty"`
}

// IDE describes a consumer of generated MCP configuration.
type IDE struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"displayName" yaml:"display_name"`

	// ConfigPath is the absolute path of the global config file. Empty for
	// targets configured purely through a CLI.
	ConfigPath string `json:"configPath" yaml:"config_path"`

	Format Format `json:"format" yaml:"format"`

	// ManagedKey is the top-level key holding the server map.
	ManagedKey string `json:"managedKey,omitempty" yaml:"managed_key,omitempty"`

	// ProjectConfig reports whether a project-local copy is written.
	ProjectConfig bool `json:"projectConfig" yaml:"project_config"`

	// CLI is the executable name used for detection, if any.
	CLI string `json:"cli,omitempty" yaml:"cli,omitempty"`

	// App is the macOS application bundle name used for detection, if any.
	App string `json:"app,omitempty" yaml:"app,omitempty"`
}

// Key returns the managed key for the target, defaulting to mcpServers.
func (i IDE) Key() string {
	if i.ManagedKey == "" {
		return DefaultManagedKey
	}
	return i.ManagedKey
}

// Catalog is an immutable set of servers, bundles and IDE targets.
// It is safe for concurrent use.
type Catalog struct {
	servers []Server
	bundles []Bundle
	ides    []IDE

	serverIdx map[string]int
	bundleIdx map[string]int
	ideIdx    map[string]int
}

// New builds a Catalog from the given tables. Ids must be unique within
// each table and every bundle must reference known servers.
func New(servers []Server, bundles []Bundle, ides []IDE) (*Catalog, error) {
	c := &Catalog{
		servers:   slices.Clone(servers),
		bundles:   slices.Clone(bundles),
		ides:      slices.Clone(ides),
		serverIdx: make(map[string]int, len(servers)),
		bundleIdx: make(map[string]int, len(bundles)),
		ideIdx:    make(map[string]int, len(ides)),
	}

	for i, s := range c.servers {
		if s.ID == "" {
			return nil, errors.Wrapf(errors.ErrMissingName, "server at index %d", i)
		}
		if _, dup := c.serverIdx[s.ID]; dup {
			return nil, errors.Newf("duplicate server id %q", s.ID)
		}
		c.serverIdx[s.ID] = i
	}

	for i, b := range c.bundles {
		if b.Name == "" {
			return nil, errors.Wrapf(errors.ErrMissingName, "bundle at index %d", i)
		}
		if _, dup := c.bundleIdx[b.Name]; dup {
			return nil, errors.Newf("duplicate bundle id %q", b.Name)
		}
		if _, unknown := c.ValidateServers(b.Servers); len(unknown) > 0 {
			return nil, errors.Newf("bundle %q references unknown servers: %v", b.Name, unknown)
		}
		b.Servers = slices.Clone(b.Servers)
		c.bundles[i] = b
		c.bundleIdx[b.Name] = i
	}

	for i, ide := range c.ides {
		if ide.ID == "" {
			return nil, errors.Wrapf(errors.ErrMissingName, "ide at index %d", i)
		}
		if _, dup := c.ideIdx[ide.ID]; dup {
			return nil, errors.Newf("duplicate ide id %q", ide.ID)
		}
		c.ideIdx[ide.ID] = i
	}

	return c, nil
}

// MustNew is like New but panics on error. Intended for static tables.
func MustNew(servers []Server, bundles []Bundle, ides []IDE) *Catalog {
	c, err := New(servers, bundles, ides)
	if err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
	return c
}

// Server returns the server with the given id.
func (c *Catalog) Server(id string) (Server, bool) {
	i, ok := c.serverIdx[id]
	if !ok {
		return Server{}, false
	}
	return c.servers[i], true
}

// Servers returns all servers in catalog order.
func (c *Catalog) Servers() []Server {
	return slices.Clone(c.servers)
}

// ServerIDs returns all server ids in catalog order.
func (c *Catalog) ServerIDs() []string {
	ids := make([]string, len(c.servers))
	for i, s := range c.servers {
		ids[i] = s.ID
	}
	return ids
}

// Bundle returns the built-in bundle with the given name.
func (c *Catalog) Bundle(name string) (Bundle, bool) {
	i, ok := c.bundleIdx[name]
	if !ok {
		return Bundle{}, false
	}
	b := c.bundles[i]
	b.Servers = slices.Clone(b.Servers)
	return b, true
}

// Bundles returns all built-in bundles in catalog order.
func (c *Catalog) Bundles() []Bundle {
	out := make([]Bundle, len(c.bundles))
	for i, b := range c.bundles {
		b.Servers = slices.Clone(b.Servers)
		out[i] = b
	}
	return out
}

// IsBuiltinBundle reports whether name is a built-in bundle id.
func (c *Catalog) IsBuiltinBundle(name string) bool {
	_, ok := c.bundleIdx[name]
	return ok
}

// IDE returns the IDE target with the given id.
func (c *Catalog) IDE(id string) (IDE, bool) {
	i, ok := c.ideIdx[id]
	if !ok {
		return IDE{}, false
	}
	return c.ides[i], true
}

// IDEs returns all IDE targets in catalog order.
func (c *Catalog) IDEs() []IDE {
	return slices.Clone(c.ides)
}

// IDEIDs returns all IDE ids in catalog order.
func (c *Catalog) IDEIDs() []string {
	ids := make([]string, len(c.ides))
	for i, ide := range c.ides {
		ids[i] = ide.ID
	}
	return ids
}

// ValidateServers splits ids into known and unknown server ids.
// Duplicates are collapsed and input order is preserved in both results.
func (c *Catalog) ValidateServers(ids []string) (valid, unknown []string) {
	return partition(ids, func(id string) bool {
		_, ok := c.serverIdx[id]
		return ok
	})
}

// ValidateIDEs splits ids into known and unknown IDE ids.
// Duplicates are collapsed and input order is preserved in both results.
func (c *Catalog) ValidateIDEs(ids []string) (valid, unknown []string) {
	return partition(ids, func(id string) bool {
		_, ok := c.ideIdx[id]
		return ok
	})
}

// EnvKeys returns the union of required and optional env keys of the
// given servers, in server order with duplicates removed. Unknown ids are
// ignored.
func (c *Catalog) EnvKeys(ids []string) (required, optional []string) {
	seenReq := make(map[string]bool)
	seenOpt := make(map[string]bool)
	for _, id := range ids {
		s, ok := c.Server(id)
		if !ok {
			continue
		}
		for _, k := range s.RequiredEnv {
			if !seenReq[k] {
				seenReq[k] = true
				required = append(required, k)
			}
		}
		for _, k := range s.OptionalEnv {
			if !seenOpt[k] {
				seenOpt[k] = true
				optional = append(optional, k)
			}
		}
	}
	// A key required by one server and optional for another is required.
	optional = slices.DeleteFunc(optional, func(k string) bool { return seenReq[k] })
	return required, optional
}

func partition(ids []string, known func(string) bool) (valid, unknown []string) {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if known(id) {
			valid = append(valid, id)
		} else {
			unknown = append(unknown, id)
		}
	}
	return valid, unknown
}
