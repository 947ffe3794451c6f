package env

import (
	"context"
	"log/slog"
	"slices"

	"github.com/thoreinstein/mcpm/internal/catalog"
)

// Resolver folds an ordered chain of sources into concrete values.
type Resolver struct {
	cat     *catalog.Catalog
	sources []Source
	logger  *slog.Logger
}

// NewResolver returns a resolver consulting sources highest priority first.
// Nil sources are skipped.
func NewResolver(cat *catalog.Catalog, logger *slog.Logger, sources ...Source) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		cat:     cat,
		sources: slices.DeleteFunc(slices.Clone(sources), func(s Source) bool { return s == nil }),
		logger:  logger,
	}
}

// MissingKeys lists the required keys one server still lacks.
type MissingKeys struct {
	Server string
	Keys   []string
}

// Result is the outcome of one resolution.
type Result struct {
	// Values holds only keys that were found, never empty strings.
	Values map[string]string

	// Origins maps each found key to the source that produced it.
	Origins map[string]string

	// Required and Optional are the keys requested, in server order.
	Required []string
	Optional []string

	// Missing lists, per server in selection order, required keys that
	// no source could supply.
	Missing []MissingKeys
}

// Complete reports whether every required key of server was resolved.
func (r *Result) Complete(server catalog.Server) bool {
	for _, k := range server.RequiredEnv {
		if _, ok := r.Values[k]; !ok {
			return false
		}
	}
	return true
}

// Resolve computes the env keys needed by servers and resolves them.
// Unknown server ids contribute no keys.
func (r *Resolver) Resolve(ctx context.Context, servers []string) *Result {
	required, optional := r.cat.EnvKeys(servers)
	res := &Result{
		Values:   make(map[string]string),
		Origins:  make(map[string]string),
		Required: required,
		Optional: optional,
	}

	pending := append(slices.Clone(required), optional...)
	for _, src := range r.sources {
		if len(pending) == 0 {
			break
		}

		got, err := src.Lookup(ctx, pending)
		if err != nil {
			r.logger.Debug("env source skipped", "source", src.Name(), "error", err)
			continue
		}

		next := make([]string, 0, len(pending))
		for _, k := range pending {
			if v, ok := got[k]; ok && v != "" {
				res.Values[k] = v
				res.Origins[k] = src.Name()
				continue
			}
			next = append(next, k)
		}
		r.logger.Debug("env source consulted",
			"source", src.Name(), "found", len(pending)-len(next), "remaining", len(next))
		pending = next
	}

	for _, id := range servers {
		s, ok := r.cat.Server(id)
		if !ok {
			continue
		}
		var missing []string
		for _, k := range s.RequiredEnv {
			if _, found := res.Values[k]; !found {
				missing = append(missing, k)
			}
		}
		if len(missing) > 0 && !slices.ContainsFunc(res.Missing, func(m MissingKeys) bool { return m.Server == id }) {
			res.Missing = append(res.Missing, MissingKeys{Server: id, Keys: missing})
		}
	}

	return res
}
