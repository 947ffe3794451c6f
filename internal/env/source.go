package env

import (
	"context"
	"strings"

	"github.com/thoreinstein/mcpm/internal/errors"
)

// Source names reported in Result.Origins.
const (
	SourceExplicit = "explicit"
	SourceDoppler  = "doppler"
	SourceDotEnv   = "dotenv"
)

// ErrUnavailable indicates a source cannot be consulted at all.
var ErrUnavailable = errors.New("env source unavailable")

// ErrInvalidAssignment indicates a malformed KEY=VALUE argument.
var ErrInvalidAssignment = errors.New("invalid KEY=VALUE assignment")

// Source produces values for a subset of the requested keys.
type Source interface {
	// Name identifies the source in logs and reports.
	Name() string

	// Lookup returns values for any of keys it can satisfy. Keys it cannot
	// satisfy are omitted from the result.
	Lookup(ctx context.Context, keys []string) (map[string]string, error)
}

// Explicit is a source backed by user-supplied assignments.
type Explicit map[string]string

// ParseAssignments parses KEY=VALUE pairs, splitting on the first '='.
// Later assignments of the same key win.
func ParseAssignments(pairs []string) (Explicit, error) {
	out := make(Explicit, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" || strings.ContainsAny(k, " \t") {
			return nil, errors.Wrapf(ErrInvalidAssignment, "%q", p)
		}
		out[k] = v
	}
	return out, nil
}

// Name implements Source.
func (Explicit) Name() string { return SourceExplicit }

// Lookup implements Source.
func (e Explicit) Lookup(_ context.Context, keys []string) (map[string]string, error) {
	return pick(keys, func(k string) (string, bool) {
		v, ok := e[k]
		return v, ok
	}), nil
}

// pick collects non-empty values for keys.
func pick(keys []string, get func(string) (string, bool)) map[string]string {
	out := make(map[string]string)
	for _, k := range keys {
		if v, ok := get(k); ok && v != "" {
			out[k] = v
		}
	}
	return out
}
