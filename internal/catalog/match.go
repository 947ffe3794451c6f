package catalog

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/thoreinstein/mcpm/internal/errors"
)

// ErrBadPattern indicates a server pattern is not a valid glob.
var ErrBadPattern = errors.New("invalid server pattern")

// ExpandPatterns resolves server ids and glob patterns such as "seq*" or
// "{github,context7}" against the catalog. Literal ids are passed through
// in order whether or not they exist so that validation can warn about
// them; patterns expand to matching ids in catalog order. Patterns that
// match nothing are returned in unmatched.
func (c *Catalog) ExpandPatterns(patterns []string) (ids, unmatched []string, err error) {
	seen := make(map[string]bool)
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	for _, p := range patterns {
		if !hasMeta(p) {
			add(p)
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, nil, errors.Wrapf(ErrBadPattern, "%q", p)
		}
		matched := false
		for _, s := range c.servers {
			ok, matchErr := doublestar.Match(p, s.ID)
			if matchErr != nil {
				return nil, nil, errors.Wrapf(ErrBadPattern, "%q", p)
			}
			if ok {
				matched = true
				add(s.ID)
			}
		}
		if !matched {
			unmatched = append(unmatched, p)
		}
	}
	return ids, unmatched, nil
}

func hasMeta(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
