package merge

import (
	"bytes"
	"encoding/json"
	"os"
	"slices"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/render"
	"github.com/thoreinstein/mcpm/pkg/fileutil"
)

// Action is the write decision for one target file.
type Action string

// Write decisions.
const (
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionUnchanged Action = "unchanged"
)

// Input describes one merge.
type Input struct {
	// Existing is the current file content; Exists reports whether the
	// file was present at all.
	Existing []byte
	Exists   bool

	// Key is the managed top-level key.
	Key string

	// Rendered holds the launch specs to write.
	Rendered *render.Config

	// Remove lists server ids to delete from the managed key. Ids that
	// are also rendered are kept.
	Remove []string

	Codec Codec
}

// Result is the outcome of Plan.
type Result struct {
	// Content is the exact file content Commit writes.
	Content []byte

	Action Action

	// Malformed is set when existing content could not be parsed and was
	// treated as empty.
	Malformed error

	// Managed-entry changes, each in file order.
	Added     []string
	Updated   []string
	Unchanged []string
	Preserved []string
	Removed   []string
}

// Changed reports whether committing the result would modify the file.
func (r *Result) Changed() bool {
	return r.Action != ActionUnchanged
}

// Plan computes the merged content without touching the filesystem.
// It fails only when the result cannot be encoded.
func Plan(in Input) (*Result, error) {
	if in.Codec == nil {
		return nil, errors.New("merge: codec is required")
	}
	if in.Key == "" {
		return nil, errors.Wrap(errors.ErrMissingName, "merge: managed key")
	}

	res := &Result{}
	doc := Object{}
	if in.Exists && len(bytes.TrimSpace(in.Existing)) > 0 {
		parsed, err := in.Codec.Decode(in.Existing)
		if err != nil {
			res.Malformed = err
		} else {
			doc = parsed
		}
	}

	var current Object
	if v, ok := doc.Get(in.Key); ok {
		obj, err := in.Codec.DecodeObject(v)
		if err != nil {
			res.Malformed = errors.Wrapf(err, "%s", in.Key)
		} else {
			current = obj
		}
	}

	servers := mergeServers(current, in.Rendered, in.Remove, res)
	doc = doc.Set(in.Key, servers)

	content, err := in.Codec.Encode(doc)
	if err != nil {
		return nil, err
	}
	res.Content = content

	switch {
	case !in.Exists:
		res.Action = ActionCreate
	case bytes.Equal(in.Existing, content):
		res.Action = ActionUnchanged
	default:
		res.Action = ActionUpdate
	}
	return res, nil
}

func mergeServers(current Object, rendered *render.Config, remove []string, res *Result) Object {
	specs := make(map[string]render.LaunchSpec)
	var order []string
	if rendered != nil {
		for _, e := range rendered.Entries {
			specs[e.ID] = e.Spec
			order = append(order, e.ID)
		}
	}

	out := make(Object, 0, len(current)+len(order))
	seen := make(map[string]bool, len(current))
	for _, m := range current {
		seen[m.Key] = true
		spec, isRendered := specs[m.Key]
		switch {
		case isRendered:
			if before := canonical(m.Value); before != "" && before == canonical(spec) {
				res.Unchanged = append(res.Unchanged, m.Key)
			} else {
				res.Updated = append(res.Updated, m.Key)
			}
			out = append(out, Member{Key: m.Key, Value: spec})
		case slices.Contains(remove, m.Key):
			res.Removed = append(res.Removed, m.Key)
		default:
			res.Preserved = append(res.Preserved, m.Key)
			out = append(out, m)
		}
	}

	for _, id := range order {
		if seen[id] {
			continue
		}
		res.Added = append(res.Added, id)
		out = append(out, Member{Key: id, Value: specs[id]})
	}
	return out
}

// canonical renders v as key-sorted JSON for comparison across codecs.
func canonical(v any) string {
	var data []byte
	var err error
	if raw, ok := v.(json.RawMessage); ok {
		data = raw
	} else if data, err = json.Marshal(v); err != nil {
		return ""
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return ""
	}
	out, err := json.Marshal(generic)
	if err != nil {
		return ""
	}
	return string(out)
}

// Commit writes a planned result to path. Unchanged results are not
// written. The parent directory is created when missing.
func Commit(path string, res *Result, perm os.FileMode) error {
	if res == nil || !res.Changed() {
		return nil
	}
	if err := fileutil.WriteFile(path, res.Content, perm); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}
