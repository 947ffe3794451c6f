package merge

import (
	"slices"

	"github.com/pelletier/go-toml/v2"

	"github.com/thoreinstein/mcpm/internal/errors"
)

// TOMLCodec handles TOML configs such as ~/.codex/config.toml. TOML
// tables carry no order once decoded, so keys are emitted sorted. Comments
// are not kept; the backup taken before the first write holds them.
type TOMLCodec struct{}

// Decode implements Codec.
func (TOMLCodec) Decode(data []byte) (Object, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(ErrMalformed, "%v", err)
	}
	return objectFromMap(raw), nil
}

// DecodeObject implements Codec.
func (TOMLCodec) DecodeObject(v any) (Object, error) {
	switch val := v.(type) {
	case nil:
		return Object{}, nil
	case Object:
		return val, nil
	case map[string]any:
		return objectFromMap(val), nil
	default:
		return nil, errors.Wrapf(ErrMalformed, "expected table, found %T", v)
	}
}

// Encode implements Codec.
func (TOMLCodec) Encode(doc Object) ([]byte, error) {
	data, err := toml.Marshal(objectToMap(doc))
	if err != nil {
		return nil, errors.Wrap(err, "marshaling TOML")
	}
	return data, nil
}

func objectFromMap(m map[string]any) Object {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	obj := make(Object, 0, len(keys))
	for _, k := range keys {
		obj = append(obj, Member{Key: k, Value: m[k]})
	}
	return obj
}

func objectToMap(o Object) map[string]any {
	m := make(map[string]any, len(o))
	for _, mem := range o {
		if nested, ok := mem.Value.(Object); ok {
			m[mem.Key] = objectToMap(nested)
			continue
		}
		m[mem.Key] = mem.Value
	}
	return m
}
