package merge

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/thoreinstein/mcpm/internal/errors"
)

// JSONCodec keeps member order and passes unknown values through as raw
// JSON. Output is indented with two spaces and ends with a newline.
type JSONCodec struct{}

// Decode implements Codec.
func (JSONCodec) Decode(data []byte) (Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	obj, err := decodeJSONObject(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(ErrMalformed, "trailing data after top-level object")
	}
	return obj, nil
}

// DecodeObject implements Codec.
func (JSONCodec) DecodeObject(v any) (Object, error) {
	switch val := v.(type) {
	case nil:
		return Object{}, nil
	case Object:
		return val, nil
	case json.RawMessage:
		if string(bytes.TrimSpace(val)) == "null" {
			return Object{}, nil
		}
		return decodeJSONObject(json.NewDecoder(bytes.NewReader(val)))
	default:
		return nil, errors.Wrapf(ErrMalformed, "unexpected value type %T", v)
	}
}

func decodeJSONObject(dec *json.Decoder) (Object, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrapf(ErrMalformed, "%v", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.Wrapf(ErrMalformed, "expected object, found %v", tok)
	}

	obj := Object{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrapf(ErrMalformed, "%v", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.Wrapf(ErrMalformed, "expected key, found %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, errors.Wrapf(ErrMalformed, "value of %q: %v", key, err)
		}
		// Duplicate keys: last value wins, first position kept.
		obj = obj.Set(key, raw)
	}

	if _, err := dec.Token(); err != nil {
		return nil, errors.Wrapf(ErrMalformed, "%v", err)
	}
	return obj, nil
}

// Encode implements Codec.
func (JSONCodec) Encode(doc Object) ([]byte, error) {
	var compact bytes.Buffer
	if err := writeJSON(&compact, doc); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, errors.Wrap(err, "indenting JSON")
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case Object:
		buf.WriteByte('{')
		for i, m := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONValue(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSON(buf, m.Value); err != nil {
				return errors.Wrapf(err, "encoding %q", m.Key)
			}
		}
		buf.WriteByte('}')
		return nil
	case json.RawMessage:
		return json.Compact(buf, val)
	default:
		return writeJSONValue(buf, v)
	}
}

func writeJSONValue(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "marshaling JSON")
	}
	// Encoder always terminates values with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}
