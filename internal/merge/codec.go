package merge

import (
	"github.com/thoreinstein/mcpm/internal/catalog"
	"github.com/thoreinstein/mcpm/internal/errors"
)

// ErrMalformed indicates existing content could not be parsed.
var ErrMalformed = errors.New("malformed config")

// Codec converts between a file format and ordered objects.
type Codec interface {
	// Decode parses a whole document whose root must be an object.
	Decode(data []byte) (Object, error)

	// DecodeObject converts a member value produced by Decode into an
	// Object. A null value yields an empty Object.
	DecodeObject(v any) (Object, error)

	// Encode renders a document. Values may be Objects, values produced by
	// Decode, or any type the format can marshal.
	Encode(doc Object) ([]byte, error)
}

// CodecFor returns the codec for an IDE config format.
func CodecFor(format catalog.Format) (Codec, error) {
	switch format {
	case catalog.FormatJSON:
		return JSONCodec{}, nil
	case catalog.FormatTOML:
		return TOMLCodec{}, nil
	default:
		return nil, errors.Newf("no merge codec for format %q", format)
	}
}
