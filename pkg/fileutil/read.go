package fileutil

import (
	"bytes"
	"io"
	"io/fs"
	"os"

	"github.com/thoreinstein/mcpm/internal/errors"
)

// MaxReadSize bounds every config, state and .env read. Real IDE configs
// are a few kilobytes.
const MaxReadSize = 4 << 20

// ErrTooLarge is returned for files over MaxReadSize.
var ErrTooLarge = errors.Newf("file exceeds %d bytes", MaxReadSize)

// ReadFile reads path, refusing files over MaxReadSize.
func ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Size() > MaxReadSize {
		return nil, errors.Wrap(ErrTooLarge, path)
	}
	data, err := io.ReadAll(io.LimitReader(f, MaxReadSize+1))
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if len(data) > MaxReadSize {
		return nil, errors.Wrap(ErrTooLarge, path)
	}
	return data, nil
}

// ReadOptional is [ReadFile] with a missing file reported as exists=false
// rather than an error.
func ReadOptional(path string) (data []byte, exists bool, err error) {
	data, err = ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return data, true, nil
}

// SameContent reports whether path already holds exactly data. A missing
// file never matches.
func SameContent(path string, data []byte) (bool, error) {
	existing, exists, err := ReadOptional(path)
	if err != nil || !exists {
		return false, err
	}
	return bytes.Equal(existing, data), nil
}
