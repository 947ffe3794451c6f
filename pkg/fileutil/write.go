// Package fileutil holds the file I/O every mcpm writer shares: atomic
// replacement, bounded reads, and the on-disk JSON and YAML encodings.
package fileutil

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mcpm/internal/errors"
)

// SecretPerm is the mode of files that may contain resolved secrets.
const SecretPerm os.FileMode = 0o600

const dirPerm os.FileMode = 0o755

// WriteFile replaces path with data. Missing parent directories are
// created. The data goes to a temp file in the same directory that is
// synced and renamed over path, so readers see either the old or the new
// content, never a partial write.
func WriteFile(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return errors.Wrapf(err, "creating directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return errors.Wrap(err, "writing temp file")
	}
	if err := tmp.Chmod(perm); err != nil {
		return errors.Wrap(err, "setting file mode")
	}
	if err := tmp.Sync(); err != nil {
		return errors.Wrap(err, "syncing temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "replacing %s", path)
	}
	return nil
}

// MarshalJSON renders v the way mcpm stores JSON: two-space indent, no
// HTML escaping so "@scope/pkg" and URLs stay readable, trailing newline.
func MarshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "marshaling JSON")
	}
	return buf.Bytes(), nil
}

// WriteJSON writes v with [MarshalJSON] through [WriteFile].
func WriteJSON(path string, v any, perm os.FileMode) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return err
	}
	return WriteFile(path, data, perm)
}

// WriteYAML writes v as YAML with two-space indent through [WriteFile].
func WriteYAML(path string, v any, perm os.FileMode) (err error) {
	// yaml.v3 panics on values it cannot represent, such as funcs.
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("marshaling YAML: %v", r)
		}
	}()

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "marshaling YAML")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, "marshaling YAML")
	}
	return WriteFile(path, buf.Bytes(), perm)
}
