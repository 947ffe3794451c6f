package env

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/thoreinstein/mcpm/pkg/fileutil"
)

// DotEnv reads values from .env files. Files are consulted in order and
// the first file defining a key wins. Relative paths are resolved against
// Root.
type DotEnv struct {
	Root   string
	Files  []string
	Logger *slog.Logger
}

// Name implements Source.
func (*DotEnv) Name() string { return SourceDotEnv }

// Lookup implements Source. Missing files are skipped.
func (d *DotEnv) Lookup(_ context.Context, keys []string) (map[string]string, error) {
	merged := make(map[string]string)
	for _, f := range d.Files {
		path := f
		if !filepath.IsAbs(path) && d.Root != "" {
			path = filepath.Join(d.Root, path)
		}

		data, exists, err := fileutil.ReadOptional(path)
		if err != nil {
			d.logger().Debug("skipping env file", "path", path, "error", err)
			continue
		}
		if !exists {
			continue
		}

		for k, v := range ParseDotEnv(data) {
			if _, seen := merged[k]; !seen {
				merged[k] = v
			}
		}
	}

	return pick(keys, func(k string) (string, bool) {
		v, ok := merged[k]
		return v, ok
	}), nil
}

func (d *DotEnv) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// ParseDotEnv parses .env content. Blank lines and '#' comments are
// ignored. Each line is split on its first '=', surrounding quotes are
// stripped and the rest of the value is kept exactly as written: no
// variable expansion and no trailing comments. Lines without a valid key
// are dropped.
func ParseDotEnv(data []byte) map[string]string {
	out := make(map[string]string)
	for _, line := range bytes.Split(data, []byte("\n")) {
		trimmed := strings.TrimSpace(string(line))
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if key, value, ok := parseLine(trimmed); ok {
			out[key] = value
		}
	}
	return out
}

// parseLine reads one assignment. godotenv validates the key (and drops an
// export prefix); the value is handed to it single-quoted so it is taken
// literally. A value godotenv cannot single-quote (an embedded quote or a
// trailing backslash) is kept as written and only the key goes through it.
func parseLine(line string) (string, string, bool) {
	rawKey, rawValue, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}
	value := unquote(strings.TrimSpace(rawValue))

	literal := strings.Contains(value, "'") || strings.HasSuffix(value, `\`)
	quoted := value
	if literal {
		quoted = ""
	}
	vals, err := godotenv.Unmarshal(strings.TrimSpace(rawKey) + "='" + quoted + "'")
	if err != nil || len(vals) != 1 {
		return "", "", false
	}
	for key, parsed := range vals {
		if literal {
			parsed = value
		}
		return key, parsed, true
	}
	return "", "", false
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}
