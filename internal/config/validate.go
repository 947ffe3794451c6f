package config

import (
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/thoreinstein/mcpm/internal/catalog"
	"github.com/thoreinstein/mcpm/internal/errors"
)

// Validation errors for configuration fields.
var (
	// ErrUnsupportedVersion indicates the version field is not supported.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalidIDE indicates an unrecognized IDE id.
	ErrInvalidIDE = errors.New("invalid default ide")

	// ErrInvalidBundleName indicates a malformed default bundle name.
	ErrInvalidBundleName = errors.New("invalid default bundle")

	// ErrInvalidRetention indicates a backup retention below one.
	ErrInvalidRetention = errors.New("backup retention must be >= 1")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")
)

var bundleNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version != 1 {
		errs = append(errs, &FieldError{Field: "version", Value: itoa(cfg.Version), Err: ErrUnsupportedVersion})
	}

	known := catalog.BuiltinIDEIDs()
	for _, ide := range cfg.DefaultIDEs {
		if !slices.Contains(known, ide) {
			errs = append(errs, &FieldError{Field: "default_ides", Value: ide, Err: ErrInvalidIDE})
		}
	}

	if !bundleNamePattern.MatchString(cfg.DefaultBundle) {
		errs = append(errs, &FieldError{Field: "default_bundle", Value: cfg.DefaultBundle, Err: ErrInvalidBundleName})
	}

	if cfg.Backup.Retention < 1 {
		errs = append(errs, &FieldError{Field: "backup.retention", Value: itoa(cfg.Backup.Retention), Err: ErrInvalidRetention})
	}

	if err := validatePath(cfg.BundlesFile); err != nil {
		errs = append(errs, &FieldError{Field: "bundles_file", Value: cfg.BundlesFile, Err: err})
	}
	for _, f := range cfg.EnvFiles {
		if f == "" {
			errs = append(errs, &FieldError{Field: "env_files", Value: f, Err: ErrInvalidPath})
			continue
		}
		if err := validatePath(f); err != nil {
			errs = append(errs, &FieldError{Field: "env_files", Value: f, Err: err})
		}
	}

	return errs
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	// Empty paths are valid (they mean "use default")
	if path == "" {
		return nil
	}

	// Check for null bytes which are never valid in paths
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}

	return nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

// FieldError represents a validation failure of a single config field.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Err.Error() + ": " + e.Value
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
