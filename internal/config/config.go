// Package config provides configuration management for mcpm using Viper.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/thoreinstein/mcpm/internal/catalog"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/paths"
)

// AppName is the application name used for config file naming.
const AppName = paths.AppName

// EnvPrefix is the prefix for environment variable overrides (MCPM_*).
const EnvPrefix = "MCPM"

// Config represents the top-level configuration structure.
type Config struct {
	Version       int           `mapstructure:"version" yaml:"version"`
	DefaultIDEs   []string      `mapstructure:"default_ides" yaml:"default_ides"`
	DefaultBundle string        `mapstructure:"default_bundle" yaml:"default_bundle"`
	BundlesFile   string        `mapstructure:"bundles_file" yaml:"bundles_file"`
	EnvFiles      []string      `mapstructure:"env_files" yaml:"env_files"`
	Backup        BackupConfig  `mapstructure:"backup" yaml:"backup"`
	Doppler       DopplerConfig `mapstructure:"doppler" yaml:"doppler"`
	ClaudeCode    ClaudeCode    `mapstructure:"claude_code" yaml:"claude_code"`
}

// BackupConfig controls backups of IDE config files taken before writes.
type BackupConfig struct {
	Enabled   bool `mapstructure:"enabled" yaml:"enabled"`
	Retention int  `mapstructure:"retention" yaml:"retention"`
}

// DopplerConfig controls the Doppler secrets source.
type DopplerConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	Project string        `mapstructure:"project" yaml:"project,omitempty"`
	Config  string        `mapstructure:"config" yaml:"config,omitempty"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// ClaudeCode controls how the claude-code target is applied.
type ClaudeCode struct {
	// Exec runs the generated claude CLI commands after writing the script.
	Exec bool `mapstructure:"exec" yaml:"exec"`
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
// Init resets any previous Viper state.
func Init() {
	viper.Reset()

	// Config file settings
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".") // Current directory
	viper.AddConfigPath(configDir())

	// Environment variable support
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()
}

func setDefaults() {
	d := Default()
	viper.SetDefault("version", d.Version)
	viper.SetDefault("default_ides", d.DefaultIDEs)
	viper.SetDefault("default_bundle", d.DefaultBundle)
	viper.SetDefault("bundles_file", d.BundlesFile)
	viper.SetDefault("env_files", d.EnvFiles)
	viper.SetDefault("backup.enabled", d.Backup.Enabled)
	viper.SetDefault("backup.retention", d.Backup.Retention)
	viper.SetDefault("doppler.enabled", d.Doppler.Enabled)
	viper.SetDefault("doppler.project", d.Doppler.Project)
	viper.SetDefault("doppler.config", d.Doppler.Config)
	viper.SetDefault("doppler.timeout", d.Doppler.Timeout)
	viper.SetDefault("claude_code.exec", d.ClaudeCode.Exec)
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Version:       1,
		DefaultIDEs:   []string{catalog.IDECursor},
		DefaultBundle: catalog.DefaultBundle,
		BundlesFile:   paths.DefaultBundlesFile(),
		EnvFiles: []string{
			filepath.Join(paths.ProjectDirName, paths.ProjectEnvFile),
			paths.ProjectEnvFile,
		},
		Backup: BackupConfig{
			Enabled:   true,
			Retention: 5,
		},
		Doppler: DopplerConfig{
			Timeout: 10 * time.Second,
		},
	}
}

// configDir returns the user config directory, honoring MCPM_CONFIG_DIR.
func configDir() string {
	if dir := os.Getenv(EnvPrefix + "_CONFIG_DIR"); dir != "" {
		return dir
	}
	return paths.AppConfigDir()
}

// FilePath returns the path of the config file in use, or the default
// location a new file would be written to.
func FilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return filepath.Join(configDir(), "config.yaml")
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations.
// Returns the loaded configuration or default values if no file is found (when path is empty).
// The result is validated; the first validation failure is returned as an error.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// Implicit load: defaults are fine
		case errors.As(err, &notFound):
			return nil, errors.Wrapf(errors.ErrNotFound, "config file not found at %s", path)
		case path != "" && isNotExist(err):
			return nil, errors.Wrapf(errors.ErrNotFound, "config file not found at %s", path)
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}
	cfg.BundlesFile = paths.ExpandHome(cfg.BundlesFile)

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Wrap(errs[0], "validating config")
	}

	return &cfg, nil
}

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
