package commands

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mcpm/internal/config"
	"github.com/thoreinstein/mcpm/internal/editor"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/validator"
	"github.com/thoreinstein/mcpm/pkg/fileutil"
)

var configValidateJSON bool

// configEditor opens the config file for config edit.
var configEditor = func(path string) error { return editor.New().Open(path) }

func init() {
	configValidateCmd.Flags().BoolVar(&configValidateJSON, "json", false,
		"output the report as JSON")

	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage mcpm configuration",
	Long: `Manage mcpm configuration stored in ~/.config/mcpm/config.yaml.

Every key can also be set through the environment as MCPM_<KEY>, with dots
replaced by underscores (MCPM_DOPPLER_ENABLED=true).

Without a subcommand, lists all configuration values.`,
	Example: `  # List all configuration
  mcpm config

  # Use Cursor and Windsurf by default
  mcpm config set default_ides cursor,windsurf

  See Also: mcpm doctor`,
	Args: cobra.NoArgs,
	RunE: runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a single configuration value by key.

Supports dot notation for nested keys. List values are printed one per line.`,
	Example: `  mcpm config get default_ides
  mcpm config get backup.retention

  See Also: mcpm config set, mcpm config list`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and write the config file.

List values (default_ides, env_files) are comma-separated. The resulting
configuration is validated before it is written.`,
	Example: `  mcpm config set default_bundle web-dev
  mcpm config set doppler.enabled true
  mcpm config set doppler.timeout 20s

  See Also: mcpm config get, mcpm config list`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration",
	Long:  `List all effective configuration values in YAML format.`,
	Example: `  mcpm config list

  See Also: mcpm config get, mcpm config set`,
	Args: cobra.NoArgs,
	RunE: runConfigList,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), config.FilePath())
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default values",
	Long: `Write the default configuration to the config file path. An existing
file is left untouched.`,
	Example: `  mcpm config init

  See Also: mcpm config edit`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open configuration in $EDITOR",
	Long: `Open the configuration file in your editor.

Uses $MCPM_EDITOR, $EDITOR or $VISUAL, falling back to nano or vi.`,
	Example: `  EDITOR=nano mcpm config edit

  See Also: mcpm config init, mcpm config validate`,
	Args: cobra.NoArgs,
	RunE: runConfigEdit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Example: `  mcpm config validate --json

  See Also: mcpm doctor`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

// configKey describes how a settable key parses its value.
type configKey struct {
	parse func(string) (any, error)
}

var configKeys = map[string]configKey{
	"version":          {parse: parseInt},
	"default_ides":     {parse: parseList},
	"default_bundle":   {parse: parseString},
	"bundles_file":     {parse: parseString},
	"env_files":        {parse: parseList},
	"backup.enabled":   {parse: parseBool},
	"backup.retention": {parse: parseInt},
	"doppler.enabled":  {parse: parseBool},
	"doppler.project":  {parse: parseString},
	"doppler.config":   {parse: parseString},
	"doppler.timeout":  {parse: parseDuration},
	"claude_code.exec": {parse: parseBool},
}

func configKeyNames() []string {
	names := make([]string, 0, len(configKeys))
	for k := range configKeys {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	w := cmd.OutOrStdout()

	if !viper.IsSet(key) {
		fmt.Fprintln(w, "not set")
		return nil
	}

	switch v := viper.Get(key).(type) {
	case []any:
		for _, item := range v {
			fmt.Fprintln(w, item)
		}
	case []string:
		for _, item := range v {
			fmt.Fprintln(w, item)
		}
	default:
		fmt.Fprintln(w, viper.GetString(key))
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, raw := strings.ToLower(args[0]), args[1]

	spec, ok := configKeys[key]
	if !ok {
		return errors.NewUserError(
			errors.Newf("unknown config key %q", key),
			"Valid keys: "+strings.Join(configKeyNames(), ", "))
	}
	value, err := spec.parse(raw)
	if err != nil {
		return errors.NewUserError(errors.Wrapf(err, "parsing %s", key), "")
	}

	viper.Set(key, value)

	cfg, err := currentConfig()
	if err != nil {
		return errors.NewUserError(err, "")
	}
	if res := validator.Config(cfg); res.HasErrors() {
		return errors.NewUserError(res.Err(), "")
	}

	if err := writeConfig(config.FilePath(), cfg); err != nil {
		return errors.NewSystemError(err, "")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", key, value)
	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	cfg, err := currentConfig()
	if err != nil {
		return errors.NewConfigError(err)
	}
	return printConfig(cmd.OutOrStdout(), cfg)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path := config.FilePath()
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Config already exists at %s\n", path)
		return nil
	}
	if err := writeConfig(path, config.Default()); err != nil {
		return errors.NewSystemError(err, "")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func runConfigEdit(_ *cobra.Command, _ []string) error {
	path := config.FilePath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return errors.NewUserError(errors.Newf("config file not found at %s", path), "Run: mcpm config init")
	}
	if err := configEditor(path); err != nil {
		return errors.NewSystemError(err, "")
	}
	return nil
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	res := &validator.Result{Subject: "config"}
	if configLoadErr != nil {
		res.AddError("", configLoadErr.Error(), config.FilePath())
	} else {
		cfg, err := currentConfig()
		if err != nil {
			res.AddError("", err.Error(), nil)
		} else {
			res = validator.Config(cfg)
		}
	}

	format := validator.FormatText
	if configValidateJSON {
		format = validator.FormatJSON
	}
	if err := validator.NewReporter(cmd.OutOrStdout(), format).Report(res); err != nil {
		return err
	}
	if res.HasErrors() {
		return errors.Status(errors.ExitUser)
	}
	return nil
}

// currentConfig decodes the effective viper state.
func currentConfig() (*config.Config, error) {
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}
	return &cfg, nil
}

// fileConfig is the on-disk shape; durations are written as strings.
type fileConfig struct {
	Version       int      `yaml:"version"`
	DefaultIDEs   []string `yaml:"default_ides"`
	DefaultBundle string   `yaml:"default_bundle"`
	BundlesFile   string   `yaml:"bundles_file"`
	EnvFiles      []string `yaml:"env_files"`
	Backup        struct {
		Enabled   bool `yaml:"enabled"`
		Retention int  `yaml:"retention"`
	} `yaml:"backup"`
	Doppler struct {
		Enabled bool   `yaml:"enabled"`
		Project string `yaml:"project,omitempty"`
		Config  string `yaml:"config,omitempty"`
		Timeout string `yaml:"timeout"`
	} `yaml:"doppler"`
	ClaudeCode struct {
		Exec bool `yaml:"exec"`
	} `yaml:"claude_code"`
}

func toFileConfig(cfg *config.Config) fileConfig {
	var fc fileConfig
	fc.Version = cfg.Version
	fc.DefaultIDEs = cfg.DefaultIDEs
	fc.DefaultBundle = cfg.DefaultBundle
	fc.BundlesFile = cfg.BundlesFile
	fc.EnvFiles = cfg.EnvFiles
	fc.Backup.Enabled = cfg.Backup.Enabled
	fc.Backup.Retention = cfg.Backup.Retention
	fc.Doppler.Enabled = cfg.Doppler.Enabled
	fc.Doppler.Project = cfg.Doppler.Project
	fc.Doppler.Config = cfg.Doppler.Config
	fc.Doppler.Timeout = cfg.Doppler.Timeout.String()
	fc.ClaudeCode.Exec = cfg.ClaudeCode.Exec
	return fc
}

func printConfig(w io.Writer, cfg *config.Config) error {
	data, err := yaml.Marshal(toFileConfig(cfg))
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}
	_, err = w.Write(data)
	return err
}

// writeConfig writes cfg to path, creating the directory as needed.
func writeConfig(path string, cfg *config.Config) error {
	if err := fileutil.WriteYAML(path, toFileConfig(cfg), fileutil.SecretPerm); err != nil {
		return errors.Wrap(err, "writing config file")
	}
	return nil
}

func parseString(s string) (any, error) {
	return strings.TrimSpace(s), nil
}

func parseInt(s string) (any, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil, errors.Newf("%q is not a number", s)
	}
	return n, nil
}

func parseBool(s string) (any, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return nil, errors.Newf("%q is not true or false", s)
	}
	return b, nil
}

func parseDuration(s string) (any, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return nil, errors.Newf("%q is not a duration like 10s", s)
	}
	return d, nil
}

// parseList splits a comma-separated value, dropping blanks.
func parseList(s string) (any, error) {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}
