// Package flags holds persistent flag values and the loaded config shared
// by the root command and the noun subpackages (bundle, backup) without an
// import cycle.
package flags

import (
	"context"

	"github.com/thoreinstein/mcpm/internal/cli"
	"github.com/thoreinstein/mcpm/internal/config"
	"github.com/thoreinstein/mcpm/internal/logging"
)

var (
	projectDir string
	quiet      bool
	cfg        *config.Config
)

// ProjectDir returns the -C/--project-dir value.
func ProjectDir() string {
	return projectDir
}

// SetProjectDir sets the project directory.
func SetProjectDir(dir string) {
	projectDir = dir
}

// Quiet reports whether -q/--quiet was given.
func Quiet() bool {
	return quiet
}

// SetQuiet records the quiet flag.
func SetQuiet(q bool) {
	quiet = q
}

// Config returns the loaded config, or defaults before loading.
func Config() *config.Config {
	if cfg == nil {
		return config.Default()
	}
	return cfg
}

// SetConfig records the loaded config.
func SetConfig(c *config.Config) {
	cfg = c
}

var appOptions []cli.Option

// SetAppOptions sets options applied to every App built by NewApp. Tests
// use it to inject a runner and a fake home directory.
func SetAppOptions(opts ...cli.Option) {
	appOptions = opts
}

// NewApp builds the App for the current project directory using the
// logger carried by ctx.
func NewApp(ctx context.Context) (*cli.App, error) {
	return cli.NewApp(projectDir, Config(), logging.FromContext(ctx), appOptions...)
}
