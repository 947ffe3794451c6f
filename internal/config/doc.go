// Package config provides configuration management for the mcpm CLI.
//
// This package handles loading and validating mcpm's own configuration
// file. It is distinct from the per-project state in .mcp/config.json and
// from the IDE configuration files mcpm generates.
//
// # Configuration File
//
// The configuration file is searched in the current directory and then in
// $XDG_CONFIG_HOME/mcpm (override with MCPM_CONFIG_DIR):
//
//	version: 1
//	default_ides:
//	  - cursor
//	default_bundle: essential
//	env_files:
//	  - .mcp/.env
//	  - .env
//	backup:
//	  enabled: true
//	  retention: 5
//	doppler:
//	  enabled: false
//	  timeout: 10s
//	claude_code:
//	  exec: false
//
// Every key can be overridden from the environment with the MCPM_ prefix,
// dots replaced by underscores (MCPM_DOPPLER_ENABLED=true).
//
// # Loading Configuration
//
//	config.Init()
//	cfg, err := config.Load("")
//
// [Load] validates the result; use [Validate] to collect every problem.
package config
