package commands

import (
	"log/slog"
	"testing"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/logging"
)

// saveLogState restores the logging flag variables after a test.
func saveLogState(t *testing.T) {
	t.Helper()
	v, q, f, lf := verbosity, quiet, logFormat, logFile
	t.Cleanup(func() {
		verbosity, quiet, logFormat, logFile = v, q, f, lf
	})
	logFormat, logFile = "text", ""
}

func TestSetupLogging_VerbosityFlags(t *testing.T) {
	saveLogState(t)

	tests := []struct {
		name      string
		verbosity int
		wantLevel slog.Level
	}{
		{"default (0)", 0, slog.LevelWarn},
		{"verbose (1)", 1, slog.LevelInfo},
		{"debug (2)", 2, slog.LevelDebug},
		{"trace (3)", 3, logging.LevelTrace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MCPM_DEBUG", "")
			verbosity, quiet = tt.verbosity, false
			if err := setupLogging(rootCmd); err != nil {
				t.Fatalf("setupLogging failed: %v", err)
			}

			logger := slog.Default()
			if !logger.Enabled(t.Context(), tt.wantLevel) {
				t.Errorf("expected level %v to be enabled", tt.wantLevel)
			}
			if tt.wantLevel > logging.LevelTrace && logger.Enabled(t.Context(), tt.wantLevel-4) {
				t.Errorf("expected level %v to be disabled", tt.wantLevel-4)
			}
		})
	}
}

func TestSetupLogging_EnvVar(t *testing.T) {
	saveLogState(t)

	tests := []struct {
		envVal    string
		wantLevel slog.Level
	}{
		{"1", slog.LevelDebug},
		{"true", slog.LevelDebug},
		{"2", logging.LevelTrace},
		{"0", slog.LevelWarn},
		{"foo", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run("MCPM_DEBUG="+tt.envVal, func(t *testing.T) {
			verbosity, quiet = 0, false
			t.Setenv("MCPM_DEBUG", tt.envVal)

			if err := setupLogging(rootCmd); err != nil {
				t.Fatalf("setupLogging failed: %v", err)
			}
			if !slog.Default().Enabled(t.Context(), tt.wantLevel) {
				t.Errorf("expected level %v to be enabled", tt.wantLevel)
			}
		})
	}
}

func TestSetupLogging_FlagBeatsEnv(t *testing.T) {
	saveLogState(t)
	t.Setenv("MCPM_DEBUG", "2")
	verbosity, quiet = 1, false

	if err := setupLogging(rootCmd); err != nil {
		t.Fatalf("setupLogging failed: %v", err)
	}
	if slog.Default().Enabled(t.Context(), slog.LevelDebug) {
		t.Error("expected Debug level to be disabled when -v is given")
	}
}

func TestSetupLogging_Quiet(t *testing.T) {
	saveLogState(t)
	verbosity, quiet = 0, true

	if err := setupLogging(rootCmd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger := slog.Default()
	if !logger.Enabled(t.Context(), slog.LevelError) {
		t.Error("expected Error level to be enabled")
	}
	if logger.Enabled(t.Context(), slog.LevelWarn) {
		t.Error("expected Warn level to be disabled")
	}
}

func TestSetupLogging_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		prepare func()
	}{
		{"quiet and verbose", func() { verbosity, quiet = 1, true }},
		{"bad log format", func() { verbosity, quiet, logFormat = 0, false, "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saveLogState(t)
			tt.prepare()
			err := setupLogging(rootCmd)
			if errors.ExitCode(err) != errors.ExitUser {
				t.Errorf("setupLogging() = %v, want user error", err)
			}
		})
	}
}
