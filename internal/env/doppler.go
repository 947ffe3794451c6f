package env

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/shell"
)

// Doppler defaults.
const (
	DopplerBinary         = "doppler"
	DefaultDopplerTimeout = 10 * time.Second
	dopplerMaxRetries     = 2
)

// Doppler reads secrets through the Doppler CLI.
type Doppler struct {
	Runner  shell.Runner
	Project string
	Config  string

	// Timeout bounds the whole lookup, retries included.
	Timeout time.Duration

	Logger *slog.Logger

	newBackOff func() backoff.BackOff
}

// NewDoppler returns a Doppler source using runner.
func NewDoppler(runner shell.Runner, project, config string, timeout time.Duration, logger *slog.Logger) *Doppler {
	return &Doppler{
		Runner:  runner,
		Project: project,
		Config:  config,
		Timeout: timeout,
		Logger:  logger,
	}
}

// Name implements Source.
func (*Doppler) Name() string { return SourceDoppler }

// Status describes whether the Doppler CLI can be used.
type Status struct {
	Installed     bool
	Authenticated bool
	Version       string
}

// Check probes `doppler --version` and `doppler auth status`.
func (d *Doppler) Check(ctx context.Context) Status {
	var st Status
	res, err := d.Runner.Run(ctx, DopplerBinary, "--version")
	if err != nil {
		return st
	}
	st.Installed = true
	st.Version = strings.TrimSpace(res.Stdout)

	if _, err := d.Runner.Run(ctx, DopplerBinary, "auth", "status"); err == nil {
		st.Authenticated = true
	}
	return st
}

// Lookup implements Source. It returns ErrUnavailable when the CLI is
// missing or unauthenticated.
func (d *Doppler) Lookup(ctx context.Context, keys []string) (map[string]string, error) {
	if len(keys) == 0 {
		return map[string]string{}, nil
	}

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultDopplerTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	st := d.Check(ctx)
	if !st.Installed {
		return nil, errors.WithHint(errors.Wrap(ErrUnavailable, "doppler CLI not installed"),
			"Install it from https://docs.doppler.com/docs/install-cli, or run: mcpm config set doppler.enabled false")
	}
	if !st.Authenticated {
		return nil, errors.WithHint(errors.Wrap(ErrUnavailable, "doppler CLI not authenticated"), "Run: doppler login")
	}

	out := make(map[string]string)
	for _, k := range keys {
		v, err := d.get(ctx, k)
		if err != nil {
			if ctx.Err() != nil {
				// Out of time: keep what we have.
				return out, nil
			}
			d.logger().Debug("doppler lookup failed", "var", k, "error", err)
			continue
		}
		if v != "" {
			out[k] = v
		}
	}
	return out, nil
}

func (d *Doppler) get(ctx context.Context, key string) (string, error) {
	args := []string{"secrets", "get", key, "--plain"}
	if d.Project != "" {
		args = append(args, "--project", d.Project)
	}
	if d.Config != "" {
		args = append(args, "--config", d.Config)
	}

	var value string
	err := backoff.Retry(func() error {
		res, err := d.Runner.Run(ctx, DopplerBinary, args...)
		if err != nil {
			if shell.IsExitError(err) || errors.Is(err, shell.ErrNotInstalled) {
				// Secret missing or access denied.
				return backoff.Permanent(err)
			}
			return err
		}
		value = strings.TrimSpace(res.Stdout)
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(d.backOff(), dopplerMaxRetries), ctx))

	return value, err
}

func (d *Doppler) backOff() backoff.BackOff {
	if d.newBackOff != nil {
		return d.newBackOff()
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = d.Timeout
	return bo
}

func (d *Doppler) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
