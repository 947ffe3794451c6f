package doctor

import (
	"context"
	"log/slog"
	"time"
)

// Check is one diagnostic.
type Check interface {
	Name() string
	Category() string
	Run(ctx context.Context) *CheckResult
}

// Runner runs checks in registration order.
type Runner struct {
	checks []Check
	logger *slog.Logger
}

// NewRunner returns a runner over checks. A nil logger discards.
func NewRunner(logger *slog.Logger, checks ...Check) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{checks: checks, logger: logger}
}

// Add registers more checks.
func (r *Runner) Add(checks ...Check) {
	r.checks = append(r.checks, checks...)
}

// Checks returns the registered checks.
func (r *Runner) Checks() []Check {
	return r.checks
}

// Run executes every check. Once ctx is done the remaining checks are
// reported as skipped warnings instead of being run.
func (r *Runner) Run(ctx context.Context) *Report {
	start := time.Now()
	report := &Report{
		Timestamp: start.UTC(),
		Results:   make([]*CheckResult, 0, len(r.checks)),
	}

	for _, c := range r.checks {
		res := r.runOne(ctx, c)
		report.Results = append(report.Results, res)
		report.Summary.add(res.Status)
	}

	report.Duration = time.Since(start)
	return report
}

func (r *Runner) runOne(ctx context.Context, c Check) *CheckResult {
	if err := ctx.Err(); err != nil {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityWarning,
			Message:  "skipped: " + err.Error(),
		}
	}

	start := time.Now()
	res := c.Run(ctx)
	if res == nil {
		res = &CheckResult{Status: SeverityError, Message: "check produced no result"}
	}
	if res.Name == "" {
		res.Name = c.Name()
	}
	if res.Category == "" {
		res.Category = c.Category()
	}

	r.logger.Debug("doctor check",
		"check", res.Name, "status", res.Status.String(), "elapsed", time.Since(start))
	return res
}

// Fix applies every pending fix and returns the outcomes. Checks must have
// been run first; a check without pending fixes is skipped.
func (r *Runner) Fix() []FixResult {
	var out []FixResult
	for _, c := range r.checks {
		f, ok := c.(Fixer)
		if !ok || f.Pending() == 0 {
			continue
		}
		for _, res := range f.Fix() {
			res.Check = c.Name()
			if res.Err != nil {
				r.logger.Warn("fix failed", "check", c.Name(), "path", res.Path, "err", res.Err)
			}
			out = append(out, res)
		}
	}
	return out
}
