// Package doctor diagnoses a project and the IDE configs mcpm manages:
// project state, config syntax, file permissions, IDE installation, the
// secrets provider and env coverage.
package doctor

import (
	"time"

	"github.com/thoreinstein/mcpm/internal/errors"
)

// Severity grades a check result. It marshals as its name.
type Severity int

// Severities, least to most serious.
const (
	SeverityPass Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

var severityNames = [...]string{"pass", "info", "warning", "error"}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return "unknown"
	}
	return severityNames[s]
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(b []byte) error {
	for i, name := range severityNames {
		if string(b) == name {
			*s = Severity(i)
			return nil
		}
	}
	return errors.Newf("unknown severity %q", b)
}

// Problem reports whether the severity needs attention.
func (s Severity) Problem() bool {
	return s >= SeverityWarning
}

// CheckResult is the outcome of one check.
type CheckResult struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Status   Severity `json:"status"`
	Message  string   `json:"message"`

	// Details carries check-specific context such as paths or counts.
	Details map[string]any `json:"details,omitempty"`

	// Fixable is set when doctor --fix can resolve the problem.
	Fixable bool   `json:"fixable,omitempty"`
	FixHint string `json:"fix_hint,omitempty"`
}

// Summary counts results by severity.
type Summary struct {
	Passed   int `json:"passed"`
	Info     int `json:"info"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

func (s *Summary) add(sev Severity) {
	switch sev {
	case SeverityPass:
		s.Passed++
	case SeverityInfo:
		s.Info++
	case SeverityWarning:
		s.Warnings++
	case SeverityError:
		s.Errors++
	}
}

// Report is the result of a doctor run, in check registration order.
type Report struct {
	Timestamp time.Time      `json:"timestamp"`
	Duration  time.Duration  `json:"duration_ns"`
	Results   []*CheckResult `json:"results"`
	Summary   Summary        `json:"summary"`
}

// HasErrors reports whether any check failed.
func (r *Report) HasErrors() bool { return r.Summary.Errors > 0 }

// HasWarnings reports whether any check warned.
func (r *Report) HasWarnings() bool { return r.Summary.Warnings > 0 }

// ExitCode maps the report to the process exit status: failures are
// system errors, warnings user errors.
func (r *Report) ExitCode() int {
	switch {
	case r.HasErrors():
		return errors.ExitSystem
	case r.HasWarnings():
		return errors.ExitUser
	}
	return errors.ExitSuccess
}
