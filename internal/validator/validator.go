package validator

import (
	"fmt"
	"strings"

	"github.com/thoreinstein/mcpm/internal/errors"
)

// Severity ranks an issue.
type Severity int

const (
	// SeverityError blocks the operation.
	SeverityError Severity = iota
	// SeverityWarning is reported but does not block.
	SeverityWarning
	// SeverityInfo is a note.
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(b []byte) error {
	switch string(b) {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return errors.Newf("unknown severity %q", b)
	}
	return nil
}

// Issue is one problem found in an input.
type Issue struct {
	Severity Severity          `json:"severity"`
	Field    string            `json:"field,omitempty"`
	Message  string            `json:"message"`
	Value    any               `json:"value,omitempty"`
	Context  map[string]string `json:"context,omitempty"`
}

// Error implements the error interface.
func (i Issue) Error() string {
	var sb strings.Builder
	sb.WriteString(i.Severity.String())
	sb.WriteString(": ")
	if i.Field != "" {
		fmt.Fprintf(&sb, "field %q: ", i.Field)
	}
	sb.WriteString(i.Message)
	if i.Value != nil {
		fmt.Fprintf(&sb, " (got %v)", i.Value)
	}
	return sb.String()
}

// Result aggregates the issues of one validation run.
type Result struct {
	// Subject names what was validated, e.g. "project" or "bundle frontend".
	Subject string  `json:"subject,omitempty"`
	Issues  []Issue `json:"issues"`
}

func (r *Result) add(sev Severity, field, message string, value any) *Issue {
	r.Issues = append(r.Issues, Issue{Severity: sev, Field: field, Message: message, Value: value})
	return &r.Issues[len(r.Issues)-1]
}

// AddError records a blocking issue.
func (r *Result) AddError(field, message string, value any) *Issue {
	return r.add(SeverityError, field, message, value)
}

// AddWarning records a non-blocking issue.
func (r *Result) AddWarning(field, message string, value any) *Issue {
	return r.add(SeverityWarning, field, message, value)
}

// AddInfo records a note.
func (r *Result) AddInfo(field, message string, value any) *Issue {
	return r.add(SeverityInfo, field, message, value)
}

// Filter returns the issues with severity sev.
func (r *Result) Filter(sev Severity) []Issue {
	if r == nil {
		return nil
	}
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == sev {
			out = append(out, i)
		}
	}
	return out
}

// Errors returns the blocking issues.
func (r *Result) Errors() []Issue { return r.Filter(SeverityError) }

// Warnings returns the non-blocking issues.
func (r *Result) Warnings() []Issue { return r.Filter(SeverityWarning) }

// HasErrors reports whether any issue blocks.
func (r *Result) HasErrors() bool { return len(r.Errors()) > 0 }

// HasWarnings reports whether any warning was recorded.
func (r *Result) HasWarnings() bool { return len(r.Warnings()) > 0 }

// Err returns nil when there are no errors, otherwise an error listing
// every blocking issue.
func (r *Result) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	subject := r.Subject
	if subject == "" {
		subject = "input"
	}
	return errors.Newf("invalid %s: %s", subject, strings.Join(msgs, "; "))
}
