package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/thoreinstein/mcpm/internal/errors"
)

// Format selects the report encoding.
type Format string

const (
	// FormatText is the human-readable report.
	FormatText Format = "text"
	// FormatJSON is the machine-readable report.
	FormatJSON Format = "json"
)

const maxValueLen = 50

// Reporter writes validation results.
type Reporter struct {
	out    io.Writer
	format Format
}

// NewReporter creates a Reporter writing to out.
func NewReporter(out io.Writer, format Format) *Reporter {
	return &Reporter{out: out, format: format}
}

// Report writes result. A nil result writes nothing.
func (r *Reporter) Report(result *Result) error {
	if result == nil {
		return nil
	}
	if r.format == FormatJSON {
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(result), "encoding JSON report")
	}
	r.text(result)
	return nil
}

func (r *Reporter) text(result *Result) {
	subject := result.Subject
	if subject == "" {
		subject = "validation"
	}

	errs, warns, infos := result.Errors(), result.Warnings(), result.Filter(SeverityInfo)
	if len(errs) == 0 && len(warns) == 0 {
		fmt.Fprintln(r.out, color.GreenString("✓ %s is valid", subject))
		r.section("Notes:", infos, color.FgCyan)
		return
	}

	var counts []string
	if len(errs) > 0 {
		counts = append(counts, color.RedString("%d error(s)", len(errs)))
	}
	if len(warns) > 0 {
		counts = append(counts, color.YellowString("%d warning(s)", len(warns)))
	}
	fmt.Fprintf(r.out, "%s: %s\n\n", subject, strings.Join(counts, ", "))

	r.section("Errors:", errs, color.FgRed)
	r.section("Warnings:", warns, color.FgYellow)
	r.section("Notes:", infos, color.FgCyan)
}

func (r *Reporter) section(title string, issues []Issue, c color.Attribute) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintln(r.out, title)
	for _, i := range issues {
		r.issue(i, c)
	}
	fmt.Fprintln(r.out)
}

// issue prints "  • field: message (k=v) [value]".
func (r *Reporter) issue(i Issue, c color.Attribute) {
	dim := color.New(color.FgHiBlack)

	var sb strings.Builder
	sb.WriteString("  • ")
	if i.Field != "" {
		sb.WriteString(color.New(c).Sprint(i.Field))
		sb.WriteString(": ")
	}
	sb.WriteString(i.Message)

	if len(i.Context) > 0 {
		parts := make([]string, 0, len(i.Context))
		for k, v := range i.Context {
			parts = append(parts, k+"="+v)
		}
		sort.Strings(parts)
		sb.WriteString(" ")
		sb.WriteString(dim.Sprintf("(%s)", strings.Join(parts, ", ")))
	}

	if i.Value != nil {
		v := fmt.Sprintf("%v", i.Value)
		if len(v) > maxValueLen {
			v = v[:maxValueLen-3] + "..."
		}
		sb.WriteString(dim.Sprintf(" [%s]", v))
	}

	fmt.Fprintln(r.out, sb.String())
}
