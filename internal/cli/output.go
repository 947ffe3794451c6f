package cli

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fatih/color"

	"github.com/thoreinstein/mcpm/internal/apply"
	"github.com/thoreinstein/mcpm/internal/env"
	"github.com/thoreinstein/mcpm/internal/merge"
	"github.com/thoreinstein/mcpm/internal/workflow"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// PrintOutcome writes a human summary of a workflow outcome. With verbose
// set a dry run also prints the full planned content of every target, with
// resolved secrets masked.
func PrintOutcome(w io.Writer, out *workflow.Outcome, verbose bool) {
	if out == nil || out.Project == nil {
		return
	}
	d := out.Project

	if out.Report == nil {
		fmt.Fprintf(w, "No new servers to add to %s\n", bold(d.Name))
		for _, msg := range out.Warnings() {
			fmt.Fprintf(w, "%s %s\n", yellow("warning:"), msg)
		}
		return
	}

	verb := "Updated"
	if out.Created {
		verb = "Created"
	}
	if out.DryRun {
		verb = "Would update"
		if out.Created {
			verb = "Would create"
		}
	}
	fmt.Fprintf(w, "%s project %s: %d server(s), %d IDE(s)\n", verb, bold(d.Name), len(d.Servers), len(d.IDEs))

	if len(out.Added) > 0 {
		fmt.Fprintf(w, "  %s %s\n", green("+"), strings.Join(out.Added, ", "))
	}
	if len(out.Removed) > 0 {
		fmt.Fprintf(w, "  %s %s\n", red("-"), strings.Join(out.Removed, ", "))
	}
	if len(out.AddedIDEs) > 0 && !out.Created {
		fmt.Fprintf(w, "  %s IDE %s\n", green("+"), strings.Join(out.AddedIDEs, ", "))
	}

	if out.Report != nil {
		fmt.Fprintln(w)
		mask := secretMask(out.Env)
		for _, c := range out.Report.Changes {
			printChange(w, c, out.DryRun, verbose, mask)
		}
		for _, s := range out.Report.Claude {
			// "mcp add --scope user ID"; env values that follow are never shown.
			line := "claude " + strings.Join(s.Step.Args[:min(len(s.Step.Args), 5)], " ")
			switch {
			case s.Err == nil:
				fmt.Fprintf(w, "  %s %s\n", green("✓"), line)
			case s.Step.Optional:
				fmt.Fprintf(w, "  %s %s\n", gray("-"), line)
			default:
				fmt.Fprintf(w, "  %s %s: %v\n", red("✗"), line, s.Err)
			}
		}
	}

	if out.Env != nil && len(out.Env.Missing) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, yellow("Missing required environment variables:"))
		for _, m := range out.Env.Missing {
			fmt.Fprintf(w, "  %s: %s\n", m.Server, strings.Join(m.Keys, ", "))
		}
		fmt.Fprintln(w, gray("  add them to .mcp/.env (template: .mcp/.env.example) or pass -e KEY=VALUE"))
	}

	if warnings := out.Warnings(); len(warnings) > 0 {
		fmt.Fprintln(w)
		for _, msg := range warnings {
			fmt.Fprintf(w, "%s %s\n", yellow("warning:"), msg)
		}
	}

	if out.DryRun {
		fmt.Fprintln(w)
		fmt.Fprintln(w, gray("Dry run: nothing was written."))
	}
}

func printChange(w io.Writer, c *apply.Change, dryRun, verbose bool, mask *strings.Replacer) {
	if c.Err != nil {
		fmt.Fprintf(w, "  %s %-15s %s: %v\n", red("✗"), c.IDE, c.Path, c.Err)
		return
	}

	icon := green("✓")
	action := string(c.Action)
	if c.Action == merge.ActionUnchanged {
		icon = gray("=")
	}
	if dryRun && c.Action != merge.ActionUnchanged {
		icon = yellow("~")
		action = "would " + action
	}

	detail := ""
	if c.Merge != nil {
		var parts []string
		if n := len(c.Merge.Added); n > 0 {
			parts = append(parts, fmt.Sprintf("%d added", n))
		}
		if n := len(c.Merge.Updated); n > 0 {
			parts = append(parts, fmt.Sprintf("%d updated", n))
		}
		if n := len(c.Merge.Removed); n > 0 {
			parts = append(parts, fmt.Sprintf("%d removed", n))
		}
		if n := len(c.Merge.Preserved); n > 0 {
			parts = append(parts, fmt.Sprintf("%d preserved", n))
		}
		if len(parts) > 0 {
			detail = " (" + strings.Join(parts, ", ") + ")"
		}
	}
	if c.Backup != nil {
		detail += gray(" backup " + c.Backup.ID)
	}

	fmt.Fprintf(w, "  %s %-15s %s %s%s\n", icon, c.IDE, c.Path, action, detail)

	if dryRun && verbose && c.Changed() {
		content := mask.Replace(string(c.Content))
		for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
			fmt.Fprintf(w, "      %s\n", gray(line))
		}
	}
}

// secretMask replaces every resolved env value that env.Redact would hide
// with its redacted form. Longer values are replaced first.
func secretMask(res *env.Result) *strings.Replacer {
	if res == nil {
		return strings.NewReplacer()
	}
	redacted := env.RedactVars(res.Values)
	var keys []string
	for k, v := range res.Values {
		if redacted[k] != v {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(a, b string) int {
		return cmp.Or(len(res.Values[b])-len(res.Values[a]), strings.Compare(a, b))
	})

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, res.Values[k], redacted[k])
	}
	return strings.NewReplacer(pairs...)
}
