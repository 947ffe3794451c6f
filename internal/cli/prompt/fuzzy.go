package prompt

import (
	"fmt"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/thoreinstein/mcpm/internal/catalog"
	"github.com/thoreinstein/mcpm/internal/errors"
)

// Finder runs a multi-select over n items labelled by label and returns the
// chosen indexes. preview renders the detail pane for item i.
type Finder func(n int, label func(i int) string, preview func(i int) string) ([]int, error)

// FuzzyFinder is the terminal Finder backed by go-fuzzyfinder. Tab marks
// entries; Enter confirms.
func FuzzyFinder(n int, label func(i int) string, preview func(i int) string) ([]int, error) {
	items := make([]int, n)
	idx, err := fuzzyfinder.FindMulti(
		items,
		label,
		fuzzyfinder.WithHeader("Tab to mark servers, Enter to confirm"),
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			return preview(i)
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, ErrSelectionCancelled
		}
		return nil, errors.Wrap(err, "interactive selection failed")
	}
	return idx, nil
}

// SelectServers lets the user pick servers with find and returns their ids
// in catalog order.
func SelectServers(find Finder, servers []catalog.Server) ([]string, error) {
	if len(servers) == 0 {
		return nil, ErrNoOptions
	}

	idx, err := find(len(servers),
		func(i int) string {
			s := servers[i]
			return fmt.Sprintf("%-20s %-12s %s", s.ID, s.Category, s.Description)
		},
		func(i int) string { return ServerPreview(servers[i]) },
	)
	if err != nil {
		return nil, err
	}
	if len(idx) == 0 {
		return nil, ErrSelectionCancelled
	}

	chosen := make([]bool, len(servers))
	for _, i := range idx {
		if i >= 0 && i < len(servers) {
			chosen[i] = true
		}
	}
	var ids []string
	for i, ok := range chosen {
		if ok {
			ids = append(ids, servers[i].ID)
		}
	}
	return ids, nil
}

// ServerPreview renders the detail pane for one server.
func ServerPreview(s catalog.Server) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ID:       %s\n", s.ID)
	fmt.Fprintf(&sb, "Package:  %s\n", s.PackageSpec())
	fmt.Fprintf(&sb, "Category: %s\n\n", s.Category)
	sb.WriteString(s.Description)
	sb.WriteString("\n")
	if len(s.RequiredEnv) > 0 {
		fmt.Fprintf(&sb, "\nRequired env: %s\n", strings.Join(s.RequiredEnv, ", "))
	}
	if len(s.OptionalEnv) > 0 {
		fmt.Fprintf(&sb, "Optional env: %s\n", strings.Join(s.OptionalEnv, ", "))
	}
	return sb.String()
}
