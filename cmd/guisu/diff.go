package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/PaulYuuu/guisu/pkg/logging"
	"github.com/PaulYuuu/guisu/pkg/paths"
	"github.com/PaulYuuu/guisu/pkg/reconcile"
)

var (
	diffAddedStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "22", Dark: "42"})
	diffRemovedStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "88", Dark: "203"})
	diffHunkStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "31", Dark: "39"})
	diffHeaderStyle  = lipgloss.NewStyle().Bold(true)
)

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "Show target-vs-destination diffs for unsynced paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.diff")
			done := logging.LogOperationStart(logger, "diff")
			defer done()

			e, err := loadEngine()
			if err != nil {
				return err
			}
			defer e.Close()

			target, plans, err := e.Reconcile(cmd.Context())
			if err != nil {
				return err
			}

			for _, p := range plans {
				if p.Status == reconcile.Synced || p.Status == reconcile.Ignored {
					continue
				}
				rel, err := paths.NewDestinationRelative(p.Path)
				if err != nil {
					continue
				}
				entry, ok := target.Get(rel)
				if !ok || entry.Content == nil {
					fmt.Fprintln(cmd.OutOrStdout(), diffHeaderStyle.Render(fmt.Sprintf("--- %s (%s)", p.Path, p.Status)))
					continue
				}

				destContent, err := e.ReadDestinationContent(cmd.Context(), rel)
				if err != nil {
					destContent = nil
				}

				fmt.Fprintln(cmd.OutOrStdout(), diffHeaderStyle.Render(fmt.Sprintf("--- %s (%s)", p.Path, p.Status)))
				fmt.Fprint(cmd.OutOrStdout(), renderUnifiedDiff(p.Path, destContent, entry.Content))
			}
			return nil
		},
	}
}

// renderUnifiedDiff formats a unified diff between destination content and
// target content, coloring +/- lines the way `git diff` does.
func renderUnifiedDiff(path string, from, to []byte) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(from)),
		B:        difflib.SplitLines(string(to)),
		FromFile: "destination/" + path,
		ToFile:   "source/" + path,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil || text == "" {
		return ""
	}

	var out strings.Builder
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---"):
			out.WriteString(diffHeaderStyle.Render(line))
		case strings.HasPrefix(line, "@@"):
			out.WriteString(diffHunkStyle.Render(line))
		case strings.HasPrefix(line, "+"):
			out.WriteString(diffAddedStyle.Render(line))
		case strings.HasPrefix(line, "-"):
			out.WriteString(diffRemovedStyle.Render(line))
		default:
			out.WriteString(line)
		}
		out.WriteString("\n")
	}
	return out.String()
}
