// Package style renders reconcile.Status values as colored terminal output,
// the way the teacher renders its own per-file pack status.
package style

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/PaulYuuu/guisu/pkg/reconcile"
)

// StatusStyle returns the pterm style used to render a given Status.
func StatusStyle(status reconcile.Status) *pterm.Style {
	switch status {
	case reconcile.Synced:
		return pterm.NewStyle(pterm.FgGreen)
	case reconcile.Added:
		return pterm.NewStyle(pterm.FgCyan)
	case reconcile.ModifiedSource:
		return pterm.NewStyle(pterm.FgYellow)
	case reconcile.ModifiedDest, reconcile.Conflict, reconcile.AddedConflict:
		return pterm.NewStyle(pterm.BgRed, pterm.FgWhite, pterm.Bold)
	case reconcile.Removed:
		return pterm.NewStyle(pterm.FgMagenta)
	case reconcile.Ignored:
		return pterm.NewStyle(pterm.FgGray)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

// RenderPlanLine renders a single "STATUS : path" line for a status
// listing, styled by outcome.
func RenderPlanLine(path string, status reconcile.Status) string {
	label := fmt.Sprintf("%-8s", status.String())
	return fmt.Sprintf("%s : %s", StatusStyle(status).Sprint(label), path)
}
