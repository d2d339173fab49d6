package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PaulYuuu/guisu/pkg/apply"
	"github.com/PaulYuuu/guisu/pkg/engine"
	"github.com/PaulYuuu/guisu/pkg/logging"
	"github.com/PaulYuuu/guisu/pkg/reconcile"
	"github.com/PaulYuuu/guisu/pkg/style"
)

func newApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Reconcile and apply the safe set of changes",
		Long: `apply reconciles source, destination, and ledger, then applies every
change that is safe to apply automatically: newly added paths, paths
modified in the source, and paths removed from the source. Conflicting or
destination-modified paths are left untouched unless --force is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.apply")
			done := logging.LogOperationStart(logger, "apply")
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

			decisions := decisionsFor(plans, forceApply)
			if dryRun {
				printPlan(cmd, plans, decisions)
				return nil
			}

			report, err := e.Apply(cmd.Context(), target, decisions)
			if err != nil {
				return err
			}

			printReport(cmd, report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "preview changes without applying them")
	cmd.Flags().BoolVar(&forceApply, "force", false, "also apply paths with destination-side modifications, overwriting them")
	return cmd
}

// decisionsFor starts from the engine's conservative defaults and, under
// --force, upgrades ModifiedDest/Conflict paths to Apply as well.
func decisionsFor(plans []engine.Plan, force bool) map[string]reconcile.Decision {
	decisions := engine.DefaultDecisions(plans)
	if !force {
		return decisions
	}
	for _, p := range plans {
		switch p.Status {
		case reconcile.ModifiedDest, reconcile.Conflict, reconcile.AddedConflict:
			decisions[p.Path] = reconcile.Apply
		}
	}
	return decisions
}

func printPlan(cmd *cobra.Command, plans []engine.Plan, decisions map[string]reconcile.Decision) {
	for _, p := range plans {
		verb := "skip"
		switch decisions[p.Path] {
		case reconcile.Apply:
			verb = "apply"
		case reconcile.Delete:
			verb = "delete"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  (%s)\n", style.RenderPlanLine(p.Path, p.Status), verb)
	}
}

func printReport(cmd *cobra.Command, report apply.Report) {
	out := cmd.OutOrStdout()
	for _, p := range report.Added {
		fmt.Fprintf(out, "added    %s\n", p)
	}
	for _, p := range report.Modified {
		fmt.Fprintf(out, "modified %s\n", p)
	}
	for _, p := range report.Removed {
		fmt.Fprintf(out, "removed  %s\n", p)
	}
	for _, p := range report.Skipped {
		fmt.Fprintf(out, "skipped  %s\n", p)
	}
	for _, e := range report.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "error    %s: %v\n", e.Path, e.Err)
	}
}
