package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/PaulYuuu/guisu/pkg/logging"
	"github.com/PaulYuuu/guisu/pkg/style"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the reconciliation status of every managed path",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.status")
			done := logging.LogOperationStart(logger, "status")
			defer done()

			e, err := loadEngine()
			if err != nil {
				return err
			}
			defer e.Close()

			_, plans, err := e.Reconcile(cmd.Context())
			if err != nil {
				return err
			}

			sort.Slice(plans, func(i, j int) bool { return plans[i].Path < plans[j].Path })
			for _, p := range plans {
				fmt.Fprintln(cmd.OutOrStdout(), style.RenderPlanLine(p.Path, p.Status))
			}
			return nil
		},
	}
}
