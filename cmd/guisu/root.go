package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/PaulYuuu/guisu/pkg/logging"
)

var (
	verbosity  int
	cfgFile    string
	dryRun     bool
	forceApply bool
)

// NewRootCmd builds the guisu command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "guisu",
		Short: "A reconciling dotfiles engine",
		Long: `guisu compares a dotfiles source tree against your home directory and a
persistent ledger, then reconciles the three, the way a package manager
reconciles a manifest against installed state.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase verbosity (-v info, -vv debug, -vvv trace)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/guisu/config.toml)")

	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newApplyCmd())
	rootCmd.AddCommand(newDiffCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
