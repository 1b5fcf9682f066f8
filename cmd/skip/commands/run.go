package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newRunCmd() *cobra.Command {
	var (
		force       bool
		parallelism int
	)

	cmd := &cobra.Command{
		Use:   "run [units...]",
		Short: "Run the configured units, skipping up-to-date ones",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Run(cmd.Context(), args, parallelism, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Execute even when up-to-date")
	cmd.Flags().IntVarP(&parallelism, "parallelism", "p", 0, "Maximum concurrent units (0 = number of CPUs)")

	return cmd
}
