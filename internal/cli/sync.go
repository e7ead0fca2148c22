package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSyncCommand creates the sync command: one on-demand drain cycle.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Drain the pending-order queue once",
		Long: `Submit every pending order in one batch and reconcile the per-record
results. Confirmed orders are removed locally; everything else stays queued
for the next drain.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}

			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.engine.Drain(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d synced, %d pending retry, %d dead-lettered\n",
				result.Confirmed, result.Pending, result.DeadLettered)
			return nil
		},
	}
}
