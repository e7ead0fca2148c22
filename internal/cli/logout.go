package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tapresto/possync/internal/logging"
)

// NewLogoutCommand creates the logout command: tell the backend goodbye,
// then purge cached snapshots and the credential. Pending orders stay queued
// so they can sync under the next valid session.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and purge cached snapshots",
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

			ctx := cmd.Context()

			// Best effort: a dead backend must not block the local purge.
			if err := a.client.Logout(ctx); err != nil {
				logging.Warn("Backend logout failed, purging locally anyway",
					map[string]interface{}{"error": err.Error()})
			}

			if err := a.guard.Invalidate(ctx); err != nil {
				return err
			}

			pending, err := a.queue.Size(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "logged out; %d pending order(s) kept for later sync\n", pending)
			return nil
		},
	}
}
