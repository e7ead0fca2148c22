package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tapresto/possync/internal/session"
)

// NewRefreshCommand creates the refresh command: replace every cached
// snapshot with the authoritative server state. The profile goes through the
// stale-while-revalidate bootstrap so a 401 runs the invalidation cascade.
func NewRefreshCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh cached profile, items and tables from the backend",
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
			out := cmd.OutOrStdout()

			boot := session.NewBootstrap(a.profile, a.client, a.guard)
			if _, err := boot.Run(ctx, nil); err != nil {
				return err
			}
			fmt.Fprintln(out, "profile snapshot refreshed")

			items, err := a.client.FetchItems(ctx)
			if err != nil {
				return err
			}
			if err := a.items.Save(ctx, items); err != nil {
				return err
			}
			fmt.Fprintln(out, "items snapshot refreshed")

			tables, err := a.client.FetchTables(ctx)
			if err != nil {
				return err
			}
			if err := a.tables.Save(ctx, tables); err != nil {
				return err
			}
			fmt.Fprintln(out, "tables snapshot refreshed")

			return nil
		},
	}
}
