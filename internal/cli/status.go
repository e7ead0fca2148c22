package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tapresto/possync/internal/db"
)

// NewStatusCommand creates the status command: a local-only view of queue
// depth and cached snapshots. It never touches the network.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show pending orders and cached snapshot state",
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

			pending, err := a.queue.ListAll(ctx)
			if err != nil {
				return err
			}
			dead, err := a.queue.DeadLetters(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "pending orders: %d\n", len(pending))
			for _, rec := range pending {
				fmt.Fprintf(out, "  %s  store=%s  attempts=%d\n", rec.LocalID, rec.StoreID, rec.Attempts)
			}
			fmt.Fprintf(out, "dead-lettered orders: %d\n", len(dead))

			for _, entry := range []struct {
				name string
				load func() error
			}{
				{"profile", func() error { _, err := a.profile.Load(ctx); return err }},
				{"items", func() error { _, err := a.items.Load(ctx); return err }},
				{"tables", func() error { _, err := a.tables.Load(ctx); return err }},
			} {
				state := "cached"
				if err := entry.load(); err == db.ErrNotFound {
					state = "absent"
				} else if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s snapshot: %s\n", entry.name, state)
			}

			return nil
		},
	}
}
