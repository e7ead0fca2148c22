package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tapresto/possync/internal/session"
)

// NewLoginCommand creates the login command. Token acquisition itself is the
// auth layer's job; this stores an already-issued token so the core can make
// authenticated calls and tag captured orders with the store identity.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	var token, storeID string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the session credential and bootstrap the profile cache",
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
			if err := a.creds.Save(ctx, session.Credentials{Token: token, StoreID: storeID}); err != nil {
				return err
			}

			boot := session.NewBootstrap(a.profile, a.client, a.guard)
			snapshot, err := boot.Run(ctx, nil)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "logged in, profile snapshot cached (%d bytes)\n", len(snapshot))
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "bearer token issued by the auth layer (required)")
	cmd.Flags().StringVar(&storeID, "store", "", "store identifier the session belongs to (required)")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("store")

	return cmd
}
