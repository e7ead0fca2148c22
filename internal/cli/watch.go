package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tapresto/possync/internal/logging"
	"github.com/tapresto/possync/internal/sync/scheduler"
)

// NewWatchCommand creates the watch command: run the drain scheduler until
// interrupted.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Drain the pending-order queue on a cadence until interrupted",
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

			s := scheduler.New(a.engine, &scheduler.Config{
				DrainInterval: cfg.DrainInterval.Std(),
			})
			s.Start(cmd.Context())
			defer s.Stop()

			// Drain immediately on startup, then on the cadence.
			s.TriggerDrain()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case sig := <-sigCh:
				logging.Info("Shutting down", map[string]interface{}{"signal": sig.String()})
			case <-cmd.Context().Done():
			}

			return nil
		},
	}
}
