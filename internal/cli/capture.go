package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tapresto/possync/internal/errors"
	"github.com/tapresto/possync/internal/models"
)

// NewCaptureCommand creates the capture command: write an order into the
// pending queue. The write is optimistic and never waits on the network; the
// queue is what guarantees the order survives until a drain confirms it.
func NewCaptureCommand(rootOpts *RootOptions) *cobra.Command {
	var direct bool

	cmd := &cobra.Command{
		Use:   "capture [order.json]",
		Short: "Capture an order locally (reads stdin when no file is given)",
		Args:  cobra.MaximumNArgs(1),
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

			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.Wrap(errors.ErrInvalid, "failed to open order file", err)
				}
				defer f.Close()
				r = f
			}

			var payload models.OrderPayload
			if err := json.NewDecoder(r).Decode(&payload); err != nil {
				return errors.Wrap(errors.ErrInvalid, "failed to decode order payload", err)
			}

			ctx := cmd.Context()

			if direct {
				// Single-record creation, used only outside the offline path.
				if err := a.client.CreateOrder(ctx, payload); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "order created on backend")
				return nil
			}

			localID, err := a.queue.Enqueue(ctx, payload)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "order captured: %s\n", localID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&direct, "direct", false, "create the order on the backend immediately instead of queueing")

	return cmd
}
