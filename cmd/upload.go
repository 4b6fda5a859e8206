package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Ruscigno/JobPulse/pkg/service"
	"github.com/spf13/cobra"
)

func newUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an existing export",
		Long:  `Uploads a CSV export to the configured destination, Google Drive when none is set. Prints the link or id on stdout.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, err := service.NewRunner(a.cfg, a.metrics, a.logger).Upload(ctx, args[0])
			if err != nil {
				return err
			}
			out := res.Link
			if out == "" {
				out = res.ID
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
