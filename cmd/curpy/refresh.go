package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/seblin/curpy/internal/rates"
)

func newRefreshCmd(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Update the rate cache if a newer publication is expected",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.app(cmd.Context(), stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := a.svc.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "%s %d currencies\n", snap.PublishedOn.Format(rates.DateLayout), len(snap.Rates))
			return nil
		},
	}
}
