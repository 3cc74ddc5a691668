package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/seblin/curpy/internal/api"
	"github.com/seblin/curpy/internal/cron"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions, stderr io.Writer) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve conversions over HTTP and refresh the cache on a schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := opts.app(ctx, stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = a.cfg.ListenAddr
			}
			srv := &http.Server{
				Addr:              addr,
				Handler:           api.NewMux(a.svc, a.store, a.logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Warm the snapshot so the first request does not pay for the fetch.
			if _, err := a.svc.Snapshot(ctx); err != nil {
				a.logger.Warn("initial rate load failed", "error", err)
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				a.logger.Info("curpy listening", "addr", addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				err := cron.Run(gctx, a.cfg.RefreshSchedule, a.policy.Location, a.svc, a.logger)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default $CURPY_LISTEN_ADDR or :8000)")
	return cmd
}
