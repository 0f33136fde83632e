package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-fhirview/internal/server"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve previews over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			previewer, err := a.previewer()
			if err != nil {
				return err
			}
			srv := server.New(previewer, server.WithLogger(a.logger))

			ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errs := make(chan error, 1)
			go func() {
				errs <- srv.Start(a.cfg.Addr)
			}()

			select {
			case err := <-errs:
				return err
			case <-ctx.Done():
			}

			a.logger.Info().Msg("shutting down preview server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			a.logger.Info().Msg("preview server stopped")
			return nil
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	return cmd
}
