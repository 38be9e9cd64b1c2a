package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/salimhm/zillow-scraper/internal/api"
)

const shutdownTimeout = 30 * time.Second

// serveCommand runs the HTTP API until interrupted.
func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps()
			if err != nil {
				return err
			}

			server := api.NewServer(d.Config.Server, d.Logger, d.Listings, d.Agents, d.Limiter)

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			select {
			case err = <-errCh:
				return err
			case sig := <-sigCh:
				d.Logger.Info("shutting down", "signal", sig.String())
			case <-cmd.Context().Done():
				d.Logger.Info("shutting down", "reason", "context canceled")
			}

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(ctx)
		},
	}
}
