package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/song-scout/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long:  `Start an HTTP server that exposes the profile, queries, rerank and search endpoints.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				if port < 1 || port > 65535 {
					return fmt.Errorf("--port must be between 1 and 65535, got %d", port)
				}
				a.cfg.HTTP.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			deps, closeDeps, err := a.newDeps(ctx, a.cfg, a.log)
			if err != nil {
				return err
			}
			defer closeDeps()

			return server.New(a.cfg, deps, a.log).Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (default from config, 8080)")
	return cmd
}
