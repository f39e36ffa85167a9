package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/harborcrm/flowboard/internal/digest"
	"github.com/harborcrm/flowboard/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Flowboard API server",
		Long:  "Serves the JSON API and runs the notification digest scheduler until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "override the configured listen port")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	// Fail fast on a bad digest schedule before anything is listening.
	if _, err := digest.NextDuration(cfg.Digest.Cron, time.Now()); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- digest.Scheduler(ctx, gormDB, cfg.Digest.Cron, cfg.Digest.MinUnread)
	}()

	if err := server.Start(ctx, server.StartOpts{
		DB:   gormDB,
		Port: port,
		Out:  cmd.OutOrStdout(),
	}); err != nil {
		return err
	}

	stop()
	if err := <-errCh; err != nil {
		return fmt.Errorf("digest scheduler: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Shutdown complete")
	return nil
}
