package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/newthinker/pickboard/internal/api"
	"github.com/newthinker/pickboard/internal/logger"
	"github.com/newthinker/pickboard/internal/metrics"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over HTTP",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	log.Info("starting pickboard server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("upstream", cfg.Upstream.BaseURL),
	)

	client := newUpstream(cfg, log)
	defer client.Close()

	board := newBoard(cfg, client, log)

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
		board.SetObserver(reg)
	}

	server, err := api.NewServer(api.Config{
		Host:               cfg.Server.Host,
		Port:               cfg.Server.Port,
		APIKey:             cfg.Server.APIKey,
		TemplatesDir:       cfg.Server.TemplatesDir,
		RefreshMinInterval: cfg.Refresh.MinInterval,
		MetricsPath:        cfg.Metrics.Path,
	}, api.Dependencies{Board: board, Metrics: reg}, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := board.Start(ctx); err != nil {
		return fmt.Errorf("starting board: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down pickboard server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		serverErr := server.Shutdown(shutdownCtx)
		if err := board.Stop(shutdownCtx); err != nil {
			log.Warn("board did not stop cleanly", zap.Error(err))
		}
		return serverErr
	})

	return g.Wait()
}
