package main

import (
	"fmt"

	"github.com/newthinker/pickboard/internal/logger"
	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Ask the engine to recompute its recommendations",
	RunE:  runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	client := newUpstream(cfg, log)
	defer client.Close()

	ctx, cancel := requestContext(cmd.Context(), cfg.Upstream.Timeout)
	defer cancel()

	if err := client.TriggerRecalculation(ctx); err != nil {
		return fmt.Errorf("triggering update: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Recalculation requested. New recommendations will be available shortly.")
	return nil
}
