package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/newthinker/pickboard/internal/logger"
	"github.com/newthinker/pickboard/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchLogFile string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show the dashboard in the terminal",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "write logs to this file (the terminal is taken by the dashboard)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	log, err := logger.NewFile(watchLogFile, debug)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	client := newUpstream(cfg, log)
	defer client.Close()

	board := newBoard(cfg, client, log)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if err := board.Start(ctx); err != nil {
		return fmt.Errorf("starting board: %w", err)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		if err := board.Stop(stopCtx); err != nil {
			log.Warn("board did not stop cleanly", zap.Error(err))
		}
	}()

	p := tea.NewProgram(
		tui.New(board),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running terminal view: %w", err)
	}
	return nil
}
