package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile     string
	debug       bool
	upstreamURL string
)

var rootCmd = &cobra.Command{
	Use:   "pickboard",
	Short: "pickboard - stock recommendation dashboard",
	Long: `pickboard polls a recommendation engine and shows its stock picks
in a browser (serve) or a terminal (watch). It can also fetch the current
set or ask the engine to recompute it.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
	rootCmd.PersistentFlags().StringVarP(&upstreamURL, "upstream", "u", "", "recommendation engine base URL (overrides config)")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
