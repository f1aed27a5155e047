package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/newthinker/pickboard/internal/core"
	"github.com/newthinker/pickboard/internal/dashboard"
	"github.com/newthinker/pickboard/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fetchJSON bool

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the current recommendations once",
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "print the raw recommendation set as JSON")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	// Stdout carries the result, so logs stay quiet unless asked for.
	log := zap.NewNop()
	if debug {
		log = logger.Must(true)
	}
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	client := newUpstream(cfg, log)
	defer client.Close()

	ctx, cancel := requestContext(cmd.Context(), cfg.Upstream.Timeout)
	defer cancel()

	set, err := client.FetchRecommendations(ctx)
	if err != nil {
		return fmt.Errorf("fetching recommendations: %w", err)
	}

	if fetchJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(set)
	}
	printSet(cmd.OutOrStdout(), set)
	return nil
}

// printSet writes the set as the dashboard would show it.
func printSet(w io.Writer, set *core.RecommendationSet) {
	v := dashboard.BuildView(dashboard.State{
		Stocks:      set.Recommendations,
		LastUpdated: set.LastUpdated,
	})

	fmt.Fprintf(w, "Last updated: %s\n\n", v.LastUpdated)
	if v.Empty {
		fmt.Fprintln(w, dashboard.EmptyText)
		return
	}
	for _, c := range v.Cards {
		fmt.Fprintf(w, "%d. %s  %s\n", c.Position, c.Ticker, c.CompanyName)
		fmt.Fprintf(w, "   Current Price: %s    Potential Upside: %s\n", c.Price, c.Upside)
		fmt.Fprintf(w, "   %s %s\n\n", dashboard.ReasonLabel, c.Reason)
	}
}
