package main

import (
	"context"
	"fmt"
	"time"

	"github.com/newthinker/pickboard/internal/config"
	"github.com/newthinker/pickboard/internal/dashboard"
	"github.com/newthinker/pickboard/internal/upstream"
	"go.uber.org/zap"
)

// loadConfig reads --config (or defaults), applies --upstream and validates.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Debug("no config file specified, using defaults")
	}

	if upstreamURL != "" {
		cfg.Upstream.BaseURL = upstreamURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func newUpstream(cfg *config.Config, log *zap.Logger) *upstream.Client {
	return upstream.New(upstream.Config{
		BaseURL:   cfg.Upstream.BaseURL,
		Timeout:   cfg.Upstream.Timeout,
		UserAgent: cfg.Upstream.UserAgent,
	}, log)
}

func newBoard(cfg *config.Config, src dashboard.Source, log *zap.Logger) *dashboard.Board {
	return dashboard.New(dashboard.Config{
		PollInterval:   cfg.Poll.Interval,
		RefreshDelay:   cfg.Poll.RefreshDelay,
		RequestTimeout: cfg.Upstream.Timeout,
	}, src, log)
}

// requestContext bounds a one-shot command. A zero timeout leaves the
// client's default in charge.
func requestContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
