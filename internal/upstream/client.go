package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/newthinker/pickboard/internal/core"
	"go.uber.org/zap"
	"resty.dev/v3"
)

const (
	// RecommendationsPath returns the current set with metadata.
	RecommendationsPath = "/api/stocks/with-metadata"
	// UpdatePath asks the engine to recompute recommendations.
	UpdatePath = "/api/stocks/update"

	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "pickboard"

	opFetch   = "fetch"
	opTrigger = "trigger"
)

// lastUpdatedLayout matches the engine's display format for epoch timestamps.
const lastUpdatedLayout = "2006-01-02 15:04:05"

// Config holds engine client settings.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client talks to the recommendation engine.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// New creates a client for the engine at cfg.BaseURL.
func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", cfg.UserAgent).
		SetRetryCount(0)

	return &Client{
		http:   httpClient,
		logger: logger.Named("upstream"),
	}
}

// Close releases idle connections held by the client.
func (c *Client) Close() error {
	return c.http.Close()
}

// FetchRecommendations returns the engine's current recommendation set. Any
// status other than 200 is a failure.
func (c *Client) FetchRecommendations(ctx context.Context) (*core.RecommendationSet, error) {
	start := time.Now()

	resp, err := c.http.R().SetContext(ctx).Get(RecommendationsPath)
	if err != nil {
		c.logger.Debug("fetch failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, networkError(opFetch, err)
	}

	if resp.StatusCode() != http.StatusOK {
		c.logger.Debug("fetch rejected",
			zap.Int("status", resp.StatusCode()),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, statusError(opFetch, resp.StatusCode())
	}

	set, err := decodeSet(resp.Bytes())
	if err != nil {
		return nil, parseError(opFetch, err)
	}

	c.logger.Debug("fetched recommendations",
		zap.Int("count", len(set.Recommendations)),
		zap.String("last_updated", set.LastUpdated),
		zap.Duration("duration", time.Since(start)),
	)
	return set, nil
}

// TriggerRecalculation asks the engine to recompute. Any 2xx acknowledges;
// the body is ignored. The new set is not available until a later fetch.
func (c *Client) TriggerRecalculation(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Post(UpdatePath)
	if err != nil {
		return networkError(opTrigger, err)
	}

	if !resp.IsSuccess() {
		c.logger.Debug("trigger rejected", zap.Int("status", resp.StatusCode()))
		return statusError(opTrigger, resp.StatusCode())
	}

	c.logger.Debug("recalculation triggered", zap.Int("status", resp.StatusCode()))
	return nil
}

// setPayload distinguishes a missing recommendations field from an empty one.
type setPayload struct {
	Recommendations *[]core.StockRecommendation `json:"recommendations"`
	Count           int                         `json:"count"`
	LastUpdated     json.RawMessage             `json:"lastUpdated"`
}

func decodeSet(body []byte) (*core.RecommendationSet, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errors.New("empty body")
	}

	var p setPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	if p.Recommendations == nil {
		return nil, errors.New("missing recommendations")
	}

	lastUpdated, err := decodeLastUpdated(p.LastUpdated)
	if err != nil {
		return nil, err
	}

	set := &core.RecommendationSet{
		Recommendations: *p.Recommendations,
		Count:           p.Count,
		LastUpdated:     lastUpdated,
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// decodeLastUpdated accepts the engine's display string or an epoch
// millisecond timestamp.
func decodeLastUpdated(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return core.NeverUpdated, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var ms int64
	if err := json.Unmarshal(raw, &ms); err != nil {
		return "", fmt.Errorf("lastUpdated: %w", err)
	}
	if ms <= 0 {
		return core.NeverUpdated, nil
	}
	return time.UnixMilli(ms).Format(lastUpdatedLayout), nil
}
