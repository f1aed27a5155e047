package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/newthinker/pickboard/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Poll     PollConfig     `mapstructure:"poll"`
	Refresh  RefreshConfig  `mapstructure:"refresh"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`

	// TemplatesDir overrides the embedded web templates when set.
	TemplatesDir string `mapstructure:"templates_dir"`
}

// UpstreamConfig points at the recommendation engine.
type UpstreamConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// PollConfig holds the board timing.
type PollConfig struct {
	Interval     time.Duration `mapstructure:"interval"`
	RefreshDelay time.Duration `mapstructure:"refresh_delay"`
}

// RefreshConfig throttles manual refresh requests across all clients.
type RefreshConfig struct {
	MinInterval time.Duration `mapstructure:"min_interval"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file on top of Defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.api_key", d.Server.APIKey)
	v.SetDefault("server.templates_dir", d.Server.TemplatesDir)
	v.SetDefault("upstream.base_url", d.Upstream.BaseURL)
	v.SetDefault("upstream.timeout", d.Upstream.Timeout)
	v.SetDefault("upstream.user_agent", d.Upstream.UserAgent)
	v.SetDefault("poll.interval", d.Poll.Interval)
	v.SetDefault("poll.refresh_delay", d.Poll.RefreshDelay)
	v.SetDefault("refresh.min_interval", d.Refresh.MinInterval)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8081,
		},
		Upstream: UpstreamConfig{
			BaseURL:   "http://localhost:8080",
			Timeout:   30 * time.Second,
			UserAgent: "pickboard",
		},
		Poll: PollConfig{
			Interval:     5 * time.Minute,
			RefreshDelay: 2 * time.Second,
		},
		Refresh: RefreshConfig{
			MinInterval: 2 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	// Upstream validation
	if c.Upstream.BaseURL == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("upstream base_url required"))
	}
	u, err := url.Parse(c.Upstream.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("upstream base_url must be an absolute http(s) URL, got %q", c.Upstream.BaseURL))
	}
	if c.Upstream.Timeout < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("upstream timeout cannot be negative, got %s", c.Upstream.Timeout))
	}

	// Poll validation
	if c.Poll.Interval <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("poll interval must be positive, got %s", c.Poll.Interval))
	}
	if c.Poll.RefreshDelay < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("refresh_delay cannot be negative, got %s", c.Poll.RefreshDelay))
	}
	if c.Refresh.MinInterval < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("refresh min_interval cannot be negative, got %s", c.Refresh.MinInterval))
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("metrics path must start with /, got %q", c.Metrics.Path))
	}

	return nil
}
