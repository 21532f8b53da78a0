package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all engine configuration.
type Config struct {
	Cache      CacheConfig
	Transport  TransportConfig
	Navigation NavigationConfig
	Proxy      ProxyConfig
	Profile    ProfileConfig
	Script     ScriptConfig
	Logging    LogConfig
	Server     ServerConfig
	RateLimit  RateLimitConfig
}

// CacheConfig holds response cache configuration.
type CacheConfig struct {
	Capacity int `envconfig:"WEBCORE_CACHE_CAPACITY" default:"40"`
}

// TransportConfig holds connection level configuration.
type TransportConfig struct {
	Timeout        time.Duration `envconfig:"WEBCORE_TIMEOUT" default:"90s"`
	SpillThreshold int64         `envconfig:"WEBCORE_SPILL_THRESHOLD" default:"512000"`
	TempDir        string        `envconfig:"WEBCORE_TEMP_DIR"`
	InsecureSSL    bool          `envconfig:"WEBCORE_INSECURE_SSL" default:"false"`
	Cookies        bool          `envconfig:"WEBCORE_COOKIES" default:"true"`
	RateLimitRPS   float64       `envconfig:"WEBCORE_RATE_LIMIT_RPS" default:"0"`
	BreakerEnabled bool          `envconfig:"WEBCORE_BREAKER_ENABLED" default:"true"`
	MaxIdleConns   int           `envconfig:"WEBCORE_MAX_IDLE_CONNS" default:"20"`
}

// NavigationConfig holds load pipeline configuration.
type NavigationConfig struct {
	FollowRedirects bool `envconfig:"WEBCORE_FOLLOW_REDIRECTS" default:"true"`
	MaxRedirects    int  `envconfig:"WEBCORE_MAX_REDIRECTS" default:"20"`
	HistorySize     int  `envconfig:"WEBCORE_HISTORY_SIZE" default:"50"`
	DoNotTrack      bool `envconfig:"WEBCORE_DO_NOT_TRACK" default:"false"`
	MaxFrameDepth   int  `envconfig:"WEBCORE_MAX_FRAME_DEPTH" default:"8"`
}

// ProxyConfig holds the client-wide proxy configuration.
type ProxyConfig struct {
	Host   string   `envconfig:"WEBCORE_PROXY_HOST"`
	Port   int      `envconfig:"WEBCORE_PROXY_PORT" default:"0"`
	Scheme string   `envconfig:"WEBCORE_PROXY_SCHEME" default:"http"`
	SOCKS  bool     `envconfig:"WEBCORE_PROXY_SOCKS" default:"false"`
	Bypass []string `envconfig:"WEBCORE_PROXY_BYPASS"`
	PACURL string   `envconfig:"WEBCORE_PAC_URL"`
}

// ProfileConfig selects the simulated browser profile.
type ProfileConfig struct {
	Name string `envconfig:"WEBCORE_PROFILE" default:"chrome"`
	File string `envconfig:"WEBCORE_PROFILE_FILE"`
}

// ScriptConfig holds script engine limits.
type ScriptConfig struct {
	Timeout time.Duration `envconfig:"WEBCORE_SCRIPT_TIMEOUT" default:"5s"`
}

// ServerConfig holds the control API listener configuration.
type ServerConfig struct {
	Host string `envconfig:"WEBCORE_HOST" default:"127.0.0.1"`
	Port string `envconfig:"WEBCORE_PORT" default:"8080"`
}

// RateLimitConfig holds control API rate limiting configuration.
type RateLimitConfig struct {
	Enabled           bool `envconfig:"WEBCORE_API_RATE_LIMIT" default:"false"`
	RequestsPerSecond int  `envconfig:"WEBCORE_API_RPS" default:"20"`
	Burst             int  `envconfig:"WEBCORE_API_BURST" default:"40"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Capacity: 40,
		},
		Transport: TransportConfig{
			Timeout:        90 * time.Second,
			SpillThreshold: 500 * 1024,
			Cookies:        true,
			BreakerEnabled: true,
			MaxIdleConns:   20,
		},
		Navigation: NavigationConfig{
			FollowRedirects: true,
			MaxRedirects:    20,
			HistorySize:     50,
			MaxFrameDepth:   8,
		},
		Proxy: ProxyConfig{
			Scheme: "http",
		},
		Profile: ProfileConfig{
			Name: "chrome",
		},
		Script: ScriptConfig{
			Timeout: 5 * time.Second,
		},
		Logging: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: "8080",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 20,
			Burst:             40,
		},
	}
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	if c.Cache.Capacity < 0 {
		return fmt.Errorf("cache capacity must not be negative: %d", c.Cache.Capacity)
	}
	if c.Transport.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %s", c.Transport.Timeout)
	}
	if c.Transport.SpillThreshold < 0 {
		return fmt.Errorf("spill threshold must not be negative: %d", c.Transport.SpillThreshold)
	}
	if c.Navigation.MaxRedirects < 0 {
		return fmt.Errorf("max redirects must not be negative: %d", c.Navigation.MaxRedirects)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit needs positive rps and burst: %d/%d", c.RateLimit.RequestsPerSecond, c.RateLimit.Burst)
	}
	if c.Proxy.Host != "" && (c.Proxy.Port <= 0 || c.Proxy.Port > 65535) {
		return fmt.Errorf("proxy port out of range: %d", c.Proxy.Port)
	}
	return nil
}

// HasProxy reports whether a client-wide proxy is configured.
func (p ProxyConfig) HasProxy() bool {
	return p.Host != ""
}
