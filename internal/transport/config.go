package transport

import (
	"time"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/web"
)

// Config holds connection level settings
type Config struct {
	Timeout        time.Duration
	SpillThreshold int64
	TempDir        string
	InsecureSSL    bool
	Cookies        bool
	RateLimitRPS   float64
	BreakerEnabled bool
	MaxIdleConns   int

	// Proxy is the client-wide proxy; nil means direct
	Proxy *web.Proxy
	// Bypass lists host globs that never use Proxy
	Bypass []string
}

// DefaultConfig returns settings matching the environment defaults
func DefaultConfig() Config {
	return FromConfig(config.Default())
}

// FromConfig extracts transport settings from the engine configuration
func FromConfig(cfg *config.Config) Config {
	c := Config{
		Timeout:        cfg.Transport.Timeout,
		SpillThreshold: cfg.Transport.SpillThreshold,
		TempDir:        cfg.Transport.TempDir,
		InsecureSSL:    cfg.Transport.InsecureSSL,
		Cookies:        cfg.Transport.Cookies,
		RateLimitRPS:   cfg.Transport.RateLimitRPS,
		BreakerEnabled: cfg.Transport.BreakerEnabled,
		MaxIdleConns:   cfg.Transport.MaxIdleConns,
		Bypass:         cfg.Proxy.Bypass,
	}
	if cfg.Proxy.HasProxy() {
		c.Proxy = &web.Proxy{
			Host:   cfg.Proxy.Host,
			Port:   cfg.Proxy.Port,
			Scheme: cfg.Proxy.Scheme,
			SOCKS:  cfg.Proxy.SOCKS,
		}
	}
	return c
}
