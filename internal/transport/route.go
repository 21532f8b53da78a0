package transport

import (
	"context"
	"net/url"
	"strings"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/web"
	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

// ProxyResolver chooses a proxy per target URL, typically by evaluating a
// proxy auto-config script. A nil proxy means connect directly.
type ProxyResolver interface {
	Resolve(ctx context.Context, target *url.URL) (*web.Proxy, error)
}

// route picks the proxy for req: an explicit request proxy wins, then the
// auto-config resolver, then the client-wide proxy unless the host is on
// the bypass list. nil means direct.
func (t *Transport) route(ctx context.Context, req *web.Request) *web.Proxy {
	if p := req.Proxy(); p != nil {
		if p.Host == "" {
			return nil
		}
		return p
	}

	t.mu.Lock()
	resolver := t.resolver
	t.mu.Unlock()

	if resolver != nil {
		p, err := resolver.Resolve(ctx, req.URL())
		if err == nil {
			return p
		}
		t.log.Warn("proxy auto-config failed, using configured proxy",
			zap.String("url", req.URLString()), zap.Error(err))
	}

	if t.cfg.Proxy == nil || t.cfg.Proxy.Host == "" {
		return nil
	}
	if Bypassed(req.URL().Hostname(), t.cfg.Bypass) {
		return nil
	}
	return t.cfg.Proxy
}

// Bypassed reports whether host matches any bypass glob
func Bypassed(host string, patterns []string) bool {
	host = strings.ToLower(host)
	for _, pattern := range patterns {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		if pattern == "" {
			continue
		}
		if pattern == host {
			return true
		}
		if ok, err := doublestar.Match(pattern, host); err == nil && ok {
			return true
		}
	}
	return false
}
