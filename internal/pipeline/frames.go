package pipeline

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/logging"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/web"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/window"
	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

// framer is implemented by pages that declare child frames
type framer interface {
	Frames() []window.FrameDecl
}

// loadFrames opens a child window for every frame pg declares and loads
// it. A failed frame keeps an empty page.
func (p *Pipeline) loadFrames(ctx context.Context, win *window.Window, pg window.Page, log *logging.Logger) {
	f, ok := pg.(framer)
	if !ok {
		return
	}
	decls := f.Frames()
	if len(decls) == 0 {
		return
	}
	if p.cfg.MaxFrameDepth > 0 && win.Depth() >= p.cfg.MaxFrameDepth {
		log.Warn("frame nesting too deep", zap.Int("depth", win.Depth()), zap.Int("frames", len(decls)))
		return
	}

	referer := pg.URL()
	for _, d := range decls {
		if ctx.Err() != nil {
			return
		}
		child := p.windows.OpenFrame(win, d.Name)
		req := web.NewRequestURL(d.URL, http.MethodGet)
		if httpURL(referer) && httpURL(d.URL) {
			req.SetHeader("Referer", web.WithoutFragment(referer))
		}
		if _, err := p.load(ctx, child, req, true); err != nil {
			log.Warn("frame load failed", zap.String("frame_url", d.URL.String()), zap.Error(err))
			if _, err := p.materialize(ctx, child, blankResponse(), false, log); err != nil {
				log.Debug("blank frame", zap.Error(err))
			}
		}
	}
}

// frameDenial reports why resp may not be shown inside the frame win, or
// "" when it may. X-Frame-Options DENY always denies; SAMEORIGIN only
// applies when no CSP frame-ancestors directive is present.
func (p *Pipeline) frameDenial(win *window.Window, resp *web.Response) string {
	var parentURL *url.URL
	if parent := win.Parent(); parent != nil {
		if pp := parent.Page(); pp != nil {
			parentURL = pp.URL()
		}
	}
	var respURL *url.URL
	if resp.Request != nil {
		respURL = resp.Request.URL()
	}

	governed := false
	for _, policy := range resp.Header.Values("Content-Security-Policy") {
		sources, ok := frameAncestors(policy)
		if !ok {
			continue
		}
		governed = true
		if !ancestorAllowed(sources, parentURL, respURL) {
			return "content-security-policy frame-ancestors"
		}
	}

	switch strings.ToUpper(strings.TrimSpace(resp.Header.Get("X-Frame-Options"))) {
	case "DENY":
		return "x-frame-options DENY"
	case "SAMEORIGIN":
		if !governed && (web.Origin(parentURL) != web.Origin(respURL) || web.Origin(respURL) == "null") {
			return "x-frame-options SAMEORIGIN"
		}
	}
	return ""
}

// frameAncestors extracts the source list of the frame-ancestors directive
func frameAncestors(policy string) ([]string, bool) {
	for _, directive := range strings.Split(policy, ";") {
		fields := strings.Fields(directive)
		if len(fields) > 0 && strings.EqualFold(fields[0], "frame-ancestors") {
			return fields[1:], true
		}
	}
	return nil, false
}

// ancestorAllowed matches the parent document URL against a CSP source list
func ancestorAllowed(sources []string, parent, self *url.URL) bool {
	if parent == nil {
		return false
	}
	for _, src := range sources {
		src = strings.ToLower(src)
		switch {
		case src == "'none'":
			continue
		case src == "'self'":
			if web.Origin(parent) != "null" && web.Origin(parent) == web.Origin(self) {
				return true
			}
		case src == "*":
			if httpURL(parent) {
				return true
			}
		case strings.HasSuffix(src, ":") && !strings.Contains(src, "/"):
			if schemeMatches(strings.TrimSuffix(src, ":"), parent.Scheme) {
				return true
			}
		default:
			if hostSourceMatches(src, parent, self) {
				return true
			}
		}
	}
	return false
}

// schemeMatches lets an http source also match its secure upgrade
func schemeMatches(source, actual string) bool {
	return source == actual || (source == "http" && actual == "https")
}

// hostSourceMatches matches [scheme://]host[:port][/path] against u. The
// path part is ignored since ancestors are compared by origin.
func hostSourceMatches(src string, u, self *url.URL) bool {
	scheme := ""
	if s, rest, ok := strings.Cut(src, "://"); ok {
		scheme, src = s, rest
	}
	if i := strings.IndexByte(src, '/'); i >= 0 {
		src = src[:i]
	}
	host, port := src, ""
	if i := strings.LastIndexByte(src, ':'); i >= 0 && !strings.HasSuffix(src, "]") {
		host, port = src[:i], src[i+1:]
	}

	if scheme == "" {
		scheme = "http"
		if self != nil && self.Scheme != "" {
			scheme = self.Scheme
		}
	}
	if !schemeMatches(scheme, u.Scheme) {
		return false
	}

	actualHost := strings.ToLower(u.Hostname())
	if strings.HasPrefix(host, "*.") {
		ok, err := doublestar.Match(host, actualHost)
		if err != nil || !ok || !strings.HasSuffix(actualHost, host[1:]) {
			return false
		}
	} else if host != actualHost {
		return false
	}

	switch port {
	case "", "*":
		if port == "" && web.DefaultPort(u) != defaultPortFor(scheme) && web.DefaultPort(u) != defaultPortFor(u.Scheme) {
			return false
		}
		return true
	default:
		n, err := strconv.Atoi(port)
		return err == nil && n == web.DefaultPort(u)
	}
}

func defaultPortFor(scheme string) int {
	return web.DefaultPort(&url.URL{Scheme: scheme})
}
