package pipeline

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/profile"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/web"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/charmap"
)

// network serves req from the cache or the transport, following redirects.
// Only responses fetched by this call are offered to the cache.
func (p *Pipeline) network(ctx context.Context, req *web.Request) (*web.Response, error) {
	if resp, ok := p.cache.Lookup(req); ok {
		p.log.Debug("served from cache", zap.String("url", req.URLString()))
		return resp, nil
	}

	prof := p.Profile()
	resp, err := p.follow(ctx, p.withDefaultHeaders(req, prof), prof)
	if err != nil {
		return nil, err
	}
	if req.Method() == http.MethodGet && resp.IsSuccess() {
		p.cache.TryStore(req, resp, nil)
	}
	return resp, nil
}

// withDefaultHeaders returns a copy of req carrying the profile's default
// headers for every name the caller left unset
func (p *Pipeline) withDefaultHeaders(req *web.Request, prof *profile.Profile) *web.Request {
	out := req.Clone()
	h := out.Header()
	setDefault := func(name, value string) {
		if value != "" && !h.Has(name) {
			out.SetHeader(name, value)
		}
	}
	setDefault("Accept", prof.AcceptFor(profile.KindDocument))
	setDefault("Accept-Language", prof.AcceptLanguage)
	setDefault("Accept-Encoding", prof.AcceptEncoding)
	if prof.OrderIndex("Upgrade-Insecure-Requests") >= 0 {
		setDefault("Upgrade-Insecure-Requests", "1")
	}
	if p.cfg.DoNotTrack {
		setDefault("DNT", "1")
	}
	return out
}

// follow executes req and walks the redirect chain. The first exchange is
// free; every re-issue spends one hop of the budget.
func (p *Pipeline) follow(ctx context.Context, req *web.Request, prof *profile.Profile) (*web.Response, error) {
	cur := req
	for hops := 0; ; hops++ {
		resp, err := p.transport.Execute(ctx, cur, prof)
		if err != nil {
			return nil, err
		}
		if !p.cfg.FollowRedirects {
			return resp, nil
		}

		next, ok := p.redirect(cur, resp, prof)
		if !ok {
			return resp, nil
		}
		if hops >= p.cfg.MaxRedirects {
			p.releaseUnlessCached(resp)
			return nil, &web.TooManyRedirectsError{URL: req.URLString(), Hops: hops}
		}

		p.log.Debug("following redirect",
			zap.Int("status", resp.StatusCode),
			zap.String("from", cur.URLString()),
			zap.String("to", next.URLString()),
			zap.String("method", next.Method()))
		p.metrics.RecordRedirect(resp.StatusCode)
		p.releaseUnlessCached(resp)
		cur = next
	}
}

// redirect builds the follow-up request for a redirect response, or reports
// false when resp ends the chain
func (p *Pipeline) redirect(cur *web.Request, resp *web.Response, prof *profile.Profile) (*web.Request, bool) {
	status := resp.StatusCode
	switch status {
	case http.StatusUseProxy:
		p.log.Warn("ignoring 305 Use Proxy", zap.String("url", cur.URLString()))
		return nil, false
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
	default:
		return nil, false
	}

	loc := resp.Header.Get("Location")
	if loc == "" {
		p.log.Debug("redirect without Location", zap.Int("status", status), zap.String("url", cur.URLString()))
		return nil, false
	}
	if prof.FullQueryEncoding {
		loc = decodeLocation(loc, cur.Charset())
	}
	target, err := web.ResolveURL(cur.URL(), loc)
	if err != nil {
		p.log.Debug("unparsable Location", zap.String("location", loc), zap.Error(err))
		return nil, false
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		p.log.Debug("redirect to unsupported scheme", zap.String("location", target.String()))
		return nil, false
	}
	if prof.CarryFragmentOnRedirect && target.Fragment == "" && cur.URL().Fragment != "" {
		target.Fragment = cur.URL().Fragment
		target.RawFragment = cur.URL().RawFragment
	}

	next := cur.Clone()
	next.SetURL(target)
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther:
		if cur.Method() != http.MethodHead {
			next.SetMethod(http.MethodGet)
		}
		next.ClearBody()
		next.RemoveHeader("Content-Type")
		next.RemoveHeader("Content-Length")
	}
	return next, true
}

// decodeLocation reinterprets a Location carrying raw non-ASCII bytes. The
// bytes are decoded with the request charset, falling back to Latin-1.
func decodeLocation(loc, cs string) string {
	if isASCII(loc) {
		return loc
	}
	if cs == "" || strings.EqualFold(cs, "utf-8") {
		if utf8.ValidString(loc) {
			return loc
		}
	} else if enc, _ := charset.Lookup(cs); enc != nil {
		if s, err := enc.NewDecoder().String(loc); err == nil {
			return s
		}
	}
	s, err := charmap.ISO8859_1.NewDecoder().String(loc)
	if err != nil {
		return loc
	}
	return s
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func httpURL(u *url.URL) bool {
	return u != nil && (u.Scheme == "http" || u.Scheme == "https")
}
