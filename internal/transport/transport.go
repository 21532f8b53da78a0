package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/credentials"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/logging"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/profile"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/web"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

// Transport executes single HTTP exchanges. It never follows redirects and
// never retries, apart from one relaxed-TLS attempt in insecure mode.
type Transport struct {
	cfg      Config
	creds    *credentials.Store
	auth     *credentials.AuthCache
	limiter  *rate.Limiter
	breakers *resilience.Group
	log      *logging.Logger
	metrics  *monitoring.Metrics
	spills   *web.Spills

	mu       sync.Mutex
	clients  map[string]*resty.Client
	jar      http.CookieJar
	resolver ProxyResolver
}

// Option configures a Transport
type Option func(*Transport)

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(t *Transport) { t.log = logging.OrNop(l).Component("transport") }
}

// WithMetrics records exchanges and failures
func WithMetrics(m *monitoring.Metrics) Option {
	return func(t *Transport) { t.metrics = m }
}

// WithProxyResolver consults r for requests without an explicit proxy
func WithProxyResolver(r ProxyResolver) Option {
	return func(t *Transport) { t.resolver = r }
}

// WithBreakerSettings overrides the per-host breaker settings
func WithBreakerSettings(s resilience.Settings) Option {
	return func(t *Transport) { t.breakers = resilience.NewGroup(s) }
}

// New creates a transport. creds and auth are shared with the rest of the
// client; nil creates private ones.
func New(cfg Config, creds *credentials.Store, auth *credentials.AuthCache, opts ...Option) *Transport {
	if creds == nil {
		creds = credentials.NewStore()
	}
	if auth == nil {
		auth = credentials.NewAuthCache()
	}
	if cfg.SpillThreshold == 0 {
		cfg.SpillThreshold = web.DefaultSpillThreshold
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), max(1, int(cfg.RateLimitRPS)))
	}

	t := &Transport{
		cfg:     cfg,
		creds:   creds,
		auth:    auth,
		limiter: limiter,
		log:     logging.Nop(),
		spills:  web.NewSpills(),
		clients: make(map[string]*resty.Client),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.breakers == nil {
		t.breakers = resilience.NewGroup(resilience.Settings{
			OnStateChange: func(host string, from, to resilience.State) {
				t.log.Warn("host breaker state changed",
					zap.String("host", host), zap.Stringer("from", from), zap.Stringer("to", to))
			},
		})
	}
	if cfg.Cookies {
		t.jar = newJar()
	}
	return t
}

// SetProxyResolver installs or clears the auto-config resolver
func (t *Transport) SetProxyResolver(r ProxyResolver) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resolver = r
}

// Credentials returns the shared credential store
func (t *Transport) Credentials() *credentials.Store { return t.creds }

// AuthCache returns the shared authentication-exchange cache
func (t *Transport) AuthCache() *credentials.AuthCache { return t.auth }

// Breakers returns the per-host breakers
func (t *Transport) Breakers() *resilience.Group { return t.breakers }

// Cookies returns the cookies the jar would send to u
func (t *Transport) Cookies(u *url.URL) []*http.Cookie {
	t.mu.Lock()
	jar := t.jar
	t.mu.Unlock()
	if jar == nil {
		return nil
	}
	return jar.Cookies(u)
}

// ClearCookies empties the cookie jar
func (t *Transport) ClearCookies() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.jar != nil {
		t.jar = newJar()
	}
}

// Spills returns the spill files of response bodies this transport downloaded
func (t *Transport) Spills() *web.Spills { return t.spills }

// Close drops idle pooled connections and deletes this transport's spill files
func (t *Transport) Close() error {
	t.mu.Lock()
	for _, c := range t.clients {
		c.GetClient().CloseIdleConnections()
	}
	t.mu.Unlock()
	return t.spills.Close()
}

// Execute performs one exchange for req using the header layout of prof.
// A connection closed without any answer yields web.NoHTTPResponse rather
// than an error. HTTP error statuses are returned as responses.
func (t *Transport) Execute(ctx context.Context, req *web.Request, prof *profile.Profile) (*web.Response, error) {
	if prof == nil {
		prof = profile.Default()
	}
	u := req.URL()
	if u == nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &web.MalformedRequestError{Input: req.URLString(), Reason: "not an http(s) URL"}
	}

	timeout := req.Timeout()
	if timeout <= 0 {
		timeout = t.cfg.Timeout
	}

	hp := hostPort(u)
	t.pushCredentials(req, hp)

	body, contentType, err := encodeBody(req, prof)
	if err != nil {
		return nil, &web.MalformedRequestError{Input: req.URLString(), Reason: "cannot encode body", Err: err}
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return nil, t.fail(req, "rate_limit", fmt.Errorf("rate limit error: %w", err))
	}

	var done func(bool)
	if t.cfg.BreakerEnabled {
		done, err = t.breakers.Get(u.Hostname()).Allow()
		if err != nil {
			return nil, t.fail(req, "circuit_open", err)
		}
	}

	resp, err := t.exchange(ctx, req, prof, hp, body, contentType, timeout)
	if done != nil {
		done(err == nil && !resp.IsNoHTTPResponse() || errors.Is(err, context.Canceled))
	}
	return resp, err
}

// exchange runs the request and answers a Basic challenge at most once
func (t *Transport) exchange(ctx context.Context, req *web.Request, prof *profile.Profile, hostPort string,
	body []byte, contentType string, timeout time.Duration) (*web.Response, error) {

	route := t.route(ctx, req)

	authorization := ""
	if ex, ok := t.auth.Get(hostPort); ok && !req.Header().Has("Authorization") {
		authorization = ex.Authorization
	}

	resp, err := t.attempt(ctx, req, prof, route, body, contentType, authorization, timeout)
	if err != nil || resp.StatusCode != http.StatusUnauthorized || req.Header().Has("Authorization") {
		return resp, err
	}

	if authorization != "" {
		t.auth.Invalidate(hostPort)
	}
	realm, header, ok := t.basicChallenge(resp, req.URL())
	if !ok || header == authorization {
		return resp, nil
	}

	t.log.Debug("answering Basic challenge", zap.String("url", req.URLString()), zap.String("realm", realm))
	_ = resp.Release()
	resp, err = t.attempt(ctx, req, prof, route, body, contentType, header, timeout)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.auth.Put(hostPort, credentials.Exchange{Scheme: "basic", Realm: realm, Authorization: header})
	}
	return resp, nil
}

// attempt sends once, retrying with a relaxed TLS policy when insecure
// mode is on and the handshake failed
func (t *Transport) attempt(ctx context.Context, req *web.Request, prof *profile.Profile, route *web.Proxy,
	body []byte, contentType, authorization string, timeout time.Duration) (*web.Response, error) {

	policy := tlsStrict
	if t.cfg.InsecureSSL {
		policy = tlsInsecure
	}

	resp, err := t.send(ctx, req, prof, route, policy, body, contentType, authorization, timeout)
	if err != nil && policy == tlsInsecure && req.URL().Scheme == "https" && isTLSError(err) {
		t.log.Warn("TLS handshake failed, retrying with relaxed TLS policy",
			zap.String("url", req.URLString()), zap.Error(err))
		resp, err = t.send(ctx, req, prof, route, tlsRelaxed, body, contentType, authorization, timeout)
	}
	if err != nil {
		if isNoResponse(err) {
			t.log.Warn("connection closed without a response", zap.String("url", req.URLString()))
			t.metrics.RecordTransportError("no_response")
			return web.NoHTTPResponse(req), nil
		}
		return nil, t.fail(req, errorKind(err), err)
	}
	return resp, nil
}

// send performs one physical exchange and downloads the body
func (t *Transport) send(ctx context.Context, req *web.Request, prof *profile.Profile, route *web.Proxy, policy tlsPolicy,
	body []byte, contentType, authorization string, timeout time.Duration) (*web.Response, error) {

	client, err := t.clientFor(route, policy)
	if err != nil {
		return nil, err
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	u := req.URL()
	computed := web.NewHeader(
		"Host", u.Host,
		"User-Agent", prof.UserAgent,
		"Connection", "keep-alive",
	)
	if cookie := t.cookieHeader(u); cookie != "" {
		computed.Add("Cookie", cookie)
	}
	if authorization != "" {
		computed.Add("Authorization", authorization)
	}

	wire := OrderHeaders(prof, requestHeaders(req, contentType), computed)

	r := client.R().SetContext(ctx).SetDoNotParseResponse(true)
	for _, f := range wire.Fields() {
		r.Header.Add(f.Name, f.Value)
	}
	if body != nil {
		r.SetBody(body)
	}

	// userinfo reaches the server only through the credential store
	target := *u
	target.User = nil

	start := time.Now()
	rr, err := r.Execute(req.Method(), target.String())
	if err != nil {
		return nil, err
	}
	raw := rr.RawResponse
	defer raw.Body.Close()

	t.storeCookies(u, raw)

	content, spilled, err := t.download(req, raw)
	if err != nil {
		return nil, err
	}

	resp := web.NewResponse(req, raw.StatusCode, statusMessage(raw), web.FromHTTP(raw.Header), content)
	resp.LoadDuration = time.Since(start)

	t.metrics.RecordExchange(req.Method(), raw.StatusCode, resp.LoadDuration, content.Len(), spilled)
	t.log.Debug("exchange completed",
		zap.String("method", req.Method()),
		zap.String("url", req.URLString()),
		zap.Int("status", raw.StatusCode),
		zap.Int64("bytes", content.Len()),
		zap.Duration("duration", resp.LoadDuration))
	return resp, nil
}

// requestHeaders returns the caller's headers with Content-Type settled:
// for form parameters the encoder's type replaces any caller hint
func requestHeaders(req *web.Request, contentType string) web.Header {
	h := req.Header().Clone()
	if _, raw := req.Body(); !raw && contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return h
}

func (t *Transport) download(req *web.Request, raw *http.Response) (web.Content, bool, error) {
	if req.Method() == http.MethodHead || raw.StatusCode == http.StatusNoContent || raw.StatusCode == http.StatusNotModified {
		return web.EmptyContent(), false, nil
	}

	reader, closeDecoders, err := decodeBody(raw.Body, raw.Header.Get("Content-Encoding"))
	if err != nil {
		return nil, false, err
	}
	defer closeDecoders()

	content, err := t.spills.Download(reader, t.cfg.SpillThreshold, t.cfg.TempDir)
	if err != nil {
		return nil, false, err
	}
	return content, !content.InMemory(), nil
}

// pushCredentials copies URL-embedded and explicit credentials into the
// shared store, dropping any cached exchange for the host first
func (t *Transport) pushCredentials(req *web.Request, hostPort string) {
	urlCreds, hasURL := req.URLCredentials()
	explicit := req.Credentials()
	if !hasURL && explicit == nil {
		return
	}

	t.auth.Invalidate(hostPort)
	host, port := splitHostPort(hostPort)
	scope := credentials.HostScope(host, port)
	if hasURL {
		if err := t.creds.Set(scope, urlCreds); err != nil {
			t.log.Warn("rejected URL credentials", zap.Error(err))
		}
	}
	if explicit != nil {
		if err := t.creds.Set(scope, explicit); err != nil {
			t.log.Warn("rejected request credentials", zap.Error(err))
		}
	}
}

// basicChallenge builds an Authorization header answering the Basic
// challenge in resp, when the store holds a matching credential
func (t *Transport) basicChallenge(resp *web.Response, u *url.URL) (realm, header string, ok bool) {
	for _, challenge := range resp.Header.Values("WWW-Authenticate") {
		scheme, params, _ := strings.Cut(strings.TrimSpace(challenge), " ")
		if !strings.EqualFold(scheme, "basic") {
			continue
		}
		realm = challengeParam(params, "realm")
		cred := t.creds.Get(credentials.Scope{
			Host:   u.Hostname(),
			Port:   web.DefaultPort(u),
			Realm:  realm,
			Scheme: "basic",
		})
		if cred == nil {
			return realm, "", false
		}
		header, ok = credentials.BasicAuthorization(cred)
		return realm, header, ok
	}
	return "", "", false
}

func challengeParam(params, name string) string {
	for _, part := range strings.Split(params, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if found && strings.EqualFold(strings.TrimSpace(k), name) {
			return strings.Trim(strings.TrimSpace(v), `"`)
		}
	}
	return ""
}

func (t *Transport) cookieHeader(u *url.URL) string {
	cookies := t.Cookies(u)
	if len(cookies) == 0 {
		return ""
	}
	parts := make([]string, len(cookies))
	for i, c := range cookies {
		parts[i] = c.Name + "=" + c.Value
	}
	return strings.Join(parts, "; ")
}

func (t *Transport) storeCookies(u *url.URL, raw *http.Response) {
	t.mu.Lock()
	jar := t.jar
	t.mu.Unlock()
	if jar == nil {
		return
	}
	if cookies := raw.Cookies(); len(cookies) > 0 {
		jar.SetCookies(u, cookies)
	}
}

func (t *Transport) fail(req *web.Request, kind string, err error) error {
	t.metrics.RecordTransportError(kind)
	t.log.Debug("exchange failed", zap.String("url", req.URLString()), zap.String("kind", kind), zap.Error(err))
	return &web.TransportError{Method: req.Method(), URL: req.URLString(), Err: err}
}

func newJar() http.CookieJar {
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return jar
}

func hostPort(u *url.URL) string {
	return strings.ToLower(u.Hostname()) + ":" + strconv.Itoa(web.DefaultPort(u))
}

func splitHostPort(hp string) (string, int) {
	host, port, err := net.SplitHostPort(hp)
	if err != nil {
		return hp, credentials.AnyPort
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return host, credentials.AnyPort
	}
	return host, n
}

func statusMessage(raw *http.Response) string {
	msg := strings.TrimSpace(strings.TrimPrefix(raw.Status, strconv.Itoa(raw.StatusCode)))
	if msg == "" {
		msg = http.StatusText(raw.StatusCode)
	}
	return msg
}

// isNoResponse reports a server that closed the connection before sending
// a status line
func isNoResponse(err error) bool {
	return errors.Is(err, io.EOF)
}

func isTLSError(err error) bool {
	var (
		recordErr  tls.RecordHeaderError
		alertErr   tls.AlertError
		verifyErr  *tls.CertificateVerificationError
		unknownCA  x509.UnknownAuthorityError
		hostErr    x509.HostnameError
		invalidErr x509.CertificateInvalidError
	)
	switch {
	case errors.As(err, &recordErr), errors.As(err, &alertErr), errors.As(err, &verifyErr),
		errors.As(err, &unknownCA), errors.As(err, &hostErr), errors.As(err, &invalidErr):
		return true
	}
	return strings.Contains(err.Error(), "tls: ")
}

func errorKind(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case isTLSError(err):
		return "tls"
	default:
		return "connection"
	}
}

type restyLogger struct {
	log *logging.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.log.Sugar().Errorf(format, v...)
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.log.Sugar().Warnf(format, v...)
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.log.Sugar().Debugf(format, v...)
}
