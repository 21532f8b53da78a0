package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/cache"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/credentials"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/logging"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/pac"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/page"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/pipeline"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/profile"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/script"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/transport"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/web"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/window"
	"go.uber.org/zap"
)

// Client is a headless browsing session
type Client struct {
	cfg     *config.Config
	log     *logging.Logger
	metrics *monitoring.Metrics

	creds     *credentials.Store
	auth      *credentials.AuthCache
	cache     *cache.Cache
	transport *transport.Transport
	pac       *pac.Resolver
	windows   *window.Registry
	pages     *page.Creator
	scripts   *script.Engine
	pipeline  *pipeline.Pipeline

	closeOnce sync.Once
	closeErr  error
}

// Option configures a Client
type Option func(*options)

type options struct {
	log     *logging.Logger
	metrics *monitoring.Metrics
	profile *profile.Profile
	pacOpts []pac.Option
}

// WithLogger sets the logger shared by every component
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics sets the metrics collector shared by every component
func WithMetrics(m *monitoring.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithProfile overrides the configured browser profile
func WithProfile(p *profile.Profile) Option {
	return func(o *options) { o.profile = p }
}

// WithPACOptions passes extra options to the proxy auto-config resolver
func WithPACOptions(opts ...pac.Option) Option {
	return func(o *options) { o.pacOpts = append(o.pacOpts, opts...) }
}

// New creates a client from cfg. A nil cfg means the defaults.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	log := logging.OrNop(o.log)
	metrics := o.metrics
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}

	prof := o.profile
	if prof == nil {
		var err error
		prof, err = profile.Resolve(cfg.Profile.Name, cfg.Profile.File)
		if err != nil {
			return nil, fmt.Errorf("resolve profile: %w", err)
		}
	}

	c := &Client{
		cfg:     cfg,
		log:     log,
		metrics: metrics,
		creds:   credentials.NewStore(),
		auth:    credentials.NewAuthCache(),
	}
	c.cache = cache.New(
		cache.WithCapacity(cfg.Cache.Capacity),
		cache.WithLogger(log),
		cache.WithMetrics(metrics))
	c.transport = transport.New(transport.FromConfig(cfg), c.creds, c.auth,
		transport.WithLogger(log),
		transport.WithMetrics(metrics))
	c.windows = window.NewRegistry(
		window.WithLogger(log),
		window.WithMetrics(metrics),
		window.WithHistorySize(cfg.Navigation.HistorySize))
	c.pages = page.NewCreator(page.WithRetainer(c.cache), page.WithLogger(log))

	scriptCfg := script.DefaultConfig()
	if cfg.Script.Timeout > 0 {
		scriptCfg.Timeout = cfg.Script.Timeout
	}
	c.scripts = script.New(scriptCfg, log)

	c.pipeline = pipeline.New(pipeline.Deps{
		Transport: c.transport,
		Cache:     c.cache,
		Windows:   c.windows,
		Pages:     c.pages,
		Scripts:   c.scripts,
		Profile:   prof,
		Logger:    log,
		Metrics:   metrics,
	}, pipeline.FromConfig(cfg))

	if cfg.Proxy.PACURL != "" {
		pacOpts := append([]pac.Option{
			pac.WithPACURL(cfg.Proxy.PACURL),
			pac.WithFetcher(c.fetchPAC),
			pac.WithLogger(log),
		}, o.pacOpts...)
		c.pac = pac.NewResolver(pacOpts...)
		c.transport.SetProxyResolver(c.pac)
	}

	log.Info("browser client ready",
		zap.String("profile", prof.Name),
		zap.Int("cache_capacity", cfg.Cache.Capacity),
		zap.Bool("follow_redirects", cfg.Navigation.FollowRedirects),
		zap.Bool("proxy", cfg.Proxy.HasProxy()),
		zap.String("pac_url", cfg.Proxy.PACURL))
	return c, nil
}

// fetchPAC downloads a proxy auto-config script. The request carries an
// explicit direct route so it never consults the resolver it feeds.
func (c *Client) fetchPAC(ctx context.Context, pacURL string) (string, error) {
	req, err := web.NewRequest(pacURL, http.MethodGet)
	if err != nil {
		return "", err
	}
	req.SetProxy(&web.Proxy{})

	resp, err := c.pipeline.LoadResponse(ctx, req)
	if err != nil {
		return "", err
	}
	defer c.release(resp)

	if !resp.IsSuccess() {
		return "", fmt.Errorf("fetch proxy auto-config %s: status %d", pacURL, resp.StatusCode)
	}
	return resp.ContentAsString()
}

func (c *Client) release(resp *web.Response) {
	if c.cache.Holds(resp) {
		return
	}
	if err := resp.Release(); err != nil {
		c.log.Debug("release response", zap.Error(err))
	}
}

// Open loads rawURL into target, resolved against the current window
func (c *Client) Open(ctx context.Context, rawURL, target string) (window.Page, error) {
	req, err := web.NewRequest(rawURL, http.MethodGet)
	if err != nil {
		return nil, err
	}
	return c.Load(ctx, req, target)
}

// Load loads req into target, resolved against the current window
func (c *Client) Load(ctx context.Context, req *web.Request, target string) (window.Page, error) {
	return c.pipeline.Load(ctx, c.windows.Current(), target, req)
}

// GetPage loads rawURL into the current window
func (c *Client) GetPage(ctx context.Context, rawURL string) (window.Page, error) {
	req, err := web.NewRequest(rawURL, http.MethodGet)
	if err != nil {
		return nil, err
	}
	return c.pipeline.LoadInto(ctx, c.windows.Current(), req)
}

// SetProfile switches the browser profile for later loads
func (c *Client) SetProfile(p *profile.Profile) {
	c.pipeline.SetProfile(p)
}

// Close releases every window, cached response, pooled connection and
// spill file this client created. Later calls return the first result.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		var errs []error
		c.windows.Shutdown()
		c.cache.Clear()
		if err := c.transport.Close(); err != nil {
			errs = append(errs, fmt.Errorf("remove spill files: %w", err))
		}
		c.closeErr = errors.Join(errs...)
		c.log.Info("browser client closed")
	})
	return c.closeErr
}

func (c *Client) Config() *config.Config            { return c.cfg }
func (c *Client) Logger() *logging.Logger           { return c.log }
func (c *Client) Metrics() *monitoring.Metrics      { return c.metrics }
func (c *Client) Profile() *profile.Profile         { return c.pipeline.Profile() }
func (c *Client) Credentials() *credentials.Store   { return c.creds }
func (c *Client) AuthCache() *credentials.AuthCache { return c.auth }
func (c *Client) Cache() *cache.Cache               { return c.cache }
func (c *Client) Transport() *transport.Transport   { return c.transport }
func (c *Client) Windows() *window.Registry         { return c.windows }
func (c *Client) Pipeline() *pipeline.Pipeline      { return c.pipeline }
func (c *Client) Scripts() *script.Engine           { return c.scripts }
func (c *Client) Pages() *page.Creator              { return c.pages }

// PAC returns the proxy auto-config resolver, nil when none is configured
func (c *Client) PAC() *pac.Resolver { return c.pac }
