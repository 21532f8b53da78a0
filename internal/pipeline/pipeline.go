package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/cache"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/logging"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/page"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/profile"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/script"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/transport"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/web"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/window"
	"go.uber.org/zap"
)

// ErrNoHistoryEntry is returned when a history step leaves the list
var ErrNoHistoryEntry = errors.New("no history entry at offset")

// Executor performs one HTTP exchange without following redirects
type Executor interface {
	Execute(ctx context.Context, req *web.Request, prof *profile.Profile) (*web.Response, error)
}

// PageCreator materializes a response inside a window
type PageCreator interface {
	CreatePage(ctx context.Context, resp *web.Response, win *window.Window) (window.Page, error)
}

// ScriptEngine evaluates javascript: URLs against the current page
type ScriptEngine interface {
	Evaluate(ctx context.Context, pg window.Page, sourceURL, source string) (script.Result, error)
}

// Deps are the collaborators of a pipeline. Nil members get defaults.
type Deps struct {
	Transport Executor
	Cache     *cache.Cache
	Windows   *window.Registry
	Pages     PageCreator
	Scripts   ScriptEngine
	Profile   *profile.Profile
	Logger    *logging.Logger
	Metrics   *monitoring.Metrics
}

// Config holds navigation settings
type Config struct {
	FollowRedirects bool
	// MaxRedirects is the hop budget of one redirect chain
	MaxRedirects int
	DoNotTrack   bool
	// MaxFrameDepth stops frame loading below this nesting level
	MaxFrameDepth int
}

// DefaultConfig returns settings matching the environment defaults
func DefaultConfig() Config {
	return FromConfig(config.Default())
}

// FromConfig extracts navigation settings from the engine configuration
func FromConfig(cfg *config.Config) Config {
	return Config{
		FollowRedirects: cfg.Navigation.FollowRedirects,
		MaxRedirects:    cfg.Navigation.MaxRedirects,
		DoNotTrack:      cfg.Navigation.DoNotTrack,
		MaxFrameDepth:   cfg.Navigation.MaxFrameDepth,
	}
}

// Pipeline runs logical loads. Navigation is driven sequentially per
// client; the download queue is safe for concurrent use.
type Pipeline struct {
	cfg       Config
	transport Executor
	cache     *cache.Cache
	windows   *window.Registry
	pages     PageCreator
	scripts   ScriptEngine
	log       *logging.Logger
	metrics   *monitoring.Metrics

	mu        sync.Mutex
	profile   *profile.Profile
	downloads []*downloadJob
}

// New creates a pipeline
func New(deps Deps, cfg Config) *Pipeline {
	log := logging.OrNop(deps.Logger)
	if cfg.MaxRedirects < 0 {
		cfg.MaxRedirects = config.Default().Navigation.MaxRedirects
	}

	p := &Pipeline{
		cfg:       cfg,
		transport: deps.Transport,
		cache:     deps.Cache,
		windows:   deps.Windows,
		pages:     deps.Pages,
		scripts:   deps.Scripts,
		profile:   deps.Profile,
		log:       log.Component("pipeline"),
		metrics:   deps.Metrics,
	}
	if p.cache == nil {
		p.cache = cache.New(cache.WithLogger(log), cache.WithMetrics(deps.Metrics))
	}
	if p.windows == nil {
		p.windows = window.NewRegistry(window.WithLogger(log), window.WithMetrics(deps.Metrics))
	}
	if p.pages == nil {
		p.pages = page.NewCreator(page.WithRetainer(p.cache), page.WithLogger(log))
	}
	if p.scripts == nil {
		p.scripts = script.New(script.DefaultConfig(), log)
	}
	if p.profile == nil {
		p.profile = profile.Default()
	}
	if p.transport == nil {
		p.transport = transport.New(transport.DefaultConfig(), nil, nil,
			transport.WithLogger(log), transport.WithMetrics(deps.Metrics))
	}
	return p
}

// Profile returns the active browser profile
func (p *Pipeline) Profile() *profile.Profile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.profile
}

// SetProfile switches the browser profile for later loads
func (p *Pipeline) SetProfile(prof *profile.Profile) {
	if prof == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profile = prof
}

func (p *Pipeline) Cache() *cache.Cache       { return p.cache }
func (p *Pipeline) Windows() *window.Registry { return p.windows }
func (p *Pipeline) Config() Config            { return p.cfg }

// Load resolves target against opener and loads req into the resulting
// window, opening a new top-level window when nothing matches. A nil opener
// means the current window.
func (p *Pipeline) Load(ctx context.Context, opener *window.Window, target string, req *web.Request) (window.Page, error) {
	if opener == nil {
		opener = p.windows.Current()
	}
	win, name := p.windows.Resolve(opener, target)
	if win == nil {
		win = p.windows.OpenTopLevel(name, opener)
	}
	return p.LoadInto(ctx, win, req)
}

// LoadInto loads req into win and records it in the window history
func (p *Pipeline) LoadInto(ctx context.Context, win *window.Window, req *web.Request) (window.Page, error) {
	return p.load(ctx, win, req, true)
}

// Back reloads the previous history entry of win
func (p *Pipeline) Back(ctx context.Context, win *window.Window) (window.Page, error) {
	return p.GoTo(ctx, win, -1)
}

// Forward reloads the next history entry of win
func (p *Pipeline) Forward(ctx context.Context, win *window.Window) (window.Page, error) {
	return p.GoTo(ctx, win, 1)
}

// GoTo moves offset entries through the history of win and reloads that
// entry without adding a new one
func (p *Pipeline) GoTo(ctx context.Context, win *window.Window, offset int) (window.Page, error) {
	u, ok := win.History().GoTo(offset)
	if !ok {
		return nil, fmt.Errorf("%w %d", ErrNoHistoryEntry, offset)
	}
	pg, err := p.load(ctx, win, web.NewRequestURL(u, http.MethodGet), false)
	if err != nil {
		win.History().GoTo(-offset)
		return nil, err
	}
	return pg, nil
}

func (p *Pipeline) load(ctx context.Context, win *window.Window, req *web.Request, record bool) (window.Page, error) {
	if win.IsClosed() {
		return nil, fmt.Errorf("load into closed window %s", win)
	}
	u := req.URL()
	scheme := u.Scheme
	log := p.log.With(
		zap.String("load", id.NewLoadID().String()),
		zap.Stringer("window", win.ID()),
		zap.String("url", web.WithoutFragment(u)))

	if pg := p.anchorOnly(win, req); pg != nil {
		log.Debug("fragment navigation", zap.String("fragment", u.Fragment))
		if record {
			win.History().Add(pg.URL())
		}
		p.metrics.RecordLoad(scheme, "anchor")
		return pg, nil
	}

	if scheme == "javascript" {
		pg, err := p.loadJavaScript(ctx, win, req, log)
		p.metrics.RecordLoad(scheme, outcome(err))
		return pg, err
	}

	resp, err := p.LoadResponse(ctx, req)
	if err != nil {
		log.Debug("load failed", zap.Error(err))
		p.metrics.RecordLoad(scheme, "error")
		return nil, err
	}

	pg, err := p.materialize(ctx, win, resp, record, log)
	p.metrics.RecordLoad(scheme, outcome(err))
	return pg, err
}

// anchorOnly returns the current page of win when req only changes its
// fragment
func (p *Pipeline) anchorOnly(win *window.Window, req *web.Request) window.Page {
	u := req.URL()
	if u.Fragment == "" || req.Method() != http.MethodGet || req.HasBody() {
		return nil
	}
	cur := win.Page()
	if cur == nil || !web.SameIgnoringFragment(cur.URL(), u) {
		return nil
	}
	if f, ok := cur.(interface{ SetFragment(string) }); ok {
		f.SetFragment(u.Fragment)
	}
	return cur
}

// materialize builds the page for resp inside win, then loads its frames
func (p *Pipeline) materialize(ctx context.Context, win *window.Window, resp *web.Response, record bool, log *logging.Logger) (window.Page, error) {
	if !win.IsTopLevel() {
		if reason := p.frameDenial(win, resp); reason != "" {
			log.Warn("frame loading denied",
				zap.String("reason", reason),
				zap.String("frame_url", resp.URL()))
			p.metrics.RecordFrameDenied()
			p.releaseUnlessCached(resp)
			win.SetFrameDenied(true)
			resp = blankResponse()
		} else {
			win.SetFrameDenied(false)
		}
	}

	pg, err := p.pages.CreatePage(ctx, resp, win)
	if err != nil {
		p.releaseUnlessCached(resp)
		return nil, fmt.Errorf("create page for %s: %w", resp.URL(), err)
	}
	p.windows.SetEnclosedPage(win, pg)
	if win.IsClosed() {
		return nil, fmt.Errorf("window %s closed during load", win)
	}
	if record {
		win.History().Add(pg.URL())
	}
	p.loadFrames(ctx, win, pg, log)
	return pg, nil
}

func (p *Pipeline) releaseUnlessCached(resp *web.Response) {
	if resp == nil || p.cache.Holds(resp) {
		return
	}
	if err := resp.Release(); err != nil {
		p.log.Debug("release response", zap.Error(err))
	}
}

func blankURL() *url.URL {
	return &url.URL{Scheme: "about", Opaque: "blank"}
}

func blankResponse() *web.Response {
	return web.StringResponse(web.NewRequestURL(blankURL(), http.MethodGet), "text/html", "")
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
