package pac

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/logging"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/web"
	"github.com/dop251/goja"
	"go.uber.org/zap"
)

var (
	ErrNoScript   = errors.New("no proxy auto-config script")
	ErrNoFunction = errors.New("script does not define FindProxyForURL")
)

// Fetcher downloads the script text behind a PAC URL
type Fetcher func(ctx context.Context, pacURL string) (string, error)

// LookupFunc resolves a host name to its addresses
type LookupFunc func(ctx context.Context, host string) ([]string, error)

// Resolver evaluates PAC scripts. It is safe for concurrent use.
type Resolver struct {
	pacURL  string
	fetch   Fetcher
	lookup  LookupFunc
	localIP func() string
	now     func() time.Time
	timeout time.Duration
	log     *logging.Logger

	mu       sync.Mutex
	programs map[string]*goja.Program
}

// Option configures a Resolver
type Option func(*Resolver)

// WithPACURL sets the script location used by Resolve
func WithPACURL(u string) Option {
	return func(r *Resolver) { r.pacURL = u }
}

// WithFetcher sets how scripts are downloaded
func WithFetcher(f Fetcher) Option {
	return func(r *Resolver) { r.fetch = f }
}

// WithLookup replaces DNS resolution for dnsResolve, isResolvable and isInNet
func WithLookup(l LookupFunc) Option {
	return func(r *Resolver) { r.lookup = l }
}

// WithLocalIP replaces the address reported by myIpAddress
func WithLocalIP(f func() string) Option {
	return func(r *Resolver) { r.localIP = f }
}

// WithClock replaces the time source used by weekdayRange
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// WithTimeout bounds one script evaluation
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.timeout = d }
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(r *Resolver) { r.log = logging.OrNop(l).Component("pac") }
}

// NewResolver creates a resolver
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		lookup:   net.DefaultResolver.LookupHost,
		localIP:  localAddress,
		now:      time.Now,
		timeout:  5 * time.Second,
		log:      logging.Nop(),
		programs: make(map[string]*goja.Program),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PACURL returns the script location used by Resolve
func (r *Resolver) PACURL() string { return r.pacURL }

// Resolve picks the proxy for target using the configured PAC URL
func (r *Resolver) Resolve(ctx context.Context, target *url.URL) (*web.Proxy, error) {
	return r.FindProxy(ctx, r.pacURL, "", target)
}

// FindProxy runs FindProxyForURL for target. When script is empty the
// script is fetched from pacURL; either way it is compiled once per pacURL.
func (r *Resolver) FindProxy(ctx context.Context, pacURL, script string, target *url.URL) (*web.Proxy, error) {
	prog, err := r.program(ctx, pacURL, script)
	if err != nil {
		return nil, err
	}

	result, err := r.run(ctx, prog, target)
	if err != nil {
		return nil, err
	}

	proxy := ParseResult(result)
	r.log.Debug("proxy auto-config evaluated",
		zap.String("url", target.String()),
		zap.String("result", result),
		zap.String("proxy", describe(proxy)))
	return proxy, nil
}

// Forget drops the compiled script for pacURL
func (r *Resolver) Forget(pacURL string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.programs, pacURL)
}

func (r *Resolver) program(ctx context.Context, pacURL, script string) (*goja.Program, error) {
	r.mu.Lock()
	prog, ok := r.programs[pacURL]
	r.mu.Unlock()
	if ok {
		return prog, nil
	}

	if script == "" {
		if pacURL == "" || r.fetch == nil {
			return nil, ErrNoScript
		}
		text, err := r.fetch(ctx, pacURL)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", pacURL, err)
		}
		script = text
	}

	prog, err := goja.Compile(pacURL, script, false)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", pacURL, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.programs[pacURL]; ok {
		return existing, nil
	}
	r.programs[pacURL] = prog
	return prog, nil
}

func (r *Resolver) run(ctx context.Context, prog *goja.Program, target *url.URL) (string, error) {
	vm := goja.New()
	vm.SetMaxCallStackSize(1024)
	if err := r.install(ctx, vm); err != nil {
		return "", err
	}

	stop := make(chan struct{})
	defer close(stop)
	timer := time.NewTimer(r.timeout)
	defer timer.Stop()
	go func() {
		select {
		case <-timer.C:
			vm.Interrupt("proxy auto-config timeout exceeded")
		case <-ctx.Done():
			vm.Interrupt("context cancelled")
		case <-stop:
		}
	}()

	if _, err := vm.RunProgram(prog); err != nil {
		return "", fmt.Errorf("run proxy auto-config: %w", err)
	}

	fn, ok := goja.AssertFunction(vm.Get("FindProxyForURL"))
	if !ok {
		return "", ErrNoFunction
	}
	val, err := fn(goja.Undefined(), vm.ToValue(target.String()), vm.ToValue(target.Hostname()))
	if err != nil {
		return "", fmt.Errorf("FindProxyForURL: %w", err)
	}
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return "", nil
	}
	return val.String(), nil
}
