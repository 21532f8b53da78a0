package browser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/page"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/profile"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// site serves pages, a PAC script pointing *.invalid at itself, and acts
// as that proxy
type site struct {
	*httptest.Server
	hits       map[string]*atomic.Int32
	pacFetches atomic.Int32
	proxied    atomic.Int32
}

func newSite(t *testing.T) *site {
	t.Helper()
	s := &site{hits: map[string]*atomic.Int32{
		"/":      {},
		"/old":   {},
		"/new":   {},
		"/big":   {},
		"/popup": {},
	}}
	lastModified := time.Now().Add(-time.Hour).UTC().Format(http.TimeFormat)

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.IsAbs() && strings.HasSuffix(r.URL.Hostname(), ".invalid") {
			s.proxied.Add(1)
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, "<title>via proxy</title>")
			return
		}
		if c, ok := s.hits[r.URL.Path]; ok {
			c.Add(1)
		}

		switch r.URL.Path {
		case "/":
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, "<html><head><title>Home</title></head><body>welcome</body></html>")
		case "/old":
			http.Redirect(w, r, "/new", http.StatusMovedPermanently)
		case "/new":
			w.Header().Set("Content-Type", "text/html")
			w.Header().Set("Last-Modified", lastModified)
			fmt.Fprint(w, "<title>New</title>")
		case "/big":
			w.Header().Set("Content-Type", "text/plain")
			fmt.Fprint(w, strings.Repeat("a", 4096))
		case "/popup":
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, "<title>Popup</title>")
		case "/proxy.pac":
			s.pacFetches.Add(1)
			w.Header().Set("Content-Type", "application/x-ns-proxy-autoconfig")
			fmt.Fprintf(w, `function FindProxyForURL(url, host) {
				if (dnsDomainIs(host, ".invalid")) return "PROXY %s";
				return "DIRECT";
			}`, r.Host)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Transport.Timeout = 5 * time.Second
	return cfg
}

func newTestClient(t *testing.T, cfg *config.Config, opts ...Option) *Client {
	t.Helper()
	c, err := New(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestGetPage(t *testing.T) {
	s := newSite(t)
	c := newTestClient(t, testConfig())

	pg, err := c.GetPage(context.Background(), s.URL+"/")
	require.NoError(t, err)

	html, ok := pg.(*page.HTMLPage)
	require.True(t, ok)
	assert.Equal(t, "Home", html.Title())
	assert.Same(t, pg, c.Windows().Current().Page())
	assert.Equal(t, int64(1), c.Metrics().Snapshot().Loads)
}

func TestOpenTargets(t *testing.T) {
	s := newSite(t)
	c := newTestClient(t, testConfig())
	ctx := context.Background()
	main := c.Windows().Current()

	_, err := c.Open(ctx, s.URL+"/", "")
	require.NoError(t, err)
	_, err = c.Open(ctx, s.URL+"/popup", "results")
	require.NoError(t, err)

	results := c.Windows().FindByName("results")
	require.NotNil(t, results)
	assert.Same(t, main, results.Opener())
	assert.Equal(t, "Popup", results.Page().(*page.HTMLPage).Title())
	assert.Equal(t, "Home", main.Page().(*page.HTMLPage).Title())
	assert.Len(t, c.Windows().TopLevelWindows(), 2)

	_, err = c.Open(ctx, "not a url", "")
	assert.ErrorIs(t, err, web.ErrMalformedRequest)
}

func TestRedirectedPageIsCached(t *testing.T) {
	s := newSite(t)
	c := newTestClient(t, testConfig())
	ctx := context.Background()

	for range 2 {
		pg, err := c.GetPage(ctx, s.URL+"/old")
		require.NoError(t, err)
		assert.Equal(t, "New", pg.(*page.HTMLPage).Title())
		assert.Equal(t, "/new", pg.URL().Path)
	}

	assert.Equal(t, int32(1), s.hits["/old"].Load())
	assert.Equal(t, int32(1), s.hits["/new"].Load())
	assert.Equal(t, 1, c.Cache().Size())
}

func TestProxyAutoConfig(t *testing.T) {
	s := newSite(t)
	cfg := testConfig()
	cfg.Proxy.PACURL = s.URL + "/proxy.pac"
	c := newTestClient(t, cfg)
	ctx := context.Background()
	require.NotNil(t, c.PAC())

	pg, err := c.GetPage(ctx, "http://shop.invalid/cart")
	require.NoError(t, err)
	assert.Equal(t, "via proxy", pg.(*page.HTMLPage).Title())

	pg, err = c.GetPage(ctx, s.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, "Home", pg.(*page.HTMLPage).Title())

	assert.Equal(t, int32(1), s.proxied.Load())
	assert.Equal(t, int32(1), s.pacFetches.Load(), "script is fetched once")
}

func TestCloseRemovesSpillFiles(t *testing.T) {
	s := newSite(t)
	cfg := testConfig()
	cfg.Transport.SpillThreshold = 64
	cfg.Transport.TempDir = t.TempDir()
	c := newTestClient(t, cfg)

	pg, err := c.GetPage(context.Background(), s.URL+"/big")
	require.NoError(t, err)
	text, ok := pg.(*page.TextPage)
	require.True(t, ok)
	assert.Len(t, text.Content(), 4096)

	path := web.Path(pg.Response().Content)
	require.NotEmpty(t, path)
	_, err = os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, c.Close())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, c.Close(), "close is idempotent")
}

func TestCloseKeepsOtherClientsSpillFiles(t *testing.T) {
	s := newSite(t)
	cfg := testConfig()
	cfg.Transport.SpillThreshold = 64
	cfg.Transport.TempDir = t.TempDir()
	a := newTestClient(t, cfg)
	b := newTestClient(t, cfg)

	pg, err := a.GetPage(context.Background(), s.URL+"/big")
	require.NoError(t, err)
	path := web.Path(pg.Response().Content)
	require.NotEmpty(t, path)

	require.NoError(t, b.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)
	rc, err := pg.Response().Content.Open()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Len(t, data, 4096)
}

func TestCloseOpensNoReplacementWindow(t *testing.T) {
	s := newSite(t)
	c := newTestClient(t, testConfig())

	_, err := c.GetPage(context.Background(), s.URL+"/")
	require.NoError(t, err)
	_, err = c.Open(context.Background(), s.URL+"/popup", "popup")
	require.NoError(t, err)

	require.NoError(t, c.Close())
	assert.Empty(t, c.Windows().TopLevelWindows())
	assert.Empty(t, c.Windows().Windows())
}

func TestNewValidatesConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Profile.Name = "netscape"
	_, err := New(cfg)
	assert.ErrorContains(t, err, "unknown profile")

	cfg = testConfig()
	cfg.Cache.Capacity = -1
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestProfileSelection(t *testing.T) {
	cfg := testConfig()
	cfg.Profile.Name = profile.Firefox
	c := newTestClient(t, cfg)
	assert.Equal(t, profile.Firefox, c.Profile().Name)

	edge, ok := profile.Lookup(profile.Edge)
	require.True(t, ok)
	c.SetProfile(edge)
	assert.Equal(t, profile.Edge, c.Profile().Name)

	override := newTestClient(t, cfg, WithProfile(edge))
	assert.Equal(t, profile.Edge, override.Profile().Name)
}

func TestDefaultsWithNilConfig(t *testing.T) {
	c := newTestClient(t, nil)
	assert.Equal(t, config.Default().Cache.Capacity, c.Cache().Capacity())
	assert.Nil(t, c.PAC())
	assert.NotNil(t, c.Windows().Current())
}

func TestUserAgentFollowsProfile(t *testing.T) {
	var agent atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent.Store(r.UserAgent())
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	c := newTestClient(t, testConfig())
	_, err := c.GetPage(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, c.Profile().UserAgent, agent.Load())

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	assert.Empty(t, c.Transport().Cookies(u))
}

func TestSummaries(t *testing.T) {
	s := newSite(t)
	c := newTestClient(t, testConfig())
	ctx := context.Background()

	pg, err := c.GetPage(ctx, s.URL+"/")
	require.NoError(t, err)

	sum := Summarize(pg, true)
	assert.Equal(t, s.URL+"/", sum.URL)
	assert.Equal(t, http.StatusOK, sum.Status)
	assert.Equal(t, "html", sum.Kind)
	assert.Equal(t, "Home", sum.Title)
	assert.Contains(t, sum.Text, "welcome")

	_, err = c.Open(ctx, s.URL+"/popup", "_blank")
	require.NoError(t, err)

	windows := c.WindowSummaries()
	require.Len(t, windows, 2)
	assert.False(t, windows[0].Current)
	assert.True(t, windows[1].Current)
	assert.Equal(t, windows[0].ID, windows[1].Opener)
	require.NotNil(t, windows[1].Page)
	assert.Equal(t, "Popup", windows[1].Page.Title)
}
