package cache

import (
	"bytes"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/web"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func httpDate(t time.Time) string { return t.UTC().Format(http.TimeFormat) }

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCache(opts ...Option) (*Cache, *clock) {
	clk := &clock{now: epoch}
	return New(append([]Option{WithClock(clk.Now)}, opts...)...), clk
}

func get(t *testing.T, rawURL string) *web.Request {
	t.Helper()
	req, err := web.NewRequest(rawURL, http.MethodGet)
	require.NoError(t, err)
	return req
}

// staticResponse carries a Last-Modified old enough to pass the heuristic
func staticResponse(req *web.Request, body string, extra ...string) *web.Response {
	h := web.NewHeader(
		"Content-Type", "text/css",
		"Last-Modified", httpDate(epoch.Add(-24*time.Hour)),
	)
	for i := 0; i+1 < len(extra); i += 2 {
		h.Add(extra[i], extra[i+1])
	}
	return web.NewResponse(req, http.StatusOK, "", h, web.BytesContent([]byte(body)))
}

func TestRoundTrip(t *testing.T) {
	c, clk := newTestCache()
	req := get(t, "http://example.com/style.css")
	resp := staticResponse(req, "body { color: red }", "X-Extra", "1")

	require.True(t, c.TryStore(req, resp, "parsed"))
	clk.Advance(time.Minute)

	got, ok := c.Lookup(get(t, "http://example.com/style.css#frag"))
	require.True(t, ok)
	data, err := got.ContentBytes()
	require.NoError(t, err)
	assert.Equal(t, "body { color: red }", string(data))
	assert.Equal(t, resp.Header.Fields(), got.Header.Fields())

	value, ok := c.LookupArtifact(req)
	require.True(t, ok)
	assert.Equal(t, "parsed", value)
}

func TestTryStoreRejections(t *testing.T) {
	now := epoch
	tests := []struct {
		name   string
		method string
		url    string
		header []string
	}{
		{"post", http.MethodPost, "http://example.com/a", nil},
		{"blank page", http.MethodGet, "about:blank", nil},
		{"no-store", http.MethodGet, "http://example.com/a", []string{"Cache-Control", "no-store"}},
		{"recently modified", http.MethodGet, "http://example.com/a", []string{"Last-Modified", httpDate(now.Add(-time.Minute))}},
		{"no dates at all", http.MethodGet, "http://example.com/a", []string{"Content-Type", "text/html"}},
		{"expires too soon", http.MethodGet, "http://example.com/a", []string{"Expires", httpDate(now.Add(5 * time.Minute))}},
		{"max-age only", http.MethodGet, "http://example.com/a", []string{"Cache-Control", "max-age=3600"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCache()
			req, err := web.NewRequest(tt.url, tt.method)
			require.NoError(t, err)
			resp := web.NewResponse(req, 200, "", web.NewHeader(tt.header...), nil)

			assert.False(t, c.TryStore(req, resp, nil))
			assert.Zero(t, c.Size())
		})
	}
}

func TestCacheableHeuristic(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   bool
	}{
		{"far expires", []string{"Expires", httpDate(epoch.Add(time.Hour))}, true},
		{"old last-modified", []string{"Last-Modified", httpDate(epoch.Add(-time.Hour))}, true},
		{"expires wins over last-modified", []string{
			"Expires", httpDate(epoch.Add(time.Minute)),
			"Last-Modified", httpDate(epoch.Add(-time.Hour)),
		}, false},
		{"max-age suppresses expires", []string{
			"Cache-Control", "max-age=60",
			"Expires", httpDate(epoch.Add(time.Hour)),
		}, false},
		{"max-age suppresses expires but last-modified counts", []string{
			"Cache-Control", "s-maxage=60",
			"Expires", httpDate(epoch.Add(time.Minute)),
			"Last-Modified", httpDate(epoch.Add(-time.Hour)),
		}, true},
		{"unix seconds expires", []string{"Expires", fmt.Sprint(epoch.Add(time.Hour).Unix())}, true},
		{"unparsable expires falls back to last-modified", []string{
			"Expires", "soon",
			"Last-Modified", httpDate(epoch.Add(-time.Hour)),
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := web.NewResponse(nil, 200, "", web.NewHeader(tt.header...), nil)
			assert.Equal(t, tt.want, Cacheable(resp, epoch))
		})
	}
}

func TestFreshness(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		age    time.Duration
		want   bool
	}{
		{"no expiry info", nil, 1000 * time.Hour, true},
		{"max-age within", []string{"Cache-Control", "max-age=60"}, 59 * time.Second, true},
		{"max-age past", []string{"Cache-Control", "max-age=60"}, 60 * time.Second, false},
		{"s-maxage beats max-age", []string{"Cache-Control", "max-age=10, s-maxage=600"}, time.Minute, true},
		{"private ignores s-maxage", []string{"Cache-Control", "private, max-age=10, s-maxage=600"}, time.Minute, false},
		{"expires far", []string{"Expires", httpDate(epoch.Add(time.Hour))}, 0, true},
		{"expires within slack", []string{"Expires", httpDate(epoch.Add(5 * time.Minute))}, 0, false},
		{"unparsable expires", []string{"Expires", "never"}, 0, false},
		{"malformed max-age", []string{"Cache-Control", "max-age=abc"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := web.NewResponse(nil, 200, "", web.NewHeader(tt.header...), nil)
			assert.Equal(t, tt.want, Fresh(resp, epoch, epoch.Add(tt.age)))
		})
	}
}

func TestLookupEvictsStale(t *testing.T) {
	c, clk := newTestCache()
	req := get(t, "http://example.com/a.css")
	require.True(t, c.TryStore(req, staticResponse(req, "a", "Cache-Control", "max-age=120"), nil))

	clk.Advance(119 * time.Second)
	_, ok := c.Lookup(req)
	require.True(t, ok)

	clk.Advance(2 * time.Second)
	_, ok = c.Lookup(req)
	assert.False(t, ok)
	assert.Zero(t, c.Size())
}

func TestSMaxAgeGovernsDespiteExpires(t *testing.T) {
	c, clk := newTestCache()
	req := get(t, "http://example.com/a.css")
	resp := staticResponse(req, "a",
		"Cache-Control", "s-maxage=30",
		"Expires", httpDate(epoch.Add(48*time.Hour)),
	)
	require.True(t, c.TryStore(req, resp, nil))

	clk.Advance(31 * time.Second)
	_, ok := c.Lookup(req)
	assert.False(t, ok)
}

func TestEvictionIsLeastRecentlyUsed(t *testing.T) {
	c, clk := newTestCache(WithCapacity(3))

	reqs := make([]*web.Request, 4)
	for i := range reqs {
		reqs[i] = get(t, fmt.Sprintf("http://example.com/%d.css", i))
	}
	for _, req := range reqs[:3] {
		require.True(t, c.TryStore(req, staticResponse(req, req.URLString()), nil))
		clk.Advance(time.Second)
	}

	// touching the oldest postpones its eviction
	_, ok := c.Lookup(reqs[0])
	require.True(t, ok)
	clk.Advance(time.Second)

	require.True(t, c.TryStore(reqs[3], staticResponse(reqs[3], "3"), nil))

	assert.Equal(t, 3, c.Size())
	_, ok = c.Lookup(reqs[1])
	assert.False(t, ok, "least recently used entry should be gone")
	for _, i := range []int{0, 2, 3} {
		_, ok = c.Lookup(reqs[i])
		assert.True(t, ok, "entry %d", i)
	}
}

func TestEvictionTieBreaksByAccessOrder(t *testing.T) {
	c, _ := newTestCache(WithCapacity(2))
	a, b, d := get(t, "http://e.test/a"), get(t, "http://e.test/b"), get(t, "http://e.test/d")

	require.True(t, c.TryStore(a, staticResponse(a, "a"), nil))
	require.True(t, c.TryStore(b, staticResponse(b, "b"), nil))
	_, _ = c.Lookup(a)
	require.True(t, c.TryStore(d, staticResponse(d, "d"), nil))

	_, ok := c.Lookup(b)
	assert.False(t, ok)
	_, ok = c.Lookup(a)
	assert.True(t, ok)
}

func TestEvictionReleasesSpilledBody(t *testing.T) {
	c, _ := newTestCache(WithCapacity(1))
	a, b := get(t, "http://e.test/a"), get(t, "http://e.test/b")

	content, err := web.Download(bytes.NewReader(make([]byte, 64)), 8, t.TempDir())
	require.NoError(t, err)
	path := web.Path(content)
	resp := staticResponse(a, "")
	resp.Content = content

	require.True(t, c.TryStore(a, resp, nil))
	require.True(t, c.TryStore(b, staticResponse(b, "b"), nil))

	assert.NotContains(t, web.SpillFiles(), path)
	_, err = content.Open()
	assert.Error(t, err)
}

func TestUnreadableEntryIsAMiss(t *testing.T) {
	c, _ := newTestCache()
	req := get(t, "http://e.test/big")

	content, err := web.Download(bytes.NewReader(make([]byte, 64)), 8, t.TempDir())
	require.NoError(t, err)
	resp := staticResponse(req, "")
	resp.Content = content
	require.True(t, c.TryStore(req, resp, nil))

	require.NoError(t, content.Release())

	_, ok := c.Lookup(req)
	assert.False(t, ok)
	assert.Zero(t, c.Size())
}

func TestCapacity(t *testing.T) {
	c, _ := newTestCache()
	assert.Equal(t, DefaultCapacity, c.Capacity())

	for i := 0; i < 5; i++ {
		req := get(t, fmt.Sprintf("http://e.test/%d", i))
		require.True(t, c.TryStore(req, staticResponse(req, "x"), nil))
	}
	c.SetCapacity(2)
	assert.Equal(t, 2, c.Size())

	c.SetCapacity(0)
	assert.Zero(t, c.Size())

	req := get(t, "http://e.test/again")
	assert.False(t, c.TryStore(req, staticResponse(req, "x"), nil))
	c.StoreArtifact("a{}", "sheet")
	assert.Zero(t, c.Size())

	c.SetCapacity(-3)
	assert.Zero(t, c.Capacity())
}

func TestArtifactsByText(t *testing.T) {
	c, clk := newTestCache()
	c.StoreArtifact("p { margin: 0 }", "compiled")

	clk.Advance(1000 * time.Hour)
	c.ClearExpired()

	v, ok := c.LookupArtifactByText("p { margin: 0 }")
	require.True(t, ok)
	assert.Equal(t, "compiled", v)

	_, ok = c.LookupArtifactByText("p { margin: 1px }")
	assert.False(t, ok)

	// URL entries and text entries never collide
	_, ok = c.Lookup(get(t, "http://e.test/x"))
	assert.False(t, ok)
}

func TestLookupRequiresGet(t *testing.T) {
	c, _ := newTestCache()
	req := get(t, "http://e.test/a")
	require.True(t, c.TryStore(req, staticResponse(req, "a"), "v"))

	post, err := web.NewRequest("http://e.test/a", http.MethodPost)
	require.NoError(t, err)
	_, ok := c.Lookup(post)
	assert.False(t, ok)
	_, ok = c.LookupArtifact(post)
	assert.False(t, ok)
}

func TestOverwriteReleasesPrevious(t *testing.T) {
	c, _ := newTestCache()
	req := get(t, "http://e.test/a")

	content, err := web.Download(bytes.NewReader(make([]byte, 64)), 8, t.TempDir())
	require.NoError(t, err)
	first := staticResponse(req, "")
	first.Content = content
	require.True(t, c.TryStore(req, first, nil))

	require.True(t, c.TryStore(req, staticResponse(req, "second"), nil))
	assert.Equal(t, 1, c.Size())
	_, err = content.Open()
	assert.Error(t, err)

	got, ok := c.Lookup(req)
	require.True(t, ok)
	data, _ := got.ContentBytes()
	assert.Equal(t, "second", string(data))
}

func TestClearAndClearExpired(t *testing.T) {
	c, clk := newTestCache()
	short := get(t, "http://e.test/short")
	long := get(t, "http://e.test/long")
	require.True(t, c.TryStore(short, staticResponse(short, "s", "Cache-Control", "max-age=10"), nil))
	require.True(t, c.TryStore(long, staticResponse(long, "l", "Cache-Control", "max-age=1000"), nil))
	c.StoreArtifact("text", 1)

	clk.Advance(time.Minute)
	c.ClearExpired()
	assert.Equal(t, 2, c.Size())

	c.Clear()
	assert.Zero(t, c.Size())
}

func TestMetricsRecorded(t *testing.T) {
	m := monitoring.NewMetrics()
	c, clk := newTestCache(WithMetrics(m), WithCapacity(1))
	a, b := get(t, "http://e.test/a"), get(t, "http://e.test/b")

	require.True(t, c.TryStore(a, staticResponse(a, "a", "Cache-Control", "max-age=5"), nil))
	_, _ = c.Lookup(a)
	_, _ = c.Lookup(b)
	clk.Advance(10 * time.Second)
	_, _ = c.Lookup(a)
	require.True(t, c.TryStore(a, staticResponse(a, "a"), nil))
	require.True(t, c.TryStore(b, staticResponse(b, "b"), nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("response", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("response", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("response", "stale")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheEvictions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheEntries))
}

func TestConcurrentUse(t *testing.T) {
	c, _ := newTestCache(WithCapacity(8))
	var wg sync.WaitGroup

	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req, _ := web.NewRequest(fmt.Sprintf("http://e.test/%d", i%16), http.MethodGet)
			c.TryStore(req, staticResponse(req, "x"), nil)
			c.Lookup(req)
			c.StoreArtifact(fmt.Sprint(i), i)
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Size(), 8)
}

func TestHolds(t *testing.T) {
	c, _ := newTestCache()
	req := get(t, "http://example.com/a.css")
	resp := staticResponse(req, "a")

	assert.False(t, c.Holds(resp))
	assert.False(t, c.Holds(nil))
	require.True(t, c.TryStore(req, resp, nil))
	assert.True(t, c.Holds(resp))

	c.Clear()
	assert.False(t, c.Holds(resp))
}
