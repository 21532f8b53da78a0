package cache

import (
	"net/http"
	"sync"
	"time"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/logging"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/web"
	"go.uber.org/zap"
)

// DefaultCapacity is the entry limit of a new cache
const DefaultCapacity = 40

// key separates URL-keyed entries from entries keyed by source text
type key struct {
	text bool
	s    string
}

type entry struct {
	key        key
	response   *web.Response
	value      any
	createdAt  time.Time
	lastAccess time.Time
	seq        uint64
}

// Cache is a bounded, freshness-aware store of responses and values
// derived from them. Safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	entries  map[key]*entry
	capacity int
	seq      uint64

	now     func() time.Time
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// Option configures a Cache
type Option func(*Cache)

// WithCapacity sets the entry limit
func WithCapacity(n int) Option {
	return func(c *Cache) { c.capacity = max(n, 0) }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(c *Cache) { c.log = logging.OrNop(l).Component("cache") }
}

// WithMetrics records lookups and evictions
func WithMetrics(m *monitoring.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// New creates a cache
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:  make(map[key]*entry),
		capacity: DefaultCapacity,
		now:      time.Now,
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TryStore keeps resp (and an optional derived value) for req when req is a
// GET for a real page and resp passes the cacheability heuristic
func (c *Cache) TryStore(req *web.Request, resp *web.Response, value any) bool {
	if req == nil || resp == nil || req.Method() != http.MethodGet || web.IsBlank(req.URL()) {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capacity == 0 {
		return false
	}
	now := c.now()
	if !Cacheable(resp, now) {
		return false
	}

	c.insert(urlKey(req), resp, value, now)
	return true
}

// StoreArtifact keeps value under its literal source text. Such entries
// never go stale; they leave only by eviction or Clear.
func (c *Cache) StoreArtifact(sourceText string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capacity == 0 {
		return
	}
	c.insert(key{text: true, s: sourceText}, nil, value, c.now())
}

// Lookup returns the cached response for a GET request
func (c *Cache) Lookup(req *web.Request) (*web.Response, bool) {
	e, ok := c.lookupFresh(req, "response")
	if !ok || e.response == nil {
		return nil, false
	}
	return e.response, true
}

// LookupArtifact returns the value stored alongside the response for req
func (c *Cache) LookupArtifact(req *web.Request) (any, bool) {
	e, ok := c.lookupFresh(req, "artifact")
	if !ok || e.value == nil {
		return nil, false
	}
	return e.value, true
}

// LookupArtifactByText returns the value stored under sourceText
func (c *Cache) LookupArtifactByText(sourceText string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key{text: true, s: sourceText}]
	if !ok {
		c.metrics.RecordCacheLookup("artifact", "miss")
		return nil, false
	}
	c.touch(e)
	c.metrics.RecordCacheLookup("artifact", "hit")
	return e.value, true
}

func (c *Cache) lookupFresh(req *web.Request, kind string) (*entry, bool) {
	if req == nil || req.Method() != http.MethodGet {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	k := urlKey(req)
	e, ok := c.entries[k]
	if !ok {
		c.metrics.RecordCacheLookup(kind, "miss")
		return nil, false
	}

	now := c.now()
	if e.response != nil && !Fresh(e.response, e.createdAt, now) {
		c.log.Debug("dropping stale entry", zap.String("url", k.s))
		c.remove(e)
		c.metrics.RecordCacheLookup(kind, "stale")
		return nil, false
	}
	if e.response != nil && !readable(e.response) {
		c.log.Debug("dropping unreadable entry", zap.String("url", k.s))
		c.remove(e)
		c.metrics.RecordCacheLookup(kind, "miss")
		return nil, false
	}

	c.touch(e)
	c.metrics.RecordCacheLookup(kind, "hit")
	return e, true
}

// SetCapacity changes the entry limit, evicting immediately when it shrinks.
// Zero disables caching.
func (c *Cache) SetCapacity(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.capacity = max(n, 0)
	c.evict()
}

// Capacity returns the entry limit
func (c *Cache) Capacity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capacity
}

// Size returns the number of entries
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Holds reports whether resp is stored in the cache. Owners of a held
// response must leave releasing it to the cache.
func (c *Cache) Holds(resp *web.Response) bool {
	if resp == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.response == resp {
			return true
		}
	}
	return false
}

// Clear removes every entry, releasing stored responses
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		c.release(e)
	}
	c.entries = make(map[key]*entry)
	c.metrics.SetCacheEntries(0)
}

// ClearExpired removes only entries whose response is no longer fresh
func (c *Cache) ClearExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for _, e := range c.entries {
		if e.response != nil && !Fresh(e.response, e.createdAt, now) {
			c.remove(e)
		}
	}
}

// insert adds or replaces an entry, then evicts. Caller holds mu.
func (c *Cache) insert(k key, resp *web.Response, value any, now time.Time) {
	if old, ok := c.entries[k]; ok && old.response != resp {
		c.release(old)
	}
	c.seq++
	c.entries[k] = &entry{
		key:        k,
		response:   resp,
		value:      value,
		createdAt:  now,
		lastAccess: now,
		seq:        c.seq,
	}
	c.evict()
	c.metrics.SetCacheEntries(len(c.entries))
}

// evict drops least recently used entries one at a time until the cache
// fits. Caller holds mu.
func (c *Cache) evict() {
	for len(c.entries) > c.capacity {
		var oldest *entry
		for _, e := range c.entries {
			if oldest == nil || older(e, oldest) {
				oldest = e
			}
		}
		c.log.Debug("evicting entry", zap.String("key", oldest.key.s), zap.Bool("artifact", oldest.key.text))
		c.remove(oldest)
		c.metrics.RecordCacheEviction()
	}
}

func older(a, b *entry) bool {
	if !a.lastAccess.Equal(b.lastAccess) {
		return a.lastAccess.Before(b.lastAccess)
	}
	return a.seq < b.seq
}

func (c *Cache) touch(e *entry) {
	c.seq++
	e.lastAccess = c.now()
	e.seq = c.seq
}

func (c *Cache) remove(e *entry) {
	delete(c.entries, e.key)
	c.release(e)
	c.metrics.SetCacheEntries(len(c.entries))
}

func (c *Cache) release(e *entry) {
	if e.response == nil {
		return
	}
	if err := e.response.Release(); err != nil {
		c.log.Warn("failed to release cached response", zap.String("key", e.key.s), zap.Error(err))
	}
}

// readable reports whether the stored body can still be opened
func readable(resp *web.Response) bool {
	if resp.Content == nil {
		return true
	}
	r, err := resp.Content.Open()
	if err != nil {
		return false
	}
	r.Close()
	return true
}

func urlKey(req *web.Request) key {
	return key{s: web.WithoutFragment(req.URL())}
}
