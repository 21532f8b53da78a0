package resilience

import (
	"sort"
	"strings"
	"sync"
)

// Group hands out one breaker per host, created lazily with shared settings
type Group struct {
	settings Settings

	mu       sync.Mutex
	breakers map[string]*Breaker
}

// NewGroup creates an empty breaker group
func NewGroup(settings Settings) *Group {
	return &Group{
		settings: settings,
		breakers: make(map[string]*Breaker),
	}
}

// Get returns the breaker for host, creating it on first use. Host names
// are matched case-insensitively.
func (g *Group) Get(host string) *Breaker {
	key := strings.ToLower(host)

	g.mu.Lock()
	defer g.mu.Unlock()

	b, ok := g.breakers[key]
	if !ok {
		b = New(key, g.settings)
		g.breakers[key] = b
	}
	return b
}

// States reports the state of every known breaker
func (g *Group) States() map[string]State {
	g.mu.Lock()
	breakers := make([]*Breaker, 0, len(g.breakers))
	for _, b := range g.breakers {
		breakers = append(breakers, b)
	}
	g.mu.Unlock()

	states := make(map[string]State, len(breakers))
	for _, b := range breakers {
		states[b.Name()] = b.State()
	}
	return states
}

// Open lists hosts whose breaker is currently open, sorted
func (g *Group) Open() []string {
	var hosts []string
	for host, state := range g.States() {
		if state == StateOpen {
			hosts = append(hosts, host)
		}
	}
	sort.Strings(hosts)
	return hosts
}

// Reset forgets every breaker
func (g *Group) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.breakers = make(map[string]*Breaker)
}
