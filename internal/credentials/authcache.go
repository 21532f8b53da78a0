package credentials

import (
	"strings"
	"sync"
)

// Exchange records a completed authentication handshake with one host
type Exchange struct {
	Scheme        string
	Realm         string
	Authorization string
}

// AuthCache remembers successful authentication exchanges per host:port so
// later requests can authenticate preemptively. Safe for concurrent use.
type AuthCache struct {
	mu        sync.RWMutex
	exchanges map[string]Exchange
}

// NewAuthCache creates an empty cache
func NewAuthCache() *AuthCache {
	return &AuthCache{exchanges: make(map[string]Exchange)}
}

// Put records an exchange for hostPort
func (a *AuthCache) Put(hostPort string, ex Exchange) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.exchanges[strings.ToLower(hostPort)] = ex
}

// Get returns the exchange recorded for hostPort
func (a *AuthCache) Get(hostPort string) (Exchange, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ex, ok := a.exchanges[strings.ToLower(hostPort)]
	return ex, ok
}

// Invalidate forgets the exchange for hostPort
func (a *AuthCache) Invalidate(hostPort string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.exchanges, strings.ToLower(hostPort))
}

// Clear forgets every exchange
func (a *AuthCache) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.exchanges = make(map[string]Exchange)
}
