package window

import (
	"net/url"
	"sync"
)

// History is a bounded list of visited URLs with a cursor
type History struct {
	mu      sync.Mutex
	entries []*url.URL
	index   int
	max     int
}

// NewHistory creates a history keeping at most max entries; max <= 0
// means unbounded
func NewHistory(max int) *History {
	return &History{index: -1, max: max}
}

// Add records u as the current entry, dropping any forward entries
func (h *History) Add(u *url.URL) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cp := *u
	h.entries = append(h.entries[:h.index+1], &cp)
	if h.max > 0 && len(h.entries) > h.max {
		h.entries = h.entries[len(h.entries)-h.max:]
	}
	h.index = len(h.entries) - 1
}

// ReplaceCurrent overwrites the current entry, or adds one when empty
func (h *History) ReplaceCurrent(u *url.URL) {
	h.mu.Lock()
	if h.index < 0 {
		h.mu.Unlock()
		h.Add(u)
		return
	}
	defer h.mu.Unlock()
	cp := *u
	h.entries[h.index] = &cp
}

// Back moves the cursor one entry back
func (h *History) Back() (*url.URL, bool) { return h.GoTo(-1) }

// Forward moves the cursor one entry forward
func (h *History) Forward() (*url.URL, bool) { return h.GoTo(1) }

// GoTo moves the cursor by offset and returns the entry there. Out of
// range offsets leave the cursor unchanged.
func (h *History) GoTo(offset int) (*url.URL, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	target := h.index + offset
	if target < 0 || target >= len(h.entries) {
		return nil, false
	}
	h.index = target
	cp := *h.entries[target]
	return &cp, true
}

// Current returns the entry under the cursor
func (h *History) Current() (*url.URL, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index < 0 {
		return nil, false
	}
	cp := *h.entries[h.index]
	return &cp, true
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Index returns the cursor position, -1 when empty
func (h *History) Index() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.index
}
